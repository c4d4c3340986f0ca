package adherence

import (
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

// ComputeMetrics agrega el historial completo del paciente hasta today
// (inclusive). Es pura: mismo input, mismo output.
func ComputeMetrics(meds []medications.Medication, activities []doses.Activity, today string) (Metrics, error) {
	end, err := schedule.ParseDate(today)
	if err != nil {
		return Metrics{}, err
	}

	takenByDay := make(map[string]int, len(activities))
	for _, a := range activities {
		d, err := schedule.ParseDate(a.Date)
		if err != nil {
			return Metrics{}, err
		}
		if a.Taken {
			takenByDay[schedule.FormatDate(d)]++
		}
	}

	m := Metrics{
		TotalMedications: len(meds),
		WeeklyTrend:      make([]int, WeekDays),
		MonthlyTrend:     []TrendPoint{},
	}
	if len(meds) == 0 {
		return m, nil
	}

	series := buildSeries(meds, takenByDay, end)
	if len(series) == 0 {
		return m, nil
	}

	adherentDays := 0
	for _, d := range series {
		if d.adherent() {
			adherentDays++
		}
	}

	m.DaysTracked = len(series)
	m.OverallRate = percent(adherentDays, len(series))
	m.CurrentStreak, m.LongestStreak = streaks(series)
	m.WeeklyTrend = weeklyTrend(series)
	m.MonthlyTrend = monthlyTrend(series)
	m.MissedDosesThisWeek = missedDoses(series, end, WeekDays)
	m.MissedDosesThisMonth = missedDoses(series, end, MonthDays)
	return m, nil
}

// buildSeries recorre día a día desde la creación más antigua hasta end.
func buildSeries(meds []medications.Medication, takenByDay map[string]int, end time.Time) []dayRate {
	start := earliestDay(meds)
	if start.After(end) {
		return nil
	}

	series := make([]dayRate, 0, int(end.Sub(start).Hours()/24)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		required := requiredOn(day, meds)
		if required == 0 {
			continue
		}
		taken := takenByDay[schedule.FormatDate(day)]
		series = append(series, dayRate{
			day:      day,
			required: required,
			taken:    taken,
			rate:     percent(taken, required),
		})
	}
	return series
}

// streaks: la actual se cuenta hacia atrás desde el último día de la serie.
func streaks(series []dayRate) (current, longest int) {
	for i := len(series) - 1; i >= 0 && series[i].adherent(); i-- {
		current++
	}

	run := 0
	for _, d := range series {
		if !d.adherent() {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return current, longest
}

func weeklyTrend(series []dayRate) []int {
	out := make([]int, WeekDays)
	tail := lastN(series, WeekDays)
	offset := WeekDays - len(tail)
	for i, d := range tail {
		out[offset+i] = d.rate
	}
	return out
}

func monthlyTrend(series []dayRate) []TrendPoint {
	tail := lastN(series, MonthDays)
	out := make([]TrendPoint, 0, len(tail))
	for _, d := range tail {
		out = append(out, TrendPoint{Date: schedule.FormatDate(d.day), Rate: d.rate, Adherent: d.adherent()})
	}
	return out
}

// missedDoses suma las tomas faltantes de los días ya cerrados dentro de los
// últimos n días calendario (today excluido, todavía está en curso).
func missedDoses(series []dayRate, today time.Time, n int) int {
	from := today.AddDate(0, 0, -n)
	missed := 0
	for _, d := range series {
		if d.day.Before(from) || !d.day.Before(today) {
			continue
		}
		if short := d.required - d.taken; short > 0 {
			missed += short
		}
	}
	return missed
}

func lastN(series []dayRate, n int) []dayRate {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}
