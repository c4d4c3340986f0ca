package doses

import (
	"sort"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

// BuildDailyStatus arma el estado del día para los medicamentos activos en day.
// activities puede traer otros días; se ignoran. Una fecha mal formada
// devuelve *schedule.ParseError.
func BuildDailyStatus(day time.Time, meds []medications.Medication, activities []Activity) ([]MedicationStatus, error) {
	date := schedule.FormatDate(day)

	taken := map[string][]string{}
	for _, a := range activities {
		d, err := schedule.ParseDate(a.Date)
		if err != nil {
			return nil, err
		}
		if !a.Taken || schedule.FormatDate(d) != date {
			continue
		}
		taken[a.MedicationID] = append(taken[a.MedicationID], a.TakenTime)
	}

	out := make([]MedicationStatus, 0, len(meds))
	for _, m := range meds {
		if !m.ActiveOn(day) {
			continue
		}
		times := taken[m.ID]
		sort.Strings(times)

		next, ok, err := schedule.NextDoseTime(m.ScheduledTime, m.Frequency, times)
		if err != nil {
			return nil, err
		}

		out = append(out, MedicationStatus{
			MedicationID:  m.ID,
			Name:          m.Name,
			Dosage:        m.Dosage,
			Frequency:     string(m.Frequency),
			ScheduledTime: m.ScheduledTime,
			RequiredDoses: schedule.RequiredDosesPerDay(m.Frequency),
			TakenTimes:    append([]string{}, times...),
			NextDoseTime:  next,
			HasNextDose:   ok,
			Complete:      schedule.IsComplete(m.Frequency, len(times)),
		})
	}
	return out, nil
}

// AllComplete es true si hay al menos un medicamento y todos están completos.
func AllComplete(items []MedicationStatus) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.Complete {
			return false
		}
	}
	return true
}
