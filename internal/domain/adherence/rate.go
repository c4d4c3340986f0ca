package adherence

import (
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

// ComputeDailyRate devuelve la tasa del día (0..100). tracked=false cuando no
// hay medicamentos activos ese día; el día no cuenta para ninguna métrica.
// Solo se cuentan actividades con Taken=true de esa fecha.
func ComputeDailyRate(date string, meds []medications.Medication, activities []doses.Activity) (int, bool, error) {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return 0, false, err
	}

	required := requiredOn(day, meds)
	if required == 0 {
		return 0, false, nil
	}

	taken := 0
	for _, a := range activities {
		d, err := schedule.ParseDate(a.Date)
		if err != nil {
			return 0, false, err
		}
		if a.Taken && d.Equal(day) {
			taken++
		}
	}
	return percent(taken, required), true, nil
}

func requiredOn(day time.Time, meds []medications.Medication) int {
	total := 0
	for _, m := range meds {
		if m.ActiveOn(day) {
			total += schedule.RequiredDosesPerDay(m.Frequency)
		}
	}
	return total
}

// percent redondea half-up con enteros y acota a [0,100].
func percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	p := (part*200 + whole) / (2 * whole)
	if p > 100 {
		return 100
	}
	return p
}
