package adherence

import (
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
)

// Summarize arma la fila del panel del cuidador a partir de las métricas ya
// calculadas y del log de tomas.
func Summarize(patientID string, m Metrics, activities []doses.Activity, at time.Time) Summary {
	return Summary{
		PatientID:        patientID,
		AdherenceRate:    m.OverallRate,
		CurrentStreak:    m.CurrentStreak,
		MissedDoses:      m.MissedDosesThisMonth,
		LastTaken:        lastTaken(activities),
		TotalMedications: m.TotalMedications,
		Metrics:          m,
		ComputedAt:       at,
	}
}

// lastTaken: "YYYY-MM-DD HH:MM" de la última toma, nil si nunca tomó nada.
func lastTaken(activities []doses.Activity) *string {
	var last string
	for _, a := range activities {
		if !a.Taken {
			continue
		}
		stamp := strings.TrimSpace(a.Date + " " + a.TakenTime)
		if stamp > last {
			last = stamp
		}
	}
	if last == "" {
		return nil
	}
	return &last
}
