package medications

import (
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
)

// Medication es un régimen prescrito a un paciente (owner).
type Medication struct {
	ID      string
	OwnerID string

	Name   string
	Dosage string // texto libre, no se valida clínicamente

	Frequency     schedule.Frequency
	ScheduledTime string // "HH:MM", primera toma del día

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn indica si el medicamento cuenta para el día dado (medianoche UTC,
// ver schedule.DayOf). Cuenta desde el día de creación inclusive.
func (m Medication) ActiveOn(day time.Time) bool {
	return !schedule.DayOf(m.CreatedAt).After(day)
}
