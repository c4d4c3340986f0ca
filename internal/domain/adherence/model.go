package adherence

import "time"

const (
	// AdherentDayThreshold: un día es adherente si taken/required >= 80% (sin redondear).
	AdherentDayThreshold = 80

	WeekDays  = 7
	MonthDays = 30
)

type TrendPoint struct {
	Date string `json:"date"`
	Rate int    `json:"rate"`

	// Adherent usa la fracción sin redondear. No se serializa.
	Adherent bool `json:"-"`
}

// Metrics se serializa tal cual en la API.
type Metrics struct {
	OverallRate          int          `json:"overall_rate"`
	CurrentStreak        int          `json:"current_streak"`
	LongestStreak        int          `json:"longest_streak"`
	MissedDosesThisWeek  int          `json:"missed_doses_this_week"`
	MissedDosesThisMonth int          `json:"missed_doses_this_month"`
	TotalMedications     int          `json:"total_medications"`
	DaysTracked          int          `json:"days_tracked"`
	WeeklyTrend          []int        `json:"weekly_trend"`
	MonthlyTrend         []TrendPoint `json:"monthly_trend"`
}

// Summary es la fila del panel del cuidador.
type Summary struct {
	PatientID        string    `json:"patient_id"`
	AdherenceRate    int       `json:"adherence_rate"`
	CurrentStreak    int       `json:"current_streak"`
	MissedDoses      int       `json:"missed_doses"`
	LastTaken        *string   `json:"last_taken"`
	TotalMedications int       `json:"total_medications"`
	Metrics          Metrics   `json:"metrics"`
	ComputedAt       time.Time `json:"computed_at"`
}

// dayRate es un punto de la serie diaria (solo días con medicamentos activos).
type dayRate struct {
	day      time.Time
	required int
	taken    int
	rate     int
}

// adherent compara la fracción exacta; rate está redondeado y solo se usa
// para las tendencias.
func (d dayRate) adherent() bool {
	return d.taken*100 >= AdherentDayThreshold*d.required
}
