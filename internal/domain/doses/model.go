package doses

import "time"

// Activity es una fila del log de tomas. Taken=false solo aparece cuando se
// registra explícitamente una omisión; la adherencia no depende de ellas.
type Activity struct {
	ID           string
	MedicationID string
	OwnerID      string

	Date      string // YYYY-MM-DD
	Taken     bool
	TakenTime string // HH:MM, vacío si Taken=false

	ProofImageURL string

	CreatedAt time.Time
}

// ListFilter: rangos de fecha inclusivos; vacío = sin límite.
type ListFilter struct {
	MedicationID string
	From         string
	To           string
}

// MedicationStatus es el estado de un medicamento en un día.
type MedicationStatus struct {
	MedicationID  string
	Name          string
	Dosage        string
	Frequency     string
	ScheduledTime string

	RequiredDoses int
	TakenTimes    []string
	NextDoseTime  string
	HasNextDose   bool
	Complete      bool
}

type MarkResult struct {
	Activity     Activity
	NextDoseTime string
	HasNextDose  bool
	Complete     bool
}
