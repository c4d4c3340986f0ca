package caretakers

import "time"

type Scope string

const (
	ScopeMedicationsRead  Scope = "medications:read"
	ScopeMedicationsWrite Scope = "medications:write"
	ScopeDosesRead        Scope = "doses:read"
	ScopeDosesRecord      Scope = "doses:record"
	ScopeAdherenceRead    Scope = "adherence:read"
)

// DefaultScopes aplica cuando la invitación no trae scopes: solo lectura.
var DefaultScopes = []Scope{ScopeMedicationsRead, ScopeDosesRead, ScopeAdherenceRead}

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Link vincula un paciente con un cuidador.
type Link struct {
	ID string

	PatientID   string // quien comparte
	CaretakerID string

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
