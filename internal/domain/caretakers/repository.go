package caretakers

import "context"

type Repository interface {
	Create(ctx context.Context, l Link) error
	Update(ctx context.Context, l Link) error
	GetByID(ctx context.Context, id string) (Link, error)

	ListByPatient(ctx context.Context, patientID string) ([]Link, error)
	ListByCaretaker(ctx context.Context, caretakerID string) ([]Link, error)

	// GetActiveLink devuelve ErrNotFound si no hay link activo para el par.
	GetActiveLink(ctx context.Context, patientID, caretakerID string) (Link, error)
}
