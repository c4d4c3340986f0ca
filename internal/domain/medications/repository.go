package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Medication, error)
	ListOwners(ctx context.Context) ([]string, error)
}

// ActivityPurger borra el historial de tomas de un medicamento (cascada).
// Lo implementa doses; se define acá para no importar ese paquete.
type ActivityPurger interface {
	DeleteByMedication(ctx context.Context, medicationID string) error
}
