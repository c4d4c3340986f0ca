package doses

import "context"

type Repository interface {
	Create(ctx context.Context, a Activity) error
	// List devuelve las tomas del owner ordenadas por fecha y hora.
	List(ctx context.Context, ownerID string, f ListFilter) ([]Activity, error)
	DeleteByMedication(ctx context.Context, medicationID string) error
}
