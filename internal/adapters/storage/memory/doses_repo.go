package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
)

type doseRepo struct {
	mu    sync.RWMutex
	items []doses.Activity
}

func NewDosesRepo() doses.Repository {
	return &doseRepo{}
}

func (r *doseRepo) Create(ctx context.Context, a doses.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("activity id required")
	}
	r.items = append(r.items, a)
	return nil
}

// List: fechas YYYY-MM-DD, la comparación de strings respeta el orden.
func (r *doseRepo) List(ctx context.Context, ownerID string, f doses.ListFilter) ([]doses.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doses.Activity, 0)
	for _, a := range r.items {
		if a.OwnerID != ownerID {
			continue
		}
		if f.MedicationID != "" && a.MedicationID != f.MedicationID {
			continue
		}
		if f.From != "" && a.Date < f.From {
			continue
		}
		if f.To != "" && a.Date > f.To {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TakenTime < out[j].TakenTime
	})
	return out, nil
}

func (r *doseRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]doses.Activity, 0, len(r.items))
	for _, a := range r.items {
		if a.MedicationID != medicationID {
			kept = append(kept, a)
		}
	}
	r.items = kept
	return nil
}
