package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
)

type linkRepo struct {
	mu   sync.RWMutex
	byID map[string]caretakers.Link
}

func NewCaretakersRepo() caretakers.Repository {
	return &linkRepo{
		byID: make(map[string]caretakers.Link),
	}
}

func (r *linkRepo) Create(ctx context.Context, l caretakers.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == "" {
		return errors.New("link id required")
	}
	if _, exists := r.byID[l.ID]; exists {
		return errors.New("link already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *linkRepo) Update(ctx context.Context, l caretakers.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[l.ID]; !exists {
		return caretakers.ErrNotFound
	}
	r.byID[l.ID] = l
	return nil
}

func (r *linkRepo) GetByID(ctx context.Context, id string) (caretakers.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return caretakers.Link{}, caretakers.ErrNotFound
	}
	return l, nil
}

func (r *linkRepo) ListByPatient(ctx context.Context, patientID string) ([]caretakers.Link, error) {
	return r.filter(func(l caretakers.Link) bool { return l.PatientID == patientID }), nil
}

func (r *linkRepo) ListByCaretaker(ctx context.Context, caretakerID string) ([]caretakers.Link, error) {
	return r.filter(func(l caretakers.Link) bool { return l.CaretakerID == caretakerID }), nil
}

// Si por data sucia hubiera varios activos, gana el más reciente por UpdatedAt.
func (r *linkRepo) GetActiveLink(ctx context.Context, patientID, caretakerID string) (caretakers.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		winner caretakers.Link
		has    bool
	)
	for _, l := range r.byID {
		if l.PatientID != patientID || l.CaretakerID != caretakerID || l.Status != caretakers.StatusActive {
			continue
		}
		if !has || l.UpdatedAt.After(winner.UpdatedAt) ||
			(l.UpdatedAt.Equal(winner.UpdatedAt) && l.CreatedAt.After(winner.CreatedAt)) {
			winner = l
			has = true
		}
	}
	if !has {
		return caretakers.Link{}, caretakers.ErrNotFound
	}
	return winner, nil
}

func (r *linkRepo) filter(keep func(caretakers.Link) bool) []caretakers.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]caretakers.Link, 0)
	for _, l := range r.byID {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
