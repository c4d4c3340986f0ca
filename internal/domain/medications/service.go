package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	// Compartido con schedule para que errors.Is funcione con los errores tipados del core.
	ErrInvalidInput = schedule.ErrInvalidInput
	ErrNotFound     = errors.New("medication not found")
)

type Service struct {
	repo   Repository
	purger ActivityPurger
	now    func() time.Time
}

// NewService crea el servicio. purger puede ser nil si el storage ya borra en
// cascada (postgres).
func NewService(repo Repository, purger ActivityPurger) *Service {
	return &Service{
		repo:   repo,
		purger: purger,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name          string
	Dosage        string
	Frequency     string
	ScheduledTime string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Medication, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, &schedule.InvalidInputError{Field: "name", Value: in.Name}
	}

	freq, err := schedule.ParseFrequency(in.Frequency)
	if err != nil {
		return Medication{}, err
	}
	at, err := normalizeTime(in.ScheduledTime)
	if err != nil {
		return Medication{}, err
	}

	now := s.now()
	m := Medication{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(in.Name),
		Dosage:        strings.TrimSpace(in.Dosage),
		Frequency:     freq,
		ScheduledTime: at,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// UpdateInput usa punteros: nil = no tocar.
type UpdateInput struct {
	Name          *string
	Dosage        *string
	Frequency     *string
	ScheduledTime *string
}

// Update edita el régimen. No se guarda historia: el nuevo horario/frecuencia
// aplica a todo el historial a partir de ahora.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (Medication, error) {
	m, err := s.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Medication{}, &schedule.InvalidInputError{Field: "name", Value: *in.Name}
		}
		m.Name = name
	}
	if in.Dosage != nil {
		m.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil {
		freq, err := schedule.ParseFrequency(*in.Frequency)
		if err != nil {
			return Medication{}, err
		}
		m.Frequency = freq
	}
	if in.ScheduledTime != nil {
		at, err := normalizeTime(*in.ScheduledTime)
		if err != nil {
			return Medication{}, err
		}
		m.ScheduledTime = at
	}

	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Delete borra el medicamento y todas sus tomas.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	m, err := s.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return err
	}

	// Primero las tomas: si falla, el medicamento sigue y se puede reintentar.
	if s.purger != nil {
		if err := s.purger.DeleteByMedication(ctx, m.ID); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, m.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetForOwner devuelve ErrNotFound también cuando el medicamento es de otro paciente.
func (s *Service) GetForOwner(ctx context.Context, ownerID, id string) (Medication, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if m.OwnerID != strings.TrimSpace(ownerID) {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Medication, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListOwners devuelve los pacientes con al menos un medicamento.
func (s *Service) ListOwners(ctx context.Context) ([]string, error) {
	return s.repo.ListOwners(ctx)
}

func normalizeTime(raw string) (string, error) {
	c, err := schedule.ParseClock(raw)
	if err != nil {
		return "", &schedule.InvalidInputError{Field: "scheduled_time", Value: raw, Err: err}
	}
	return c.String(), nil
}
