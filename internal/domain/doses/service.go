package doses

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = schedule.ErrInvalidInput
	ErrNotFound     = medications.ErrNotFound
	ErrDayComplete  = errors.New("all doses for the day already recorded")
)

// MedicationSource es lo que doses necesita de medications.
type MedicationSource interface {
	GetForOwner(ctx context.Context, ownerID, id string) (medications.Medication, error)
	ListByOwner(ctx context.Context, ownerID string) ([]medications.Medication, error)
}

type Service struct {
	repo Repository
	meds MedicationSource
	now  func() time.Time

	// Serializa check + insert de MarkTaken dentro del proceso.
	// TODO: con varias réplicas sobre postgres, tomar pg_advisory_xact_lock por (medication_id, date) en el repo.
	mu sync.Mutex
}

func NewService(repo Repository, meds MedicationSource) *Service {
	return &Service{
		repo: repo,
		meds: meds,
		now:  time.Now,
	}
}

type MarkInput struct {
	Date          string // default: hoy
	TakenTime     string // default: hora actual
	ProofImageURL string
}

// MarkTaken registra una toma y devuelve la siguiente del día, si queda alguna.
func (s *Service) MarkTaken(ctx context.Context, ownerID, medicationID string, in MarkInput) (MarkResult, error) {
	m, err := s.meds.GetForOwner(ctx, ownerID, medicationID)
	if err != nil {
		return MarkResult{}, err
	}

	now := s.now()
	day, err := s.resolveDay(m, in.Date, now)
	if err != nil {
		return MarkResult{}, err
	}
	date := schedule.FormatDate(day)

	takenAt := schedule.Clock{Hour: now.Hour(), Minute: now.Minute()}
	if strings.TrimSpace(in.TakenTime) != "" {
		takenAt, err = schedule.ParseClock(in.TakenTime)
		if err != nil {
			return MarkResult{}, &schedule.InvalidInputError{Field: "taken_time", Value: in.TakenTime, Err: err}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	times, err := s.takenTimes(ctx, ownerID, m.ID, date)
	if err != nil {
		return MarkResult{}, err
	}
	if schedule.IsComplete(m.Frequency, len(times)) {
		metrics.DosesRecorded.WithLabelValues("rejected").Inc()
		return MarkResult{}, ErrDayComplete
	}

	a := Activity{
		ID:            uuid.NewString(),
		MedicationID:  m.ID,
		OwnerID:       m.OwnerID,
		Date:          date,
		Taken:         true,
		TakenTime:     takenAt.String(),
		ProofImageURL: strings.TrimSpace(in.ProofImageURL),
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return MarkResult{}, err
	}
	metrics.DosesRecorded.WithLabelValues("taken").Inc()

	times = append(times, a.TakenTime)
	next, ok, err := schedule.NextDoseTime(m.ScheduledTime, m.Frequency, times)
	if err != nil {
		return MarkResult{}, err
	}
	return MarkResult{
		Activity:     a,
		NextDoseTime: next,
		HasNextDose:  ok,
		Complete:     schedule.IsComplete(m.Frequency, len(times)),
	}, nil
}

// RecordMissed deja constancia explícita de una omisión. No cambia el cálculo
// de adherencia, que se basa en las tomas registradas.
func (s *Service) RecordMissed(ctx context.Context, ownerID, medicationID, date string) (Activity, error) {
	m, err := s.meds.GetForOwner(ctx, ownerID, medicationID)
	if err != nil {
		return Activity{}, err
	}

	now := s.now()
	day, err := s.resolveDay(m, date, now)
	if err != nil {
		return Activity{}, err
	}

	a := Activity{
		ID:           uuid.NewString(),
		MedicationID: m.ID,
		OwnerID:      m.OwnerID,
		Date:         schedule.FormatDate(day),
		Taken:        false,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Activity{}, err
	}
	metrics.DosesRecorded.WithLabelValues("missed").Inc()
	return a, nil
}

// DailyStatus devuelve el estado de cada medicamento activo del paciente en date.
func (s *Service) DailyStatus(ctx context.Context, ownerID, date string) ([]MedicationStatus, error) {
	day, err := s.parseDayOrToday(date)
	if err != nil {
		return nil, err
	}

	meds, err := s.meds.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	d := schedule.FormatDate(day)
	acts, err := s.repo.List(ctx, ownerID, ListFilter{From: d, To: d})
	if err != nil {
		return nil, err
	}
	return BuildDailyStatus(day, meds, acts)
}

// IsDayComplete es true si hay al menos un medicamento activo y todos están completos.
func (s *Service) IsDayComplete(ctx context.Context, ownerID, date string) (bool, error) {
	items, err := s.DailyStatus(ctx, ownerID, date)
	if err != nil {
		return false, err
	}
	return AllComplete(items), nil
}

// ListByOwner lista el log de tomas. Valida las fechas del filtro.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]Activity, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}

	var err error
	if f.From, err = normalizeDate("from", f.From); err != nil {
		return nil, err
	}
	if f.To, err = normalizeDate("to", f.To); err != nil {
		return nil, err
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return nil, &schedule.InvalidInputError{Field: "from", Value: f.From}
	}
	return s.repo.List(ctx, ownerID, f)
}

func (s *Service) takenTimes(ctx context.Context, ownerID, medicationID, date string) ([]string, error) {
	acts, err := s.repo.List(ctx, ownerID, ListFilter{MedicationID: medicationID, From: date, To: date})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(acts))
	for _, a := range acts {
		if a.Taken {
			out = append(out, a.TakenTime)
		}
	}
	return out, nil
}

// resolveDay: no se registran tomas antes de crear el medicamento ni a futuro.
func (s *Service) resolveDay(m medications.Medication, raw string, now time.Time) (time.Time, error) {
	day := schedule.DayOf(now)
	if strings.TrimSpace(raw) != "" {
		var err error
		day, err = schedule.ParseDate(raw)
		if err != nil {
			return time.Time{}, &schedule.InvalidInputError{Field: "date", Value: raw, Err: err}
		}
	}
	if !m.ActiveOn(day) || day.After(schedule.DayOf(now)) {
		return time.Time{}, &schedule.InvalidInputError{Field: "date", Value: schedule.FormatDate(day)}
	}
	return day, nil
}

func (s *Service) parseDayOrToday(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return schedule.DayOf(s.now()), nil
	}
	day, err := schedule.ParseDate(raw)
	if err != nil {
		return time.Time{}, &schedule.InvalidInputError{Field: "date", Value: raw, Err: err}
	}
	return day, nil
}

func normalizeDate(field, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	d, err := schedule.ParseDate(raw)
	if err != nil {
		return "", &schedule.InvalidInputError{Field: field, Value: raw, Err: err}
	}
	return schedule.FormatDate(d), nil
}

func (s *Service) today() string {
	return schedule.FormatDate(schedule.DayOf(s.now()))
}
