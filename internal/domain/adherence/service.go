package adherence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/platform/metrics"

	"golang.org/x/sync/errgroup"
)

const defaultParallelism = 8

type MedicationSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]medications.Medication, error)
}

type ActivitySource interface {
	ListByOwner(ctx context.Context, ownerID string, f doses.ListFilter) ([]doses.Activity, error)
}

// Service carga el snapshot de cada paciente y delega en ComputeMetrics.
// No guarda estado entre llamadas.
type Service struct {
	meds MedicationSource
	acts ActivitySource
	now  func() time.Time

	parallelism int
}

func NewService(meds MedicationSource, acts ActivitySource) *Service {
	return &Service{
		meds:        meds,
		acts:        acts,
		now:         time.Now,
		parallelism: defaultParallelism,
	}
}

// SetParallelism limita cuántos pacientes se calculan a la vez en ForPatients.
func (s *Service) SetParallelism(n int) {
	if n > 0 {
		s.parallelism = n
	}
}

func (s *Service) ForPatient(ctx context.Context, patientID string) (sum Summary, err error) {
	started := time.Now()
	defer func() {
		metrics.AdherenceDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			metrics.AdherenceComputations.WithLabelValues("error").Inc()
			return
		}
		metrics.AdherenceComputations.WithLabelValues("ok").Inc()
		metrics.OverallRate.Observe(float64(sum.AdherenceRate))
	}()

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Summary{}, schedule.ErrInvalidInput
	}

	now := s.now()
	today := schedule.FormatDate(schedule.DayOf(now))

	meds, err := s.meds.ListByOwner(ctx, patientID)
	if err != nil {
		return Summary{}, err
	}

	var acts []doses.Activity
	if len(meds) > 0 {
		acts, err = s.acts.ListByOwner(ctx, patientID, doses.ListFilter{
			From: schedule.FormatDate(earliestDay(meds)),
			To:   today,
		})
		if err != nil {
			return Summary{}, err
		}
	}

	m, err := ComputeMetrics(meds, acts, today)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(patientID, m, acts, now), nil
}

// PatientError identifica al paciente cuyo cálculo falló en ForPatients.
type PatientError struct {
	PatientID string
	Err       error
}

func (e *PatientError) Error() string {
	return fmt.Sprintf("patient %s: %v", e.PatientID, e.Err)
}

func (e *PatientError) Unwrap() error { return e.Err }

// ForPatients calcula en paralelo y respeta el orden de ids. Un paciente que
// falla no frena al resto: queda fuera del resultado y su *PatientError va
// en el error devuelto (errors.Join). Con error != nil el slice puede traer
// los pacientes que sí se calcularon.
func (s *Service) ForPatients(ctx context.Context, ids []string) ([]Summary, error) {
	sums := make([]Summary, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			sum, err := s.ForPatient(ctx, id)
			if err != nil {
				errs[i] = &PatientError{PatientID: id, Err: err}
				return nil
			}
			sums[i] = sum
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Summary, 0, len(ids))
	for i := range ids {
		if errs[i] == nil {
			out = append(out, sums[i])
		}
	}
	return out, errors.Join(errs...)
}

// FailedPatients extrae los IDs de los *PatientError contenidos en err.
func FailedPatients(err error) []string {
	if err == nil {
		return nil
	}
	var multi interface{ Unwrap() []error }
	if !errors.As(err, &multi) {
		var pe *PatientError
		if errors.As(err, &pe) {
			return []string{pe.PatientID}
		}
		return nil
	}

	var out []string
	for _, e := range multi.Unwrap() {
		var pe *PatientError
		if errors.As(e, &pe) {
			out = append(out, pe.PatientID)
		}
	}
	return out
}

// Today es la fecha de referencia que usa el servicio.
func (s *Service) Today() string {
	return schedule.FormatDate(schedule.DayOf(s.now()))
}

func earliestDay(meds []medications.Medication) time.Time {
	start := schedule.DayOf(meds[0].CreatedAt)
	for _, m := range meds[1:] {
		if d := schedule.DayOf(m.CreatedAt); d.Before(start) {
			start = d
		}
	}
	return start
}
