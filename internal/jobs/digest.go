// Package jobs agrupa los procesos periódicos del servicio.
package jobs

import (
	"context"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/adherence"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/platform/logger"
	"github.com/1008surajshaw/meds-buddy/internal/platform/metrics"

	"github.com/robfig/cron/v3"
)

type OwnerLister interface {
	ListOwners(ctx context.Context) ([]string, error)
}

type AdherenceCalculator interface {
	ForPatients(ctx context.Context, ids []string) ([]adherence.Summary, error)
}

// Report resume una corrida del digest.
type Report struct {
	Patients int
	AtRisk   []string
	// Failed: pacientes cuyo cálculo falló y quedaron fuera de la corrida.
	Failed []string
}

// Digest recalcula la adherencia de todos los pacientes y marca a los que
// quedaron por debajo del umbral el último día cerrado. No envía notificaciones.
type Digest struct {
	owners OwnerLister
	calc   AdherenceCalculator
	log    logger.Logger

	spec    string
	timeout time.Duration
	cron    *cron.Cron
}

func NewDigest(owners OwnerLister, calc AdherenceCalculator, log logger.Logger, spec string) *Digest {
	return &Digest{
		owners:  owners,
		calc:    calc,
		log:     log.With(map[string]any{"job": "digest"}),
		spec:    spec,
		timeout: 5 * time.Minute,
		cron:    cron.New(),
	}
}

func (d *Digest) Start() error {
	if _, err := d.cron.AddFunc(d.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_, _ = d.Run(ctx)
	}); err != nil {
		return err
	}
	d.cron.Start()
	d.log.Info("digest scheduled", map[string]any{"schedule": d.spec})
	return nil
}

// Stop espera a que termine una corrida en curso o a que venza ctx.
func (d *Digest) Stop(ctx context.Context) {
	select {
	case <-d.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (d *Digest) Run(ctx context.Context) (Report, error) {
	started := time.Now()

	ids, err := d.owners.ListOwners(ctx)
	if err != nil {
		metrics.DigestRuns.WithLabelValues("error").Inc()
		d.log.Error("digest: list patients failed", map[string]any{"err": err})
		return Report{}, err
	}

	sums, err := d.calc.ForPatients(ctx, ids)
	if err != nil && len(sums) == 0 {
		metrics.DigestRuns.WithLabelValues("error").Inc()
		d.log.Error("digest: adherence failed", map[string]any{"err": err})
		return Report{}, err
	}

	rep := Report{Patients: len(sums)}
	if err != nil {
		rep.Failed = adherence.FailedPatients(err)
		d.log.Warn("digest: some patients skipped", map[string]any{
			"failed": rep.Failed,
			"err":    err,
		})
	}

	for _, s := range sums {
		p, ok := lastClosedDay(s, started)
		if !ok || p.Adherent {
			continue
		}
		rep.AtRisk = append(rep.AtRisk, s.PatientID)
		d.log.Warn("patient below adherence threshold", map[string]any{
			"patient_id":     s.PatientID,
			"yesterday_rate": p.Rate,
			"current_streak": s.CurrentStreak,
			"overall_rate":   s.AdherenceRate,
		})
	}

	result := "ok"
	if len(rep.Failed) > 0 {
		result = "partial"
	}
	metrics.DigestRuns.WithLabelValues(result).Inc()
	metrics.PatientsAtRisk.Set(float64(len(rep.AtRisk)))
	d.log.Info("digest done", map[string]any{
		"patients": rep.Patients,
		"at_risk":  len(rep.AtRisk),
		"failed":   len(rep.Failed),
		"ms":       time.Since(started).Milliseconds(),
	})
	return rep, nil
}

// lastClosedDay busca el punto de ayer en la serie mensual.
func lastClosedDay(s adherence.Summary, now time.Time) (adherence.TrendPoint, bool) {
	yesterday := schedule.FormatDate(schedule.DayOf(now).AddDate(0, 0, -1))
	for i := len(s.Metrics.MonthlyTrend) - 1; i >= 0; i-- {
		if p := s.Metrics.MonthlyTrend[i]; p.Date == yesterday {
			return p, true
		}
	}
	return adherence.TrendPoint{}, false
}
