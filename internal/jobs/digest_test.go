package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/adherence"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOwners struct {
	ids []string
	err error
}

func (s stubOwners) ListOwners(ctx context.Context) ([]string, error) { return s.ids, s.err }

// stubCalc devuelve el resumen de cada ID; los IDs sin entrada fallan como
// lo haría adherence.Service.ForPatients.
type stubCalc map[string]adherence.Summary

func (s stubCalc) ForPatients(ctx context.Context, ids []string) ([]adherence.Summary, error) {
	out := make([]adherence.Summary, 0, len(ids))
	var errs []error
	for _, id := range ids {
		sum, ok := s[id]
		if !ok {
			errs = append(errs, &adherence.PatientError{PatientID: id, Err: errors.New("corrupt history")})
			continue
		}
		out = append(out, sum)
	}
	return out, errors.Join(errs...)
}

func summary(id string, yesterdayRate int) adherence.Summary {
	return summaryAt(id, yesterdayRate, yesterdayRate >= adherence.AdherentDayThreshold)
}

func summaryAt(id string, yesterdayRate int, adherent bool) adherence.Summary {
	now := time.Now()
	return adherence.Summary{
		PatientID: id,
		Metrics: adherence.Metrics{MonthlyTrend: []adherence.TrendPoint{
			{Date: schedule.FormatDate(schedule.DayOf(now).AddDate(0, 0, -1)), Rate: yesterdayRate, Adherent: adherent},
			{Date: schedule.FormatDate(schedule.DayOf(now)), Rate: 0},
		}},
	}
}

func TestDigest_Run_FlagsPatientsBelowThreshold(t *testing.T) {
	calc := stubCalc{
		"ok":     summary("ok", 100),
		"edge":   summary("edge", adherence.AdherentDayThreshold),
		"low":    summary("low", 50),
		"new":    {PatientID: "new"},
		"absent": summary("absent", 0),
	}
	d := NewDigest(stubOwners{ids: []string{"ok", "edge", "low", "new", "absent"}}, calc, logger.Nop(), "10 0 * * *")

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Patients)
	assert.Equal(t, []string{"low", "absent"}, rep.AtRisk)
	assert.Empty(t, rep.Failed)
}

func TestDigest_Run_RoundedRateDoesNotHideMissedDay(t *testing.T) {
	// 35 de 44 tomas se muestra como 80 pero no llega al umbral.
	calc := stubCalc{"close": summaryAt("close", 80, false)}
	d := NewDigest(stubOwners{ids: []string{"close"}}, calc, logger.Nop(), "10 0 * * *")

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"close"}, rep.AtRisk)
}

func TestDigest_Run_SkipsFailedPatients(t *testing.T) {
	calc := stubCalc{
		"ok":  summary("ok", 100),
		"low": summary("low", 20),
	}
	d := NewDigest(stubOwners{ids: []string{"ok", "corrupt", "low"}}, calc, logger.Nop(), "10 0 * * *")

	rep, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Patients)
	assert.Equal(t, []string{"low"}, rep.AtRisk)
	assert.Equal(t, []string{"corrupt"}, rep.Failed)
}

func TestDigest_Run_FailsWhenEveryPatientFails(t *testing.T) {
	d := NewDigest(stubOwners{ids: []string{"a", "b"}}, stubCalc{}, logger.Nop(), "10 0 * * *")

	_, err := d.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, adherence.FailedPatients(err))
}

func TestDigest_Run_PropagatesListError(t *testing.T) {
	d := NewDigest(stubOwners{err: errors.New("db down")}, stubCalc{}, logger.Nop(), "10 0 * * *")
	_, err := d.Run(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestDigest_StartRejectsBadSchedule(t *testing.T) {
	d := NewDigest(stubOwners{}, stubCalc{}, logger.Nop(), "not a schedule")
	assert.Error(t, d.Start())

	ok := NewDigest(stubOwners{}, stubCalc{}, logger.Nop(), "@daily")
	require.NoError(t, ok.Start())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ok.Stop(ctx)
}
