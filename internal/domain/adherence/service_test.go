package adherence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMeds map[string][]medications.Medication

func (f fakeMeds) ListByOwner(ctx context.Context, ownerID string) ([]medications.Medication, error) {
	if ownerID == "broken" {
		return nil, errors.New("db down")
	}
	return f[ownerID], nil
}

type fakeActs struct {
	byOwner map[string][]doses.Activity

	mu    sync.Mutex
	calls int
	last  doses.ListFilter
}

func (f *fakeActs) ListByOwner(ctx context.Context, ownerID string, filter doses.ListFilter) ([]doses.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = filter
	return f.byOwner[ownerID], nil
}

func TestService_ForPatient_UsesServiceClock(t *testing.T) {
	meds := fakeMeds{"p1": {med("a", schedule.FrequencyOnceDaily, "2025-01-01")}}
	acts := &fakeActs{byOwner: map[string][]doses.Activity{
		"p1": dailyOnce("a", "2025-01-01", "2025-01-03"),
	}}

	svc := NewService(meds, acts)
	now := time.Date(2025, 1, 3, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sum, err := svc.ForPatient(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, doses.ListFilter{From: "2025-01-01", To: "2025-01-03"}, acts.last)
	assert.Equal(t, 3, sum.Metrics.DaysTracked)
	assert.Equal(t, 3, sum.CurrentStreak)
	assert.Equal(t, 100, sum.AdherenceRate)
	require.NotNil(t, sum.LastTaken)
	assert.Equal(t, "2025-01-03 08:00", *sum.LastTaken)
	assert.Equal(t, now, sum.ComputedAt)
	assert.Equal(t, "2025-01-03", svc.Today())
}

func TestService_ForPatient_NoMedicationsSkipsActivityLoad(t *testing.T) {
	acts := &fakeActs{}
	svc := NewService(fakeMeds{}, acts)

	sum, err := svc.ForPatient(context.Background(), "p-empty")
	require.NoError(t, err)
	assert.Equal(t, 0, acts.calls)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, sum.Metrics.WeeklyTrend)
}

func TestService_ForPatients_KeepsOrder(t *testing.T) {
	meds := fakeMeds{
		"p1": {med("a", schedule.FrequencyOnceDaily, "2025-01-01")},
		"p2": {med("b", schedule.FrequencyTwiceDaily, "2025-01-02")},
	}
	acts := &fakeActs{byOwner: map[string][]doses.Activity{
		"p1": took("a", "2025-01-03", 1),
	}}
	svc := NewService(meds, acts)
	svc.SetParallelism(2)
	svc.now = func() time.Time { return time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC) }

	out, err := svc.ForPatients(context.Background(), []string{"p2", "p1", "p3"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "p2", out[0].PatientID)
	assert.Equal(t, 2, out[0].Metrics.DaysTracked)
	assert.Equal(t, "p1", out[1].PatientID)
	assert.Equal(t, 1, out[1].CurrentStreak)
	assert.Equal(t, "p3", out[2].PatientID)
	assert.Equal(t, 0, out[2].TotalMedications)
}

func TestService_ForPatients_SkipsFailedPatient(t *testing.T) {
	meds := fakeMeds{
		"p1":      {med("a", schedule.FrequencyOnceDaily, "2025-01-01")},
		"corrupt": {med("b", schedule.FrequencyOnceDaily, "2025-01-01")},
	}
	acts := &fakeActs{byOwner: map[string][]doses.Activity{
		"p1":      took("a", "2025-01-02", 1),
		"corrupt": {{MedicationID: "b", Date: "02/01/2025", Taken: true}},
	}}
	svc := NewService(meds, acts)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC) }

	out, err := svc.ForPatients(context.Background(), []string{"broken", "p1", "corrupt"})
	require.Error(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].PatientID)

	assert.Equal(t, []string{"broken", "corrupt"}, FailedPatients(err))

	var pe *schedule.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.ErrorContains(t, err, "patient broken: db down")
}

func TestService_ForPatients_AllOK(t *testing.T) {
	svc := NewService(fakeMeds{}, &fakeActs{})

	out, err := svc.ForPatients(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Nil(t, FailedPatients(err))
}
