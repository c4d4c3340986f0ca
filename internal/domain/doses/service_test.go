package doses

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	items []Activity
}

func (r *testRepo) Create(ctx context.Context, a Activity) error {
	r.items = append(r.items, a)
	return nil
}

func (r *testRepo) List(ctx context.Context, ownerID string, f ListFilter) ([]Activity, error) {
	out := make([]Activity, 0)
	for _, a := range r.items {
		if a.OwnerID != ownerID {
			continue
		}
		if f.MedicationID != "" && a.MedicationID != f.MedicationID {
			continue
		}
		if (f.From != "" && a.Date < f.From) || (f.To != "" && a.Date > f.To) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TakenTime < out[j].TakenTime
	})
	return out, nil
}

func (r *testRepo) DeleteByMedication(ctx context.Context, medicationID string) error {
	kept := r.items[:0]
	for _, a := range r.items {
		if a.MedicationID != medicationID {
			kept = append(kept, a)
		}
	}
	r.items = kept
	return nil
}

type testMeds map[string]medications.Medication

func (m testMeds) GetForOwner(ctx context.Context, ownerID, id string) (medications.Medication, error) {
	med, ok := m[id]
	if !ok || med.OwnerID != ownerID {
		return medications.Medication{}, medications.ErrNotFound
	}
	return med, nil
}

func (m testMeds) ListByOwner(ctx context.Context, ownerID string) ([]medications.Medication, error) {
	out := make([]medications.Medication, 0)
	for _, med := range m {
		if med.OwnerID == ownerID {
			out = append(out, med)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var testNow = time.Date(2025, 1, 10, 14, 5, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo) {
	repo := &testRepo{}
	meds := testMeds{
		"m-twice": {
			ID: "m-twice", OwnerID: "p1", Name: "A",
			Frequency: schedule.FrequencyTwiceDaily, ScheduledTime: "08:00",
			CreatedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		"m-once": {
			ID: "m-once", OwnerID: "p1", Name: "B",
			Frequency: schedule.FrequencyOnceDaily, ScheduledTime: "21:00",
			CreatedAt: time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC),
		},
	}
	svc := NewService(repo, meds)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func TestService_MarkTaken_ReturnsNextDose(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	res, err := svc.MarkTaken(ctx, "p1", "m-twice", MarkInput{TakenTime: "08:10"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", res.Activity.Date)
	assert.Equal(t, "08:10", res.Activity.TakenTime)
	assert.True(t, res.HasNextDose)
	assert.Equal(t, "20:00", res.NextDoseTime)
	assert.False(t, res.Complete)

	res, err = svc.MarkTaken(ctx, "p1", "m-twice", MarkInput{})
	require.NoError(t, err)
	assert.Equal(t, "14:05", res.Activity.TakenTime, "defaults to now")
	assert.False(t, res.HasNextDose)
	assert.True(t, res.Complete)
}

func TestService_MarkTaken_RejectsOverRecording(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.MarkTaken(ctx, "p1", "m-once", MarkInput{})
	require.NoError(t, err)

	_, err = svc.MarkTaken(ctx, "p1", "m-once", MarkInput{})
	assert.ErrorIs(t, err, ErrDayComplete)
	assert.Len(t, repo.items, 1)

	// Otro día sí se puede.
	_, err = svc.MarkTaken(ctx, "p1", "m-twice", MarkInput{Date: "2025-01-09"})
	assert.NoError(t, err)
}

func TestService_MarkTaken_ValidatesDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := map[string]MarkInput{
		"before creation": {Date: "2025-01-08"},
		"future":          {Date: "2025-01-11"},
		"malformed":       {Date: "10/01/2025"},
		"bad time":        {TakenTime: "25:00"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.MarkTaken(ctx, "p1", "m-once", in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := svc.MarkTaken(ctx, "p2", "m-once", MarkInput{})
	assert.ErrorIs(t, err, ErrNotFound, "other patient's medication")
}

func TestService_RecordMissed_DoesNotCountAsTaken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.RecordMissed(ctx, "p1", "m-once", "")
	require.NoError(t, err)
	assert.False(t, a.Taken)
	assert.Empty(t, a.TakenTime)

	status, err := svc.DailyStatus(ctx, "p1", "2025-01-10")
	require.NoError(t, err)
	for _, st := range status {
		if st.MedicationID == "m-once" {
			assert.Empty(t, st.TakenTimes)
			assert.False(t, st.Complete)
		}
	}
}

func TestService_DailyStatus_OnlyActiveMedications(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	status, err := svc.DailyStatus(ctx, "p1", "2025-01-08")
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, "m-twice", status[0].MedicationID)
	assert.Equal(t, "08:00", status[0].NextDoseTime)
	assert.Equal(t, 2, status[0].RequiredDoses)

	status, err = svc.DailyStatus(ctx, "p1", "")
	require.NoError(t, err)
	assert.Len(t, status, 2)
}

func TestService_IsDayComplete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	done, err := svc.IsDayComplete(ctx, "p1", "2025-01-10")
	require.NoError(t, err)
	assert.False(t, done)

	for _, id := range []string{"m-twice", "m-twice", "m-once"} {
		_, err := svc.MarkTaken(ctx, "p1", id, MarkInput{})
		require.NoError(t, err)
	}

	done, err = svc.IsDayComplete(ctx, "p1", "2025-01-10")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.IsDayComplete(ctx, "nobody", "2025-01-10")
	require.NoError(t, err)
	assert.False(t, done, "no active medications is never complete")
}

func TestService_ListByOwner_ValidatesRange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ListByOwner(ctx, "p1", ListFilter{From: "2025-01-10", To: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListByOwner(ctx, "p1", ListFilter{From: "yesterday"})
	var pe *schedule.ParseError
	assert.True(t, errors.As(err, &pe))
}
