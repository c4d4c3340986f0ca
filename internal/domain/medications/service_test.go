package medications

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	byID map[string]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListOwners(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	for _, m := range r.byID {
		seen[m.OwnerID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type purgerSpy struct {
	purged []string
	err    error
}

func (p *purgerSpy) DeleteByMedication(ctx context.Context, medicationID string) error {
	if p.err != nil {
		return p.err
	}
	p.purged = append(p.purged, medicationID)
	return nil
}

func TestService_Create_NormalizesInput(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m, err := svc.Create(context.Background(), "patient-1", CreateInput{
		Name:          "  Metformin ",
		Dosage:        "500mg",
		Frequency:     " twice_daily",
		ScheduledTime: "08:00:00",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Metformin", m.Name)
	assert.Equal(t, schedule.FrequencyTwiceDaily, m.Frequency)
	assert.Equal(t, "08:00", m.ScheduledTime)
	assert.Equal(t, now, m.CreatedAt)
}

func TestService_Create_RejectsInvalid(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing name", CreateInput{Frequency: "once_daily", ScheduledTime: "08:00"}, "name"},
		{"unknown frequency", CreateInput{Name: "x", Frequency: "hourly", ScheduledTime: "08:00"}, "frequency"},
		{"bad time", CreateInput{Name: "x", Frequency: "once_daily", ScheduledTime: "8am"}, "scheduled_time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "patient-1", tc.in)
			require.ErrorIs(t, err, ErrInvalidInput)

			var iie *schedule.InvalidInputError
			require.True(t, errors.As(err, &iie))
			assert.Equal(t, tc.field, iie.Field)
		})
	}
}

func TestService_Update_PartialAndOwnerScoped(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	m, err := svc.Create(ctx, "patient-1", CreateInput{Name: "A", Frequency: "once_daily", ScheduledTime: "07:00"})
	require.NoError(t, err)

	freq := "three_times_daily"
	updated, err := svc.Update(ctx, "patient-1", m.ID, UpdateInput{Frequency: &freq})
	require.NoError(t, err)
	assert.Equal(t, schedule.FrequencyThreeTimesDaily, updated.Frequency)
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "07:00", updated.ScheduledTime)

	_, err = svc.Update(ctx, "patient-2", m.ID, UpdateInput{Frequency: &freq})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_PurgesActivityFirst(t *testing.T) {
	repo := newTestRepo()
	spy := &purgerSpy{}
	svc := NewService(repo, spy)
	ctx := context.Background()

	m, err := svc.Create(ctx, "patient-1", CreateInput{Name: "A", Frequency: "once_daily", ScheduledTime: "07:00"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "patient-1", m.ID))
	assert.Equal(t, []string{m.ID}, spy.purged)
	_, err = svc.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_KeepsMedicationWhenPurgeFails(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, &purgerSpy{err: errors.New("boom")})
	ctx := context.Background()

	m, err := svc.Create(ctx, "patient-1", CreateInput{Name: "A", Frequency: "once_daily", ScheduledTime: "07:00"})
	require.NoError(t, err)

	require.Error(t, svc.Delete(ctx, "patient-1", m.ID))
	_, err = svc.GetByID(ctx, m.ID)
	assert.NoError(t, err)
}

func TestMedication_ActiveOn(t *testing.T) {
	m := Medication{CreatedAt: time.Date(2025, 3, 5, 23, 59, 0, 0, time.UTC)}

	assert.False(t, m.ActiveOn(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.ActiveOn(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.ActiveOn(time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)))
}
