package caretakers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Link
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Link{}}
}

func (r *testRepo) Create(ctx context.Context, l Link) error {
	if _, ok := r.byID[l.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) Update(ctx context.Context, l Link) error {
	if _, ok := r.byID[l.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Link, error) {
	l, ok := r.byID[id]
	if !ok {
		return Link{}, errRepoNotFound
	}
	return l, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string) ([]Link, error) {
	out := make([]Link, 0)
	for _, l := range r.byID {
		if l.PatientID == patientID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *testRepo) ListByCaretaker(ctx context.Context, caretakerID string) ([]Link, error) {
	out := make([]Link, 0)
	for _, l := range r.byID {
		if l.CaretakerID == caretakerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *testRepo) GetActiveLink(ctx context.Context, patientID, caretakerID string) (Link, error) {
	for _, l := range r.byID {
		if l.PatientID == patientID && l.CaretakerID == caretakerID && l.Status == StatusActive {
			return l, nil
		}
	}
	return Link{}, errRepoNotFound
}

func fixedClock(svc *Service, t time.Time) {
	svc.now = func() time.Time { return t }
}

func TestService_Invite_DefaultScopes_WhenEmpty(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	fixedClock(svc, now)

	l, err := svc.Invite(context.Background(), InviteInput{PatientID: "patient-1", CaretakerID: "care-1"})
	require.NoError(t, err)

	assert.Equal(t, StatusInvited, l.Status)
	assert.Equal(t, now, l.CreatedAt)
	assert.ElementsMatch(t, DefaultScopes, l.Scopes)
	assert.False(t, HasScope(l, ScopeDosesRecord))
}

func TestService_Invite_RejectsSelfAndUnknownScopes(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	_, err := svc.Invite(ctx, InviteInput{PatientID: "p", CaretakerID: "p"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Invite(ctx, InviteInput{
		PatientID:   "p",
		CaretakerID: "c",
		Scopes:      []Scope{ScopeDosesRead, Scope("bad:scope")},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Invite_Dedup_UpdatesSameLink(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()
	now1 := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	fixedClock(svc, now1)
	l1, err := svc.Invite(ctx, InviteInput{PatientID: "p", CaretakerID: "c", Scopes: []Scope{ScopeDosesRead}})
	require.NoError(t, err)

	fixedClock(svc, now1.Add(5*time.Minute))
	l2, err := svc.Invite(ctx, InviteInput{PatientID: "p", CaretakerID: "c", Scopes: []Scope{ScopeDosesRead, ScopeDosesRecord}})
	require.NoError(t, err)

	assert.Equal(t, l1.ID, l2.ID)
	assert.True(t, l2.UpdatedAt.After(l1.UpdatedAt))
	assert.True(t, HasScope(l2, ScopeDosesRecord))
}

func TestService_Accept_SetsActive_AndIdempotent(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	l, err := svc.Invite(ctx, InviteInput{PatientID: "p", CaretakerID: "c"})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, l.ID, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := svc.Accept(ctx, l.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, accepted.Status)

	again, err := svc.Accept(ctx, l.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, again.Status)
}

func TestService_Accept_LeavesOnlyOneActive(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	ctx := context.Background()
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	fixedClock(svc, now)

	for i, id := range []string{"l1", "l2"} {
		require.NoError(t, repo.Create(ctx, Link{
			ID:          id,
			PatientID:   "p",
			CaretakerID: "c",
			Scopes:      []Scope{ScopeDosesRead},
			Status:      StatusInvited,
			CreatedAt:   now.Add(time.Duration(i-10) * time.Minute),
			UpdatedAt:   now.Add(time.Duration(i-10) * time.Minute),
		}))
	}

	_, err := svc.Accept(ctx, "l2", "c")
	require.NoError(t, err)

	active := 0
	for _, l := range repo.byID {
		if l.Status == StatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, StatusRevoked, repo.byID["l1"].Status)
}

func TestService_Revoke_ByPatientOrCaretaker(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	l, err := svc.Invite(ctx, InviteInput{PatientID: "p", CaretakerID: "c"})
	require.NoError(t, err)

	_, err = svc.Revoke(ctx, l.ID, "stranger")
	assert.ErrorIs(t, err, ErrForbidden)

	revoked, err := svc.Revoke(ctx, l.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, StatusRevoked, revoked.Status)
	require.NotNil(t, revoked.RevokedAt)

	// idempotente también para el paciente
	again, err := svc.Revoke(ctx, l.ID, "p")
	require.NoError(t, err)
	assert.Equal(t, StatusRevoked, again.Status)

	_, err = svc.Accept(ctx, l.ID, "c")
	assert.ErrorIs(t, err, ErrBadState)
}

func TestService_Authorize(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, "p", "p", ScopeDosesRecord), "patient always allowed")
	assert.ErrorIs(t, svc.Authorize(ctx, "p", "c", ScopeDosesRead), ErrForbidden)

	l, err := svc.Invite(ctx, InviteInput{PatientID: "p", CaretakerID: "c"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Authorize(ctx, "p", "c", ScopeDosesRead), ErrForbidden, "invited is not active")

	_, err = svc.Accept(ctx, l.ID, "c")
	require.NoError(t, err)
	assert.NoError(t, svc.Authorize(ctx, "p", "c", ScopeDosesRead))
	assert.ErrorIs(t, svc.Authorize(ctx, "p", "c", ScopeDosesRecord), ErrForbidden)

	patients, err := svc.PatientsOf(ctx, "c", ScopeAdherenceRead)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, patients)
}
