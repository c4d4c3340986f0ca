package adherence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/adapters/storage/memory"
	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/middleware"
	"github.com/1008surajshaw/meds-buddy/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkedCaretaker(t *testing.T, caretakerID string, patients ...string) *caretakers.Service {
	t.Helper()

	links := caretakers.NewService(memory.NewCaretakersRepo())
	for _, p := range patients {
		l, err := links.Invite(context.Background(), caretakers.InviteInput{
			PatientID:   p,
			CaretakerID: caretakerID,
			Scopes:      []caretakers.Scope{caretakers.ScopeAdherenceRead},
		})
		require.NoError(t, err)
		_, err = links.Accept(context.Background(), l.ID, caretakerID)
		require.NoError(t, err)
	}
	return links
}

func getDashboard(t *testing.T, svc *Service, links *caretakers.Service, userID string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	RegisterRoutes(r, svc, links)

	req := httptest.NewRequest(http.MethodGet, "/me/patients/adherence", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), auth.Claims{UserID: userID}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMyPatientsAdherence_PartialResult(t *testing.T) {
	meds := fakeMeds{"p1": {med("a", schedule.FrequencyOnceDaily, "2025-01-01")}}
	acts := &fakeActs{byOwner: map[string][]doses.Activity{"p1": took("a", "2025-01-02", 1)}}
	svc := NewService(meds, acts)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC) }

	rec := getDashboard(t, svc, linkedCaretaker(t, "c1", "p1", "broken"), "c1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "broken", rec.Header().Get(FailedPatientsHeader))

	var out []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].PatientID)
}

func TestMyPatientsAdherence_AllFailed(t *testing.T) {
	svc := NewService(fakeMeds{}, &fakeActs{})

	rec := getDashboard(t, svc, linkedCaretaker(t, "c1", "broken"), "c1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
