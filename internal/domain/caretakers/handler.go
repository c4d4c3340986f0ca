package caretakers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Acciones del paciente sobre sus cuidadores
	r.Route("/patients/{patientID}/caretakers", func(cr chi.Router) {
		cr.Post("/", inviteCaretakerHandler(svc))
		cr.Get("/", listPatientLinksHandler(svc))
	})

	r.Route("/links/{linkID}", func(lr chi.Router) {
		lr.Post("/accept", acceptLinkHandler(svc))
		lr.Post("/revoke", revokeLinkHandler(svc))
	})

	// Cuidador: ver sus invitaciones / links
	r.Get("/me/links", listMyLinksHandler(svc))
}

type inviteCaretakerRequest struct {
	CaretakerID string  `json:"caretaker_id"`
	Scopes      []Scope `json:"scopes"`
}

// linkResponse representa un vínculo paciente/cuidador.
type linkResponse struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patient_id"`
	CaretakerID string     `json:"caretaker_id"`
	Scopes      []Scope    `json:"scopes"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// inviteCaretakerHandler godoc
// @Summary Invitar cuidador
// @Description Solo el paciente puede invitar. Sin scopes se aplican los de solo lectura. Re-invitar actualiza los scopes del link vigente.
// @Tags caretakers
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param payload body inviteCaretakerRequest true "Cuidador y scopes"
// @Success 201 {object} linkResponse
// @Failure 400 {string} string "invalid json / caretaker_id required / scope inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/caretakers [post]
func inviteCaretakerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if patientID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req inviteCaretakerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.CaretakerID) == "" {
			http.Error(w, "caretaker_id required", http.StatusBadRequest)
			return
		}

		l, err := svc.Invite(r.Context(), InviteInput{
			PatientID:   patientID,
			CaretakerID: req.CaretakerID,
			Scopes:      req.Scopes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toLinkResponse(l))
	}
}

// listPatientLinksHandler godoc
// @Summary Listar cuidadores del paciente
// @Tags caretakers
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} linkResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/caretakers [get]
func listPatientLinksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if patientID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toLinkResponses(items))
	}
}

// listMyLinksHandler godoc
// @Summary Listar mis links como cuidador
// @Tags caretakers
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "CSV de estados: invited,active,revoked"
// @Success 200 {array} linkResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/links [get]
func listMyLinksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		allowed := parseStatusFilter(r.URL.Query().Get("status"))

		items, err := svc.ListByCaretaker(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(allowed) > 0 {
			filtered := make([]Link, 0, len(items))
			for _, l := range items {
				if _, ok := allowed[l.Status]; ok {
					filtered = append(filtered, l)
				}
			}
			items = filtered
		}

		writeJSON(w, http.StatusOK, toLinkResponses(items))
	}
}

// acceptLinkHandler godoc
// @Summary Aceptar invitación
// @Tags caretakers
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param linkID path string true "ID del link"
// @Success 200 {object} linkResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "invalid state"
// @Router /links/{linkID}/accept [post]
func acceptLinkHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		l, err := svc.Accept(r.Context(), chi.URLParam(r, "linkID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toLinkResponse(l))
	}
}

// revokeLinkHandler godoc
// @Summary Revocar link
// @Description Lo puede revocar el paciente o el cuidador. Idempotente.
// @Tags caretakers
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param linkID path string true "ID del link"
// @Success 200 {object} linkResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /links/{linkID}/revoke [post]
func revokeLinkHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		l, err := svc.Revoke(r.Context(), chi.URLParam(r, "linkID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toLinkResponse(l))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	case ErrBadState:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toLinkResponse(l Link) linkResponse {
	return linkResponse{
		ID:          l.ID,
		PatientID:   l.PatientID,
		CaretakerID: l.CaretakerID,
		Scopes:      l.Scopes,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		RevokedAt:   l.RevokedAt,
	}
}

func toLinkResponses(items []Link) []linkResponse {
	out := make([]linkResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toLinkResponse(l))
	}
	return out
}

func parseStatusFilter(raw string) map[Status]struct{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := map[Status]struct{}{}
	for _, p := range strings.Split(raw, ",") {
		s := Status(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
