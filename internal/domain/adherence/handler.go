package adherence

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// FailedPatientsHeader lista los pacientes omitidos del panel por error.
const FailedPatientsHeader = "X-Adherence-Failed"

func RegisterRoutes(r chi.Router, svc *Service, links *caretakers.Service) {
	r.Get("/patients/{patientID}/adherence", patientAdherenceHandler(svc, links))
	r.Get("/me/patients/adherence", myPatientsAdherenceHandler(svc, links))
}

// patientAdherenceHandler godoc
// @Summary Métricas de adherencia del paciente
// @Description Historial completo hasta hoy. Un día es adherente si registra al menos el 80% de las tomas requeridas. El cuidador necesita scope `adherence:read`.
// @Tags adherence
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} Metrics
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/adherence [get]
func patientAdherenceHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeAdherenceRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		sum, err := svc.ForPatient(r.Context(), patientID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum.Metrics)
	}
}

// myPatientsAdherenceHandler godoc
// @Summary Panel del cuidador
// @Description Resumen de adherencia de cada paciente con link activo y scope `adherence:read`.
// @Tags adherence
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} Summary
// @Header 200 {string} X-Adherence-Failed "IDs omitidos por error, separados por coma"
// @Failure 401 {string} string "unauthorized"
// @Router /me/patients/adherence [get]
func myPatientsAdherenceHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patients, err := links.PatientsOf(r.Context(), claims.UserID, caretakers.ScopeAdherenceRead)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out, err := svc.ForPatients(r.Context(), patients)
		if err != nil {
			if len(out) == 0 {
				writeServiceError(w, err)
				return
			}
			// Resultado parcial: los pacientes que fallaron van en el header.
			w.Header().Set(FailedPatientsHeader, strings.Join(FailedPatients(err), ","))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var pe *schedule.ParseError
	switch {
	case errors.Is(err, schedule.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &pe):
		// Datos guardados corruptos, no es culpa del cliente.
		http.Error(w, "corrupt activity history", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
