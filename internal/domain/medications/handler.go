package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
	"github.com/1008surajshaw/meds-buddy/internal/domain/schedule"
	"github.com/1008surajshaw/meds-buddy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, links *caretakers.Service) {
	r.Route("/patients/{patientID}/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc, links))
		mr.Get("/", listMedicationsHandler(svc, links))

		mr.Get("/{medicationID}", getMedicationHandler(svc, links))
		mr.Patch("/{medicationID}", updateMedicationHandler(svc, links))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc, links))
	})
}

// createMedicationRequest es el cuerpo para registrar un medicamento.
type createMedicationRequest struct {
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	Frequency     string `json:"frequency" enums:"once_daily,twice_daily,three_times_daily,four_times_daily,every_other_day,weekly,as_needed"`
	ScheduledTime string `json:"scheduled_time"` // HH:MM
}

type updateMedicationRequest struct {
	Name          *string `json:"name,omitempty"`
	Dosage        *string `json:"dosage,omitempty"`
	Frequency     *string `json:"frequency,omitempty"`
	ScheduledTime *string `json:"scheduled_time,omitempty"`
}

// medicationResponse representa un medicamento del paciente.
type medicationResponse struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	Name           string    `json:"name"`
	Dosage         string    `json:"dosage"`
	Frequency      string    `json:"frequency"`
	FrequencyLabel string    `json:"frequency_label"`
	DosesPerDay    int       `json:"doses_per_day"`
	ScheduledTime  string    `json:"scheduled_time"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Description El paciente siempre puede crear. Un cuidador necesita link activo con scope `medications:write`. La frecuencia debe ser una de las conocidas.
// @Tags medications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param payload body createMedicationRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / frecuencia u horario inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/medications [post]
func createMedicationHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeMedicationsWrite); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), patientID, CreateInput(req))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos del paciente
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/medications [get]
func listMedicationsHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeMedicationsRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByOwner(r.Context(), patientID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicamento
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /patients/{patientID}/medications/{medicationID} [get]
func getMedicationHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeMedicationsRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		m, err := svc.GetForOwner(r.Context(), patientID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Editar medicamento
// @Description PATCH parcial: solo se modifican los campos presentes.
// @Tags medications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Param payload body updateMedicationRequest true "Campos a modificar"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json / frecuencia u horario inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /patients/{patientID}/medications/{medicationID} [patch]
func updateMedicationHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeMedicationsWrite); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Update(r.Context(), patientID, chi.URLParam(r, "medicationID"), UpdateInput(req))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// deleteMedicationHandler godoc
// @Summary Borrar medicamento
// @Description Borra también todo el historial de tomas del medicamento.
// @Tags medications
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /patients/{patientID}/medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeMedicationsWrite); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := svc.Delete(r.Context(), patientID, chi.URLParam(r, "medicationID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:             m.ID,
		PatientID:      m.OwnerID,
		Name:           m.Name,
		Dosage:         m.Dosage,
		Frequency:      string(m.Frequency),
		FrequencyLabel: schedule.Label(m.Frequency),
		DosesPerDay:    schedule.RequiredDosesPerDay(m.Frequency),
		ScheduledTime:  m.ScheduledTime,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
