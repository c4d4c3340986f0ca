package doses

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
	"github.com/1008surajshaw/meds-buddy/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, links *caretakers.Service) {
	r.Post("/patients/{patientID}/medications/{medicationID}/doses", markTakenHandler(svc, links))
	r.Post("/patients/{patientID}/medications/{medicationID}/missed", recordMissedHandler(svc, links))

	r.Get("/patients/{patientID}/doses", dailyStatusHandler(svc, links))
	r.Get("/patients/{patientID}/activity", listActivityHandler(svc, links))
}

type markTakenRequest struct {
	Date          string `json:"date,omitempty"`       // YYYY-MM-DD, default hoy
	TakenTime     string `json:"taken_time,omitempty"` // HH:MM, default ahora
	ProofImageURL string `json:"proof_image_url,omitempty"`
}

type recordMissedRequest struct {
	Date string `json:"date,omitempty"`
}

// activityResponse es una fila del log de tomas.
type activityResponse struct {
	ID            string    `json:"id"`
	MedicationID  string    `json:"medication_id"`
	PatientID     string    `json:"patient_id"`
	Date          string    `json:"date"`
	Taken         bool      `json:"taken"`
	TakenTime     string    `json:"taken_time,omitempty"`
	ProofImageURL string    `json:"proof_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type markTakenResponse struct {
	Activity     activityResponse `json:"activity"`
	NextDoseTime *string          `json:"next_dose_time"`
	IsComplete   bool             `json:"is_complete_for_day"`
}

type medicationStatusResponse struct {
	MedicationID  string   `json:"medication_id"`
	Name          string   `json:"name"`
	Dosage        string   `json:"dosage"`
	Frequency     string   `json:"frequency"`
	ScheduledTime string   `json:"scheduled_time"`
	RequiredDoses int      `json:"required_doses"`
	TakenTimes    []string `json:"taken_times"`
	NextDoseTime  *string  `json:"next_dose_time"`
	IsComplete    bool     `json:"is_complete_for_day"`
}

type dailyStatusResponse struct {
	Date        string                     `json:"date"`
	AllComplete bool                       `json:"all_complete"`
	Medications []medicationStatusResponse `json:"medications"`
}

// markTakenHandler godoc
// @Summary Marcar toma
// @Description Registra una toma para el día. Responde 409 si el día ya tiene todas las tomas de la frecuencia. El cuidador necesita scope `doses:record`.
// @Tags doses
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Param payload body markTakenRequest false "Fecha/hora opcionales"
// @Success 201 {object} markTakenResponse
// @Failure 400 {string} string "fecha u hora inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Failure 409 {string} string "all doses for the day already recorded"
// @Router /patients/{patientID}/medications/{medicationID}/doses [post]
func markTakenHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeDosesRecord); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req markTakenRequest
		if err := decodeOptional(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.MarkTaken(r.Context(), patientID, chi.URLParam(r, "medicationID"), MarkInput(req))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, markTakenResponse{
			Activity:     toActivityResponse(res.Activity),
			NextDoseTime: optional(res.NextDoseTime, res.HasNextDose),
			IsComplete:   res.Complete,
		})
	}
}

// recordMissedHandler godoc
// @Summary Registrar omisión
// @Description Deja constancia de una toma omitida. No modifica el cálculo de adherencia.
// @Tags doses
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param medicationID path string true "ID del medicamento"
// @Param payload body recordMissedRequest false "Fecha opcional"
// @Success 201 {object} activityResponse
// @Failure 400 {string} string "fecha inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "medication not found"
// @Router /patients/{patientID}/medications/{medicationID}/missed [post]
func recordMissedHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeDosesRecord); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req recordMissedRequest
		if err := decodeOptional(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.RecordMissed(r.Context(), patientID, chi.URLParam(r, "medicationID"), req.Date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toActivityResponse(a))
	}
}

// dailyStatusHandler godoc
// @Summary Estado diario de tomas
// @Tags doses
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param date query string false "YYYY-MM-DD, default hoy"
// @Success 200 {object} dailyStatusResponse
// @Failure 400 {string} string "fecha inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/doses [get]
func dailyStatusHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeDosesRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			date = svc.today()
		}

		items, err := svc.DailyStatus(r.Context(), patientID, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := dailyStatusResponse{
			Date:        date,
			AllComplete: AllComplete(items),
			Medications: make([]medicationStatusResponse, 0, len(items)),
		}
		for _, it := range items {
			out.Medications = append(out.Medications, medicationStatusResponse{
				MedicationID:  it.MedicationID,
				Name:          it.Name,
				Dosage:        it.Dosage,
				Frequency:     it.Frequency,
				ScheduledTime: it.ScheduledTime,
				RequiredDoses: it.RequiredDoses,
				TakenTimes:    it.TakenTimes,
				NextDoseTime:  optional(it.NextDoseTime, it.HasNextDose),
				IsComplete:    it.Complete,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listActivityHandler godoc
// @Summary Historial de tomas
// @Tags doses
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param from query string false "YYYY-MM-DD inclusive"
// @Param to query string false "YYYY-MM-DD inclusive"
// @Param medication_id query string false "Filtrar por medicamento"
// @Success 200 {array} activityResponse
// @Failure 400 {string} string "rango inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/activity [get]
func listActivityHandler(svc *Service, links *caretakers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := links.Authorize(r.Context(), patientID, claims.UserID, caretakers.ScopeDosesRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		q := r.URL.Query()
		items, err := svc.ListByOwner(r.Context(), patientID, ListFilter{
			MedicationID: strings.TrimSpace(q.Get("medication_id")),
			From:         q.Get("from"),
			To:           q.Get("to"),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]activityResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toActivityResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	case errors.Is(err, ErrDayComplete):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeOptional acepta body vacío.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func optional(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}

func toActivityResponse(a Activity) activityResponse {
	return activityResponse{
		ID:            a.ID,
		MedicationID:  a.MedicationID,
		PatientID:     a.OwnerID,
		Date:          a.Date,
		Taken:         a.Taken,
		TakenTime:     a.TakenTime,
		ProofImageURL: a.ProofImageURL,
		CreatedAt:     a.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
