package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/predictors"
)

// DiagnosisAPI is the service surface the HTTP layer exposes.
type DiagnosisAPI interface {
	Diagnose(ctx context.Context, reading models.SensorReading) (models.DiagnosisResult, error)
	Ingest(ctx context.Context, reading models.SensorReading) (models.DiagnosisResult, error)
	History(ctx context.Context, vehicleID string, limit int) ([]models.SensorReading, error)
}

// Handlers maps HTTP requests onto the diagnosis service.
type Handlers struct {
	logger  *slog.Logger
	service DiagnosisAPI
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(logger *slog.Logger, service DiagnosisAPI) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{logger: logger, service: service}
}

// Mount attaches all routes to the router.
func (h *Handlers) Mount(router chi.Router) {
	router.Get("/healthz", h.handleHealth)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/diagnose", h.handleDiagnose)
		r.Post("/readings", h.handleIngest)
		r.Get("/vehicles/{vehicleID}/readings", h.handleHistory)
	})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	reading, ok := h.decodeReading(w, r)
	if !ok {
		return
	}
	result, err := h.service.Diagnose(r.Context(), reading)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	reading, ok := h.decodeReading(w, r)
	if !ok {
		return
	}
	result, err := h.service.Ingest(r.Context(), reading)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	readings, err := h.service.History(r.Context(), vehicleID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if readings == nil {
		readings = []models.SensorReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (h *Handlers) decodeReading(w http.ResponseWriter, r *http.Request) (models.SensorReading, bool) {
	var reading models.SensorReading
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&reading); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid reading payload: "+err.Error()))
		return models.SensorReading{}, false
	}
	return reading, true
}

// writeError maps domain errors onto status codes. A diagnosis failure is an
// explicit error response, never a guessed healthy result.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var invalidReading *features.InvalidReadingError
	var unavailable *predictors.ModelUnavailableError

	switch {
	case errors.As(err, &invalidReading):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		h.logger.Error("request failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
