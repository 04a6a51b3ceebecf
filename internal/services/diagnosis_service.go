package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/torqcare/torqcare-diagnosis/internal/metrics"
	"github.com/torqcare/torqcare-diagnosis/internal/models"
	"github.com/torqcare/torqcare-diagnosis/internal/utils"
)

// Diagnoser is the diagnosis composer behaviour the service depends on.
type Diagnoser interface {
	Diagnose(reading models.SensorReading) (models.DiagnosisResult, error)
}

// HistoryStore defines the persistence operations for reading history and the
// diagnosis audit log.
type HistoryStore interface {
	SaveReading(ctx context.Context, reading models.SensorReading) error
	RecentReadings(ctx context.Context, vehicleID string, limit int) ([]models.SensorReading, error)
	LogDiagnosis(ctx context.Context, result models.DiagnosisResult) error
}

// DiagnosisService fronts the composer for the serving layer: it stamps
// identity onto results, records metrics and latency, and feeds the audit
// log. The composer itself stays pure.
type DiagnosisService struct {
	logger    *slog.Logger
	composer  Diagnoser
	history   HistoryStore
	latencies *utils.LatencyTracker
}

// NewDiagnosisService constructs the service facade. history may be nil when
// running without persistence.
func NewDiagnosisService(logger *slog.Logger, composer Diagnoser, history HistoryStore) *DiagnosisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiagnosisService{
		logger:    logger,
		composer:  composer,
		history:   history,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Diagnose runs one reading through the composer and returns the stamped
// result. Model or input errors surface to the caller; the service never
// substitutes a healthy verdict for a failed diagnosis.
func (s *DiagnosisService) Diagnose(ctx context.Context, reading models.SensorReading) (models.DiagnosisResult, error) {
	start := time.Now()
	result, err := s.composer.Diagnose(reading)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveDiagnosis(duration, metrics.OutcomeError)
		s.logger.Error("diagnosis failed",
			slog.String("vehicle_id", reading.VehicleID), slog.Any("error", err))
		return models.DiagnosisResult{}, err
	}

	result.DiagnosisID = uuid.NewString()
	result.CreatedAt = time.Now().UTC()

	s.latencies.Observe(duration)
	metrics.ObserveDiagnosis(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("diagnosis latency",
			slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	if s.history != nil {
		// Audit only; a logging failure must not fail the response.
		if logErr := s.history.LogDiagnosis(ctx, result); logErr != nil {
			s.logger.Warn("failed to log diagnosis", slog.Any("error", logErr))
		}
	}
	return result, nil
}

// Ingest stores a reading in the history window, then diagnoses it. Unlike
// the audit log, persistence is the point of this call: a failed save is an
// error, not a warning, so the caller never believes an unsaved reading was
// kept.
func (s *DiagnosisService) Ingest(ctx context.Context, reading models.SensorReading) (models.DiagnosisResult, error) {
	if s.history != nil {
		if err := s.history.SaveReading(ctx, reading); err != nil {
			s.logger.Error("failed to store reading",
				slog.String("vehicle_id", reading.VehicleID), slog.Any("error", err))
			return models.DiagnosisResult{}, utils.NewAppError("services.Ingest", "store reading", err)
		}
	}
	return s.Diagnose(ctx, reading)
}

// History returns the recent readings for a vehicle, newest first.
func (s *DiagnosisService) History(ctx context.Context, vehicleID string, limit int) ([]models.SensorReading, error) {
	if s.history == nil {
		return nil, utils.NewAppError("services.History", "history store not configured", nil)
	}
	return s.history.RecentReadings(ctx, vehicleID, limit)
}

// LatencyP95 returns the current p95 diagnosis latency.
func (s *DiagnosisService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}
