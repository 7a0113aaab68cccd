package forecast

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gosu20/temp-insight-reservoir/internal/model"
	"go.uber.org/zap"
)

// ErrNoSnapshot is returned by forecast reads before the first commit.
var ErrNoSnapshot = errors.New("no forecast has been generated yet")

// Snapshot is an immutable copy of the inputs a forecast was requested
// against. Forecast reads only ever evaluate the committed snapshot;
// live edits stay invisible until the next commit.
type Snapshot struct {
	ID          string                   `json:"id"`
	Conditions  model.ObservedConditions `json:"conditions"`
	Adjustment  model.ScenarioAdjustment `json:"adjustment"`
	CommittedAt time.Time                `json:"committed_at"`
}

// Service holds the live inputs, the committed snapshot and the
// memoized prediction results.
type Service struct {
	predictor *model.Predictor
	cache     *resultCache
	logger    *zap.Logger

	resultDelay time.Duration
	now         func() time.Time

	mu             sync.RWMutex
	liveConditions model.ObservedConditions
	liveAdjustment model.ScenarioAdjustment
	snapshot       *Snapshot

	commitCount     int
	predictionCount int
	cacheHits       int
}

// Options configures a Service.
type Options struct {
	// ResultDelay pauses Commit before the snapshot becomes current,
	// mirroring the source dashboard's simulated latency. Zero disables
	// the pause.
	ResultDelay   time.Duration
	CacheDuration time.Duration
	CacheMaxSize  int
}

// NewService creates a forecast service seeded with typical summer
// operating conditions so reads work before the first edit.
func NewService(predictor *model.Predictor, opts Options, logger *zap.Logger) *Service {
	if opts.CacheDuration <= 0 {
		opts.CacheDuration = 10 * time.Minute
	}
	if opts.CacheMaxSize <= 0 {
		opts.CacheMaxSize = 1000
	}

	return &Service{
		predictor:   predictor,
		cache:       newResultCache(opts.CacheDuration, opts.CacheMaxSize, logger),
		logger:      logger,
		resultDelay: opts.ResultDelay,
		now:         time.Now,
		liveConditions: model.ObservedConditions{
			OutflowTemp:    18.5,
			InflowTemp:     16.2,
			Discharge:      142.5,
			Storage:        285.3,
			AirTemp:        22.8,
			SolarRadiation: 425,
			WindSpeed:      3.2,
			Humidity:       65,
		},
	}
}

// Live returns the current editable inputs.
func (s *Service) Live() (model.ObservedConditions, model.ScenarioAdjustment) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveConditions, s.liveAdjustment
}

// SetConditions replaces the live observed conditions. The committed
// snapshot, and therefore any displayed forecast, is unaffected.
func (s *Service) SetConditions(c model.ObservedConditions) {
	s.mu.Lock()
	s.liveConditions = c
	s.mu.Unlock()

	s.logger.Debug("Live conditions updated",
		zap.Float64("outflow_temp", c.OutflowTemp),
		zap.Float64("air_temp", c.AirTemp))
}

// SetAdjustment replaces the live scenario adjustment.
func (s *Service) SetAdjustment(a model.ScenarioAdjustment) {
	s.mu.Lock()
	s.liveAdjustment = a
	s.mu.Unlock()

	s.logger.Debug("Live adjustment updated",
		zap.Float64("discharge_pct", a.DischargePercentChange),
		zap.Float64("air_temp_delta", a.AirTempDelta),
		zap.Float64("storage_pct", a.StoragePercentChange))
}

// Commit freezes the live inputs into a new snapshot and makes it the
// one forecast reads evaluate. If a result delay is configured the
// pause runs first and respects context cancellation.
func (s *Service) Commit(ctx context.Context) (*Snapshot, error) {
	if s.resultDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.resultDelay):
		}
	}

	s.mu.Lock()
	snap := &Snapshot{
		ID:          newID(),
		Conditions:  s.liveConditions,
		Adjustment:  s.liveAdjustment,
		CommittedAt: s.now(),
	}
	s.snapshot = snap
	s.commitCount++
	s.mu.Unlock()

	s.logger.Info("Forecast snapshot committed",
		zap.String("snapshot_id", snap.ID),
		zap.Time("committed_at", snap.CommittedAt))

	return snap, nil
}

// Current returns the committed snapshot, if any.
func (s *Service) Current() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, false
	}
	return s.snapshot, true
}

// Forecast evaluates the predictor for one horizon against the
// committed snapshot. Results are memoized per snapshot, horizon and
// evaluation day; the day matters because the seasonal harmonic reads
// the calendar.
func (s *Service) Forecast(h model.Horizon) (model.PredictionResult, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap == nil {
		return model.PredictionResult{}, ErrNoSnapshot
	}

	at := s.now()
	key := fmt.Sprintf("%s:%d:%s", snap.ID, h, at.Format("2006-01-02"))

	if cached, ok := s.cache.Get(key); ok {
		s.mu.Lock()
		s.cacheHits++
		s.mu.Unlock()
		s.logger.Debug("Cache hit for prediction", zap.String("key", key))
		return cached, nil
	}

	result := s.predictor.Predict(snap.Conditions, snap.Adjustment, h, at)
	s.cache.Set(key, result)

	s.mu.Lock()
	s.predictionCount++
	s.mu.Unlock()

	s.logger.Info("Prediction computed",
		zap.String("snapshot_id", snap.ID),
		zap.Int("horizon_days", int(h)),
		zap.Float64("predicted_temp", result.PredictedTemp),
		zap.Float64("change", result.ChangeFromBaseline))

	return result, nil
}

// Importance ranks the prediction drivers for the committed snapshot.
func (s *Service) Importance() ([]model.FeatureImportanceEntry, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap == nil {
		return nil, ErrNoSnapshot
	}

	return model.Importance(snap.Conditions, snap.Adjustment), nil
}

// SweepCache runs one cache cleanup pass; used by housekeeping.
func (s *Service) SweepCache() {
	s.cache.Sweep()
}

// Stop shuts down the background cache cleanup.
func (s *Service) Stop() {
	s.cache.Stop()
}

// Stats reports service counters for the metrics endpoint.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"commit_count":     s.commitCount,
		"prediction_count": s.predictionCount,
		"cache_hits":       s.cacheHits,
		"has_snapshot":     s.snapshot != nil,
		"cache_stats":      s.cache.Stats(),
	}
	if s.snapshot != nil {
		stats["snapshot_id"] = s.snapshot.ID
		stats["snapshot_committed_at"] = s.snapshot.CommittedAt
	}
	return stats
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
