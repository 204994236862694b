package app

import (
	"context"

	"fitlane/internal/domain"

	"github.com/rs/zerolog"
)

// Synchronizer implements the offline-first read-through/write-back protocol
// over a local store and a remote source. It holds no state of its own and
// does not serialize concurrent callers: racing updates are last-write-wins.
type Synchronizer struct {
	local  domain.MetricsLocalStore
	remote domain.MetricsRemoteSource
	log    zerolog.Logger
}

var _ domain.MetricsRepository = (*Synchronizer)(nil)

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(local domain.MetricsLocalStore, remote domain.MetricsRemoteSource, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		local:  local,
		remote: remote,
		log:    log.With().Str("component", "synchronizer").Logger(),
	}
}

// GetToday returns today's snapshot from the local store, falling back to
// the remote source on a miss or a local read failure.
func (s *Synchronizer) GetToday(ctx context.Context) (domain.DailyMetrics, error) {
	entry, err := s.local.Read(ctx)
	if err != nil {
		// Read failures are treated as a miss.
		s.log.Warn().Err(err).Str("error_code", string(domain.CodeOf(err))).Msg("Local cache read failed, fetching from remote")
	} else if entry != nil {
		s.log.Debug().Str("date", entry.Date).Msg("Cache hit")
		return entry.Metrics, nil
	}

	return s.fetchAndCache(ctx)
}

// Refresh fetches from the remote source regardless of the local store.
func (s *Synchronizer) Refresh(ctx context.Context) (domain.DailyMetrics, error) {
	return s.fetchAndCache(ctx)
}

// UpdateField replaces one field of today's snapshot and persists the
// result. A failed write fails the call.
func (s *Synchronizer) UpdateField(ctx context.Context, field domain.Field, value float64) (domain.DailyMetrics, error) {
	current, err := s.GetToday(ctx)
	if err != nil {
		return domain.DailyMetrics{}, err
	}

	updated, err := current.With(field, value)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	if !updated.IsValid() {
		return domain.DailyMetrics{}, domain.NewValidationError("Updated metrics are invalid", nil)
	}

	if err := s.SaveSnapshot(ctx, updated); err != nil {
		return domain.DailyMetrics{}, err
	}
	s.log.Debug().Str("field", string(field)).Float64("value", value).Msg("Metric updated")
	return updated, nil
}

// SaveSnapshot writes m to the local store.
func (s *Synchronizer) SaveSnapshot(ctx context.Context, m domain.DailyMetrics) error {
	if err := s.local.Write(ctx, m); err != nil {
		return asStorageError(err)
	}
	return nil
}

// Push sends today's snapshot upstream and caches the reconciled result.
func (s *Synchronizer) Push(ctx context.Context) (domain.DailyMetrics, error) {
	current, err := s.GetToday(ctx)
	if err != nil {
		return domain.DailyMetrics{}, err
	}

	synced, err := s.remote.Sync(ctx, current)
	if err != nil {
		return domain.DailyMetrics{}, asNetworkError(err, "Failed to sync metrics with server")
	}

	s.writeBack(ctx, synced, "Failed to cache synced metrics")
	return synced, nil
}

// ClearCache drops the locally cached snapshot.
func (s *Synchronizer) ClearCache(ctx context.Context) error {
	if err := s.local.Clear(ctx); err != nil {
		return asStorageError(err)
	}
	return nil
}

func (s *Synchronizer) fetchAndCache(ctx context.Context) (domain.DailyMetrics, error) {
	fresh, err := s.remote.FetchToday(ctx)
	if err != nil {
		return domain.DailyMetrics{}, asNetworkError(err, "Failed to fetch metrics from server")
	}

	s.writeBack(ctx, fresh, "Failed to cache metrics")
	return fresh, nil
}

// writeBack caches m. Failures are logged, never returned.
func (s *Synchronizer) writeBack(ctx context.Context, m domain.DailyMetrics, msg string) {
	if err := s.local.Write(ctx, m); err != nil {
		s.log.Warn().Err(err).Str("error_code", string(domain.CodeOf(err))).Msg(msg)
	}
}

func asNetworkError(err error, msg string) error {
	if domain.IsCode(err, domain.CodeNetwork) {
		return err
	}
	return domain.NewNetworkError(msg, err)
}

func asStorageError(err error) error {
	if domain.IsCode(err, domain.CodeStorage) {
		return err
	}
	return domain.NewStorageError("Failed to save metrics to storage", err)
}
