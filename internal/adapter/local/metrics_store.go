// Package local implements the on-device stores on top of a key-value backend.
package local

import (
	"context"
	"encoding/json"
	"time"

	"fitlane/internal/domain"

	"github.com/jonboulle/clockwork"
)

// MetricsStore keeps today's snapshot under a single fixed key. Entries
// dated on an earlier day are reported as absent.
type MetricsStore struct {
	kv    domain.KeyValueStore
	clock clockwork.Clock
	loc   *time.Location
}

var _ domain.MetricsLocalStore = (*MetricsStore)(nil)

// NewMetricsStore creates a MetricsStore. A nil loc means time.Local.
func NewMetricsStore(kv domain.KeyValueStore, clock clockwork.Clock, loc *time.Location) *MetricsStore {
	if loc == nil {
		loc = time.Local
	}
	return &MetricsStore{kv: kv, clock: clock, loc: loc}
}

func (s *MetricsStore) today() string {
	return domain.DayStamp(s.clock.Now(), s.loc)
}

// Read returns the cached entry when it was written today.
func (s *MetricsStore) Read(ctx context.Context) (*domain.CachedEntry, error) {
	raw, ok, err := s.kv.GetItem(ctx, domain.MetricsStorageKey)
	if err != nil {
		return nil, domain.NewStorageError("Failed to retrieve metrics from storage", err)
	}
	if !ok {
		return nil, nil
	}

	var entry domain.CachedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, domain.NewStorageError("Failed to retrieve metrics from storage", err)
	}
	if !entry.IsFreshOn(s.today()) {
		return nil, nil
	}
	return &entry, nil
}

// Write stores m tagged with today's date. The value is encoded before the
// backend is touched so an encoding failure leaves the old entry intact.
func (s *MetricsStore) Write(ctx context.Context, m domain.DailyMetrics) error {
	data, err := json.Marshal(domain.CachedEntry{Date: s.today(), Metrics: m})
	if err != nil {
		return domain.NewStorageError("Failed to save metrics to storage", err)
	}
	if err := s.kv.SetItem(ctx, domain.MetricsStorageKey, string(data)); err != nil {
		return domain.NewStorageError("Failed to save metrics to storage", err)
	}
	return nil
}

// Clear removes the cached entry.
func (s *MetricsStore) Clear(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, domain.MetricsStorageKey); err != nil {
		return domain.NewStorageError("Failed to clear metrics from storage", err)
	}
	return nil
}
