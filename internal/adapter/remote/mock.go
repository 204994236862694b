// Package remote implements the upstream metrics source: a latency-simulating
// mock and an HTTP client for the real API.
package remote

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitlane/internal/domain"

	"github.com/jonboulle/clockwork"
)

// Simulated round-trip times of the mock upstream.
const (
	DefaultFetchLatency = 500 * time.Millisecond
	DefaultSyncLatency  = 800 * time.Millisecond
)

var errOffline = errors.New("upstream unreachable")

// DefaultSnapshot is the canonical snapshot served by the mock upstream.
func DefaultSnapshot() domain.DailyMetrics {
	hr := 72
	return domain.DailyMetrics{
		CaloriesConsumed:       1450,
		CaloriesConsumedTarget: domain.DefaultCaloriesTarget,
		Steps:                  8234,
		StepsTarget:            domain.DefaultStepsTarget,
		WaterGlasses:           5,
		WaterTarget:            domain.DefaultWaterTarget,
		SleepHours:             7.5,
		SleepTarget:            domain.DefaultSleepTarget,
		HeartRate:              &hr,
	}
}

// Mock stands in for the upstream API. It holds one canonical snapshot,
// waits a configurable latency on its clock and can be switched offline.
type Mock struct {
	clock        clockwork.Clock
	fetchLatency time.Duration
	syncLatency  time.Duration

	mu      sync.Mutex
	current domain.DailyMetrics
	offline bool
	fetches int
	syncs   int
}

var _ domain.MetricsRemoteSource = (*Mock)(nil)

// NewMock creates a Mock serving DefaultSnapshot.
func NewMock(clock clockwork.Clock, fetchLatency, syncLatency time.Duration) *Mock {
	return &Mock{
		clock:        clock,
		fetchLatency: fetchLatency,
		syncLatency:  syncLatency,
		current:      DefaultSnapshot(),
	}
}

// SetOffline makes every following call fail with a network error.
func (m *Mock) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// Calls returns how many fetches and syncs were attempted.
func (m *Mock) Calls() (fetches, syncs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches, m.syncs
}

// FetchToday returns the canonical snapshot after the fetch latency.
func (m *Mock) FetchToday(ctx context.Context) (domain.DailyMetrics, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()

	if err := m.wait(ctx, m.fetchLatency); err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to fetch metrics from server", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to fetch metrics from server", errOffline)
	}
	return m.current, nil
}

// Sync accepts s as the new canonical snapshot and echoes it back.
func (m *Mock) Sync(ctx context.Context, s domain.DailyMetrics) (domain.DailyMetrics, error) {
	m.mu.Lock()
	m.syncs++
	m.mu.Unlock()

	if err := m.wait(ctx, m.syncLatency); err != nil {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to sync metrics with server", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return domain.DailyMetrics{}, domain.NewNetworkError("Failed to sync metrics with server", errOffline)
	}
	m.current = s
	return s, nil
}

func (m *Mock) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-m.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
