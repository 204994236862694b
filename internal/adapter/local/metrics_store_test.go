package local_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"fitlane/internal/adapter/local"
	"fitlane/internal/adapter/memory"
	"fitlane/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockKV struct {
	getFn    func(ctx context.Context, key string) (string, bool, error)
	setFn    func(ctx context.Context, key, value string) error
	removeFn func(ctx context.Context, key string) error
}

func (m *mockKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return "", false, nil
}

func (m *mockKV) SetItem(ctx context.Context, key, value string) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKV) RemoveItem(ctx context.Context, key string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, key)
	}
	return nil
}

var monday = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func snapshot(steps int) domain.DailyMetrics {
	return domain.DailyMetrics{
		CaloriesConsumed: 1450, CaloriesConsumedTarget: 2000,
		Steps: steps, StepsTarget: 10000,
		WaterGlasses: 5, WaterTarget: 8,
		SleepHours: 7.5, SleepTarget: 8,
	}
}

func TestReadNeverWritten(t *testing.T) {
	store := local.NewMetricsStore(memory.New(), clockwork.NewFakeClockAt(monday), time.UTC)

	entry, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestWriteThenReadSameDay(t *testing.T) {
	kv := memory.New()
	store := local.NewMetricsStore(kv, clockwork.NewFakeClockAt(monday), time.UTC)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, snapshot(3000)))

	entry, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Mon Jan 01 2024", entry.Date)
	assert.Equal(t, snapshot(3000), entry.Metrics)
}

func TestPersistedLayout(t *testing.T) {
	kv := memory.New()
	store := local.NewMetricsStore(kv, clockwork.NewFakeClockAt(monday), time.UTC)
	ctx := context.Background()

	hr := 72
	m := snapshot(8234)
	m.HeartRate = &hr
	require.NoError(t, store.Write(ctx, m))

	raw, ok, err := kv.GetItem(ctx, "@fitlane:daily_metrics")
	require.NoError(t, err)
	require.True(t, ok)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &top))
	assert.Len(t, top, 2)
	assert.JSONEq(t, `"Mon Jan 01 2024"`, string(top["date"]))

	var metrics map[string]any
	require.NoError(t, json.Unmarshal(top["metrics"], &metrics))
	assert.EqualValues(t, 8234, metrics["steps"])
	assert.EqualValues(t, 72, metrics["heartRate"])
}

func TestReadStaleEntry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(monday)
	store := local.NewMetricsStore(memory.New(), clock, time.UTC)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, snapshot(3000)))
	clock.Advance(24 * time.Hour)

	entry, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry, "yesterday's entry must read as absent")
}

func TestReadBackendFailure(t *testing.T) {
	kv := &mockKV{getFn: func(context.Context, string) (string, bool, error) {
		return "", false, errors.New("io error")
	}}
	store := local.NewMetricsStore(kv, clockwork.NewFakeClockAt(monday), time.UTC)

	_, err := store.Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))
}

func TestReadCorruptEntry(t *testing.T) {
	kv := &mockKV{getFn: func(context.Context, string) (string, bool, error) {
		return "{not json", true, nil
	}}
	store := local.NewMetricsStore(kv, clockwork.NewFakeClockAt(monday), time.UTC)

	_, err := store.Read(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeStorage))
}

func TestWriteBackendFailure(t *testing.T) {
	kv := &mockKV{setFn: func(context.Context, string, string) error {
		return errors.New("quota exceeded")
	}}
	store := local.NewMetricsStore(kv, clockwork.NewFakeClockAt(monday), time.UTC)

	err := store.Write(context.Background(), snapshot(1))
	assert.True(t, domain.IsCode(err, domain.CodeStorage))
}

func TestFailedEncodeKeepsPreviousEntry(t *testing.T) {
	store := local.NewMetricsStore(memory.New(), clockwork.NewFakeClockAt(monday), time.UTC)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, snapshot(3000)))

	bad := snapshot(4000)
	bad.SleepHours = math.NaN()
	err := store.Write(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))

	entry, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 3000, entry.Metrics.Steps)
}

func TestClear(t *testing.T) {
	store := local.NewMetricsStore(memory.New(), clockwork.NewFakeClockAt(monday), time.UTC)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, snapshot(3000)))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	entry, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestClearFailure(t *testing.T) {
	kv := &mockKV{removeFn: func(context.Context, string) error { return errors.New("locked") }}
	store := local.NewMetricsStore(kv, clockwork.NewFakeClockAt(monday), time.UTC)

	err := store.Clear(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeStorage))
}
