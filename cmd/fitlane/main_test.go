package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fitlane/internal/config"
	"fitlane/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testConfig(driver, path string) *config.Config {
	return &config.Config{
		Location: "UTC",
		Storage:  config.StorageConfig{Driver: driver, Path: path},
		Remote:   config.RemoteConfig{Mode: config.RemoteMock, Timeout: time.Second},
		Profile:  config.ProfileConfig{Name: "Sam"},
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FITLANE_REMOTE_FETCH_LATENCY", "0s")
	t.Setenv("FITLANE_REMOTE_SYNC_LATENCY", "0s")
	t.Setenv("FITLANE_LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildServicesSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.DriverSQLite, filepath.Join(t.TempDir(), "fitlane.db"))
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	svc, err := buildServices(ctx, cfg, clock, zerolog.Nop())
	require.NoError(t, err)

	updated, err := svc.metrics.UpdateMetric(ctx, domain.FieldSteps, 12000)
	require.NoError(t, err)
	assert.Equal(t, 12000, updated.Steps)
	require.NoError(t, svc.Close())

	// A second process sees the cached snapshot.
	svc, err = buildServices(ctx, cfg, clock, zerolog.Nop())
	require.NoError(t, err)
	defer svc.Close() //nolint:errcheck

	m, err := svc.metrics.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12000, m.Steps)
	assert.False(t, svc.auth.Enabled())

	u, err := svc.profile.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sam", u.Name)
	assert.NotEmpty(t, u.ID)
}

func TestBuildServicesUnknownDriver(t *testing.T) {
	_, err := buildServices(context.Background(), testConfig("redis", ""), clockwork.NewFakeClock(), zerolog.Nop())
	assert.Error(t, err)
}

func TestTodayCommand(t *testing.T) {
	out, err := runCLI(t, "today", "--storage", "memory")
	require.NoError(t, err)

	var m domain.DailyMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, 8234, m.Steps)
}

func TestTodayCommandYAML(t *testing.T) {
	out, err := runCLI(t, "today", "--storage", "memory", "--output", "yaml")
	require.NoError(t, err)

	var m domain.DailyMetrics
	require.NoError(t, yaml.Unmarshal([]byte(out), &m))
	assert.Equal(t, 1450, m.CaloriesConsumed)
	assert.Equal(t, 7.5, m.SleepHours)
}

func TestUpdateCommandRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "update", "mood", "3", "--storage", "memory")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = runCLI(t, "update", "steps", "lots", "--storage", "memory")
	assert.Error(t, err)

	_, err = runCLI(t, "update", "steps", "-5", "--storage", "memory")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := runCLI(t, "today", "--storage", "memory", "--output", "xml")
	assert.Error(t, err)
}

func TestHashKeyCommand(t *testing.T) {
	out, err := runCLI(t, "hash-key", "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hash: $2a$"), out)

	out, err = runCLI(t, "hash-key")
	require.NoError(t, err)
	assert.Contains(t, out, "key: ")
	assert.Contains(t, out, "hash: ")
}

func TestNewRemoteSkipsIncompleteOAuth(t *testing.T) {
	var auth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(domain.DailyMetrics{StepsTarget: 10000})
	}))
	defer api.Close()

	src, err := newRemote(context.Background(), config.RemoteConfig{
		Mode:    config.RemoteHTTP,
		BaseURL: api.URL,
		Timeout: time.Second,
		OAuth:   config.OAuthConfig{ClientID: "fitlane"},
	}, clockwork.NewFakeClock())
	require.NoError(t, err)

	m, err := src.FetchToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10000, m.StepsTarget)
	assert.Empty(t, auth)
}
