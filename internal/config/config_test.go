package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitlane/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
location: UTC
log:
  level: debug
  format: json
storage:
  driver: postgres
  dsn: postgres://fitlane@localhost/fitlane
remote:
  mode: http
  base_url: https://metrics.example.com
  timeout: 3s
  oauth:
    client_id: fitlane
    client_secret: shh
    token_url: https://id.example.com/token
    scopes: [metrics.read, metrics.write]
auth:
  api_key_hashes: ["$2a$10$abc"]
profile:
  name: Sam
`)

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://fitlane@localhost/fitlane", cfg.Storage.DSN)
	assert.Equal(t, config.RemoteHTTP, cfg.Remote.Mode)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Remote.OAuth.Enabled())
	assert.Equal(t, []string{"metrics.read", "metrics.write"}, cfg.Remote.OAuth.Scopes)
	assert.Equal(t, []string{"$2a$10$abc"}, cfg.Auth.APIKeyHashes)
	assert.False(t, cfg.Auth.OIDC.Enabled())
	assert.Equal(t, "Sam", cfg.Profile.Name)

	loc, err := cfg.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, ":8081", cfg.UpstreamAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, config.RemoteMock, cfg.Remote.Mode)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Remote.FetchLatency)
	assert.Equal(t, 800*time.Millisecond, cfg.Remote.SyncLatency)
	assert.Equal(t, "User", cfg.Profile.Name)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FITLANE_STORAGE_DRIVER", "memory")
	t.Setenv("FITLANE_REMOTE_FETCH_LATENCY", "0s")
	t.Setenv("FITLANE_PROFILE_NAME", "Robin")

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, time.Duration(0), cfg.Remote.FetchLatency)
	assert.Equal(t, "Robin", cfg.Profile.Name)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated")
	_, err := config.Load(viper.New(), path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Location: "Local",
			Storage:  config.StorageConfig{Driver: config.DriverMemory},
			Remote:   config.RemoteConfig{Mode: config.RemoteMock, Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"valid", func(c *config.Config) {}, false},
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "redis" }, true},
		{"sqlite without path", func(c *config.Config) { c.Storage.Driver = config.DriverSQLite }, true},
		{"postgres without dsn", func(c *config.Config) { c.Storage.Driver = config.DriverPostgres }, true},
		{"unknown remote", func(c *config.Config) { c.Remote.Mode = "grpc" }, true},
		{"http without url", func(c *config.Config) { c.Remote.Mode = config.RemoteHTTP }, true},
		{"negative latency", func(c *config.Config) { c.Remote.FetchLatency = -time.Second }, true},
		{"zero timeout", func(c *config.Config) { c.Remote.Timeout = 0 }, true},
		{"oidc without client", func(c *config.Config) { c.Auth.OIDC.Issuer = "https://id.example.com" }, true},
		{"bad location", func(c *config.Config) { c.Location = "Mars/Olympus" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
