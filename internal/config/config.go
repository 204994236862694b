// Package config loads runtime configuration from defaults, an optional YAML
// file and FITLANE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FITLANE_STORAGE_DRIVER.
const EnvPrefix = "FITLANE"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Remote modes.
const (
	RemoteMock = "mock"
	RemoteHTTP = "http"
)

type Config struct {
	Addr         string `mapstructure:"addr"`
	UpstreamAddr string `mapstructure:"upstream_addr"`
	Location     string `mapstructure:"location"`

	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Profile ProfileConfig `mapstructure:"profile"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type RemoteConfig struct {
	Mode         string        `mapstructure:"mode"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FetchLatency time.Duration `mapstructure:"fetch_latency"`
	SyncLatency  time.Duration `mapstructure:"sync_latency"`
	OAuth        OAuthConfig   `mapstructure:"oauth"`
}

type OAuthConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Enabled reports whether client-credentials auth is configured.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != "" && o.TokenURL != ""
}

type AuthConfig struct {
	APIKeyHashes []string   `mapstructure:"api_key_hashes"`
	OIDC         OIDCConfig `mapstructure:"oidc"`
}

type OIDCConfig struct {
	Issuer   string `mapstructure:"issuer"`
	ClientID string `mapstructure:"client_id"`
}

// Enabled reports whether bearer tokens should be verified.
func (o OIDCConfig) Enabled() bool {
	return o.Issuer != ""
}

type ProfileConfig struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("upstream_addr", ":8081")
	v.SetDefault("location", "Local")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.dsn", "")

	v.SetDefault("remote.mode", RemoteMock)
	v.SetDefault("remote.base_url", "http://localhost:8081")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.fetch_latency", 500*time.Millisecond)
	v.SetDefault("remote.sync_latency", 800*time.Millisecond)
	v.SetDefault("remote.oauth.client_id", "")
	v.SetDefault("remote.oauth.client_secret", "")
	v.SetDefault("remote.oauth.token_url", "")
	v.SetDefault("remote.oauth.scopes", []string{})

	v.SetDefault("auth.api_key_hashes", []string{})
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.client_id", "")

	v.SetDefault("profile.id", "")
	v.SetDefault("profile.name", "User")
	v.SetDefault("profile.email", "")
}

// Bind enables FITLANE_* environment overrides on v.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file at path, if any, and returns the validated
// configuration. A missing default config file is not an error; a missing
// explicit path is.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	Bind(v)

	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := defaultConfigDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Remote.Mode {
	case RemoteMock:
		if c.Remote.FetchLatency < 0 || c.Remote.SyncLatency < 0 {
			return errors.New("remote latencies must not be negative")
		}
	case RemoteHTTP:
		if c.Remote.BaseURL == "" {
			return errors.New("remote.base_url is required in http mode")
		}
	default:
		return fmt.Errorf("unknown remote.mode %q", c.Remote.Mode)
	}
	if c.Remote.Timeout <= 0 {
		return errors.New("remote.timeout must be positive")
	}

	if c.Auth.OIDC.Enabled() && c.Auth.OIDC.ClientID == "" {
		return errors.New("auth.oidc.client_id is required when auth.oidc.issuer is set")
	}

	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	return nil
}

// TimeLocation resolves Location. "Local" and "" mean the host zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return loc, nil
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fitlane"), nil
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fitlane.db"
	}
	return filepath.Join(dir, "fitlane", "fitlane.db")
}
