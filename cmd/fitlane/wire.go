package main

import (
	"context"
	"errors"
	"fmt"

	"fitlane/internal/adapter/local"
	"fitlane/internal/adapter/memory"
	"fitlane/internal/adapter/oidc"
	"fitlane/internal/adapter/postgres"
	"fitlane/internal/adapter/remote"
	"fitlane/internal/adapter/sqlite"
	"fitlane/internal/app"
	"fitlane/internal/config"
	"fitlane/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// services is the composition root: every adapter and service built from
// one configuration.
type services struct {
	metrics *app.MetricsService
	profile *app.ProfileService
	auth    *app.AuthService

	closers []func() error
}

func buildServices(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log zerolog.Logger) (*services, error) {
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}

	kv, closeKV, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	s := &services{}
	if closeKV != nil {
		s.closers = append(s.closers, closeKV)
	}

	src, err := newRemote(ctx, cfg.Remote, clock)
	if err != nil {
		s.Close()
		return nil, err
	}

	sync := app.NewSynchronizer(local.NewMetricsStore(kv, clock, loc), src, log)
	s.metrics = app.NewMetricsService(sync)
	s.profile = app.NewProfileService(local.NewProfileStore(kv), domain.User{
		ID:    cfg.Profile.ID,
		Name:  cfg.Profile.Name,
		Email: cfg.Profile.Email,
	})

	var verifier app.TokenVerifier
	if cfg.Auth.OIDC.Enabled() {
		v, err := oidc.NewVerifier(ctx, cfg.Auth.OIDC.Issuer, cfg.Auth.OIDC.ClientID)
		if err != nil {
			s.Close()
			return nil, err
		}
		verifier = v
	}
	s.auth = app.NewAuthService(cfg.Auth.APIKeyHashes, verifier)

	log.Debug().
		Str("storage", cfg.Storage.Driver).
		Str("remote", cfg.Remote.Mode).
		Bool("auth", s.auth.Enabled()).
		Msg("Services ready")
	return s, nil
}

func (s *services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openStore(sc config.StorageConfig) (domain.KeyValueStore, func() error, error) {
	switch sc.Driver {
	case config.DriverMemory:
		return memory.New(), nil, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(sc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		return db, db.Close, nil
	case config.DriverPostgres:
		db, err := postgres.Open(sc.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

func newRemote(ctx context.Context, rc config.RemoteConfig, clock clockwork.Clock) (domain.MetricsRemoteSource, error) {
	switch rc.Mode {
	case config.RemoteMock:
		return remote.NewMock(clock, rc.FetchLatency, rc.SyncLatency), nil
	case config.RemoteHTTP:
		var oc remote.OAuthConfig
		if rc.OAuth.Enabled() {
			oc = remote.OAuthConfig{
				ClientID:     rc.OAuth.ClientID,
				ClientSecret: rc.OAuth.ClientSecret,
				TokenURL:     rc.OAuth.TokenURL,
				Scopes:       rc.OAuth.Scopes,
			}
		}
		hc := remote.NewHTTPClient(ctx, oc, rc.Timeout)
		return remote.NewClient(rc.BaseURL, hc), nil
	default:
		return nil, fmt.Errorf("unknown remote mode %q", rc.Mode)
	}
}
