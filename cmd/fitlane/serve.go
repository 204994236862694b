package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "fitlane/internal/adapter/http"
	"fitlane/internal/adapter/remote"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the metrics API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := buildServices(ctx, c.cfg, clockwork.NewRealClock(), c.log)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			h := adapthttp.New(svc.metrics, svc.profile, svc.auth, c.log).Handler()
			return listen(ctx, c.log, c.cfg.Addr, h)
		},
	}
}

func (c *cli) upstreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upstream",
		Short: "Serve a stand-in upstream metrics API",
		Long: `upstream serves GET /metrics/today and POST /metrics/sync backed by an
in-memory snapshot with simulated latency. Point remote.base_url at it and
set remote.mode to http to exercise the real client.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mock := remote.NewMock(clockwork.NewRealClock(), c.cfg.Remote.FetchLatency, c.cfg.Remote.SyncLatency)
			h := adapthttp.NewUpstream(mock, c.log).Handler()
			return listen(ctx, c.log, c.cfg.UpstreamAddr, h)
		},
	}
}

// listen serves h on addr until ctx is cancelled.
func listen(ctx context.Context, log zerolog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
