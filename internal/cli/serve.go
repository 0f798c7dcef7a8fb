package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"stockcurve/internal/config"
	"stockcurve/internal/refresh"
	"stockcurve/internal/server"
)

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API server" }
func (*serveCmd) Usage() string {
	return `serve

  Serves normalized price history over HTTP, caching quotes in sqlite and
  refreshing watchlisted symbols on a cron schedule.
`
}

func (*serveCmd) SetFlags(_ *flag.FlagSet) {}

func (*serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return subcommands.ExitFailure
	}

	// Root context: cancelled on SIGINT/SIGTERM so in-flight provider
	// fetches stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	deps, err := buildServices(cfg, true)
	if err != nil {
		slog.Error("failed to set up services", "error", err)
		return subcommands.ExitFailure
	}
	defer deps.close()

	refresher, err := refresh.New(rootCtx, deps.svc, deps.watch, cfg.RefreshCron)
	if err != nil {
		slog.Error("failed to schedule cache refresh", "cron", cfg.RefreshCron, "error", err)
		return subcommands.ExitFailure
	}
	refresher.Start()

	// HTTP server — rootCtx is used as BaseContext so every request context
	// inherits from it and is cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, deps.svc)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("server started", "port", cfg.Port)

	select {
	case err := <-errCh:
		slog.Error("server error", "error", err)
		return subcommands.ExitFailure
	case <-done:
	}

	// Cancel root context first so in-flight requests begin winding down
	// immediately, then stop the scheduler and drain connections.
	rootCancel()
	refresher.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
	return subcommands.ExitSuccess
}
