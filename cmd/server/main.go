package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/zaidrahmann/sportz-websockets/internal/app"
	"github.com/zaidrahmann/sportz-websockets/internal/httpserver"
	"github.com/zaidrahmann/sportz-websockets/internal/hub"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/config"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/logging"
	"github.com/zaidrahmann/sportz-websockets/internal/postgres"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func runGracefulShutdown(srv *httpserver.Server, connHub *hub.Hub, scheduler *app.StatusSyncScheduler, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		scheduler.Stop()
		connHub.Stop()
		cancel()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	matchRepo := postgres.NewMatchRepo(pool)
	commentaryRepo := postgres.NewCommentaryRepo(pool)

	connHub := hub.New(clock, cfg.HeartbeatInterval, cfg.MaxWebSocketConnections)

	appSvc := app.NewService(matchRepo, commentaryRepo, connHub, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := app.NewStatusSyncScheduler(matchRepo, connHub, clock, cfg.StatusSyncInterval)
	scheduler.Start(ctx)

	gatekeeper := httpserver.NewConnectionGatekeeper(cfg.WSRatePerSecond, cfg.WSRateBurst, clock)

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}

	srv := httpserver.NewServer(cfg, appSvc, connHub, gatekeeper, healthChecks)

	done := runGracefulShutdown(srv, connHub, scheduler, cancel)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
