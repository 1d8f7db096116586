package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget-calculator/internal/config"
	"budget-calculator/internal/handlers"
	"budget-calculator/internal/logger"
	"budget-calculator/internal/metrics"
	"budget-calculator/internal/server"
	"budget-calculator/internal/service"
	"budget-calculator/internal/storage"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("BUDGET_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := storage.NewDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorw("failed to close database", "err", err)
		}
	}()

	if cfg.Seed.Enabled {
		seeded, err := service.SeedStore(ctx, db, cfg.Seed.Username, cfg.Seed.Password)
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		if seeded {
			log.Infow("seeded empty database", "username", cfg.Seed.Username)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.NewService(db, cfg.Session.Duration)
	h := handlers.NewHandlers(svc, handlers.Options{
		SecureCookie: cfg.Server.SecureCookie,
		Logger:       log,
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		Pinger:       db,
	})

	go purgeSessions(ctx, svc.Accounts, cfg.Session.PurgeInterval, log)

	srv := server.New(cfg.Server.Addr(), setupRouter(h))
	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting server", "addr", srv.Addr(), "db", cfg.DB.Path)
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}

func setupRouter(h *handlers.Handlers) http.Handler {
	return h.Routes()
}

type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, p sessionPurger, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Warnw("failed to purge expired sessions", "err", err)
				continue
			}
			if n > 0 {
				log.Debugw("purged expired sessions", "count", n)
			}
		}
	}
}
