package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"gymdesk/internal/notification"
	"gymdesk/internal/platform/config"
	"gymdesk/internal/platform/httpserver"
	"gymdesk/internal/platform/logger"
	platformmetrics "gymdesk/internal/platform/metrics"
	"gymdesk/internal/platform/middleware"
	platformredis "gymdesk/internal/platform/redis"
	"gymdesk/internal/tenant"
	tenantmetrics "gymdesk/internal/tenant/metrics"
	"gymdesk/internal/tenant/service"
	"gymdesk/internal/tenant/store"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("gymdesk exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	if cfg.AdminAPIToken == "" {
		log.Warn("ADMIN_API_TOKEN is empty, every admin request will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, health, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	dispatcher := notification.New(notification.Config{
		Endpoint: cfg.SMS.Endpoint,
		Token:    cfg.SMS.Token,
		SenderID: cfg.SMS.SenderID,
		LoginURL: cfg.SMS.LoginURL,
		Timeout:  cfg.SMS.Timeout,
	}, notification.WithLogger(log))

	reg := prometheus.DefaultRegisterer
	tenantHandler, err := tenant.NewHandler(stores, dispatcher, log,
		service.WithLogger(log),
		service.WithMetrics(tenantmetrics.New(reg)),
		service.WithStepTimeout(cfg.Tenant.StepTimeout),
		service.WithCompensation(cfg.Tenant.CompensationAttempts, 200*time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("build tenant handler: %w", err)
	}

	httpMetrics := platformmetrics.New(reg)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(chimw.Recoverer)
	r.Use(httpMetrics.Middleware)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := health(r.Context()); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminAPIToken, log))
		tenantHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gymdesk", "addr", cfg.Addr, "store", stores.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down gymdesk")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStores picks the backing: DATABASE_URL wins, then REDIS_URL, else memory.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (tenant.Stores, func(context.Context) error, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return tenant.Stores{}, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return tenant.Stores{}, nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return tenant.Stores{}, nil, nil, err
		}
		return tenant.PostgresStores(db), db.PingContext, func() { _ = db.Close() }, nil

	case cfg.Redis.URL != "":
		client, err := platformredis.Connect(ctx, cfg.Redis)
		if err != nil {
			return tenant.Stores{}, nil, nil, err
		}
		return tenant.RedisStores(client.Client), client.Health, func() { _ = client.Close() }, nil

	default:
		log.Warn("no DATABASE_URL or REDIS_URL set, tenants are kept in memory only")
		return tenant.MemoryStores(), func(context.Context) error { return nil }, func() {}, nil
	}
}
