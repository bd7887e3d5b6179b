// Command campusauth serves the campus authentication HTTP API.
//
// Configuration is read from the environment and an optional .env file; see
// package config for the variable names.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrEthical07/campusauth"
	"github.com/MrEthical07/campusauth/config"
	"github.com/MrEthical07/campusauth/files"
	"github.com/MrEthical07/campusauth/httpapi"
	"github.com/MrEthical07/campusauth/metrics/export/prometheus"
	"github.com/MrEthical07/campusauth/scope"
	"github.com/MrEthical07/campusauth/store"
	"github.com/MrEthical07/campusauth/store/postgres"
	"github.com/MrEthical07/campusauth/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "campusauth: %v\n", err)
		os.Exit(1)
	}
}

// backend is what the engine needs from a database.
type backend interface {
	store.AccountStore
	scope.MembershipSource
	Ping(ctx context.Context) error
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openStore(ctx, &cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	avatars := files.NewLocalStore(cfg.Avatar.Dir)
	avatars.MaxBytes = cfg.Avatar.MaxBytes

	builder := campusauth.New().
		WithConfig(engineCfg).
		WithAccountStore(db).
		WithMembershipStore(db).
		WithAvatarStore(avatars).
		WithLogger(logger).
		WithAuditSink(campusauth.NewSlogSink(logger.With("component", "audit")))

	if cfg.NeedsRedis() {
		client := redis.NewUniversalClient(cfg.Redis.UniversalOptions())
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	report := engine.SecurityReport()
	for _, w := range report.Warnings {
		logger.Warn("weak security setting", "detail", w)
	}
	logger.Info("engine ready",
		"store", cfg.Store.Driver,
		"signing", report.SigningAlgorithm,
		"rotation", report.RefreshRotationEnabled,
		"login_throttle", report.LoginThrottleActive,
	)

	api := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.New(engine, httpapi.Options{Logger: logger, MaxAvatarBytes: cfg.Avatar.MaxBytes, TrustProxy: cfg.HTTP.TrustProxy}).Routes(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", prometheus.Handler(engine))
	metricsMux.Handle("GET /readyz", readiness(db, engine, logger))
	metricsSrv := &http.Server{
		Addr:              cfg.HTTP.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{api, metricsSrv} {
		g.Go(func() error {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return errors.Join(api.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// readiness answers 503 while the database or a configured Redis is
// unreachable.
func readiness(db backend, engine *campusauth.Engine, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "readiness: database unreachable", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if h := engine.Health(ctx); h.RedisConfigured && !h.RedisAvailable {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
}

func openStore(ctx context.Context, cfg *config.AppConfig) (backend, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, err
		}
		if cfg.Store.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return postgres.New(db), func() { _ = db.Close() }, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, closer(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
