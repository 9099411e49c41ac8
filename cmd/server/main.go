package main

import (
	"context"
	"disposal-route-service/internal/adapters/cache"
	"disposal-route-service/internal/adapters/repositories"
	"disposal-route-service/internal/api"
	"disposal-route-service/internal/config"
	"disposal-route-service/internal/platform/db"
	"disposal-route-service/internal/platform/metrics"
	"disposal-route-service/internal/platform/obs"
	"disposal-route-service/internal/ports"
	"disposal-route-service/internal/services"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or memory, Redis) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run wires the service and serves until shutdown. Deferred cleanup runs on
// every return path.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(obs.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := obs.InitTracing(ctx, obs.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.TracingServiceName,
		Writer:      os.Stderr,
	})
	if err != nil {
		return err
	}
	defer obs.ShutdownWithTimeout(shutdownTracing)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := metrics.NewRegistry()
	planner := &services.Planner{
		Store:   store,
		Metrics: reg,
		Options: services.Options{
			ProjectWaypoints:  cfg.ProjectWaypoints,
			MaxCommitAttempts: cfg.MaxCommitAttempts,
		},
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping addr=%s: %w", cfg.RedisAddr, err)
		}
		planner.Cache = cache.NewRedisScanCache(client, cfg.ScanCacheTTL)
		slog.Info("scan cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.ScanCacheTTL))
	}

	router := api.NewRouter(planner, reg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", slog.Any("err", err))
		}
	}()

	slog.Info("server listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// openStore connects to Postgres when DATABASE_URL is set. Without it the
// seed file is loaded into memory, which is enough for local runs.
func openStore(ctx context.Context, cfg config.Config) (ports.NetworkStore, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, serving the seed network from memory", slog.String("seed_path", cfg.SeedPath))
		repo, err := repositories.LoadMemoryNetwork(cfg.SeedPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{})
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return repositories.NewPostgresNetworkRepository(conn), closer(conn), nil
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Warn("close failed", slog.Any("err", err))
		}
	}
}
