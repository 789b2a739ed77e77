// Command partpulse serves the procurement approval API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"partpulse/internal/adapters/httpapi"
	"partpulse/internal/blob"
	"partpulse/internal/config"
	"partpulse/internal/core"
	"partpulse/internal/lock"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "partpulse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	store, closer, err := core.OpenPersistentStore(ctx, cfg.Storage, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusRecorder(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithMetrics(metrics),
		core.WithBlobStore(blobs),
		core.WithPresignExpiry(cfg.Server.PresignExpiry),
	}
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		opts = append(opts, core.WithLocker(lock.NewRedis(rdb, "", cfg.Redis.LockTTL)))
		logger.Info("using redis decision lock", zap.String("addr", cfg.Redis.Addr))
	}
	svc := core.NewService(store, opts...)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	api := httpapi.New(svc, httpapi.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Gatherer:    registry,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     api.Handler(),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("storage", string(cfg.Storage.Driver)),
			zap.String("blob", string(cfg.Blob.Driver)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("server exited")
	return nil
}
