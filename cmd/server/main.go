package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"stockdash/internal/api"
	"stockdash/internal/api/handlers"
	"stockdash/internal/cache"
	"stockdash/internal/config"
	"stockdash/internal/logging"
	"stockdash/internal/marketdata"
	"stockdash/internal/middleware"
	"stockdash/internal/services"
	"stockdash/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited with error")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.WithError(err).Warn("telemetry shutdown failed")
		}
	}()

	cacheTTL, err := time.ParseDuration(cfg.Redis.CacheTTL)
	if err != nil {
		return fmt.Errorf("parse redis.cache_ttl: %w", err)
	}

	redisClient, historyCache := connectCache(cfg.Redis, cacheTTL, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.WithError(err).Warn("redis close failed")
			}
		}()
	}

	client := marketdata.NewClient(&cfg.MarketData)
	loader := services.NewSeriesLoader(client, historyCache, logger)
	engine := services.NewForecastEngine(cfg.Analytics, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName,
		otelgin.WithFilter(tracedRequest)))

	api.SetupRoutes(router,
		handlers.NewChartsHandler(loader, engine, cfg.Analytics, logger),
		handlers.NewTickersHandler(client, logger),
		redisClient,
		cfg.Telemetry.ServiceVersion)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// tracedRequest keeps health probes out of the trace stream.
func tracedRequest(req *http.Request) bool {
	return req.URL.Path != "/health"
}

// connectCache dials Redis and falls back to the in-process cache when it is
// unreachable. The returned client is nil in fallback mode.
func connectCache(cfg config.RedisConfig, ttl time.Duration, logger *logrus.Logger) (*redis.Client, cache.HistoryCache) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.Addr()).
			Warn("redis unreachable, using in-memory cache")
		_ = client.Close()
		return nil, cache.NewInMemoryHistoryCache(ttl)
	}

	logger.WithField("addr", cfg.Addr()).Info("redis connected")
	return client, cache.NewRedisHistoryCache(client, ttl)
}
