package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/jobboard-api/internal/config"
	"github.com/jwalitptl/jobboard-api/internal/handler"
	passwordHandler "github.com/jwalitptl/jobboard-api/internal/handler/password"
	"github.com/jwalitptl/jobboard-api/internal/middleware"
	"github.com/jwalitptl/jobboard-api/internal/router"
	passwordService "github.com/jwalitptl/jobboard-api/internal/service/password"
	"github.com/jwalitptl/jobboard-api/pkg/logger"
	"github.com/jwalitptl/jobboard-api/pkg/metrics"
	"github.com/jwalitptl/jobboard-api/pkg/ratelimit"
	"github.com/jwalitptl/jobboard-api/pkg/redisclient"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	})
	appLogger.SetGlobal()

	m := metrics.NewMetrics(cfg.Metrics.Namespace, "api", prometheus.DefaultRegisterer)

	checks := map[string]handler.Checker{}

	// Redis is only needed by the distributed rate limiter
	var redisClient *redis.Client
	if cfg.RateLimit.Backend == ratelimit.BackendRedis {
		redisClient, err = redisclient.NewClient(context.Background(), redisclient.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()
		checks["redis"] = redisclient.Checker(redisClient)
	}

	var limiterClient redis.Cmdable
	if redisClient != nil {
		limiterClient = redisClient
	}
	limiter, err := ratelimit.New(cfg.RateLimit, limiterClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create rate limiter")
	}

	minLevel, err := cfg.Password.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid password policy")
	}

	// Initialize services
	pwSvc := passwordService.NewService(minLevel, m, appLogger)

	// Initialize handlers
	h := handler.NewHandler(prometheus.DefaultGatherer, checks)
	pwHandler := passwordHandler.NewHandler(pwSvc)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	// Setup router
	r, err := router.NewRouter(h, pwHandler, limiter, m, appLogger, router.RouterConfig{
		Mode: cfg.Server.Mode,
		CORSConfig: middleware.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     cfg.CORS.AllowedMethods,
			AllowHeaders:     cfg.CORS.AllowedHeaders,
			ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		},
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		TrustedProxies: cfg.Server.TrustedProxies,
		MetricsPath:    metricsPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up router")
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("rate_limit_backend", cfg.RateLimit.Backend).
			Str("min_level", string(minLevel)).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited properly")
}
