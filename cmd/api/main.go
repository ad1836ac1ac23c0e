package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carewell/scheduling-platform/internal/api/router"
	"github.com/carewell/scheduling-platform/internal/app/bootstrap"
	"github.com/carewell/scheduling-platform/internal/appointments"
	appconfig "github.com/carewell/scheduling-platform/internal/config"
	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/observability/metrics"
	"github.com/carewell/scheduling-platform/internal/slots"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting scheduling-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	schedulingMetrics := metrics.NewSchedulingMetrics(registry)

	ctx := context.Background()

	var (
		slotRepo        slots.Repository
		appointmentRepo appointments.Repository
		resolver        identity.Resolver
	)
	if cfg.DatabaseURL != "" {
		pool, err := bootstrap.BuildPgxPool(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		slotRepo = slots.NewPostgresRepository(pool)
		appointmentRepo = appointments.NewPostgresRepository(pool)
		resolver = identity.NewPostgresResolver(pool)
	} else {
		// No database configured: run fully in memory, for local development.
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		inMemSlots := slots.NewInMemoryRepository()
		slotRepo = inMemSlots
		appointmentRepo = appointments.NewInMemoryRepository(inMemSlots)
		resolver = nil
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	slotCache := bootstrap.BuildSlotCache(redisClient, cfg)

	slotService := slots.NewService(slotRepo, slotCache, logger, schedulingMetrics)
	slotsHandler := slots.NewHandler(slotService, logger)

	appointmentService := appointments.NewService(appointmentRepo, logger, schedulingMetrics)
	appointmentsHandler := appointments.NewHandler(appointmentService, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		SlotsHandler:        slotsHandler,
		AppointmentsHandler: appointmentsHandler,
		AuthSecret:          cfg.AuthJWTSecret,
		Resolver:            resolver,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  splitOrigins(cfg.CORSAllowedOrigins),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
