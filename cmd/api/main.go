// Package main is the entry point for the floe API server.
//
// It loads configuration, builds the external collaborators (weather provider,
// LLM client, report store), assembles the HTTP server with the core chassis
// (middleware, routing, health checks, metrics), and starts listening for
// requests.
//
// Optional collaborators degrade instead of failing startup: without
// LLM_API_KEY the narrative falls back to static text, and without
// DATABASE_URL report submission is acknowledged without verification.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"floe/internal/api/handlers"
	"floe/internal/commentary"
	"floe/internal/config"
	"floe/internal/core"
	"floe/internal/db"
	"floe/internal/external"
	"floe/internal/observability"
	"floe/internal/reports"
	"floe/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("floe API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
		"llm_enabled", cfg.LLM.Enabled(),
		"database_configured", cfg.Database.Configured(),
	)

	metrics := observability.NewMetrics()

	// Weather provider.
	weatherClient := external.NewOpenMeteoClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		external.OpenMeteoConfig{
			GeocodeBaseURL:  cfg.Weather.GeocodeBaseURL,
			ForecastBaseURL: cfg.Weather.ForecastBaseURL,
			APIKey:          cfg.Weather.APIKey,
			ForecastDays:    cfg.Weather.ForecastDays,
			Logger:          logger,
		},
	)
	gateway := weather.NewGateway(weatherClient, cfg.Weather.GeocodeCacheSize, logger)

	// Commentary. A nil completer disables generation; the generator then
	// serves static text instead of calling out.
	var completer commentary.Completer
	if cfg.LLM.Enabled() {
		completer = external.NewOpenAIClient(
			&http.Client{Timeout: cfg.LLM.Timeout},
			external.OpenAIConfig{
				APIKey:      cfg.LLM.APIKey,
				BaseURL:     cfg.LLM.BaseURL,
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: cfg.LLM.Temperature,
				Logger:      logger,
			},
		)
	}
	generator := commentary.NewGenerator(completer, cfg.LLM.ModelChain(), logger)

	// Report store. Optional: without it the verification engine acknowledges
	// reports but never verifies.
	var store reports.ReportStore
	var probes []core.HealthProbe
	if cfg.Database.Configured() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			cancel()
			return fmt.Errorf("connecting to report store: %w", err)
		}
		repo := db.NewReportRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			return fmt.Errorf("ensuring report store schema: %w", err)
		}
		cancel()
		store = repo
		probes = append(probes, db.NewProbe(pool))
	} else {
		logger.Warn("DATABASE_URL not set; report verification disabled")
	}

	engine := reports.NewEngine(store, clockwork.NewRealClock(), cfg.Verify.Window, logger)
	composer := weather.NewComposer(gateway, engine, generator, logger)

	// Build the server and wire domain handlers.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = metrics
	srv.MetricsHandler = metrics.Handler()
	srv.HealthProbes = probes

	weatherHandler := handlers.NewWeatherHandler(composer, metrics, logger)
	reportHandler := handlers.NewReportHandler(engine, metrics, logger)
	chatHandler := handlers.NewChatHandler(composer, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		weatherHandler.RegisterRoutes,
		reportHandler.RegisterRoutes,
		chatHandler.RegisterRoutes,
	)

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
