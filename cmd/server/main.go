package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"epiwatch/internal/config"
	"epiwatch/internal/dataset"
	"epiwatch/internal/handlers"
	"epiwatch/internal/pipeline"
	"epiwatch/internal/views"
	"epiwatch/pkg/logging"
	"epiwatch/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.New("epiwatch-server", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting surveillance dashboard server", logging.Fields{
		"version":      "1.0.0",
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"cases_path":   cfg.Data.CasesPath,
		"climate_path": cfg.Data.ClimatePath,
		"location_id":  cfg.Data.LocationID,
		"climate_year": cfg.Data.ClimateYear,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("epiwatch")

	// Load both sources once at startup
	start := time.Now()
	rawCases, err := dataset.LoadCases(cfg.Data.CasesPath, cfg.Data.ClimateYear)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load cases source", logging.Fields{
			"path": cfg.Data.CasesPath,
		}, err)
	}
	metricsCollector.ObserveLoad("cases", len(rawCases), time.Since(start))

	start = time.Now()
	observations, err := dataset.LoadClimate(cfg.Data.ClimatePath)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load climate source", logging.Fields{
			"path": cfg.Data.ClimatePath,
		}, err)
	}
	metricsCollector.ObserveLoad("climate", len(observations), time.Since(start))

	// Run the pipeline: prepare, aggregate, join
	cases := pipeline.PrepareCases(rawCases, time.Now())
	aggregates := pipeline.AggregateClimate(observations, cfg.Data.LocationID, cfg.Data.ClimateYear, cfg.ExcludedSet())
	merged := pipeline.Join(aggregates, cases)

	store := dataset.NewStore(cases, merged)

	logger.Info(ctx, "[DATA_READY] Analysis tables built", logging.Fields{
		"case_records": len(cases),
		"observations": len(observations),
		"aggregates":   len(aggregates),
		"merged_rows":  len(merged),
		"diseases":     store.Diseases(),
	})

	// Initialize views
	evolutionView := views.NewEvolutionView(store, logger, metricsCollector)
	correlationView := views.NewCorrelationView(store, logger, metricsCollector)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(store, evolutionView, correlationView, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	dashboardHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Middleware chain: panic recovery, CORS, request logging
	corsHandler := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "PUT", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)
	handler := gorillahandlers.RecoveryHandler()(corsHandler(gorillahandlers.LoggingHandler(os.Stdout, router)))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
