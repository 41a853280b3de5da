package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldops-reporting/internal/config"
	"github.com/fieldops-reporting/internal/loader"
	"github.com/fieldops-reporting/internal/logger"
	"github.com/fieldops-reporting/internal/platform/fieldservice"
	"github.com/fieldops-reporting/internal/platform/messaging/producers"
	"github.com/fieldops-reporting/internal/reporting_api"
	"github.com/fieldops-reporting/internal/reporting_api/service"
	"github.com/panjf2000/ants/v2"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("reporting_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Upstream field-service client (dispatches, details, directory)
	client, err := fieldservice.NewClient(&cfg.FieldService)
	if err != nil {
		log.Error("Failed to initialize field service client", "error", err)
		os.Exit(1)
	}

	// Worker pool bounding concurrent detail fetches
	pool, err := ants.NewPool(cfg.Loader.WorkerPoolSize)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Optional Kafka producer for load-cycle events
	var events loader.EventPublisher
	var eventProducer *producers.LoadEventProducer
	if cfg.Kafka.Enabled {
		eventProducer, err = producers.NewLoadEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize load event producer", "error", err)
			os.Exit(1)
		}
		events = eventProducer
	}

	// Assemble the loader
	pages := loader.NewPageFetcher(client, cfg.Loader.PageSize, cfg.Loader.MaxPages, log)
	details := loader.NewDetailFetcher(client, pool, cfg.Loader.BatchSize, log)
	orchestrator := loader.NewOrchestrator(pages, details, client, events, log)

	// Warm the technician directory; load cycles stay gated until it loads,
	// and Reload retries the load on demand.
	if err := orchestrator.EnsureDirectory(appCtx); err != nil {
		log.Warn("Technician directory not available at startup", "error", err)
	}

	// Initialize service and REST server
	reportService := service.NewReportService(log, orchestrator, cfg.Export.OutputDir)
	server := reporting_api.NewServer(log, cfg, reportService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	pool.Release()

	if eventProducer != nil {
		if err := eventProducer.Close(); err != nil {
			log.Error("Error closing load event producer", "error", err)
		}
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
		return
	}
	log.Info("Server shutdown completed successfully")
}
