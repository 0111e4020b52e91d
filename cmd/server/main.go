package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/api"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/ratelimit"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/state"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/storage"
)

var version string

func main() {
	// Initialize OpenTelemetry (sends traces to Honeycomb)
	// Configured via env vars: OTEL_SERVICE_NAME, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		logger.Warn("failed to configure OpenTelemetry", "error", err)
		// Non-fatal: continue without tracing if OTEL env vars not set
	} else {
		defer otelShutdown()
	}

	config, err := loadConfig(context.Background())
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	loc, err := config.Location()
	if err != nil {
		logger.Fatal("invalid DASHBOARD_TZ", "tz", config.Timezone, "error", err)
	}

	// Migrations are run separately via CLI before starting the server
	// See: migrate -database "$DATABASE_URL" -path internal/db/migrations up
	database, err := db.Connect(config.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	controller := state.NewController(database, state.Options{
		Location:     loc,
		FetchLimit:   config.EventFetchLimit,
		LiveInterval: config.LiveRefreshInterval,
	})

	// Load initial data so the dashboard is usable immediately. A cold
	// database is fine; the first snapshot is simply empty.
	startupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if _, err := controller.Refresh(startupCtx, config.DefaultRangeDays); err != nil {
		logger.Warn("initial refresh failed; dashboard starts without data", "error", err)
	}
	cancel()

	// Report archival is optional
	var reports *storage.ReportStore
	if config.S3Endpoint != "" {
		reports, err = storage.NewReportStore(storage.Config{
			Endpoint:        config.S3Endpoint,
			AccessKeyID:     config.S3AccessKeyID,
			SecretAccessKey: config.S3SecretAccessKey,
			BucketName:      config.S3Bucket,
			UseSSL:          config.S3UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize report storage", "error", err)
		}
		logger.Info("report archival enabled", "bucket", config.S3Bucket)
	} else {
		logger.Info("report archival disabled (S3_ENDPOINT not set)")
	}

	server := api.NewServer(database, controller, api.Options{
		Reports:          reports,
		IngestLimiter:    ratelimit.New(config.IngestRatePerSecond, config.IngestBurst),
		CORSOrigin:       config.CORSOrigin,
		DefaultRangeDays: config.DefaultRangeDays,
	})
	router := server.SetupRoutes()

	// Wrap router with OpenTelemetry HTTP instrumentation
	handler := otelhttp.NewHandler(router, "sylius-toolbox-dashboard")

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", config.Port, "version", version, "tz", loc.String())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	controller.StopLive()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
