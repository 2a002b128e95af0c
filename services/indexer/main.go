package indexer

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"creatorpay/config"
	"creatorpay/observability/logging"
	telemetry "creatorpay/observability/otel"
	"creatorpay/storage/audit"
)

// Main runs the indexer daemon: it tails the audit log into the read model
// and serves queries over HTTP.
func Main() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "services/indexer/config.yaml", "path to indexer configuration")
	flag.Parse()

	cfg, err := config.LoadIndexer(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env := strings.TrimSpace(os.Getenv("CREATORPAY_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup("creatorpay-indexer", env, logging.Options{Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	insecure := true
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "creatorpay-indexer",
		Environment: env,
		Endpoint:    endpoint,
		Insecure:    insecure,
		Headers:     telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Traces:      endpoint != "",
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	store, err := audit.Open(cfg.AuditDB)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer store.Close()

	db, err := Open(cfg.DSN)
	if err != nil {
		return err
	}
	ix := New(db, store, cfg.BatchSize, logger)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           otelhttp.NewHandler(ix.Handler(), "creatorpay.indexer"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("indexer api listening", slog.String("addr", cfg.Listen))
		serverErr <- srv.ListenAndServe()
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- ix.Run(ctx, cfg.PollInterval) }()

	select {
	case err := <-serverErr:
		stop()
		<-runErr
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-runErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if errors.Is(err, context.Canceled) {
			logger.Info("indexer stopped")
			return nil
		}
		return err
	}
}
