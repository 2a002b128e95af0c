package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"creatorpay/config"
	"creatorpay/core"
	"creatorpay/core/events"
	"creatorpay/integrations/webhooks"
	"creatorpay/native/common"
	"creatorpay/observability"
	"creatorpay/observability/logging"
	telemetry "creatorpay/observability/otel"
	"creatorpay/rpc"
	"creatorpay/storage"
	"creatorpay/storage/audit"
)

const (
	genesisPathEnv = "CREATORPAY_GENESIS"
	environmentEnv = "CREATORPAY_ENV"
	hubBacklog     = 256
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis JSON file (overrides CREATORPAY_GENESIS and config GenesisFile)")
	allowMigrate := flag.Bool("allow-migrate", false, "Allow starting with a mismatched state schema (manual migrations only)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	env := strings.TrimSpace(os.Getenv(environmentEnv))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup("creatorpayd", env, logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	genesisPath := resolveGenesisPath(*genesisFlag, cfg.GenesisFile, os.LookupEnv)
	if err := run(ctx, cfg, env, genesisPath, *allowMigrate, logger); err != nil {
		logger.Error("creatorpayd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, env, genesisPath string, allowMigrate bool, logger *slog.Logger) error {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "creatorpayd",
		Environment: env,
		Network:     cfg.NetworkName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("prepare data directory: %w", err)
	}
	db, err := storage.Open(cfg.Backend, cfg.StatePath())
	if err != nil {
		return fmt.Errorf("open %s state: %w", cfg.Backend, err)
	}
	defer db.Close()

	applied, err := bootstrapState(db, genesisPath, cfg.NetworkName, allowMigrate, time.Now().Unix())
	if err != nil {
		return err
	}
	if applied {
		logger.Info("genesis applied", slog.String("path", genesisPath), slog.String("network", cfg.NetworkName))
	}

	store, err := audit.Open(cfg.AuditPath())
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer store.Close()
	store.SetLogger(logger)

	hub := rpc.NewHub(hubBacklog)
	emitters := events.Multi{store, hub, observability.NewMetricsEmitter()}
	dispatchers, err := buildWebhooks(cfg.Webhooks, logger)
	if err != nil {
		return err
	}
	for _, d := range dispatchers {
		defer d.Close()
		emitters = append(emitters, d)
	}

	processor := core.NewStateProcessor(db, cfg.NetworkName)
	processor.SetLogger(logger)
	processor.SetPauses(common.NewPauseSet(cfg.PausedModules))
	processor.SetEmitter(emitters)
	if len(cfg.PausedModules) > 0 {
		logger.Warn("modules paused by configuration", slog.Any("modules", cfg.PausedModules))
	}

	server := rpc.NewServer(processor, rpc.ServerConfig{
		RateLimit: rpc.RateLimit{
			RequestsPerMinute: float64(cfg.RateLimit.RequestsPerMinute),
			Burst:             cfg.RateLimit.Burst,
		},
		Auth: rpc.AuthConfig{
			Enabled:   cfg.Auth.Enabled,
			Secret:    cfg.Auth.Secret(),
			Issuer:    cfg.Auth.Issuer,
			Audience:  cfg.Auth.Audience,
			ClockSkew: cfg.Auth.ClockSkew(),
		},
		Audit:  store,
		Hub:    hub,
		Logger: logger,
	})

	ln, err := net.Listen("tcp", cfg.RPCAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.RPCAddress, err)
	}
	err = server.Serve(ctx, ln, rpc.Timeouts{
		ReadHeader: cfg.ReadHeaderTimeout(),
		Read:       cfg.ReadTimeout(),
		Write:      cfg.WriteTimeout(),
		Idle:       cfg.IdleTimeout(),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("creatorpayd stopped")
	return nil
}

func buildWebhooks(hooks []config.Webhook, logger *slog.Logger) ([]*webhooks.Dispatcher, error) {
	out := make([]*webhooks.Dispatcher, 0, len(hooks))
	for _, hook := range hooks {
		d, err := webhooks.NewDispatcher(hook.URL, hook.Secret(),
			webhooks.WithEventTypes(hook.Events...),
			webhooks.WithLogger(logger),
		)
		if err != nil {
			for _, started := range out {
				started.Close()
			}
			return nil, fmt.Errorf("webhook %s: %w", hook.URL, err)
		}
		out = append(out, d)
	}
	return out, nil
}
