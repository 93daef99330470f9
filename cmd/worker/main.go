// Refresh worker entry point for TrajMap.  It consumes layer.refresh events,
// re-renders the named layer and stores a snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/bootstrap"
	"github.com/turtacn/TrajMap/internal/config"
	"github.com/turtacn/TrajMap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/TrajMap/internal/interfaces/http"
	"github.com/turtacn/TrajMap/internal/interfaces/http/handlers"
)

const (
	defaultWorkerConfigPath = "configs/config.yaml"
	healthShutdownTimeout   = 5 * time.Second
)

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultWorkerConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", 0, "health and metrics port (overrides worker.health_port)")
	flag.Parse()

	cfg, fromFile, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *healthPort > 0 {
		cfg.Worker.HealthPort = *healthPort
	}

	logger, err := bootstrap.NewLogger(cfg, "worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	watchPath := ""
	if fromFile {
		watchPath = *configPath
	}
	code := 0
	if err := run(cfg, logger, watchPath); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		code = 1
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg *config.Config, logger logging.Logger, watchPath string) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("worker requires kafka.enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting TrajMap refresh worker",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.RefreshTopic),
		logging.String("group", cfg.Kafka.GroupID),
		logging.Duration("handler_timeout", cfg.Worker.HandlerTimeout),
	)

	infra, err := bootstrap.New(ctx, cfg, logger, "worker")
	if err != nil {
		return err
	}
	defer infra.Close()

	if err := infra.EnsureTopics(); err != nil {
		logger.Warn("failed to create kafka topics", logging.Err(err))
	}
	if watchPath != "" {
		bootstrap.WatchConfig(watchPath, logger)
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka.ConsumerConfig(), logger.Named("consumer"))
	if err != nil {
		return err
	}
	consumer.Subscribe(cfg.Kafka.RefreshTopic, refreshHandler(infra.Service(), cfg.Worker.HandlerTimeout))
	if err := consumer.Start(ctx); err != nil {
		consumer.Close()
		return err
	}

	if cfg.Worker.HealthPort > 0 {
		go serveHealth(ctx, cfg, infra, logger)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, draining consumer")
	if err := consumer.Close(); err != nil {
		logger.Warn("consumer close failed", logging.Err(err))
	}
	logger.Info("worker stopped",
		logging.Int64("processed", consumer.Processed()),
		logging.Int64("dead_lettered", consumer.DeadLettered()),
	)
	return nil
}

// refreshHandler bounds each event by timeout.
func refreshHandler(svc mapview.Service, timeout time.Duration) kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.Message) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return svc.HandleRefresh(ctx, msg)
	}
}

// serveHealth exposes /healthz, /readyz and metrics until ctx is done.
func serveHealth(ctx context.Context, cfg *config.Config, infra *bootstrap.Infrastructure, logger logging.Logger) {
	routerCfg := httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, infra.HealthCheckers()...).WithReporter(infra.Metrics),
		Logger:        logger,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = infra.Collector.Handler()
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	srv := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            fmt.Sprintf(":%d", cfg.Worker.HealthPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: healthShutdownTimeout,
	}, httpserver.NewRouter(routerCfg), logger.Named("health"))
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("health server failed", logging.Err(err))
	}
}

//Personal.AI order the ending
