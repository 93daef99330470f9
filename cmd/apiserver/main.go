// API server entry point for TrajMap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/TrajMap/internal/bootstrap"
	"github.com/turtacn/TrajMap/internal/config"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/TrajMap/internal/interfaces/http"
	"github.com/turtacn/TrajMap/internal/interfaces/http/handlers"
	"github.com/turtacn/TrajMap/internal/interfaces/http/middleware"
	"github.com/turtacn/TrajMap/internal/render"
)

const (
	defaultConfigPath = "configs/config.yaml"
	limiterCleanup    = time.Minute
)

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides server.port)")
	flag.Parse()

	cfg, fromFile, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := bootstrap.NewLogger(cfg, "apiserver")
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
		logger.Error("API server exited with error", logging.Err(err))
		code = 1
	}
	_ = logger.Sync()
	os.Exit(code)
}

// run serves until SIGINT or SIGTERM.  A non-empty watchPath enables log
// level hot reload.
func run(cfg *config.Config, logger logging.Logger, watchPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting TrajMap API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("backend", cfg.Backend.BaseURL),
	)

	infra, err := bootstrap.New(ctx, cfg, logger, "apiserver")
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

	svc := infra.Service()
	defaultFormat, err := render.ParseFormat(cfg.Render.DefaultFormat)
	if err != nil {
		return err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.AllowedOrigins

	routerCfg := httpserver.RouterConfig{
		LayerHandler:    handlers.NewLayerHandler(svc, defaultFormat, logger),
		AnalysisHandler: handlers.NewAnalysisHandler(svc, cfg.Server.MaxBodySize, logger),
		HealthHandler:   handlers.NewHealthHandler(version, infra.HealthCheckers()...).WithReporter(infra.Metrics),
		CORS:            &cors,
		Metrics:         infra.Metrics,
		Logger:          logger,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = infra.Collector.Handler()
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Server.AnalysisRPS > 0 {
		limiter := middleware.NewTokenBucketLimiter(cfg.Server.AnalysisRPS, cfg.Server.AnalysisBurst, limiterCleanup)
		defer limiter.Stop()
		routerCfg.AnalysisLimiter = limiter
	}

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(routerCfg), logger)

	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("API server stopped")
	return nil
}

//Personal.AI order the ending
