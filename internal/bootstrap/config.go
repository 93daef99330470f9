package bootstrap

import (
	"errors"
	"fmt"
	"os"

	"github.com/turtacn/TrajMap/internal/config"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
)

// LoadConfig reads path when it exists and otherwise falls back to TRAJMAP_*
// environment variables and defaults.  fromFile reports whether path was read,
// which is when hot reload makes sense.
func LoadConfig(path string) (cfg *config.Config, fromFile bool, err error) {
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err = config.LoadFromFile(path)
			return cfg, err == nil, err
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return nil, false, fmt.Errorf("config: %w", statErr)
		}
	}
	cfg, err = config.Load()
	return cfg, false, err
}

// NewLogger builds the process logger from cfg.Log and installs it as the
// process default.
func NewLogger(cfg *config.Config, name string) (logging.Logger, error) {
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger = logger.Named(name)
	logging.SetDefault(logger)
	return logger, nil
}

// WatchConfig hot-reloads the log level from path.  Failures to start the
// watcher are logged; the process keeps its startup configuration.
func WatchConfig(path string, logger logging.Logger) {
	if err := config.Watch(path, logger, config.ApplyLogLevel(logger, nil)); err != nil {
		logger.Warn("config hot reload disabled", logging.String("path", path), logging.Err(err))
		return
	}
	logger.Info("watching configuration", logging.String("path", path))
}

//Personal.AI order the ending
