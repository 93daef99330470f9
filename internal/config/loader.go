package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
)

// envPrefix is the environment variable prefix used by every setting.
const envPrefix = "TRAJMAP"

var (
	ErrConfigFileNotFound = errors.New("config: file not found")
	ErrConfigParseError   = errors.New("config: parse error")
	ErrConfigValidation   = errors.New("config: validation failed")
)

var global atomic.Pointer[Config]

// Get returns the configuration most recently produced by Load, or nil.
func Get() *Config { return global.Load() }

type loadOptions struct {
	configPath  string
	searchPaths []string
	overrides   map[string]interface{}
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithConfigPath reads exactly this file.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.configPath = path }
}

// WithSearchPaths looks for config.yaml in each directory in turn.
func WithSearchPaths(paths ...string) LoadOption {
	return func(o *loadOptions) { o.searchPaths = append(o.searchPaths, paths...) }
}

// WithOverrides sets keys after file and environment, e.g. from CLI flags.
func WithOverrides(kv map[string]interface{}) LoadOption {
	return func(o *loadOptions) { o.overrides = kv }
}

// newViper builds a Viper instance with YAML file type, the TRAJMAP_ env
// prefix and a "." → "_" key replacer so "backend.base_url" resolves to
// TRAJMAP_BACKEND_BASE_URL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerKeys(v)
	return v
}

// Load reads the configuration file (if any), merges TRAJMAP_* environment
// overrides and explicit overrides, applies defaults and validates.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper()
	if err := readFile(v, o); err != nil {
		return nil, err
	}
	for k, val := range o.overrides {
		v.Set(k, val)
	}

	cfg, err := unmarshalAndFinalize(v)
	if err != nil {
		return nil, err
	}
	global.Store(cfg)
	return cfg, nil
}

func readFile(v *viper.Viper, o *loadOptions) error {
	switch {
	case o.configPath != "":
		if _, err := os.Stat(o.configPath); err != nil {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, o.configPath)
		}
		v.SetConfigFile(o.configPath)
	case len(o.searchPaths) > 0:
		v.SetConfigName("config")
		for _, p := range o.searchPaths {
			v.AddConfigPath(p)
		}
	default:
		return nil
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: %v", ErrConfigFileNotFound, err)
		}
		return fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}
	return nil
}

// LoadFromFile is Load(WithConfigPath(path)).
func LoadFromFile(path string) (*Config, error) {
	return Load(WithConfigPath(path))
}

// LoadFromEnv builds a Config from TRAJMAP_* environment variables alone.
func LoadFromEnv() (*Config, error) {
	return Load()
}

// MustLoad is Load that panics; for main() only.
func MustLoad(opts ...LoadOption) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return cfg, nil
}

// Watch re-reads configPath on every write and calls onChange with the new
// Config.  An invalid file is logged and skipped.  Only settings that are
// safe to swap at runtime (log level, render defaults) should be applied by
// the callback.
func Watch(configPath string, log logging.Logger, onChange func(*Config)) error {
	if log == nil {
		log = logging.NewNopLogger()
	}
	v := newViper()
	if err := readFile(v, &loadOptions{configPath: configPath}); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			log.Warn("ignoring invalid configuration change", logging.String("file", e.Name), logging.Err(err))
			return
		}
		global.Store(cfg)
		log.Info("configuration reloaded", logging.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// ApplyLogLevel returns a Watch callback that keeps logger's level in sync.
func ApplyLogLevel(logger logging.Logger, next func(*Config)) func(*Config) {
	return func(cfg *Config) {
		logger.SetLevel(cfg.Log.Level)
		if next != nil {
			next(cfg)
		}
	}
}

//Personal.AI order the ending
