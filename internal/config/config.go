// Package config defines the configuration structures for TrajMap.  No I/O or
// parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/TrajMap/internal/backend"
	"github.com/turtacn/TrajMap/internal/infrastructure/database/redis"
	"github.com/turtacn/TrajMap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/internal/infrastructure/storage/minio"
	"github.com/turtacn/TrajMap/internal/render"
	"github.com/turtacn/TrajMap/pkg/colorseq"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`

	// AnalysisRPS and AnalysisBurst throttle TRACLUS and annealing runs per
	// client.  AnalysisRPS <= 0 disables the limit.
	AnalysisRPS   float64 `mapstructure:"analysis_rps"`
	AnalysisBurst int     `mapstructure:"analysis_burst"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig points at the clustering service.
type BackendConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	PathPrefix string        `mapstructure:"path_prefix"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryMax   int           `mapstructure:"retry_max"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// ClientOptions translates the section into backend.Client options.
func (b BackendConfig) ClientOptions(log logging.Logger, obs backend.Observer) []backend.Option {
	opts := []backend.Option{
		backend.WithTimeout(b.Timeout),
		backend.WithRetryMax(b.RetryMax),
		backend.WithRetryWait(b.RetryWait, 10*b.RetryWait),
		backend.WithPathPrefix(b.PathPrefix),
	}
	if b.UserAgent != "" {
		opts = append(opts, backend.WithUserAgent(b.UserAgent))
	}
	if log != nil {
		opts = append(opts, backend.WithLogger(log))
	}
	if obs != nil {
		opts = append(opts, backend.WithObserver(obs))
	}
	return opts
}

// RedisConfig enables the payload cache.
type RedisConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	KeyPrefix         string        `mapstructure:"key_prefix"`
	DefaultTTL        time.Duration `mapstructure:"default_ttl"`
	redis.RedisConfig `mapstructure:",squash"`
}

// KafkaConfig enables layer.refresh events.
type KafkaConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Brokers           []string      `mapstructure:"brokers"`
	GroupID           string        `mapstructure:"group_id"`
	RefreshTopic      string        `mapstructure:"refresh_topic"`
	DeadLetterTopic   string        `mapstructure:"dead_letter_topic"`
	AutoCreateTopics  bool          `mapstructure:"auto_create_topics"`
	ReplicationFactor int           `mapstructure:"replication_factor"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	SASLMechanism     string        `mapstructure:"sasl_mechanism"`
	SASLUsername      string        `mapstructure:"sasl_username"`
	SASLPassword      string        `mapstructure:"sasl_password"`
}

// ProducerConfig derives the producer settings.
func (k KafkaConfig) ProducerConfig() kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:       k.Brokers,
		Acks:          "all",
		MaxRetries:    k.MaxRetries,
		SASLMechanism: k.SASLMechanism,
		SASLUsername:  k.SASLUsername,
		SASLPassword:  k.SASLPassword,
	}
}

// ConsumerConfig derives the worker's consumer settings.
func (k KafkaConfig) ConsumerConfig() kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:         k.Brokers,
		GroupID:         k.GroupID,
		Topics:          []string{k.RefreshTopic},
		AutoOffsetReset: "latest",
		SASLMechanism:   k.SASLMechanism,
		SASLUsername:    k.SASLUsername,
		SASLPassword:    k.SASLPassword,
		Retry: kafka.RetryConfig{
			MaxRetries:      k.MaxRetries,
			RetryBackoff:    k.RetryBackoff,
			MaxRetryBackoff: 10 * k.RetryBackoff,
			DeadLetterTopic: k.DeadLetterTopic,
		},
	}
}

// MinIOConfig enables snapshot export.
type MinIOConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	minio.MinIOConfig `mapstructure:",squash"`
}

// RenderConfig holds the map viewport and image defaults.
type RenderConfig struct {
	CenterLat     float64 `mapstructure:"center_lat"`
	CenterLng     float64 `mapstructure:"center_lng"`
	Zoom          int     `mapstructure:"zoom"`
	Width         int     `mapstructure:"width"`
	Height        int     `mapstructure:"height"`
	RawColor      string  `mapstructure:"raw_color"`
	DefaultFormat string  `mapstructure:"default_format"`
	Title         string  `mapstructure:"title"`
}

// Options returns the encoder options for this section.
func (r RenderConfig) Options() render.Options {
	return render.Options{
		Width:  r.Width,
		Height: r.Height,
		Title:  r.Title,
		Center: trajectory.LatLng{Lat: r.CenterLat, Lng: r.CenterLng},
		Zoom:   r.Zoom,
	}
}

// WorkerConfig tunes the refresh worker.
type WorkerConfig struct {
	// HealthPort serves /healthz, /readyz and metrics for the worker.
	HealthPort     int           `mapstructure:"health_port"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	SnapshotFormat string        `mapstructure:"snapshot_format"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Backend BackendConfig     `mapstructure:"backend"`
	Redis   RedisConfig       `mapstructure:"redis"`
	Kafka   KafkaConfig       `mapstructure:"kafka"`
	MinIO   MinIOConfig       `mapstructure:"minio"`
	Render  RenderConfig      `mapstructure:"render"`
	Worker  WorkerConfig      `mapstructure:"worker"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
	Log     logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.PathPrefix != "" && !strings.HasPrefix(c.Backend.PathPrefix, "/") {
		return fmt.Errorf("backend.path_prefix %q must start with /", c.Backend.PathPrefix)
	}
	if c.Backend.RetryMax < 0 {
		return fmt.Errorf("backend.retry_max must be >= 0, got %d", c.Backend.RetryMax)
	}

	if c.Redis.Enabled {
		if c.Redis.Mode == "cluster" && len(c.Redis.ClusterAddrs) == 0 {
			return fmt.Errorf("redis.cluster_addrs is required in cluster mode")
		}
		if c.Redis.Mode != "cluster" && c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("kafka.group_id is required when kafka is enabled")
		}
		if c.Kafka.RefreshTopic == "" {
			return fmt.Errorf("kafka.refresh_topic is required when kafka is enabled")
		}
	}

	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return fmt.Errorf("minio.endpoint is required when minio is enabled")
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render.width and render.height must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.Zoom < 0 || c.Render.Zoom > 22 {
		return fmt.Errorf("render.zoom %d is out of range [0, 22]", c.Render.Zoom)
	}
	if c.Render.CenterLat < -90 || c.Render.CenterLat > 90 || c.Render.CenterLng < -180 || c.Render.CenterLng > 180 {
		return fmt.Errorf("render centre (%g, %g) is not a valid coordinate", c.Render.CenterLat, c.Render.CenterLng)
	}
	if c.Render.RawColor != "" {
		if _, err := colorseq.ParseHex(c.Render.RawColor); err != nil {
			return fmt.Errorf("render.raw_color: %w", err)
		}
	}

	if c.Worker.HealthPort < 0 || c.Worker.HealthPort > 65535 {
		return fmt.Errorf("worker.health_port %d is out of range [0, 65535]", c.Worker.HealthPort)
	}
	if c.Worker.SnapshotFormat != "" {
		if _, err := render.ParseFormat(c.Worker.SnapshotFormat); err != nil {
			return fmt.Errorf("worker.snapshot_format: %w", err)
		}
	}
	if c.Render.DefaultFormat != "" {
		if _, err := render.ParseFormat(c.Render.DefaultFormat); err != nil {
			return fmt.Errorf("render.default_format: %w", err)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
