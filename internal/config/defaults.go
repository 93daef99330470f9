package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodySize     = 1 << 20
	DefaultAnalysisRPS     = 0.5
	DefaultAnalysisBurst   = 3

	DefaultBackendURL       = "http://localhost:5000"
	DefaultBackendPrefix    = "/books"
	DefaultBackendTimeout   = 30 * time.Second
	DefaultBackendRetryMax  = 3
	DefaultBackendRetryWait = 200 * time.Millisecond
	DefaultUserAgent        = "trajmap/1.0"

	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "trajmap:"
	DefaultRedisTTL    = 5 * time.Minute

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "trajmap-worker"
	DefaultRefreshTopic      = "trajmap.layer.refresh"
	DefaultDeadLetterTopic   = "trajmap.dead_letter"
	DefaultKafkaRetries      = 3
	DefaultKafkaRetryBackoff = 500 * time.Millisecond

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "trajmap-snapshots"

	// Cal Poly campus, San Luis Obispo.
	DefaultCenterLat = 35.300868
	DefaultCenterLng = -120.660782
	DefaultZoom      = 17
	DefaultWidth     = 1024
	DefaultHeight    = 768
	DefaultRawColor  = "#000000"
	DefaultFormat    = "geojson"
	DefaultTitle     = "TrajMap"

	DefaultWorkerHealthPort     = 8081
	DefaultWorkerHandlerTimeout = 2 * time.Minute

	DefaultMetricsNamespace = "trajmap"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the default.  Fields
// already set are left unchanged so explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.AnalysisBurst == 0 {
		cfg.Server.AnalysisBurst = DefaultAnalysisBurst
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	// ── Backend ───────────────────────────────────────────────────────────────
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBackendURL
	}
	if cfg.Backend.PathPrefix == "" {
		cfg.Backend.PathPrefix = DefaultBackendPrefix
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Backend.RetryWait == 0 {
		cfg.Backend.RetryWait = DefaultBackendRetryWait
	}
	if cfg.Backend.UserAgent == "" {
		cfg.Backend.UserAgent = DefaultUserAgent
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RefreshTopic == "" {
		cfg.Kafka.RefreshTopic = DefaultRefreshTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultDeadLetterTopic
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = 1
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaRetries
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Render ────────────────────────────────────────────────────────────────
	// 0,0 is treated as unset.
	if cfg.Render.CenterLat == 0 && cfg.Render.CenterLng == 0 {
		cfg.Render.CenterLat = DefaultCenterLat
		cfg.Render.CenterLng = DefaultCenterLng
	}
	if cfg.Render.Zoom == 0 {
		cfg.Render.Zoom = DefaultZoom
	}
	if cfg.Render.Width == 0 {
		cfg.Render.Width = DefaultWidth
	}
	if cfg.Render.Height == 0 {
		cfg.Render.Height = DefaultHeight
	}
	if cfg.Render.RawColor == "" {
		cfg.Render.RawColor = DefaultRawColor
	}
	if cfg.Render.DefaultFormat == "" {
		cfg.Render.DefaultFormat = DefaultFormat
	}
	if cfg.Render.Title == "" {
		cfg.Render.Title = DefaultTitle
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
	if cfg.Worker.HandlerTimeout == 0 {
		cfg.Worker.HandlerTimeout = DefaultWorkerHandlerTimeout
	}
	if cfg.Worker.SnapshotFormat == "" {
		cfg.Worker.SnapshotFormat = cfg.Render.DefaultFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// registerKeys seeds viper with every key so that TRAJMAP_* variables reach
// Unmarshal even when the key is absent from the file.
func registerKeys(v *viper.Viper) {
	keys := map[string]interface{}{
		"server.host":              DefaultServerHost,
		"server.port":              DefaultServerPort,
		"server.read_timeout":      DefaultReadTimeout,
		"server.write_timeout":     DefaultWriteTimeout,
		"server.shutdown_timeout":  DefaultShutdownTimeout,
		"server.max_body_size":     DefaultMaxBodySize,
		"server.allowed_origins":   []string{"*"},
		"server.analysis_rps":      DefaultAnalysisRPS,
		"server.analysis_burst":    DefaultAnalysisBurst,
		"backend.base_url":         DefaultBackendURL,
		"backend.path_prefix":      DefaultBackendPrefix,
		"backend.timeout":          DefaultBackendTimeout,
		"backend.retry_max":        DefaultBackendRetryMax,
		"backend.retry_wait":       DefaultBackendRetryWait,
		"backend.user_agent":       DefaultUserAgent,
		"redis.enabled":            false,
		"redis.addr":               DefaultRedisAddr,
		"redis.password":           "",
		"redis.db":                 0,
		"redis.key_prefix":         DefaultRedisPrefix,
		"redis.default_ttl":        DefaultRedisTTL,
		"kafka.enabled":            false,
		"kafka.brokers":            []string{DefaultKafkaBroker},
		"kafka.group_id":           DefaultKafkaGroupID,
		"kafka.refresh_topic":      DefaultRefreshTopic,
		"kafka.dead_letter_topic":  DefaultDeadLetterTopic,
		"kafka.auto_create_topics": false,
		"minio.enabled":            false,
		"minio.endpoint":           DefaultMinIOEndpoint,
		"minio.access_key_id":      "",
		"minio.secret_access_key":  "",
		"minio.use_ssl":            false,
		"minio.bucket":             DefaultMinIOBucket,
		"render.center_lat":        DefaultCenterLat,
		"render.center_lng":        DefaultCenterLng,
		"render.zoom":              DefaultZoom,
		"render.width":             DefaultWidth,
		"render.height":            DefaultHeight,
		"render.raw_color":         DefaultRawColor,
		"render.default_format":    DefaultFormat,
		"worker.health_port":       DefaultWorkerHealthPort,
		"worker.handler_timeout":   DefaultWorkerHandlerTimeout,
		"metrics.enabled":          true,
		"metrics.namespace":        DefaultMetricsNamespace,
		"metrics.path":             DefaultMetricsPath,
		"log.level":                DefaultLogLevel,
		"log.format":               DefaultLogFormat,
	}
	for k, val := range keys {
		v.SetDefault(k, val)
	}
}

//Personal.AI order the ending
