// Package bootstrap builds the clients shared by the API server and the
// refresh worker from a loaded Config.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/backend"
	"github.com/turtacn/TrajMap/internal/config"
	"github.com/turtacn/TrajMap/internal/infrastructure/database/redis"
	"github.com/turtacn/TrajMap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/TrajMap/internal/infrastructure/storage/minio"
	"github.com/turtacn/TrajMap/internal/interfaces/http/handlers"
	"github.com/turtacn/TrajMap/internal/render"
)

// Infrastructure holds every client a process needs.  Optional collaborators
// are nil when their config section is disabled.
type Infrastructure struct {
	Config *config.Config
	Logger logging.Logger

	Backend   *backend.Client
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Redis *redis.Client
	Cache redis.Cache

	Producer  *kafka.Producer
	Publisher *kafka.RefreshPublisher

	MinIO     *minio.MinIOClient
	Snapshots minio.SnapshotRepository

	closers []func() error
}

// New connects to every enabled dependency.  source names the process in
// emitted events.  On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, source string) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{Config: cfg, Logger: logger}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
			ConstLabels:          map[string]string{"process": source},
		}, logger.Named("metrics"))
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		infra.Collector = collector
	} else {
		infra.Collector = prometheus.NewNoopCollector()
	}
	infra.Metrics = prometheus.NewAppMetrics(infra.Collector)

	client, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.ClientOptions(logger, infra.Metrics)...)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	infra.Backend = client

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(&cfg.Redis.RedisConfig, logger.Named("redis"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = rc
		infra.closers = append(infra.closers, rc.Close)
		infra.Cache = redis.NewRedisCache(rc, logger.Named("cache"),
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
		)
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.ProducerConfig(), logger.Named("kafka"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		infra.Producer = producer
		infra.closers = append(infra.closers, producer.Close)
		infra.Publisher = kafka.NewRefreshPublisher(producer, source, cfg.Kafka.RefreshTopic)
	}

	if cfg.MinIO.Enabled {
		mc, err := minio.NewMinIOClient(ctx, &cfg.MinIO.MinIOConfig, logger.Named("minio"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.MinIO = mc
		infra.Snapshots = minio.NewSnapshotRepository(mc, logger.Named("snapshots"))
	}

	logger.Info("infrastructure initialized",
		logging.String("source", source),
		logging.Bool("cache", infra.Cache != nil),
		logging.Bool("events", infra.Publisher != nil),
		logging.Bool("snapshots", infra.Snapshots != nil),
		logging.Bool("metrics", cfg.Metrics.Enabled),
	)
	return infra, nil
}

// EnsureTopics creates the refresh and dead-letter topics when Kafka is
// enabled with auto_create_topics.
func (i *Infrastructure) EnsureTopics() error {
	k := i.Config.Kafka
	if !k.Enabled || !k.AutoCreateTopics {
		return nil
	}
	tm, err := kafka.NewTopicManager(k.Brokers, i.Logger.Named("kafka"))
	if err != nil {
		return err
	}
	defer tm.Close()

	topics := kafka.DefaultTopics(k.ReplicationFactor)
	topics[0].Name = k.RefreshTopic
	topics[1].Name = k.DeadLetterTopic
	return tm.EnsureTopics(topics)
}

// Service wires the map service to every available collaborator.
func (i *Infrastructure) Service() mapview.Service {
	cfg := i.Config
	opts := []mapview.Option{
		mapview.WithRenderOptions(cfg.Render.Options()),
		mapview.WithRawColor(cfg.Render.RawColor),
		mapview.WithMetrics(i.Metrics),
	}
	if f, err := render.ParseFormat(cfg.Worker.SnapshotFormat); err == nil {
		opts = append(opts, mapview.WithSnapshotFormat(f))
	}
	if i.Cache != nil {
		opts = append(opts, mapview.WithCache(i.Cache, cfg.Redis.DefaultTTL))
	}
	if i.Publisher != nil {
		opts = append(opts, mapview.WithRefreshPublisher(i.Publisher))
	}
	if i.Snapshots != nil {
		opts = append(opts, mapview.WithSnapshotStore(i.Snapshots))
	}
	return mapview.NewService(i.Backend, i.Logger, opts...)
}

// HealthCheckers returns a readiness check per connected dependency.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	var checks []handlers.HealthChecker
	if i.Redis != nil {
		checks = append(checks, handlers.CheckFunc{Component: "redis", Fn: i.Redis.Ping})
	}
	if i.MinIO != nil {
		checks = append(checks, handlers.CheckFunc{Component: "minio", Fn: i.MinIO.HealthCheck})
	}
	return checks
}

// Close releases connections in reverse order of creation.
func (i *Infrastructure) Close() error {
	var first error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil && first == nil {
			first = err
		}
	}
	i.closers = nil
	return first
}

//Personal.AI order the ending
