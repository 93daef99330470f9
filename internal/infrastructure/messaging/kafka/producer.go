// Package kafka carries layer.refresh events between the API server, which
// emits them after analysis runs, and the worker, which re-renders and
// snapshots the affected layers.
package kafka

import (
	"context"
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessageQueueError, "producer closed")
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	Acks            string        `mapstructure:"acks"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	MaxMessageBytes int           `mapstructure:"max_message_bytes"`
	Compression     string        `mapstructure:"compression"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	SASLMechanism   string        `mapstructure:"sasl_mechanism"` // "", PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	SASLUsername    string        `mapstructure:"sasl_username"`
	SASLPassword    string        `mapstructure:"sasl_password"`
	TLSEnabled      bool          `mapstructure:"tls_enabled"`
}

// ProducerMetrics are cumulative counters since construction.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastLatencyMs  atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes messages to Kafka.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

// NewProducer validates cfg and builds a hashing, batching writer.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1 << 20
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	mech, err := saslMechanism(cfg.SASLMechanism, cfg.SASLUsername, cfg.SASLPassword)
	if err != nil {
		return nil, err
	}
	transport := &kafka.Transport{DialTimeout: 10 * time.Second, SASL: mech}
	if cfg.TLSEnabled {
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	acks := kafka.RequireOne
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "all":
		acks = kafka.RequireAll
	}

	var compression kafka.Compression
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
		Compression:  compression,
		Transport:    transport,
	}

	return newProducer(writer, cfg, logger), nil
}

func newProducer(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1 << 20
	}
	return &Producer{writer: w, config: cfg, logger: logger, metrics: &ProducerMetrics{}}
}

func saslMechanism(name, user, pass string) (sasl.Mechanism, error) {
	switch name {
	case "":
		return nil, nil
	case "PLAIN":
		return plain.Mechanism{Username: user, Password: pass}, nil
	case "SCRAM-SHA-256":
		m, err := scram.Mechanism(scram.SHA256, user, pass)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create SASL mechanism")
		}
		return m, nil
	case "SCRAM-SHA-512":
		m, err := scram.Mechanism(scram.SHA512, user, pass)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create SASL mechanism")
		}
		return m, nil
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").WithDetail(name)
	}
}

// Publish writes a single message synchronously.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "value required")
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large")
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg.toKafka()); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish failed").WithDetail(msg.Topic)
	}
	latency := time.Since(start).Milliseconds()
	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.metrics.LastLatencyMs.Store(latency)

	p.logger.Debug("message published", logging.String("topic", msg.Topic), logging.Int64("latency_ms", latency))
	return nil
}

// Sent returns the number of successfully published messages.
func (p *Producer) Sent() int64 { return p.metrics.MessagesSent.Load() }

// Failed returns the number of failed publishes.
func (p *Producer) Failed() int64 { return p.metrics.MessagesFailed.Load() }

// Close flushes and closes the writer.  Subsequent calls are no-ops.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

// ValidateProducerConfig checks the fields NewProducer cannot default.
func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max_retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
