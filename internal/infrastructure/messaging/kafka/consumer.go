package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// RetryConfig defines how failed messages are retried before dead-lettering.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	Topics          []string      `mapstructure:"topics"`
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"`
	SessionTimeout  time.Duration `mapstructure:"session_timeout"`
	MaxWait         time.Duration `mapstructure:"max_wait"`
	SASLMechanism   string        `mapstructure:"sasl_mechanism"`
	SASLUsername    string        `mapstructure:"sasl_username"`
	SASLPassword    string        `mapstructure:"sasl_password"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// ConsumerMetrics are cumulative counters since Start.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a consumer group and dispatches by topic.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter Publisher
	metrics    *ConsumerMetrics
}

// NewConsumer builds a group reader and, when a dead-letter topic is
// configured, a producer for it.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}

	mech, err := saslMechanism(cfg.SASLMechanism, cfg.SASLUsername, cfg.SASLPassword)
	if err != nil {
		return nil, err
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MaxWait:        cfg.MaxWait,
		SessionTimeout: cfg.SessionTimeout,
		StartOffset:    kafka.FirstOffset,
		Dialer:         &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true, SASLMechanism: mech},
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	var dl Publisher
	if cfg.Retry.DeadLetterTopic != "" {
		p, err := NewProducer(ProducerConfig{
			Brokers:       cfg.Brokers,
			SASLMechanism: cfg.SASLMechanism,
			SASLUsername:  cfg.SASLUsername,
			SASLPassword:  cfg.SASLPassword,
		}, logger)
		if err != nil {
			return nil, err
		}
		dl = p
	}

	return newConsumer(kafka.NewReader(readerCfg), cfg, dl, logger), nil
}

func newConsumer(r ReaderInterface, cfg ConsumerConfig, dl Publisher, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     logger,
		handlers:   make(map[string]MessageHandler),
		deadLetter: dl,
		metrics:    &ConsumerMetrics{},
	}
}

// Subscribe registers handler for topic.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop in a goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)
	c.logger.Info("kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		c.metrics.MessagesConsumed.Add(1)

		msg := &Message{
			Topic:     m.Topic,
			Partition: m.Partition,
			Offset:    m.Offset,
			Key:       m.Key,
			Value:     m.Value,
			Timestamp: m.Time,
			Headers:   make(map[string]string, len(m.Headers)),
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		switch {
		case !ok:
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		case c.process(ctx, msg, handler) == nil:
			c.metrics.MessagesProcessed.Add(1)
		default:
			c.metrics.MessagesFailed.Add(1)
		}

		// Failed messages were dead-lettered or dropped; either way the group
		// moves on.
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.Err(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *Message, handler MessageHandler) error {
	err := handler(ctx, msg)
	if err == nil {
		return nil
	}

	retries := c.config.Retry.MaxRetries
	backoff := c.config.Retry.RetryBackoff
	if backoff == 0 {
		backoff = time.Second
	}
	maxBackoff := c.config.Retry.MaxRetryBackoff
	if maxBackoff == 0 {
		maxBackoff = 30 * time.Second
	}

	for i := 0; i < retries; i++ {
		c.metrics.MessagesRetried.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	c.logger.Error("message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))

	if c.deadLetter != nil && c.config.Retry.DeadLetterTopic != "" {
		headers := make(map[string]string, len(msg.Headers)+2)
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers["original_topic"] = msg.Topic
		headers["error_message"] = err.Error()
		dl := &ProducerMessage{Topic: c.config.Retry.DeadLetterTopic, Key: msg.Key, Value: msg.Value, Headers: headers}
		if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
			c.logger.Error("failed to dead-letter message", logging.Err(dlErr))
		} else {
			c.metrics.MessagesDeadLettered.Add(1)
		}
	}
	return err
}

// Processed returns the number of successfully handled messages.
func (c *Consumer) Processed() int64 { return c.metrics.MessagesProcessed.Load() }

// DeadLettered returns the number of dead-lettered messages.
func (c *Consumer) DeadLettered() int64 { return c.metrics.MessagesDeadLettered.Load() }

// Close stops the loop and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()

	err := c.reader.Close()
	if p, ok := c.deadLetter.(*Producer); ok {
		_ = p.Close()
	}
	c.logger.Info("kafka consumer closed", logging.Int64("consumed", c.metrics.MessagesConsumed.Load()))
	return err
}

// ValidateConsumerConfig checks the fields NewConsumer cannot default.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group_id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid auto_offset_reset").WithDetail(cfg.AutoOffsetReset)
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "retry.max_retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
