package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

// Topics.
const (
	TopicLayerRefresh = "trajmap.layer.refresh"
	TopicDeadLetter   = "trajmap.dead_letter"
)

// EventTypeLayerRefresh marks an envelope carrying a LayerRefreshPayload.
const EventTypeLayerRefresh = "layer.refresh"

// Message is a consumed Kafka record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

func (m *ProducerMessage) toKafka() kafka.Message {
	headers := make([]kafka.Header, 0, len(m.Headers))
	for k, v := range m.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{Topic: m.Topic, Key: m.Key, Value: m.Value, Headers: headers, Time: ts}
}

// MessageHandler processes one consumed message.
type MessageHandler func(ctx context.Context, msg *Message) error

// EventEnvelope wraps every event published by TrajMap.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	RequestID     string          `json:"request_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// LayerRefreshPayload asks the worker to rebuild one layer.
type LayerRefreshPayload struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload")
	}
	return nil
}

// ToMessage builds a ProducerMessage keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.RequestID != "" {
		headers["request_id"] = e.RequestID
	}
	return &ProducerMessage{Topic: topic, Key: []byte(key), Value: val, Headers: headers, Timestamp: e.Timestamp}, nil
}

// MessageToEventEnvelope decodes a consumed record.
func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// RefreshPublisher
// ─────────────────────────────────────────────────────────────────────────────

// Publisher is the subset of Producer used by RefreshPublisher.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// RefreshPublisher emits layer.refresh events keyed by layer kind so that all
// refreshes for one kind land on one partition in order.
type RefreshPublisher struct {
	pub    Publisher
	source string
	topic  string
}

// NewRefreshPublisher wraps pub.  An empty topic means TopicLayerRefresh.
func NewRefreshPublisher(pub Publisher, source, topic string) *RefreshPublisher {
	if topic == "" {
		topic = TopicLayerRefresh
	}
	return &RefreshPublisher{pub: pub, source: source, topic: topic}
}

// PublishRefresh emits one event for kind.
func (r *RefreshPublisher) PublishRefresh(ctx context.Context, kind, reason, requestID string) error {
	env, err := NewEventEnvelope(EventTypeLayerRefresh, r.source, LayerRefreshPayload{Kind: kind, Reason: reason})
	if err != nil {
		return err
	}
	env.RequestID = requestID
	msg, err := env.ToMessage(r.topic, kind)
	if err != nil {
		return err
	}
	return r.pub.Publish(ctx, msg)
}

// ─────────────────────────────────────────────────────────────────────────────
// TopicManager
// ─────────────────────────────────────────────────────────────────────────────

// TopicConfig describes a topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the topics TrajMap needs.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to dial kafka")
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// TopicExists reports whether name has at least one partition.
func (m *TopicManager) TopicExists(name string) bool {
	partitions, err := m.conn.ReadPartitions(name)
	return err == nil && len(partitions) > 0
}

// EnsureTopics creates every missing topic.
func (m *TopicManager) EnsureTopics(topics []TopicConfig) error {
	for _, t := range topics {
		if t.Name == "" || t.NumPartitions <= 0 || t.ReplicationFactor <= 0 {
			return errors.New(errors.ErrCodeValidation, "invalid topic config").WithDetail(t.Name)
		}
		if m.TopicExists(t.Name) {
			continue
		}
		kc := kafka.TopicConfig{Topic: t.Name, NumPartitions: t.NumPartitions, ReplicationFactor: t.ReplicationFactor}
		if t.RetentionMs > 0 {
			kc.ConfigEntries = append(kc.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(t.RetentionMs, 10)})
		}
		if err := m.conn.CreateTopics(kc); err != nil {
			return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create topic").WithDetail(t.Name)
		}
		m.logger.Info("topic created", logging.String("topic", t.Name))
	}
	return nil
}

// Close closes the broker connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns the topics used by the API server and worker.
func DefaultTopics(replication int) []TopicConfig {
	if replication <= 0 {
		replication = 1
	}
	const day = int64(24 * time.Hour / time.Millisecond)
	return []TopicConfig{
		{Name: TopicLayerRefresh, NumPartitions: 4, ReplicationFactor: replication, RetentionMs: day},
		{Name: TopicDeadLetter, NumPartitions: 1, ReplicationFactor: replication, RetentionMs: 7 * day},
	}
}

//Personal.AI order the ending
