// Package testutil provides common test utilities for TrajMap.
package testutil

import (
	"sync"

	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger for testing purposes.
// It records log messages and can be used to verify logging behavior.
// Children created by With and Named share the parent's message buffer.
type MockLogger struct {
	rec    *recorder
	name   string
	fields []logging.Field
}

type recorder struct {
	mu       sync.Mutex
	messages []LogMessage
	level    string
}

// LogMessage represents a single log entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the first field named key.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{rec: &recorder{level: logging.LevelDebug}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.messages = append(m.rec.messages, LogMessage{
		Level:   level,
		Logger:  m.name,
		Message: msg,
		Fields:  all,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }

// Fatal records the entry but does not exit.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := &MockLogger{rec: m.rec, name: m.name}
	child.fields = append(append(child.fields, m.fields...), fields...)
	return child
}

func (m *MockLogger) Named(name string) logging.Logger {
	full := name
	if m.name != "" {
		full = m.name + "." + name
	}
	return &MockLogger{rec: m.rec, name: full, fields: m.fields}
}

func (m *MockLogger) SetLevel(level string) {
	m.rec.mu.Lock()
	m.rec.level = level
	m.rec.mu.Unlock()
}

// Level returns the last level passed to SetLevel.
func (m *MockLogger) Level() string {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	return m.rec.level
}

func (m *MockLogger) Sync() error {
	return nil
}

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	result := make([]LogMessage, len(m.rec.messages))
	copy(result, m.rec.messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.messages = m.rec.messages[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	_, ok := m.Find(level, msg)
	return ok
}

// Find returns the first message with the given level and content.
func (m *MockLogger) Find(level, msg string) (LogMessage, bool) {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	for _, logged := range m.rec.messages {
		if logged.Level == level && logged.Message == msg {
			return logged, true
		}
	}
	return LogMessage{}, false
}

var _ logging.Logger = (*MockLogger)(nil)

//Personal.AI order the ending
