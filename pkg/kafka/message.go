package kafka

import (
	"time"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Trace context (extracted from Kafka headers)
	TraceParent string
	TraceState  string

	// Parsed content
	Envelope *DebeziumEnvelope
}

// ParseEnvelope parses the message value as a Debezium CDC envelope
func (m *IncomingMessage) ParseEnvelope() error {
	envelope, err := ParseDebeziumMessage(m.Value)
	if err != nil {
		return err
	}
	m.Envelope = envelope
	return nil
}

// GetHeader returns a header value, or empty string when absent
func (m *IncomingMessage) GetHeader(key string) string {
	return m.Headers[key]
}

// GetEventType returns the event type header on non-CDC event messages
func (m *IncomingMessage) GetEventType() string {
	return m.Headers["event_type"]
}

// SourceTable returns the table the change came from, when the message is a
// parsed CDC envelope.
func (m *IncomingMessage) SourceTable() string {
	if m.Envelope == nil {
		return ""
	}
	return m.Envelope.Payload.Source.Table
}

// IsTombstone reports whether the message is a compaction tombstone (nil
// value).
func (m *IncomingMessage) IsTombstone() bool {
	return len(m.Value) == 0
}
