package mqtt

import (
	"fmt"
	"sync"
)

// Message is a payload captured by MockPublisher.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []Message
	Fail     bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the message or returns an error if configured to fail.
func (m *MockPublisher) Publish(topic string, payload []byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, Message{Topic: topic, Payload: append([]byte(nil), payload...), Retained: retained})
	return nil
}

// Last returns the most recent message.
func (m *MockPublisher) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return Message{}, false
	}
	return m.Messages[len(m.Messages)-1], true
}
