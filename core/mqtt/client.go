package mqtt

// Publisher sends payloads to MQTT topics.
type Publisher interface {
	// Publish delivers payload to topic. Retained messages are replayed by
	// the broker to late subscribers.
	Publish(topic string, payload []byte, retained bool) error
}
