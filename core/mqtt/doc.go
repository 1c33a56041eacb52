// Package mqtt defines the broker-agnostic publishing contract used by the
// plan state publisher. The Paho implementation lives in infra/mqtt.
package mqtt
