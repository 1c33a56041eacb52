package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/kilianp07/energyadvisor/core/monitoring"
	coremqtt "github.com/kilianp07/energyadvisor/core/mqtt"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoClient keeps the latest price sensor document received on the price
// topic and publishes plan state. It implements price.Source,
// price.ChangeNotifier and core/mqtt.Publisher.
type PahoClient struct {
	cli    pahoClient
	cfg    Config
	logger logger.Logger

	mu        sync.RWMutex
	state     *price.SensorState
	listeners []func()
}

// NewPahoClient connects to the broker. The price topic, when configured,
// is subscribed on every (re)connect.
func NewPahoClient(cfg Config, log logger.Logger) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New("mqtt_client")
	}
	pc := &PahoClient{cfg: cfg, logger: log}
	if cfg.MaxRetries <= 0 {
		pc.cfg.MaxRetries = 3
	}
	if cfg.BackoffMS <= 0 {
		pc.cfg.BackoffMS = 100
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if cfg.PriceTopic != "" {
			if token := c.Subscribe(cfg.PriceTopic, cfg.qos("price"), pc.onPrice); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe %s: %v", cfg.PriceTopic, token.Error())
			}
		}
		if cfg.LWTTopic != "" {
			c.Publish(cfg.LWTTopic, cfg.LWTQoS, cfg.LWTRetain, "online")
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	pc.cli = c
	return pc, nil
}

func (p *PahoClient) onPrice(_ paho.Client, msg paho.Message) {
	st, err := price.ParseState(msg.Payload())
	if err != nil {
		p.logger.Errorf("failed to decode price state on %s: %v", msg.Topic(), err)
		return
	}
	if st.EntityID == "" {
		st.EntityID = msg.Topic()
	}
	if st.LastChanged.IsZero() {
		st.LastChanged = time.Now().UTC()
	}
	p.mu.Lock()
	changed := p.state.Fingerprint() != st.Fingerprint()
	p.state = st
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()
	if !changed {
		p.logger.Debugf("price state on %s unchanged", msg.Topic())
		return
	}
	p.logger.Debugf("price state on %s changed", msg.Topic())
	for _, fn := range listeners {
		fn()
	}
}

// Fetch returns the last received price state.
func (p *PahoClient) Fetch(ctx context.Context) (*price.SensorState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state == nil {
		return nil, &price.ExtractionError{Sensor: p.cfg.PriceTopic, Err: price.ErrSensorUnavailable}
	}
	return p.state, nil
}

// OnChange registers fn to run when a price document with new content arrives.
func (p *PahoClient) OnChange(fn func()) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Publish sends payload with exponential backoff between attempts. The final
// failure is reported to the monitor.
func (p *PahoClient) Publish(topic string, payload []byte, retained bool) error {
	if p.cli == nil || !p.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	backoff := time.Duration(p.cfg.BackoffMS) * time.Millisecond
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.qos("state"), retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect marks the service offline and closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	if p.cfg.LWTTopic != "" {
		p.cli.Publish(p.cfg.LWTTopic, p.cfg.LWTQoS, p.cfg.LWTRetain, p.cfg.LWTPayload).Wait()
	}
	p.cli.Disconnect(250)
}
