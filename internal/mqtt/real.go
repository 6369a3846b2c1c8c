package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// BufferSize is how many messages are kept for replay while disconnected.
const BufferSize = 1000

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	topics Topics

	mu      sync.Mutex
	buf     *ringBuffer
	handler func(string)
}

// NewRealPublisher creates a publisher for chamber connected to the given broker.
func NewRealPublisher(broker, chamber string) (*RealPublisher, error) {
	p := &RealPublisher{
		topics: TopicsFor(chamber),
		buf:    newRingBuffer(BufferSize),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("operant-chamber-" + chamber).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(p.topics.System, string(will), 1, false).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect runs on every (re)connect: it restores the command subscription
// and replays anything buffered while the link was down.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	handler := p.handler
	pending, dropped := p.buf.drainAll()
	p.mu.Unlock()

	if handler != nil {
		if err := p.subscribe(c, handler); err != nil {
			log.Printf("mqtt: %v", err)
		}
	}
	if dropped > 0 {
		log.Printf("mqtt: %d buffered messages dropped while disconnected", dropped)
	}
	for _, m := range pending {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			log.Printf("mqtt: replay to %s failed, requeued", m.topic)
			p.mu.Lock()
			p.buf.push(m)
			p.mu.Unlock()
		}
	}
	if len(pending) > 0 {
		log.Printf("mqtt: replayed %d buffered messages", len(pending))
	}
}

func (p *RealPublisher) subscribe(c paho.Client, handler func(string)) error {
	token := c.Subscribe(p.topics.Commands, 1, func(_ paho.Client, m paho.Message) {
		handler(string(m.Payload()))
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe %s: timeout", p.topics.Commands)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", p.topics.Commands, err)
	}
	return nil
}

// Subscribe registers handler for lines published on the commands topic.
// The subscription is restored after every reconnect.
func (p *RealPublisher) Subscribe(handler func(line string)) error {
	p.mu.Lock()
	p.handler = handler
	p.mu.Unlock()

	if !p.client.IsConnectionOpen() {
		return nil
	}
	return p.subscribe(p.client, handler)
}

// Publish sends a behavioral record to the MQTT broker.
func (p *RealPublisher) Publish(rec logic.Record) error {
	// QoS 0 (at-most-once), not retained
	return p.publish(bufferedMsg{topic: p.topics.Events, payload: FormatPayload(rec)})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) - lifecycle events must not be lost
	return p.publish(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) publish(m bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(m)
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.mu.Lock()
		p.buf.push(m)
		p.mu.Unlock()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
