package stream

import (
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSink publishes binary snapshots to an MQTT topic.
type MQTTSink struct {
	mu     *sync.Mutex
	closed bool

	broker    string
	clientID  string
	topic     string
	qos       byte
	retained  bool
	keepAlive time.Duration
	timeout   time.Duration

	client  mqtt.Client
	publish func(payload []byte) error
}

var _ Sink = &MQTTSink{}

// NewMQTTSink creates an MQTTSink and connects it to the broker. Without options it connects
// to tcp://localhost:1883 and publishes to "oxy/graph" with QoS 0.
//
// Parameters:
//   - options: variadic list of MQTTSinkOption functions
//
// Returns:
//   - *MQTTSink: the connected sink
//   - error: an error if the QoS is invalid or the connection fails
func NewMQTTSink(options ...MQTTSinkOption) (*MQTTSink, error) {
	s := &MQTTSink{
		mu:        &sync.Mutex{},
		broker:    "tcp://localhost:1883",
		clientID:  "oxy-graph",
		topic:     "oxy/graph",
		keepAlive: 30 * time.Second,
		timeout:   5 * time.Second,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.qos > 2 {
		return nil, fmt.Errorf("mqtt qos %d out of range", s.qos)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID).
		SetKeepAlive(s.keepAlive).
		SetPingTimeout(s.timeout).
		SetConnectTimeout(s.timeout).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("[Stream] connected to %s", s.broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("[Stream] lost connection to %s: %v", s.broker, err)
		})
	s.client = mqtt.NewClient(opts)

	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", s.broker, token.Error())
	}

	s.publish = func(payload []byte) error {
		token := s.client.Publish(s.topic, s.qos, s.retained, payload)
		token.Wait()
		return token.Error()
	}
	return s, nil
}

// Topic returns the topic snapshots are published to.
func (s *MQTTSink) Topic() string {
	return s.topic
}

// Publish encodes the snapshot with MarshalBinary and publishes it, waiting for the broker
// to acknowledge according to the QoS.
func (s *MQTTSink) Publish(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	payload, err := snap.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.publish(payload); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", s.topic, err)
	}
	return nil
}

// Close disconnects from the broker, allowing 250ms for in-flight work to finish.
func (s *MQTTSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.client != nil {
		s.client.Disconnect(250)
	}
	return nil
}
