package stream

import "time"

// MQTTSinkOption is a functional option for configuring an MQTTSink during construction.
type MQTTSinkOption func(*MQTTSink)

// WithBroker sets the broker URL, e.g. "tcp://localhost:1883".
//
// Parameters:
//   - url: the broker URL
//
// Returns:
//   - MQTTSinkOption: a function that applies the broker to a sink
func WithBroker(url string) MQTTSinkOption {
	return func(s *MQTTSink) {
		s.broker = url
	}
}

// WithClientID sets the MQTT client identifier.
//
// Parameters:
//   - id: the client ID
//
// Returns:
//   - MQTTSinkOption: a function that applies the client ID to a sink
func WithClientID(id string) MQTTSinkOption {
	return func(s *MQTTSink) {
		s.clientID = id
	}
}

// WithTopic sets the topic snapshots are published to.
//
// Parameters:
//   - topic: the MQTT topic
//
// Returns:
//   - MQTTSinkOption: a function that applies the topic to a sink
func WithTopic(topic string) MQTTSinkOption {
	return func(s *MQTTSink) {
		s.topic = topic
	}
}

// WithQoS sets the publish quality of service: 0, 1 or 2.
//
// Parameters:
//   - qos: the quality of service level
//
// Returns:
//   - MQTTSinkOption: a function that applies the QoS to a sink
func WithQoS(qos byte) MQTTSinkOption {
	return func(s *MQTTSink) {
		s.qos = qos
	}
}

// WithRetained sets whether the broker keeps the last snapshot for new subscribers.
//
// Parameters:
//   - retained: the retain flag
//
// Returns:
//   - MQTTSinkOption: a function that applies the retain flag to a sink
func WithRetained(retained bool) MQTTSinkOption {
	return func(s *MQTTSink) {
		s.retained = retained
	}
}

// WithTimeout sets the connect and ping timeout.
//
// Parameters:
//   - timeout: the timeout
//
// Returns:
//   - MQTTSinkOption: a function that applies the timeout to a sink
func WithTimeout(timeout time.Duration) MQTTSinkOption {
	return func(s *MQTTSink) {
		s.timeout = timeout
	}
}
