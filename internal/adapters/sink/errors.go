package sink

import "errors"

var (
	// ErrNoBrokers is returned when a Kafka reporter is built without brokers.
	ErrNoBrokers = errors.New("no kafka brokers configured")
	// ErrNoTopic is returned when a Kafka reporter is built without a topic.
	ErrNoTopic = errors.New("no kafka topic configured")
)
