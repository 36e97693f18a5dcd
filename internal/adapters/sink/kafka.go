package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yoshikawa-river/keiba-features/pkg/logger"
)

// KafkaReporter publishes run reports to a Kafka topic so training jobs and
// monitoring can react to finished feature runs.
type KafkaReporter struct {
	writer *kafka.Writer
	log    logger.Logger
}

// ReporterOption configures a KafkaReporter.
type ReporterOption func(*KafkaReporter)

// WithReporterLogger sets the reporter's logger.
func WithReporterLogger(l logger.Logger) ReporterOption {
	return func(r *KafkaReporter) {
		r.log = l
	}
}

// NewKafkaReporter builds a reporter for the given brokers and topic.
func NewKafkaReporter(brokers []string, topic string, opts ...ReporterOption) (*KafkaReporter, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}
	r := &KafkaReporter{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
		},
		log: logger.Named("sink.kafka"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Publish serializes the report as JSON keyed by run ID.
func (r *KafkaReporter) Publish(ctx context.Context, runID string, report any) error {
	value, err := json.Marshal(report)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(runID),
		Value: value,
		Time:  time.Now(),
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		r.log.Error(ctx, "failed to publish run report",
			logger.String("run_id", runID), logger.Error(err))
		return err
	}
	r.log.Debug(ctx, "run report published", logger.String("run_id", runID))
	return nil
}

// Close flushes and releases the writer.
func (r *KafkaReporter) Close() error {
	return r.writer.Close()
}
