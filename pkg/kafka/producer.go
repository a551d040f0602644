// Package kafka publishes grant workflow events for downstream consumers
// such as reporting and notification services.
package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// ParseBrokers parses a comma-separated broker string
func ParseBrokers(brokers string) []string {
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}
	return brokerList
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		// Allow Kafka to auto-create the topic in dev environments when it doesn't exist yet.
		// Without this, a first publish may fail with "Unknown Topic Or Partition".
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// WorkflowEvent represents a lifecycle event on a grant workflow entity
type WorkflowEvent struct {
	EventType  string          `json:"event_type"` // e.g. "proposal.submitted", "kontrak.signed"
	ProposalID string          `json:"proposal_id"`
	EntityID   string          `json:"entity_id"`
	EntityType string          `json:"entity_type"` // proposal, kontrak, monitoring, pencairan, luaran, seminar
	ActorID    string          `json:"actor_id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	TraceID    string          `json:"trace_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// PublishWorkflowEvent publishes a workflow event to Kafka. Events for the
// same proposal share a partition key so consumers see them in order.
func (p *Producer) PublishWorkflowEvent(ctx context.Context, event *WorkflowEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishWorkflowEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.TraceID = tracing.GetTraceID(ctx)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "entity_type", Value: []byte(event.EntityType)},
		{Key: "proposal_id", Value: []byte(event.ProposalID)},
	}
	if traceparent := tracing.GetTraceParent(ctx); traceparent != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(traceparent)})
	}

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(event.ProposalID),
		Value:   data,
		Headers: headers,
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.RecordKafkaPublish(p.topic, "error", time.Since(start).Seconds())
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish workflow event")
		return err
	}
	metrics.RecordKafkaPublish(p.topic, "success", time.Since(start).Seconds())

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type":  event.EventType,
		"entity_id":   event.EntityID,
		"entity_type": event.EntityType,
		"proposal_id": event.ProposalID,
	}).Debug("Published workflow event")

	return nil
}

// Stats returns producer statistics
func (p *Producer) Stats() kafka.WriterStats {
	return p.writer.Stats()
}
