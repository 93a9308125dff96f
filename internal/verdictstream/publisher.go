// Package verdictstream fans non-sensitive verdict summaries out to Kafka so
// downstream consumers (dashboards, alerting) follow evaluations without
// polling the API. Only statuses, digests, and metadata are published.
package verdictstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"attestra/internal/domain"
)

// VerdictEvent is the wire shape published per evaluation.
type VerdictEvent struct {
	EvaluationID        string                  `json:"evaluationId"`
	OverallStatus       domain.Status           `json:"overallStatus"`
	ControlSummary      []domain.ControlSummary `json:"controlSummary"`
	PolicyVersion       string                  `json:"policyVersion"`
	EvidenceHash        string                  `json:"evidenceHash"`
	EvaluationTimestamp time.Time               `json:"evaluationTimestamp"`
}

// Publisher emits verdict events.
type Publisher interface {
	Publish(ctx context.Context, event VerdictEvent) error
	Close()
}

// KafkaPublisher produces verdict events to a Kafka topic.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects a producer to the given brokers.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Publish produces one event, keyed by evaluation ID. Delivery failures are
// logged asynchronously; verdict streaming is best effort and never blocks or
// fails an evaluation.
func (p *KafkaPublisher) Publish(ctx context.Context, event VerdictEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verdict event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.EvaluationID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("verdict publish failed",
				"evaluation_id", event.EvaluationID,
				"error", err,
			)
		}
	})
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// Noop discards events; used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, VerdictEvent) error { return nil }
func (Noop) Close()                                      {}
