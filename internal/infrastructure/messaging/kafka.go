package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sokoni/eventpos-api/internal/config"
)

// Automation trigger types
const (
	TriggerOrderCreated    = "order_created"
	TriggerOrderCompleted  = "order_completed"
	TriggerPaymentReceived = "payment_received"
	TriggerLowStock        = "low_stock"
)

// AutomationTrigger is the envelope written to the automation topic. Messages
// are keyed by organization so per-tenant consumers see them in order.
type AutomationTrigger struct {
	Type           string         `json:"type"`
	OrganizationID string         `json:"organization_id"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Payload        map[string]any `json:"payload,omitempty"`
}

// KafkaDispatcher writes automation triggers to a Kafka topic
type KafkaDispatcher struct {
	writer *kafka.Writer
}

func NewKafkaDispatcher(cfg *config.KafkaConfig) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.AutomationTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, trigger AutomationTrigger) error {
	if trigger.OccurredAt.IsZero() {
		trigger.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(trigger)
	if err != nil {
		return err
	}
	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(trigger.OrganizationID),
		Value: payload,
	})
}

// Close closes the underlying Kafka writer
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
