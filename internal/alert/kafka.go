package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fides/internal/platform/kafka/producer"
	"fides/pkg/requestcontext"
)

// DefaultTopic is where fraud alerts are published when no topic is configured.
const DefaultTopic = "fides.fraud.alerts"

// kafkaProducer is the slice of the platform producer the notifier needs.
type kafkaProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaNotifier publishes alerts as JSON records so downstream consumers
// (case management, paging) can react without polling the API.
type KafkaNotifier struct {
	producer kafkaProducer
	topic    string
}

func NewKafkaNotifier(p kafkaProducer, topic string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaNotifier{producer: p, topic: topic}
}

type alertPayload struct {
	Recipients []string  `json:"recipients"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

func (n *KafkaNotifier) Notify(ctx context.Context, recipients []string, message string) error {
	payload, err := json.Marshal(alertPayload{
		Recipients: recipients,
		Message:    message,
		SentAt:     requestcontext.Now(ctx),
	})
	if err != nil {
		alertsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("marshal alert: %w", err)
	}

	err = n.producer.Produce(ctx, &producer.Message{
		Topic: n.topic,
		Key:   []byte(message),
		Value: payload,
	})
	if err != nil {
		alertsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("publish alert: %w", err)
	}
	alertsTotal.WithLabelValues("sent").Inc()
	return nil
}
