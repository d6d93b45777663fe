package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Header keys carried on every published notification.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

const sourceName = "barberd"

type kafkaEnvelope struct {
	UserID  string         `json:"user_id"`
	Event   string         `json:"event"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

// KafkaNotifier publishes notifications to a Kafka topic for the push
// delivery pipeline to consume. Messages are keyed by user id so one user's
// notifications stay ordered.
type KafkaNotifier struct {
	writer *kafka.Writer
	now    func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
	}
	return &KafkaNotifier{writer: writer, now: func() time.Time { return time.Now().UTC() }}
}

func (n *KafkaNotifier) Notify(ctx context.Context, msg Notification) error {
	value, err := encodeEnvelope(msg, n.now())
	if err != nil {
		return err
	}

	eventID, err := uuid.NewV7()
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(eventID.String())},
			{Key: HeaderEventType, Value: []byte(msg.Event)},
			{Key: HeaderSource, Value: []byte(sourceName)},
		},
	})
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

func encodeEnvelope(msg Notification, sentAt time.Time) ([]byte, error) {
	return json.Marshal(kafkaEnvelope{
		UserID:  msg.UserID,
		Event:   msg.Event,
		Message: msg.Message,
		Payload: msg.Payload,
		SentAt:  sentAt,
	})
}
