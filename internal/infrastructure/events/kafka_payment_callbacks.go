package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentCancelled = "payment.cancelled"
)

// eventNamespace seeds deterministic event ids: the same transaction and event
// type always yield the same event_id.
var eventNamespace = uuid.MustParse("6f1c1f8e-3a51-4d8a-9a36-2f8f4f6b7c10")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PaymentEvent is the entitlement message consumed by the subscription service.
type PaymentEvent struct {
	EventID               string `json:"event_id"`
	EventType             string `json:"event_type"`
	EventVersion          int    `json:"event_version"`
	OccurredAt            string `json:"occurred_at"`
	TransactionID         string `json:"transaction_id"`
	UserID                string `json:"user_id"`
	PlanID                string `json:"plan_id"`
	Provider              string `json:"provider"`
	Amount                int64  `json:"amount"`
	ProviderTransactionID string `json:"provider_transaction_id,omitempty"`
	CancelReason          *int   `json:"cancel_reason,omitempty"`
}

// KafkaPaymentCallbacks grants and revokes entitlement by publishing events.
// A nil error means the broker acknowledged the message.
type KafkaPaymentCallbacks struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
	now    func() time.Time
}

var _ interfaces.IPaymentCallbacks = (*KafkaPaymentCallbacks)(nil)

func NewKafkaPaymentCallbacks(logger *zap.Logger, brokers []string, topic string) *KafkaPaymentCallbacks {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPaymentCallbacks(logger, writer, topic)
}

func newKafkaPaymentCallbacks(logger *zap.Logger, writer messageWriter, topic string) *KafkaPaymentCallbacks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPaymentCallbacks{logger: logger, writer: writer, topic: topic, now: time.Now}
}

func (c *KafkaPaymentCallbacks) Close() error {
	return c.writer.Close()
}

func (c *KafkaPaymentCallbacks) OnPaymentCompleted(ctx context.Context, tx entities.Transaction) error {
	return c.publish(ctx, EventPaymentCompleted, tx)
}

func (c *KafkaPaymentCallbacks) OnPaymentCancelled(ctx context.Context, tx entities.Transaction) error {
	return c.publish(ctx, EventPaymentCancelled, tx)
}

func (c *KafkaPaymentCallbacks) publish(ctx context.Context, eventType string, tx entities.Transaction) error {
	event := PaymentEvent{
		EventID:       uuid.NewSHA1(eventNamespace, []byte(tx.ID+"/"+eventType)).String(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    c.now().UTC().Format(time.RFC3339),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		PlanID:        tx.PlanID,
		Provider:      string(tx.Provider),
		Amount:        tx.Amount,
		CancelReason:  tx.CancelReason,
	}
	if tx.ProviderTransactionID != nil {
		event.ProviderTransactionID = *tx.ProviderTransactionID
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(tx.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := c.writer.WriteMessages(ctx, msg); err != nil {
		c.logger.Error("[events][kafka] publish failed",
			zap.Error(err), zap.String("topic", c.topic), zap.String("event_type", eventType), zap.String("transaction_id", tx.ID))
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	c.logger.Info("[events][kafka] event published",
		zap.String("topic", c.topic), zap.String("event_type", eventType),
		zap.String("transaction_id", tx.ID), zap.String("user_id", tx.UserID))
	return nil
}
