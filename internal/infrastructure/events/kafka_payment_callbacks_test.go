package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"payhook/internal/domain/entities"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testTransaction() entities.Transaction {
	return entities.Transaction{
		ID: "T1", UserID: "u1", PlanID: "pro", Provider: entities.ProviderPayme, Amount: 5000000,
		Status: entities.TransactionStatusCompleted, ProviderTransactionID: entities.Ptr("ext-1"),
	}
}

func TestKafkaPaymentCallbacks_Publish(t *testing.T) {
	w := &fakeWriter{}
	c := newKafkaPaymentCallbacks(nil, w, "payments")
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, c.OnPaymentCompleted(context.Background(), testTransaction()))
	require.NoError(t, c.OnPaymentCompleted(context.Background(), testTransaction()))
	require.NoError(t, c.OnPaymentCancelled(context.Background(), testTransaction()))
	require.Len(t, w.msgs, 3)

	var first, second, cancelled PaymentEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &first))
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &second))
	require.NoError(t, json.Unmarshal(w.msgs[2].Value, &cancelled))

	require.Equal(t, "T1", string(w.msgs[0].Key))
	require.Equal(t, EventPaymentCompleted, first.EventType)
	require.Equal(t, "2026-03-01T12:00:00Z", first.OccurredAt)
	require.Equal(t, "ext-1", first.ProviderTransactionID)
	require.Equal(t, int64(5000000), first.Amount)
	require.Equal(t, first.EventID, second.EventID, "redelivery must reuse the event id")
	require.NotEqual(t, first.EventID, cancelled.EventID)
	require.Equal(t, EventPaymentCancelled, cancelled.EventType)
}

func TestKafkaPaymentCallbacks_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	c := newKafkaPaymentCallbacks(nil, w, "payments")

	err := c.OnPaymentCompleted(context.Background(), testTransaction())
	require.ErrorIs(t, err, w.err)
}
