package notifier

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"orange-brew/internal/orders"
)

type memDedup map[string]bool

func (d memDedup) Seen(_ context.Context, eventID string) bool { return d[eventID] }

func (d memDedup) Mark(_ context.Context, eventID string) { d[eventID] = true }

func envelopeMessage(t *testing.T, eventID, eventType string, payload any) kafkago.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		Payload:      raw,
	}
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return kafkago.Message{Value: b}
}

func TestHandleEventMarksAfterSuccess(t *testing.T) {
	dedup := memDedup{}
	svc := &Service{Dedup: dedup, ServiceName: "test-notifier"}

	m := envelopeMessage(t, "ev-1", orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID: 7, UserID: 1, OrderType: orders.TypePickup, TotalCents: 900,
	})
	if err := svc.HandleEvent(context.Background(), m); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if !dedup["ev-1"] {
		t.Fatal("handled event not marked")
	}
}

func TestHandleEventSkipsSeenEvents(t *testing.T) {
	dedup := memDedup{"ev-1": true}
	svc := &Service{Dedup: dedup, ServiceName: "test-notifier"}

	m := envelopeMessage(t, "ev-1", orders.EventOrderCreated, orders.OrderCreatedPayload{OrderID: 7})
	if err := svc.HandleEvent(context.Background(), m); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

// A payload that fails to decode must not be marked as handled, so the
// redelivery gets another chance instead of being dropped forever.
func TestHandleEventDoesNotMarkFailures(t *testing.T) {
	dedup := memDedup{}
	svc := &Service{Dedup: dedup, ServiceName: "test-notifier"}

	m := envelopeMessage(t, "ev-2", orders.EventPaymentConfirmed, "not-an-object")
	if err := svc.HandleEvent(context.Background(), m); err == nil {
		t.Fatal("expected decode error")
	}
	if dedup["ev-2"] {
		t.Fatal("failed event marked as handled")
	}

	// redelivery with a good payload now succeeds
	m = envelopeMessage(t, "ev-2", orders.EventPaymentConfirmed, orders.PaymentConfirmedPayload{
		PaymentID: 3, OrderID: 7, UserID: 1, AmountCents: 900, Method: orders.MethodCash,
	})
	if err := svc.HandleEvent(context.Background(), m); err != nil {
		t.Fatalf("HandleEvent redelivery: %v", err)
	}
	if !dedup["ev-2"] {
		t.Fatal("redelivered event not marked")
	}
}

func TestHandleEventRejectsGarbage(t *testing.T) {
	svc := &Service{Dedup: memDedup{}, ServiceName: "test-notifier"}
	if err := svc.HandleEvent(context.Background(), kafkago.Message{Value: []byte("{")}); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
