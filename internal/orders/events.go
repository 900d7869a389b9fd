package orders

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "orange-brew/internal/kafka"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventPaymentConfirmed = "PaymentConfirmed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID  int64 `json:"product_id"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderID    int64       `json:"order_id"`
	UserID     int64       `json:"user_id"`
	OrderType  OrderType   `json:"order_type"`
	Items      []ItemPrice `json:"items"`
	TotalCents int64       `json:"total_cents"`
}

// PaymentConfirmed is the named domain event behind the payment->kitchen
// coupling: confirming a payment is what moves its order into COOKING.
type PaymentConfirmedPayload struct {
	PaymentID   int64         `json:"payment_id"`
	OrderID     int64         `json:"order_id"`
	UserID      int64         `json:"user_id"`
	AmountCents int64         `json:"amount_cents"`
	Method      PaymentMethod `json:"method"`
}

// Emitter publishes workflow events. Publishing is best-effort and never
// fails the request that triggered it.
type Emitter interface {
	Emit(ctx context.Context, eventType string, orderID int64, payload any)
}

var topicByEvent = map[string]string{
	EventOrderCreated:     TopicOrderCreated,
	EventPaymentConfirmed: TopicPaymentConfirmed,
}

// KafkaEmitter wraps one async producer per topic.
type KafkaEmitter struct {
	Producers map[string]*kafkax.Producer // topic -> producer
	Service   string
}

func (e *KafkaEmitter) Emit(ctx context.Context, eventType string, orderID int64, payload any) {
	prod := e.Producers[topicByEvent[eventType]]
	if prod == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       kafkax.MustMarshal(payload),
	}
	prod.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
