// Package notifier consumes workflow events and turns them into
// customer-facing notifications. There is no push channel, so notifications
// are logged; the consumer still demonstrates the full envelope + dedup
// pipeline.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "orange-brew/internal/kafka"
	"orange-brew/internal/orders"
	"orange-brew/internal/redisx"
)

// Dedup remembers which event ids were already handled. Best-effort: a lost
// mark only means one duplicate notification.
type Dedup interface {
	Seen(ctx context.Context, eventID string) bool
	Mark(ctx context.Context, eventID string)
}

type RedisDedup struct{ RDB *redis.Client }

func (d *RedisDedup) Seen(ctx context.Context, eventID string) bool {
	exists, _ := redisx.Exists(ctx, d.RDB, fmt.Sprintf(redisx.KeyDedup, "notifier", eventID))
	return exists
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) {
	_ = d.RDB.Set(ctx, fmt.Sprintf(redisx.KeyDedup, "notifier", eventID), "1", redisx.TTLDedup).Err()
}

type Service struct {
	Dedup       Dedup
	ServiceName string
}

// HandleEvent is the consumer handler for both workflow topics. The dedup
// mark is written only after the event was handled, so a decode failure
// leaves the message eligible for redelivery.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// At-least-once delivery means replays are expected.
	if s.Dedup.Seen(ctx, env.EventID) {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify user %d: order %d received (%s, %d items, total %d cents)",
			p.UserID, p.OrderID, p.OrderType, len(p.Items), p.TotalCents)
	case orders.EventPaymentConfirmed:
		p, err := kafkax.UnwrapPayload[orders.PaymentConfirmedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify user %d: payment %d for order %d confirmed (%s, %d cents), kitchen started",
			p.UserID, p.PaymentID, p.OrderID, p.Method, p.AmountCents)
	default:
		// unknown event type, skip
	}

	s.Dedup.Mark(ctx, env.EventID)
	return nil
}
