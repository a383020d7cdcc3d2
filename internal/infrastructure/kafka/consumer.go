package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminaphoto/lumina/internal/infrastructure/redis"
	"github.com/segmentio/kafka-go"
)

const revenueKey = "stats:revenue"

// Consumer folds reconciliation events from the payments topic into the
// redis-backed admin stats read model. The reconciler itself never
// depends on this path; a lost event only leaves the dashboard counter
// stale until the SQL fallback recomputes it.
type Consumer struct {
	reader      *kafka.Reader
	redisClient redis.RedisClient
}

func NewConsumer(brokers []string, topic, groupID string, redisClient redis.RedisClient) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		redisClient: redisClient,
	}
}

// PaymentEvent is published by the reconciler once per completed
// transaction; the CAS upstream guarantees at most one per session.
type PaymentEvent struct {
	EventType   string  `json:"event_type"`
	SessionID   string  `json:"session_id"`
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PhotoCount  int     `json:"photo_count"`
	CompletedAt string  `json:"completed_at"`
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.reader.Config().Topic, "error", err)
			continue
		}

		var event PaymentEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to unmarshal payment event", "error", err)
			continue
		}

		if event.EventType != "payment_completed" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, event.CompletedAt); err != nil {
			slog.Error("invalid completed_at format", "value", event.CompletedAt, "error", err)
			continue
		}

		total, err := c.redisClient.IncrByFloat(ctx, revenueKey, event.Amount)
		if err != nil {
			slog.Error("failed to update revenue counter", "session_id", event.SessionID, "error", err)
			continue
		}

		slog.Info("payment event processed",
			"session_id", event.SessionID,
			"user_id", event.UserID,
			"amount", fmt.Sprintf("%.2f", event.Amount),
			"revenue_total", fmt.Sprintf("%.2f", total))
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
