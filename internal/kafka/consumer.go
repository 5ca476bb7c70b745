package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.Named("kafka"),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func decode(msg kafka.Message) (domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		return n, fmt.Errorf("decode notification at offset %d: %w", msg.Offset, err)
	}
	if n.Type == "" {
		return n, fmt.Errorf("decode notification at offset %d: missing type", msg.Offset)
	}
	return n, nil
}

// Consume hands every notification to handler until ctx ends. Undecodable messages are logged and
// skipped; a handler error stops consumption.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, domain.Notification) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		n, err := decode(msg)
		if err != nil {
			c.log.Warn("skipping message", zap.Error(err))
			continue
		}
		if err := handler(ctx, n); err != nil {
			return err
		}
	}
}
