package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

const headerType = "notification-type"

// Producer publishes notifications to a single topic.
type Producer struct {
	brokers    []string
	topic      string
	maxRetries int
	writer     *kafka.Writer
	log        *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers:    brokers,
		topic:      topic,
		maxRetries: 3,
		writer:     writer,
		log:        log.Named("kafka"),
	}
}

func encode(n domain.Notification) (kafka.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return kafka.Message{
		Key:     []byte(n.Key()),
		Value:   data,
		Time:    n.OccurredAt,
		Headers: []kafka.Header{{Key: headerType, Value: []byte(n.Type)}},
	}, nil
}

// Publish writes n keyed by booking, so notifications of one booking keep their order.
func (p *Producer) Publish(ctx context.Context, n domain.Notification) error {
	message, err := encode(n)
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		if lastErr = p.writer.WriteMessages(ctx, message); lastErr == nil {
			p.log.Debug("published notification", zap.String("topic", p.topic), zap.ByteString("key", message.Key))
			return nil
		}
		p.log.Warn("kafka write failed", zap.Int("attempt", i+1), zap.Error(lastErr))

		if i < p.maxRetries-1 {
			select {
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("failed to write message to Kafka after %d attempts: %w", p.maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists the partitions of the notification topic.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.topic)
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	p.log.Info("connected to kafka", zap.String("topic", p.topic), zap.Int("partitions", len(partitions)))
	return nil
}
