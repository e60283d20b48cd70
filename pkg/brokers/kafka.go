package brokers

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka публикует сообщения в Kafka topic
type Kafka struct {
	config Config
	writer *kafka.Writer
}

var _ Publisher = (*Kafka)(nil)

// NewKafka создает новый Kafka publisher
func NewKafka(cfg Config) (*Kafka, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic name is required for Kafka")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required for Kafka")
	}

	return &Kafka{
		config: cfg,
	}, nil
}

// Connect создает writer и проверяет доступность topic
func (k *Kafka) Connect(ctx context.Context) error {
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.config.Brokers...),
		Topic:        k.config.Topic,
		Balancer:     &kafka.Hash{},    // Один ключ (таблица) - одна партиция, порядок сохраняется
		RequiredAcks: kafka.RequireAll, // Ждем подтверждения от всех реплик
		Async:        false,
		Compression:  kafka.Snappy,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}

	return k.Ping(ctx)
}

// Close закрывает writer
func (k *Kafka) Close() error {
	if k.writer == nil {
		return nil
	}
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// Send отправляет сообщение в Kafka topic
func (k *Kafka) Send(ctx context.Context, key string, message []byte) error {
	if k.writer == nil {
		return fmt.Errorf("not connected to Kafka")
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: message,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(ContentType)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	return nil
}

// Ping проверяет доступность Kafka
func (k *Kafka) Ping(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", k.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial Kafka broker: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(k.config.Topic); err != nil {
		return fmt.Errorf("failed to read topic partitions: %w", err)
	}

	return nil
}

// GetBrokerType возвращает тип брокера
func (k *Kafka) GetBrokerType() string {
	return "kafka"
}

// Stats возвращает статистику writer
func (k *Kafka) Stats() kafka.WriterStats {
	if k.writer == nil {
		return kafka.WriterStats{}
	}
	return k.writer.Stats()
}
