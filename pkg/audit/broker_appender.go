package audit

import (
	"context"
	"fmt"

	"github.com/ruslano69/rowmap/pkg/brokers"
)

// BrokerAppender публикует entries в Kafka/RabbitMQ.
// Ключ сообщения - таблица, так что события одной таблицы идут по порядку.
type BrokerAppender struct {
	publisher brokers.Publisher
	level     Level
}

// NewBrokerAppender - publisher должен быть уже подключен
func NewBrokerAppender(publisher brokers.Publisher, level Level) *BrokerAppender {
	return &BrokerAppender{publisher: publisher, level: level}
}

// Append - отправить entry
func (ba *BrokerAppender) Append(ctx context.Context, entry *Entry) error {
	// чтения не публикуются
	if entry.Operation == OpSelect {
		return nil
	}

	payload, err := entry.FilterByLevel(ba.level).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := ba.publisher.Send(ctx, entry.Resource, payload); err != nil {
		return fmt.Errorf("%s publish failed: %w", ba.publisher.GetBrokerType(), err)
	}
	return nil
}

// Close закрывает publisher
func (ba *BrokerAppender) Close() error {
	return ba.publisher.Close()
}
