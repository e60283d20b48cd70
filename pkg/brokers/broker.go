// Package brokers publishes change events to message brokers.
//
// Only the sending side is implemented: rowmap emits audit events and
// leaves consumption to downstream services.
package brokers

import (
	"context"
	"fmt"
)

// Publisher отправляет сообщения в брокер (Kafka, RabbitMQ)
type Publisher interface {
	// Connect устанавливает соединение с брокером
	Connect(ctx context.Context) error

	// Close закрывает соединение с брокером
	Close() error

	// Send отправляет сообщение; key используется брокером для
	// партиционирования/маршрутизации и может быть пустым
	Send(ctx context.Context, key string, message []byte) error

	// Ping проверяет доступность брокера
	Ping(ctx context.Context) error

	// GetBrokerType возвращает тип брокера (rabbitmq, kafka)
	GetBrokerType() string
}

// ContentType of published payloads.
const ContentType = "application/json"

// Config содержит параметры подключения к message broker
type Config struct {
	Type       string `yaml:"type"`     // rabbitmq, kafka
	Host       string `yaml:"host"`     // Хост (для RabbitMQ)
	Port       int    `yaml:"port"`     // Порт (для RabbitMQ)
	User       string `yaml:"user"`     // Пользователь (для RabbitMQ)
	Password   string `yaml:"password"` // Пароль (для RabbitMQ)
	Queue      string `yaml:"queue"`    // Имя очереди (для RabbitMQ)
	VHost      string `yaml:"vhost"`    // Virtual host (для RabbitMQ, по умолчанию "/")
	UseTLS     bool   `yaml:"tls"`      // amqps:// для RabbitMQ
	Exchange   string `yaml:"exchange"` // RabbitMQ exchange (пустая строка = default exchange)

	// RabbitMQ параметры очереди (должны совпадать с существующей очередью)
	Durable    bool `yaml:"durable"`
	AutoDelete bool `yaml:"auto_delete"`

	// Kafka
	Brokers []string `yaml:"brokers"` // ["localhost:9092", ...]
	Topic   string   `yaml:"topic"`
}

// New создает Publisher на основе конфигурации
func New(cfg Config) (Publisher, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQ(cfg)
	case "kafka":
		return NewKafka(cfg)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s (supported: rabbitmq, kafka)", cfg.Type)
	}
}
