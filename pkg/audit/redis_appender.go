package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAppender публикует entries в Redis.
//
// Redis-ключи:
//
//	SET  <prefix>:<table>:last  <JSON>  EX <ttl>  - последняя операция по таблице
//	PUB  <prefix>:<table>                         - поток событий для подписчиков
type RedisAppender struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	level  Level
	owned  bool
}

// RedisAppenderConfig - конфигурация redis appender
type RedisAppenderConfig struct {
	Address  string
	Password string
	DB       int

	// Prefix - префикс ключей, по умолчанию "rowmap:audit"
	Prefix string

	// TTL ключа последней операции; 0 = без срока
	TTL   time.Duration
	Level Level

	// Client - готовый клиент; если задан, Address/Password/DB игнорируются
	// и Close его не закрывает
	Client *redis.Client
}

// NewRedisAppender - создать redis appender
func NewRedisAppender(config RedisAppenderConfig) *RedisAppender {
	client, owned := config.Client, false
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     config.Address,
			Password: config.Password,
			DB:       config.DB,
		})
		owned = true
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "rowmap:audit"
	}

	return &RedisAppender{
		client: client,
		prefix: prefix,
		ttl:    config.TTL,
		level:  config.Level,
		owned:  owned,
	}
}

// StateKey - ключ последней операции по таблице
func (ra *RedisAppender) StateKey(resource string) string {
	return fmt.Sprintf("%s:%s:last", ra.prefix, resource)
}

// Channel - канал pub/sub по таблице
func (ra *RedisAppender) Channel(resource string) string {
	return fmt.Sprintf("%s:%s", ra.prefix, resource)
}

// Append - SET + PUBLISH
func (ra *RedisAppender) Append(ctx context.Context, entry *Entry) error {
	payload, err := entry.FilterByLevel(ra.level).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	resource := entry.Resource
	if resource == "" {
		resource = "_"
	}

	if err := ra.client.Set(ctx, ra.StateKey(resource), payload, ra.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	if err := ra.client.Publish(ctx, ra.Channel(resource), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (ra *RedisAppender) Close() error {
	if !ra.owned {
		return nil
	}
	return ra.client.Close()
}
