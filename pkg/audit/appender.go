package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Appender - интерфейс для записи audit логов
type Appender interface {
	// Append - записать audit entry
	Append(ctx context.Context, entry *Entry) error

	// Close - закрыть appender
	Close() error
}

// MultiAppender - запись в несколько appenders
type MultiAppender struct {
	appenders []Appender
}

// NewMultiAppender - создать multi appender
func NewMultiAppender(appenders ...Appender) *MultiAppender {
	return &MultiAppender{
		appenders: appenders,
	}
}

// Append - записать во все appenders; возвращает первую ошибку
func (ma *MultiAppender) Append(ctx context.Context, entry *Entry) error {
	var firstErr error

	for _, appender := range ma.appenders {
		if err := appender.Append(ctx, entry); err != nil && firstErr == nil {
			firstErr = err
			// Продолжаем записывать в остальные appenders
		}
	}

	return firstErr
}

// Close - закрыть все appenders
func (ma *MultiAppender) Close() error {
	var firstErr error

	for _, appender := range ma.appenders {
		if err := appender.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Add - добавить appender
func (ma *MultiAppender) Add(appender Appender) {
	ma.appenders = append(ma.appenders, appender)
}

// Len - количество appenders
func (ma *MultiAppender) Len() int {
	return len(ma.appenders)
}

// LogAppender пишет entries в zerolog
type LogAppender struct {
	logger zerolog.Logger
	level  Level
}

// NewLogAppender - создать appender поверх zerolog.Logger
func NewLogAppender(logger zerolog.Logger, level Level) *LogAppender {
	return &LogAppender{logger: logger, level: level}
}

// Append - записать entry как событие лога; неудачи на уровне warn
func (la *LogAppender) Append(ctx context.Context, entry *Entry) error {
	e := entry.FilterByLevel(la.level)

	ev := la.logger.Info()
	if e.Status == StatusFailure {
		ev = la.logger.Warn().Str("error", e.ErrorMessage)
	}
	ev = ev.Str("audit_id", e.ID).
		Str("operation", string(e.Operation)).
		Str("status", string(e.Status)).
		Str("resource", e.Resource).
		Int64("records", e.RecordsAffected).
		Dur("duration", e.Duration)
	if e.Key != "" {
		ev = ev.Str("key", e.Key)
	}
	if e.Fingerprint != "" {
		ev = ev.Str("fingerprint", e.Fingerprint)
	}
	if e.Data != nil {
		ev = ev.Interface("data", e.Data)
	}
	ev.Msg("audit")
	return nil
}

// Close - noop
func (la *LogAppender) Close() error {
	return nil
}

// MemoryAppender хранит entries в памяти (для тестов и отладки)
type MemoryAppender struct {
	mu      sync.Mutex
	entries []*Entry
}

// NewMemoryAppender - создать memory appender
func NewMemoryAppender() *MemoryAppender {
	return &MemoryAppender{}
}

// Append - сохранить копию entry
func (m *MemoryAppender) Append(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry.Clone())
	return nil
}

// Entries - копия сохраненных entries
func (m *MemoryAppender) Entries() []*Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Reset - очистить
func (m *MemoryAppender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

// Close - noop
func (m *MemoryAppender) Close() error {
	return nil
}
