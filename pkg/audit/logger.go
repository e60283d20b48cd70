package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLoggerClosed is returned by Log after Close.
var ErrLoggerClosed = errors.New("audit logger is closed")

// AuditLogger - фан-аут entries в appenders, синхронно или через буфер.
// Сам реализует Appender, поэтому его можно передать в репозиторий.
type AuditLogger struct {
	appenders    []Appender
	asyncMode    bool
	bufferSize   int
	entryChannel chan *Entry
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	closed       bool
	config       LoggerConfig
}

// LoggerConfig - конфигурация логгера
type LoggerConfig struct {
	// AsyncMode - асинхронная запись в appenders
	AsyncMode bool

	// BufferSize - размер буфера для асинхронного режима
	BufferSize int

	// FlushInterval - интервал автоматического flush (0 = отключен)
	FlushInterval time.Duration

	// OnError - callback при ошибке записи
	OnError func(error)
}

var _ Appender = (*AuditLogger)(nil)

// NewLogger - создать новый audit logger
func NewLogger(config LoggerConfig, appenders ...Appender) *AuditLogger {
	ctx, cancel := context.WithCancel(context.Background())

	logger := &AuditLogger{
		appenders:  appenders,
		asyncMode:  config.AsyncMode,
		bufferSize: config.BufferSize,
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
	}

	if logger.bufferSize <= 0 {
		logger.bufferSize = 1000
	}

	if logger.asyncMode {
		logger.entryChannel = make(chan *Entry, logger.bufferSize)
		logger.wg.Add(1)
		go logger.processEntries()
	}

	if config.FlushInterval > 0 {
		logger.wg.Add(1)
		go logger.autoFlush()
	}

	return logger
}

// Log - записать audit entry
func (l *AuditLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrLoggerClosed
	}

	if l.asyncMode {
		select {
		case l.entryChannel <- entry:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Буфер переполнен, записываем синхронно
			return l.writeEntry(ctx, entry)
		}
	}

	return l.writeEntry(ctx, entry)
}

// Append - Appender поверх Log
func (l *AuditLogger) Append(ctx context.Context, entry *Entry) error {
	return l.Log(ctx, entry)
}

// writeEntry - записать entry во все appenders; вызывается под l.mu
func (l *AuditLogger) writeEntry(ctx context.Context, entry *Entry) error {
	var firstError error

	for _, appender := range l.appenders {
		if err := appender.Append(ctx, entry); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("appender failed: %w", err))
		}
	}

	return firstError
}

// processEntries - обработка entries в асинхронном режиме
func (l *AuditLogger) processEntries() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.entryChannel:
			l.dispatch(entry)

		case <-l.ctx.Done():
			// Обрабатываем оставшиеся entries
			for {
				select {
				case entry := <-l.entryChannel:
					l.dispatch(entry)
				default:
					return
				}
			}
		}
	}
}

func (l *AuditLogger) dispatch(entry *Entry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.writeEntry(context.Background(), entry)
}

// autoFlush - автоматический flush appenders
func (l *AuditLogger) autoFlush() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Flush()

		case <-l.ctx.Done():
			return
		}
	}
}

// Flush - сбросить буферы всех appenders
func (l *AuditLogger) Flush() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var firstError error

	for _, appender := range l.appenders {
		if flusher, ok := appender.(interface{ Flush() error }); ok {
			if err := flusher.Flush(); err != nil {
				if firstError == nil {
					firstError = err
				}
				l.handleError(fmt.Errorf("flush failed: %w", err))
			}
		}
	}

	return firstError
}

// Close - дождаться очереди и закрыть все appenders
func (l *AuditLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()

	l.Flush()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var firstError error
	for _, appender := range l.appenders {
		if err := appender.Close(); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("close failed: %w", err))
		}
	}

	return firstError
}

// AddAppender - добавить appender
func (l *AuditLogger) AddAppender(appender Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.appenders = append(l.appenders, appender)
}

func (l *AuditLogger) handleError(err error) {
	if l.config.OnError != nil {
		l.config.OnError(err)
	}
}

// DefaultConfig - асинхронный режим с буфером на 1000 entries
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		AsyncMode:  true,
		BufferSize: 1000,
	}
}

// SyncConfig - конфигурация для синхронного режима
func SyncConfig() LoggerConfig {
	return LoggerConfig{}
}
