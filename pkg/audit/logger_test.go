package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type failingAppender struct{}

func (failingAppender) Append(ctx context.Context, entry *Entry) error { return errors.New("disk full") }
func (failingAppender) Close() error                                   { return nil }

func TestAuditLogger_Sync(t *testing.T) {
	mem := NewMemoryAppender()
	logger := NewLogger(SyncConfig(), mem)

	entry := NewEntry(OpCreate, StatusSuccess).WithResource("product")
	if err := logger.Log(context.Background(), entry); err != nil {
		t.Fatalf("Failed to log entry: %v", err)
	}

	// синхронный режим: запись видна сразу
	if got := mem.Entries(); len(got) != 1 || got[0].ID != entry.ID {
		t.Errorf("Unexpected entries: %+v", got)
	}

	if err := logger.Log(context.Background(), nil); err == nil {
		t.Error("Expected error for nil entry")
	}

	logger.Close()
}

func TestAuditLogger_Async(t *testing.T) {
	mem := NewMemoryAppender()
	logger := NewLogger(LoggerConfig{AsyncMode: true, BufferSize: 4}, mem)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Append(context.Background(), NewEntry(OpUpdate, StatusSuccess))
		}()
	}
	wg.Wait()

	// Close дожидается очереди
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := len(mem.Entries()); got != n {
		t.Errorf("Expected %d entries after Close, got %d", n, got)
	}

	if err := logger.Log(context.Background(), NewEntry(OpUpdate, StatusSuccess)); !errors.Is(err, ErrLoggerClosed) {
		t.Errorf("Expected ErrLoggerClosed, got %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestAuditLogger_OnError(t *testing.T) {
	var reported []error
	logger := NewLogger(LoggerConfig{OnError: func(err error) { reported = append(reported, err) }},
		failingAppender{}, NewMemoryAppender())
	defer logger.Close()

	err := logger.Log(context.Background(), NewEntry(OpDelete, StatusSuccess))
	if err == nil {
		t.Fatal("Expected appender error")
	}
	if len(reported) != 1 {
		t.Errorf("Expected OnError once, got %d", len(reported))
	}
}

func TestAuditLogger_AddAppender(t *testing.T) {
	logger := NewLogger(SyncConfig())
	defer logger.Close()

	mem := NewMemoryAppender()
	logger.AddAppender(mem)
	logger.Log(context.Background(), NewEntry(OpTruncate, StatusSuccess))

	if len(mem.Entries()) != 1 {
		t.Error("Added appender did not receive the entry")
	}
}
