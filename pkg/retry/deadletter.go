package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSkip returned from a Replay callback keeps the letter unchanged.
var ErrSkip = errors.New("skip letter")

// Letter - недоставленное сообщение
type Letter struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Destination string          `json:"destination"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error"`
	Payload     json.RawMessage `json:"payload"`
}

// DeadLetterConfig - файл и лимит
type DeadLetterConfig struct {
	FilePath string

	// MaxSize - максимум записей, старые вытесняются (0 = без лимита)
	MaxSize int
}

// DeadLetters is a file-backed queue of undelivered payloads. The whole
// queue is rewritten on every change.
type DeadLetters struct {
	mu      sync.Mutex
	config  DeadLetterConfig
	letters []Letter
}

// OpenDeadLetters loads the queue from config.FilePath if it exists.
func OpenDeadLetters(config DeadLetterConfig) (*DeadLetters, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("dead letter file path is required")
	}

	dl := &DeadLetters{config: config}

	data, err := os.ReadFile(config.FilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return dl, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &dl.letters); err != nil {
			return nil, fmt.Errorf("failed to parse dead letters: %w", err)
		}
	}
	return dl, nil
}

// Add stores a letter and saves the queue.
func (d *DeadLetters) Add(l Letter) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}

	d.letters = append(d.letters, l)
	if d.config.MaxSize > 0 && len(d.letters) > d.config.MaxSize {
		d.letters = d.letters[len(d.letters)-d.config.MaxSize:]
	}

	return d.save()
}

// Letters returns a copy of the queue, oldest first.
func (d *DeadLetters) Letters() []Letter {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Letter, len(d.letters))
	copy(out, d.letters)
	return out
}

// Len - количество записей
func (d *DeadLetters) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.letters)
}

// Replay hands every letter to fn, oldest first. Delivered letters are
// removed; failed ones stay with the new error. Stops early when ctx is
// done. Returns the number delivered.
func (d *DeadLetters) Replay(ctx context.Context, fn func(ctx context.Context, l Letter) error) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.letters[:0:0]
	delivered := 0
	for i, l := range d.letters {
		if ctx.Err() != nil {
			kept = append(kept, d.letters[i:]...)
			break
		}
		if err := fn(ctx, l); err != nil {
			if errors.Is(err, ErrSkip) {
				kept = append(kept, l)
				continue
			}
			l.Attempts++
			l.LastError = err.Error()
			kept = append(kept, l)
			continue
		}
		delivered++
	}

	d.letters = kept
	if err := d.save(); err != nil {
		return delivered, err
	}
	return delivered, ctx.Err()
}

// save вызывается под lock
func (d *DeadLetters) save() error {
	data, err := json.Marshal(d.letters)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letters: %w", err)
	}
	if err := os.WriteFile(d.config.FilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write dead letters: %w", err)
	}
	return nil
}
