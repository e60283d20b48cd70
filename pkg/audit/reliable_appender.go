package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ruslano69/rowmap/pkg/resilience"
	"github.com/ruslano69/rowmap/pkg/retry"
)

// ReliableAppenderConfig - защита удаленного appender
type ReliableAppenderConfig struct {
	// Destination names the wrapped appender in dead letters ("redis", "kafka").
	Destination string

	Policy retry.Policy

	// Breaker - nil = без circuit breaker
	Breaker *resilience.Breaker

	// DeadLetters keeps entries that could not be delivered; nil drops them.
	DeadLetters *retry.DeadLetters
}

// ReliableAppender retries a remote appender with backoff behind a circuit
// breaker. Entries that still fail go to the dead-letter file and can be
// re-sent with Replay.
type ReliableAppender struct {
	next   Appender
	config ReliableAppenderConfig
}

// NewReliableAppender wraps next.
func NewReliableAppender(next Appender, config ReliableAppenderConfig) (*ReliableAppender, error) {
	if next == nil {
		return nil, fmt.Errorf("appender is required")
	}
	if err := config.Policy.Validate(); err != nil {
		return nil, err
	}
	return &ReliableAppender{next: next, config: config}, nil
}

// Append delivers entry or dead-letters it. The delivery error is returned
// either way so the logger can report it.
func (ra *ReliableAppender) Append(ctx context.Context, entry *Entry) error {
	attempts := 0
	send := func(ctx context.Context) error {
		attempts++
		return ra.next.Append(ctx, entry)
	}

	var err error
	if ra.config.Breaker != nil {
		// открытый breaker отклоняет сразу, без повторов
		err = retry.Do(ctx, ra.withBreaker(), func(ctx context.Context) error {
			return ra.config.Breaker.Execute(ctx, send)
		})
	} else {
		err = retry.Do(ctx, ra.config.Policy, send)
	}
	if err == nil {
		return nil
	}

	if ra.config.DeadLetters == nil {
		return fmt.Errorf("%s: %w", ra.config.Destination, err)
	}

	payload, jerr := json.Marshal(entry)
	if jerr != nil {
		return errors.Join(err, jerr)
	}
	if derr := ra.config.DeadLetters.Add(retry.Letter{
		Destination: ra.config.Destination,
		Attempts:    attempts,
		LastError:   err.Error(),
		Payload:     payload,
	}); derr != nil {
		return errors.Join(err, derr)
	}
	return fmt.Errorf("%s: entry %s kept as dead letter: %w", ra.config.Destination, entry.ID, err)
}

// withBreaker stops retrying once the breaker is open.
func (ra *ReliableAppender) withBreaker() retry.Policy {
	p := ra.config.Policy
	next := p.Retryable
	p.Retryable = func(err error) bool {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return false
		}
		return next == nil || next(err)
	}
	return p
}

// Replay re-sends dead letters of this destination once each, without
// retries. Letters of other destinations are kept untouched.
func (ra *ReliableAppender) Replay(ctx context.Context) (int, error) {
	if ra.config.DeadLetters == nil {
		return 0, nil
	}

	return ra.config.DeadLetters.Replay(ctx, func(ctx context.Context, l retry.Letter) error {
		if l.Destination != ra.config.Destination {
			return retry.ErrSkip
		}
		var entry Entry
		if err := json.Unmarshal(l.Payload, &entry); err != nil {
			return err
		}
		return ra.next.Append(ctx, &entry)
	})
}

// Close закрывает вложенный appender
func (ra *ReliableAppender) Close() error {
	return ra.next.Close()
}
