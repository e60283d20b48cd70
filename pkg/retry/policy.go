// Package retry re-runs failing deliveries with backoff and keeps what
// could not be delivered in a dead-letter file for later replay.
package retry

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy определяет стратегию задержки между повторами
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// Policy describes how often and how long to retry.
type Policy struct {
	// MaxAttempts - попыток всего, включая первую; 1 = без повторов
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Strategy     BackoffStrategy

	// Multiplier для exponential, по умолчанию 2.0
	Multiplier float64

	// Jitter - доля случайного разброса задержки (0.0 - 1.0)
	Jitter float64

	// Retryable decides whether err is worth another attempt; nil retries
	// every error.
	Retryable func(err error) bool

	// OnRetry вызывается перед каждым повтором
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Validate проверяет политику и подставляет значения по умолчанию
func (p *Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = p.InitialDelay
	}
	if p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", p.MaxDelay, p.InitialDelay)
	}

	switch p.Strategy {
	case "":
		p.Strategy = BackoffExponential
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %s", p.Strategy)
	}

	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.Jitter < 0 || p.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", p.Jitter)
	}
	return nil
}

// DefaultPolicy - 3 попытки, 200ms..5s, exponential
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Strategy:     BackoffExponential,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Delay returns the pause after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	var delay time.Duration

	switch p.Strategy {
	case BackoffConstant:
		delay = p.InitialDelay
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
	default:
		multiplier := p.Multiplier
		if multiplier <= 0 {
			multiplier = 2.0
		}
		delay = time.Duration(float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter > 0 {
		delay += time.Duration(float64(delay) * p.Jitter * (rand.Float64()*2 - 1))
		if delay < 0 {
			delay = p.InitialDelay
		}
	}

	return delay
}
