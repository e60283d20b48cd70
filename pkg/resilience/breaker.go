// Package resilience guards calls to remote audit destinations (redis,
// message brokers) with a circuit breaker, so an unreachable destination
// costs one fast failure instead of a timeout per entry.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen - circuit breaker открыт
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State - состояние Circuit Breaker
type State int

const (
	// StateClosed - нормальная работа, запросы проходят
	StateClosed State = iota

	// StateHalfOpen - пробные запросы после Timeout
	StateHalfOpen

	// StateOpen - запросы отклоняются
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Config - конфигурация Circuit Breaker
type Config struct {
	// Name - имя для логов, обычно тип назначения ("redis", "kafka")
	Name string

	// MaxFailures - подряд идущих ошибок до открытия
	MaxFailures uint32

	// Timeout - время в Open перед переходом в Half-Open
	Timeout time.Duration

	// SuccessThreshold - успешных вызовов в Half-Open для закрытия
	SuccessThreshold uint32

	// OnStateChange вызывается синхронно, без удержания lock
	OnStateChange func(name string, from, to State)
}

// Validate fills defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.MaxFailures == 0 {
		return fmt.Errorf("MaxFailures must be greater than 0")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be greater than 0")
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = 1
	}
	if c.Name == "" {
		c.Name = "circuit-breaker"
	}
	return nil
}

// DefaultConfig - 5 ошибок, 30 секунд
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		SuccessThreshold: 1,
	}
}

// Counts - счетчики запросов
type Counts struct {
	Requests             uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
	Rejected             uint32
}

// Breaker is a circuit breaker. Safe for concurrent use.
type Breaker struct {
	config Config
	now    func() time.Time

	mu     sync.Mutex
	state  State
	counts Counts
	expiry time.Time // конец Open
}

// New - создать Breaker
func New(config Config) (*Breaker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit breaker config: %w", err)
	}
	return &Breaker{config: config, now: time.Now}, nil
}

// Execute runs fn unless the circuit is open. A failing fn counts against
// the breaker; a context cancellation does not.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn(ctx)
	if errors.Is(err, context.Canceled) {
		return err
	}
	b.after(err == nil)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Before(b.expiry) {
			b.counts.Rejected++
			return fmt.Errorf("%s: %w", b.config.Name, ErrCircuitOpen)
		}
		b.setState(StateHalfOpen)
	}

	b.counts.Requests++
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.config.SuccessThreshold {
			b.setState(StateClosed)
		}
		return
	}

	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0

	// в Half-Open хватает одной ошибки
	if b.state == StateHalfOpen || b.counts.ConsecutiveFailures >= b.config.MaxFailures {
		b.setState(StateOpen)
	}
}

// setState вызывается под lock; на время OnStateChange lock отпускается.
func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.counts.ConsecutiveFailures = 0
	b.counts.ConsecutiveSuccesses = 0
	if to == StateOpen {
		b.expiry = b.now().Add(b.config.Timeout)
	}

	if cb := b.config.OnStateChange; cb != nil {
		name := b.config.Name
		b.mu.Unlock()
		cb(name, from, to)
		b.mu.Lock()
	}
}

// State - текущее состояние; Open с истекшим Timeout остается Open до
// следующего вызова.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counts - копия счетчиков
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Name - имя Circuit Breaker
func (b *Breaker) Name() string {
	return b.config.Name
}

// Reset - сбросить состояние в Closed
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.counts = Counts{}
	b.expiry = time.Time{}
}

func (b *Breaker) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("Breaker(%s state=%s failures=%d/%d)",
		b.config.Name, b.state, b.counts.ConsecutiveFailures, b.config.MaxFailures)
}
