// Package ratelimit implements admission control for the external market
// data provider: a per-minute counter on a tumbling window plus a per-day
// permit pool.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Scope identifies which budget rejected the call.
type Scope string

const (
	// ScopeMinute minute-window budget exhausted
	ScopeMinute Scope = "minute"
	// ScopeDay daily budget exhausted
	ScopeDay Scope = "day"
)

// LimitError is returned when a call budget is exhausted. It is retryable
// after RetryAfter has elapsed.
type LimitError struct {
	Scope      Scope
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s call budget exceeded, retry after %s", e.Scope, e.RetryAfter)
}

// Config defines the call budgets.
type Config struct {
	// CallsPerMinute minute-window budget (default 5)
	CallsPerMinute int
	// CallsPerDay daily budget (default 25)
	CallsPerDay int
	// PermitWait bounded wait for a day permit (default 1s)
	PermitWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.CallsPerMinute <= 0 {
		c.CallsPerMinute = 5
	}
	if c.CallsPerDay <= 0 {
		c.CallsPerDay = 25
	}
	if c.PermitWait <= 0 {
		c.PermitWait = time.Second
	}
	return c
}

// Budget serializes all state transitions behind one mutex. Acquire never
// blocks longer than PermitWait; it fails fast instead of queuing.
//
// The minute window is a tumbling window keyed off the last reset instant,
// not a sliding one: a burst of up to 2x CallsPerMinute is possible across
// a window boundary. Existing behavior, kept on purpose.
type Budget struct {
	mu sync.Mutex

	cfg Config

	dayPermits      chan struct{}
	dayCount        int
	minuteCount     int
	lastDayReset    time.Time
	lastMinuteReset time.Time

	now func() time.Time
}

// Option configures a Budget.
type Option func(*Budget)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Budget) { b.now = now }
}

// New creates a Budget with full permits available.
func New(cfg Config, opts ...Option) *Budget {
	cfg = cfg.withDefaults()

	b := &Budget{
		cfg:        cfg,
		dayPermits: make(chan struct{}, cfg.CallsPerDay),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	for i := 0; i < cfg.CallsPerDay; i++ {
		b.dayPermits <- struct{}{}
	}

	start := b.now()
	b.lastDayReset = start
	b.lastMinuteReset = start

	return b
}

// Acquire takes one call permit. On success both counters are incremented.
// On rejection no permit is consumed and a *LimitError reports which budget
// was exhausted and how long to wait.
func (b *Budget) Acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	// Replenish the day pool on date rollover.
	if now.YearDay() != b.lastDayReset.YearDay() || now.Year() != b.lastDayReset.Year() {
		b.refillDayPermits()
		b.dayCount = 0
		b.lastDayReset = now
	}

	// Tumbling minute window: reset wholesale once 60s have passed since
	// the last reset instant.
	if now.Sub(b.lastMinuteReset) >= time.Minute {
		b.minuteCount = 0
		b.lastMinuteReset = now
	}

	if b.dayCount >= b.cfg.CallsPerDay {
		return &LimitError{Scope: ScopeDay, RetryAfter: untilNextDay(now)}
	}

	if b.minuteCount >= b.cfg.CallsPerMinute {
		wait := time.Minute - now.Sub(b.lastMinuteReset)
		if wait < 0 {
			wait = 0
		}
		return &LimitError{Scope: ScopeMinute, RetryAfter: wait}
	}

	// Bounded wait for a day permit.
	select {
	case <-b.dayPermits:
	case <-time.After(b.cfg.PermitWait):
		return &LimitError{Scope: ScopeDay, RetryAfter: untilNextDay(now)}
	}

	b.dayCount++
	b.minuteCount++

	return nil
}

// Usage returns the consumed day and minute budgets.
func (b *Budget) Usage() (day int, minute int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dayCount, b.minuteCount
}

func (b *Budget) refillDayPermits() {
	for {
		select {
		case b.dayPermits <- struct{}{}:
		default:
			return
		}
	}
}

func untilNextDay(now time.Time) time.Duration {
	year, month, day := now.Date()
	next := time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
