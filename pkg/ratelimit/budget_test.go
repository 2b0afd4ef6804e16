package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBudget(t *testing.T, cfg Config) (*Budget, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	return New(cfg, WithClock(clock.Now)), clock
}

func TestAcquireWithinMinuteBudget(t *testing.T) {
	b, _ := newTestBudget(t, Config{CallsPerMinute: 5, CallsPerDay: 25})

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Acquire(), "call %d should be admitted", i+1)
	}

	err := b.Acquire()
	require.Error(t, err)

	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, ScopeMinute, limitErr.Scope)
	assert.Greater(t, limitErr.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, limitErr.RetryAfter, time.Minute)

	day, minute := b.Usage()
	assert.Equal(t, 5, day)
	assert.Equal(t, 5, minute)
}

func TestMinuteWindowTumbles(t *testing.T) {
	b, clock := newTestBudget(t, Config{CallsPerMinute: 2, CallsPerDay: 25})

	require.NoError(t, b.Acquire())
	require.NoError(t, b.Acquire())
	require.Error(t, b.Acquire())

	// The window resets wholesale once 60s have passed since the last
	// reset instant, regardless of when individual calls happened.
	clock.Advance(61 * time.Second)
	require.NoError(t, b.Acquire())

	_, minute := b.Usage()
	assert.Equal(t, 1, minute)
}

func TestMinuteWindowAllowsBoundaryBurst(t *testing.T) {
	// Tumbling, not sliding: N calls right before the boundary plus N
	// right after are all admitted.
	b, clock := newTestBudget(t, Config{CallsPerMinute: 3, CallsPerDay: 25})

	clock.Advance(59 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Acquire())
	}

	clock.Advance(2 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Acquire())
	}
}

func TestDailyBudgetExhaustion(t *testing.T) {
	b, clock := newTestBudget(t, Config{CallsPerMinute: 2, CallsPerDay: 4})

	for i := 0; i < 4; i++ {
		if i > 0 && i%2 == 0 {
			clock.Advance(time.Minute)
		}
		require.NoError(t, b.Acquire())
	}

	// Daily limit wins regardless of minute-window state.
	clock.Advance(time.Minute)
	err := b.Acquire()
	require.Error(t, err)

	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, ScopeDay, limitErr.Scope)
}

func TestDailyBudgetResetsOnDateRollover(t *testing.T) {
	b, clock := newTestBudget(t, Config{CallsPerMinute: 10, CallsPerDay: 2})

	require.NoError(t, b.Acquire())
	require.NoError(t, b.Acquire())
	require.Error(t, b.Acquire())

	clock.Advance(24 * time.Hour)
	require.NoError(t, b.Acquire())

	day, _ := b.Usage()
	assert.Equal(t, 1, day)
}

func TestRejectionConsumesNoPermit(t *testing.T) {
	b, clock := newTestBudget(t, Config{CallsPerMinute: 1, CallsPerDay: 3})

	require.NoError(t, b.Acquire())
	require.Error(t, b.Acquire())
	require.Error(t, b.Acquire())

	// Only the admitted call consumed budget.
	day, _ := b.Usage()
	assert.Equal(t, 1, day)

	clock.Advance(time.Minute)
	require.NoError(t, b.Acquire())
	clock.Advance(time.Minute)
	require.NoError(t, b.Acquire())
	clock.Advance(time.Minute)

	err := b.Acquire()
	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, ScopeDay, limitErr.Scope)
}

func TestConcurrentAcquire(t *testing.T) {
	b, _ := newTestBudget(t, Config{CallsPerMinute: 100, CallsPerDay: 50})

	results := make(chan error, 200)
	for i := 0; i < 200; i++ {
		go func() {
			results <- b.Acquire()
		}()
	}

	admitted := 0
	for i := 0; i < 200; i++ {
		if err := <-results; err == nil {
			admitted++
		}
	}

	assert.Equal(t, 50, admitted)
}
