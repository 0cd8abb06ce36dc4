package pauseclock

import (
	"context"
	"sync"
	"time"
)

// DefaultTickInterval bounds how long a sleeper can take to notice a pause.
const DefaultTickInterval = 50 * time.Millisecond

// Sleeper is a pause-aware delay.
type Sleeper interface {
	Sleep(ctx context.Context, duration time.Duration) bool
}

// Config contains runtime options for Clock.
type Config struct {
	TickInterval time.Duration
}

// Clock is a pausable delay primitive shared by every scene timer.
// While paused, no sleeper makes progress; the remaining duration of each
// sleeper is kept and continues after Resume.
type Clock struct {
	mu          sync.Mutex
	options     Config
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
	pausedCh    chan struct{}
	waiters     []chan struct{}
}

// New creates a running (not paused) clock.
func New(options Config) *Clock {
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	return &Clock{
		options:  options,
		pausedCh: make(chan struct{}),
	}
}

// Pause freezes every sleeper. Calling Pause while paused is a no-op.
func (clock *Clock) Pause() {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	if clock.paused {
		return
	}
	clock.paused = true
	clock.pausedAt = time.Now()
	close(clock.pausedCh)
}

// Resume releases every queued sleeper in the order they started waiting.
// Calling Resume while running is a no-op.
func (clock *Clock) Resume() {
	clock.mu.Lock()
	if !clock.paused {
		clock.mu.Unlock()
		return
	}
	clock.paused = false
	clock.totalPaused += time.Since(clock.pausedAt)
	clock.pausedAt = time.Time{}
	clock.pausedCh = make(chan struct{})
	waiters := clock.waiters
	clock.waiters = nil
	clock.mu.Unlock()

	for _, waiter := range waiters {
		close(waiter)
	}
}

// IsPaused returns the current pause state.
func (clock *Clock) IsPaused() bool {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.paused
}

// Waiting returns the number of sleepers blocked on a pause.
func (clock *Clock) Waiting() int {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return len(clock.waiters)
}

// PausedFor returns the cumulative pause duration, including the current pause.
func (clock *Clock) PausedFor() time.Duration {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	total := clock.totalPaused
	if clock.paused {
		total += time.Since(clock.pausedAt)
	}
	return total
}

// Sleep blocks for duration of unpaused time. It returns false as soon as
// ctx is cancelled and true once the full duration has elapsed.
func (clock *Clock) Sleep(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}

	remaining := duration
	for remaining > 0 {
		if ctx.Err() != nil {
			return false
		}

		pausedCh, resumeCh := clock.checkpoint()
		if resumeCh != nil {
			select {
			case <-ctx.Done():
				clock.dropWaiter(resumeCh)
				return false
			case <-resumeCh:
			}
			continue
		}

		step := remaining
		if step > clock.options.TickInterval {
			step = clock.options.TickInterval
		}
		started := time.Now()
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
			remaining -= time.Since(started)
		case <-pausedCh:
			timer.Stop()
			remaining -= clock.elapsedBeforePause(started)
		}
	}
	return ctx.Err() == nil
}

// checkpoint returns the channel closed by the next Pause, or, when the
// clock is already paused, a queued waiter channel closed by Resume.
func (clock *Clock) checkpoint() (<-chan struct{}, chan struct{}) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	if !clock.paused {
		return clock.pausedCh, nil
	}
	waiter := make(chan struct{})
	clock.waiters = append(clock.waiters, waiter)
	return nil, waiter
}

func (clock *Clock) elapsedBeforePause(started time.Time) time.Duration {
	clock.mu.Lock()
	pausedAt := clock.pausedAt
	clock.mu.Unlock()

	if pausedAt.IsZero() {
		// Resumed before we observed the pause.
		return 0
	}
	if pausedAt.Before(started) {
		return 0
	}
	return pausedAt.Sub(started)
}

func (clock *Clock) dropWaiter(waiter chan struct{}) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	for index, queued := range clock.waiters {
		if queued == waiter {
			clock.waiters = append(clock.waiters[:index], clock.waiters[index+1:]...)
			return
		}
	}
}
