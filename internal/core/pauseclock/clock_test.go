package pauseclock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestClock() *Clock {
	return New(Config{TickInterval: 5 * time.Millisecond})
}

func waitForWaiters(t *testing.T, clock *Clock, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for clock.Waiting() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d waiters, have %d", want, clock.Waiting())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSleepCompletes(t *testing.T) {
	clock := newTestClock()
	start := time.Now()
	if !clock.Sleep(context.Background(), 40*time.Millisecond) {
		t.Fatal("Sleep returned false without cancellation")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Sleep returned early after %v", elapsed)
	}
}

func TestSleepNonPositiveReturnsImmediately(t *testing.T) {
	clock := newTestClock()
	clock.Pause()

	done := make(chan bool, 1)
	go func() {
		done <- clock.Sleep(context.Background(), 0)
	}()

	select {
	case ok := <-done:
		if !ok {
			t.Error("Sleep(0) should report completion")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Sleep(0) blocked on a paused clock")
	}
}

func TestPausePreservesRemainingDuration(t *testing.T) {
	clock := newTestClock()
	const (
		duration   = 200 * time.Millisecond
		beforeStop = 80 * time.Millisecond
		pauseFor   = 150 * time.Millisecond
	)

	done := make(chan time.Duration, 1)
	start := time.Now()
	go func() {
		clock.Sleep(context.Background(), duration)
		done <- time.Since(start)
	}()

	time.Sleep(beforeStop)
	clock.Pause()
	time.Sleep(pauseFor)

	select {
	case <-done:
		t.Fatal("sleep completed while the clock was paused")
	default:
	}
	clock.Resume()

	select {
	case elapsed := <-done:
		want := duration + pauseFor
		if elapsed < want-10*time.Millisecond {
			t.Errorf("elapsed %v, want at least %v", elapsed, want)
		}
		if elapsed > want+150*time.Millisecond {
			t.Errorf("elapsed %v, want about %v", elapsed, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sleep did not complete after resume")
	}

	if paused := clock.PausedFor(); paused < pauseFor {
		t.Errorf("PausedFor() = %v, want at least %v", paused, pauseFor)
	}
}

func TestResumeReleasesAllWaiters(t *testing.T) {
	clock := newTestClock()
	clock.Pause()

	const sleepers = 10
	var wg sync.WaitGroup
	results := make(chan bool, sleepers)
	for i := 0; i < sleepers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- clock.Sleep(context.Background(), 20*time.Millisecond)
		}()
	}

	waitForWaiters(t, clock, sleepers)
	clock.Resume()

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("a single Resume did not release every sleeper")
	}
	close(results)
	for ok := range results {
		if !ok {
			t.Error("sleeper reported cancellation")
		}
	}
	if clock.Waiting() != 0 {
		t.Errorf("Waiting() = %d after resume", clock.Waiting())
	}
}

func TestPauseAndResumeAreIdempotent(t *testing.T) {
	clock := newTestClock()
	clock.Resume()
	if clock.IsPaused() {
		t.Fatal("Resume on a running clock paused it")
	}

	clock.Pause()
	clock.Pause()
	if !clock.IsPaused() {
		t.Fatal("clock should be paused")
	}

	clock.Resume()
	clock.Resume()
	if clock.IsPaused() {
		t.Fatal("clock should be running")
	}
}

func TestSleepCancelledWhilePaused(t *testing.T) {
	clock := newTestClock()
	clock.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		done <- clock.Sleep(ctx, time.Second)
	}()

	waitForWaiters(t, clock, 1)
	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Error("cancelled Sleep reported completion")
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Sleep did not return")
	}
	if clock.Waiting() != 0 {
		t.Errorf("cancelled waiter still queued: %d", clock.Waiting())
	}
}

func TestSleepCancelledWhileRunning(t *testing.T) {
	clock := newTestClock()
	ctx, cancel := context.WithCancel(context.Background())

	start := time.Now()
	time.AfterFunc(20*time.Millisecond, cancel)
	if clock.Sleep(ctx, time.Second) {
		t.Fatal("cancelled Sleep reported completion")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancellation took %v", elapsed)
	}
}

func TestConcurrentPauseResume(t *testing.T) {
	clock := newTestClock()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Sleep(ctx, 30*time.Millisecond)
		}()
	}

	for i := 0; i < 20; i++ {
		clock.Pause()
		time.Sleep(time.Millisecond)
		clock.Resume()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("sleepers stuck after interleaved pause/resume")
	}
}
