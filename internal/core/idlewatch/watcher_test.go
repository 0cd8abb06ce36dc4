package idlewatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeChecker struct {
	mu   sync.Mutex
	idle time.Duration
	err  error
}

func (checker *fakeChecker) set(idle time.Duration, err error) {
	checker.mu.Lock()
	defer checker.mu.Unlock()
	checker.idle = idle
	checker.err = err
}

func (checker *fakeChecker) IdleDuration() (time.Duration, error) {
	checker.mu.Lock()
	defer checker.mu.Unlock()
	return checker.idle, checker.err
}

type fakeTarget struct {
	mu      sync.Mutex
	paused  bool
	pauses  int
	resumes int
}

func (target *fakeTarget) Pause() {
	target.mu.Lock()
	defer target.mu.Unlock()
	target.paused = true
	target.pauses++
}

func (target *fakeTarget) Resume() {
	target.mu.Lock()
	defer target.mu.Unlock()
	target.paused = false
	target.resumes++
}

func (target *fakeTarget) Paused() bool {
	target.mu.Lock()
	defer target.mu.Unlock()
	return target.paused
}

func TestCheckPausesAndResumes(t *testing.T) {
	checker := &fakeChecker{}
	target := &fakeTarget{}
	watcher := New(Config{Enabled: true, Threshold: time.Minute}, checker, target)

	watcher.Check()
	if target.Paused() {
		t.Fatal("paused while active")
	}

	checker.set(2*time.Minute, nil)
	watcher.Check()
	watcher.Check()
	if !target.Paused() || target.pauses != 1 || !watcher.AutoPaused() {
		t.Fatalf("after idle: paused=%v pauses=%d auto=%v", target.Paused(), target.pauses, watcher.AutoPaused())
	}

	checker.set(time.Second, nil)
	watcher.Check()
	if target.Paused() || target.resumes != 1 || watcher.AutoPaused() {
		t.Fatalf("after activity: paused=%v resumes=%d", target.Paused(), target.resumes)
	}
}

func TestManualPauseIsKept(t *testing.T) {
	checker := &fakeChecker{idle: time.Hour}
	target := &fakeTarget{paused: true}
	watcher := New(Config{Enabled: true, Threshold: time.Minute}, checker, target)

	watcher.Check()
	checker.set(0, nil)
	watcher.Check()

	if !target.Paused() || target.resumes != 0 {
		t.Errorf("manual pause resumed by watcher: resumes=%d", target.resumes)
	}
}

func TestManualResumeWhileIdle(t *testing.T) {
	checker := &fakeChecker{idle: time.Hour}
	target := &fakeTarget{}
	watcher := New(Config{Enabled: true, Threshold: time.Minute}, checker, target)

	watcher.Check()
	target.Resume()
	checker.set(0, nil)
	watcher.Check()

	if target.resumes != 1 || watcher.AutoPaused() {
		t.Errorf("resumes = %d, auto = %v", target.resumes, watcher.AutoPaused())
	}
}

func TestUnsupportedDisables(t *testing.T) {
	checker := &fakeChecker{err: ErrIdleUnsupported}
	target := &fakeTarget{}
	watcher := New(Config{Enabled: true, Threshold: time.Minute}, checker, target)

	watcher.Check()
	if watcher.Enabled() {
		t.Fatal("watcher still enabled")
	}
	if !errors.Is(watcher.Err(), ErrIdleUnsupported) {
		t.Errorf("Err = %v", watcher.Err())
	}

	checker.set(time.Hour, nil)
	watcher.Check()
	if target.Paused() {
		t.Error("disabled watcher paused the target")
	}
}

func TestTransientErrorKeepsWatching(t *testing.T) {
	checker := &fakeChecker{err: errors.New("xprintidle: exit status 1")}
	target := &fakeTarget{}
	watcher := New(Config{Enabled: true, Threshold: time.Minute}, checker, target)

	watcher.Check()
	if !watcher.Enabled() || watcher.Err() == nil {
		t.Fatalf("enabled=%v err=%v", watcher.Enabled(), watcher.Err())
	}

	checker.set(time.Hour, nil)
	watcher.Check()
	if !target.Paused() || watcher.Err() != nil {
		t.Errorf("paused=%v err=%v", target.Paused(), watcher.Err())
	}
}

func TestDisabledDoesNothing(t *testing.T) {
	checker := &fakeChecker{idle: time.Hour}
	target := &fakeTarget{}
	watcher := New(Config{Threshold: time.Minute}, checker, target)

	watcher.Check()
	if target.Paused() {
		t.Error("disabled watcher paused the target")
	}

	watcher.SetConfig(Config{Enabled: true, Threshold: time.Minute})
	watcher.Check()
	if !target.Paused() {
		t.Error("re-enabled watcher did not pause")
	}
}

func TestRunPolls(t *testing.T) {
	checker := &fakeChecker{idle: time.Hour}
	target := &fakeTarget{}
	watcher := New(Config{Enabled: true, Threshold: time.Minute, CheckInterval: time.Millisecond}, checker, target)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watcher.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !target.Paused() {
		if time.Now().After(deadline) {
			t.Fatal("Run never paused the target")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
