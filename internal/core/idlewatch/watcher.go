package idlewatch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Target is the flow the watcher pauses and resumes.
type Target interface {
	Pause()
	Resume()
	Paused() bool
}

// Config contains the idle auto-pause options.
type Config struct {
	Enabled       bool
	Threshold     time.Duration
	CheckInterval time.Duration
}

// Watcher pauses the target after Threshold of user inactivity and resumes
// it on the next activity, but only when the pause was its own.
type Watcher struct {
	mu         sync.Mutex
	config     Config
	checker    IdleChecker
	target     Target
	autoPaused bool
	lastErr    error
}

// New creates a watcher. A zero CheckInterval defaults to 5s.
func New(config Config, checker IdleChecker, target Target) *Watcher {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 5 * time.Second
	}
	return &Watcher{
		config:  config,
		checker: checker,
		target:  target,
	}
}

// SetConfig replaces the options, e.g. after the preferences changed.
func (watcher *Watcher) SetConfig(config Config) {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if config.CheckInterval <= 0 {
		config.CheckInterval = watcher.config.CheckInterval
	}
	watcher.config = config
}

// Run polls the checker until ctx is done.
func (watcher *Watcher) Run(ctx context.Context) {
	watcher.mu.Lock()
	interval := watcher.config.CheckInterval
	watcher.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			watcher.Check()
		}
	}
}

// Check runs one idle check.
func (watcher *Watcher) Check() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()

	if !watcher.config.Enabled || watcher.checker == nil || watcher.target == nil {
		return
	}

	idle, err := watcher.checker.IdleDuration()
	if err != nil {
		watcher.lastErr = err
		if errors.Is(err, ErrIdleUnsupported) {
			watcher.config.Enabled = false
			logger.Warn("idle auto-pause disabled", "error", err)
			return
		}
		logger.Error("idle check failed", "error", err)
		return
	}
	watcher.lastErr = nil

	switch {
	case idle >= watcher.config.Threshold && !watcher.autoPaused:
		if watcher.target.Paused() {
			return
		}
		watcher.autoPaused = true
		watcher.target.Pause()
		logger.Info("flow paused for inactivity", "idle", idle.String())
	case idle < watcher.config.Threshold && watcher.autoPaused:
		watcher.autoPaused = false
		if watcher.target.Paused() {
			watcher.target.Resume()
			logger.Info("flow resumed on activity")
		}
	}
}

// AutoPaused reports whether the current pause was made by the watcher.
func (watcher *Watcher) AutoPaused() bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.autoPaused
}

// Enabled reports whether idle checks are active.
func (watcher *Watcher) Enabled() bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.config.Enabled
}

// Err returns the last checker error, if any.
func (watcher *Watcher) Err() error {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.lastErr
}
