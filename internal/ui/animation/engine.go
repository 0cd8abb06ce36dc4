package animation

import (
	"context"
	"sync"
	"time"
)

// Config contains frame loop values.
type Config struct {
	FrameInterval time.Duration
}

// DefaultConfig returns a 60 fps frame loop.
func DefaultConfig() Config {
	return Config{FrameInterval: 16 * time.Millisecond}
}

// Engine calls a frame handler at a steady rate until stopped.
type Engine struct {
	mu      sync.Mutex
	config  Config
	onFrame func(time.Time)
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a new frame engine.
func New(config Config, onFrame func(time.Time)) *Engine {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultConfig().FrameInterval
	}
	return &Engine{
		config:  config,
		onFrame: onFrame,
	}
}

// Start launches the frame loop, replacing a running one.
func (engine *Engine) Start(ctx context.Context) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		engine.run(runCtx)
	}()
}

// Stop terminates the frame loop and waits for the last frame to return.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel := engine.cancel
	done := engine.done
	engine.cancel = nil
	engine.done = nil
	engine.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (engine *Engine) run(ctx context.Context) {
	ticker := time.NewTicker(engine.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			engine.onFrame(now)
		}
	}
}
