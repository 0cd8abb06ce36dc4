package timeline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"odyssey/internal/core/model"
)

// Timeline is the scripted sequence of one scene.
type Timeline interface {
	Scene() model.Scene
	Start(ctx context.Context)
	Stop()
	Running() bool
	Done() <-chan struct{}
}

// runner owns the single task of a timeline activation.
type runner struct {
	mu      sync.Mutex
	scene   model.Scene
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func (r *runner) init(scene model.Scene) {
	done := make(chan struct{})
	close(done)
	r.scene = scene
	r.done = done
}

// start launches run unless an activation is already in flight.
func (r *runner) start(parent context.Context, run func(context.Context) bool) bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		defer r.finish(done)

		ctx, span := tracer.Start(ctx, "scene "+r.scene.String(),
			trace.WithAttributes(attribute.String("scene", r.scene.String())))
		defer span.End()

		logger.InfoContext(ctx, "scene timeline started", "scene", r.scene.String())
		completed := run(ctx)
		span.SetAttributes(attribute.Bool("scene.completed", completed))
		if completed {
			logger.InfoContext(ctx, "scene timeline finished", "scene", r.scene.String())
		} else {
			logger.DebugContext(ctx, "scene timeline cancelled", "scene", r.scene.String())
		}
	}()
	return true
}

// stop cancels the activation and waits for its task to exit.
func (r *runner) stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

func (r *runner) finish(done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == done {
		r.running = false
	}
}

func (r *runner) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) doneCh() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// publisher holds a timeline's renderer-facing state. Writes made with a
// cancelled context are dropped so a stopped timeline never changes state.
type publisher[S any] struct {
	mu       sync.Mutex
	state    S
	onChange func(S)
}

func (p *publisher[S]) publish(ctx context.Context, mutate func(*S)) bool {
	p.mu.Lock()
	if ctx.Err() != nil {
		p.mu.Unlock()
		return false
	}
	mutate(&p.state)
	state := p.state
	onChange := p.onChange
	p.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
	return true
}

func (p *publisher[S]) reset() {
	var zero S
	p.mu.Lock()
	p.state = zero
	onChange := p.onChange
	p.mu.Unlock()

	if onChange != nil {
		onChange(zero)
	}
}

func (p *publisher[S]) get() S {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *publisher[S]) setOnChange(handler func(S)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = handler
}
