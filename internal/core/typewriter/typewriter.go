package typewriter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"odyssey/internal/core/pauseclock"
)

// Handle identifies a single reveal. A reveal keeps writing only while its
// generation matches the typewriter's current generation.
type Handle struct {
	Generation uint64

	cancel    context.CancelFunc
	done      chan struct{}
	completed atomic.Bool
}

// Done is closed when the reveal loop exits.
func (handle *Handle) Done() <-chan struct{} {
	return handle.done
}

// Wait blocks until the reveal loop exits and reports whether the whole
// text was revealed.
func (handle *Handle) Wait() bool {
	<-handle.done
	return handle.completed.Load()
}

// Cancel aborts the reveal loop without waiting for it.
func (handle *Handle) Cancel() {
	if handle.cancel != nil {
		handle.cancel()
	}
}

// Typewriter reveals text one character at a time for a single text slot.
type Typewriter struct {
	mu         sync.Mutex
	clock      pauseclock.Sleeper
	charDelay  time.Duration
	generation uint64
	full       string
	revealed   string
}

// New creates a typewriter that waits charDelay between characters.
func New(clock pauseclock.Sleeper, charDelay time.Duration) *Typewriter {
	return &Typewriter{
		clock:     clock,
		charDelay: charDelay,
	}
}

// Reveal starts revealing text in the background, superseding any reveal
// in flight. onUpdate receives the revealed prefix after every character;
// it runs with the typewriter locked and must not call back into it.
func (tw *Typewriter) Reveal(ctx context.Context, text string, onUpdate func(string)) *Handle {
	handle := tw.begin(text)
	runCtx, cancel := context.WithCancel(ctx)
	handle.cancel = cancel
	handle.done = make(chan struct{})

	go func() {
		defer close(handle.done)
		defer cancel()
		handle.completed.Store(tw.run(runCtx, handle, text, onUpdate))
	}()
	return handle
}

// RevealSync reveals text on the calling goroutine and reports whether the
// whole text was revealed.
func (tw *Typewriter) RevealSync(ctx context.Context, text string, onUpdate func(string)) bool {
	handle := tw.begin(text)
	handle.done = make(chan struct{})
	defer close(handle.done)
	completed := tw.run(ctx, handle, text, onUpdate)
	handle.completed.Store(completed)
	return completed
}

// Stop invalidates the reveal in flight. The revealed text is kept.
func (tw *Typewriter) Stop() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.generation++
}

// Reset invalidates the reveal in flight and clears the text.
func (tw *Typewriter) Reset() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.generation++
	tw.full = ""
	tw.revealed = ""
}

// Text returns the revealed prefix.
func (tw *Typewriter) Text() string {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.revealed
}

// Full returns the text of the latest reveal.
func (tw *Typewriter) Full() string {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.full
}

// Current reports whether handle belongs to the latest reveal.
func (tw *Typewriter) Current(handle *Handle) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return handle != nil && handle.Generation == tw.generation
}

func (tw *Typewriter) begin(text string) *Handle {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.generation++
	tw.full = text
	tw.revealed = ""
	return &Handle{Generation: tw.generation}
}

func (tw *Typewriter) run(ctx context.Context, handle *Handle, text string, onUpdate func(string)) bool {
	characters := []rune(text)
	for index := range characters {
		if ctx.Err() != nil {
			return false
		}
		if !tw.emit(handle, string(characters[:index+1]), onUpdate) {
			return false
		}
		if index == len(characters)-1 {
			break
		}
		if !tw.clock.Sleep(ctx, tw.charDelay) {
			return false
		}
	}
	return tw.Current(handle)
}

func (tw *Typewriter) emit(handle *Handle, prefix string, onUpdate func(string)) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if handle.Generation != tw.generation {
		return false
	}
	tw.revealed = prefix
	if onUpdate != nil {
		onUpdate(prefix)
	}
	return true
}
