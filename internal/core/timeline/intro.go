package timeline

import (
	"context"

	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
	"odyssey/internal/core/typewriter"
)

// IntroState is the Universal scene as seen by the renderer.
type IntroState struct {
	// Overlay covers the scene in black at start and fades away.
	Overlay  model.Fade
	Quote    string
	Black    model.Fade
	Finished bool
}

// Intro plays the opening quote.
type Intro struct {
	runner
	clock   pauseclock.Sleeper
	timings model.IntroTimings
	scripts model.ScriptProvider
	quote   *typewriter.Typewriter
	state   publisher[IntroState]
}

// NewIntro creates the Universal scene timeline.
func NewIntro(clock pauseclock.Sleeper, timings model.IntroTimings, scripts model.ScriptProvider) *Intro {
	intro := &Intro{
		clock:   clock,
		timings: timings,
		scripts: scripts,
		quote:   typewriter.New(clock, timings.CharDelay),
	}
	intro.runner.init(model.SceneUniversal)
	return intro
}

// SetOnChange registers the state observer.
func (intro *Intro) SetOnChange(handler func(IntroState)) {
	intro.state.setOnChange(handler)
}

// Scene implements Timeline.
func (intro *Intro) Scene() model.Scene { return model.SceneUniversal }

// Start runs the timeline. Calling Start while running is a no-op.
func (intro *Intro) Start(ctx context.Context) {
	intro.start(ctx, intro.run)
}

// Stop cancels the timeline and clears its state.
func (intro *Intro) Stop() {
	intro.quote.Stop()
	intro.stop()
	intro.quote.Reset()
	intro.state.reset()
}

// Running reports whether an activation is in flight.
func (intro *Intro) Running() bool { return intro.isRunning() }

// Done is closed when the current activation ends.
func (intro *Intro) Done() <-chan struct{} { return intro.doneCh() }

// State returns the current renderer state.
func (intro *Intro) State() IntroState { return intro.state.get() }

func (intro *Intro) run(ctx context.Context) bool {
	text := model.TextOr(intro.scripts.Script(model.SceneUniversal).Quote)
	timings := intro.timings

	intro.state.publish(ctx, func(state *IntroState) {
		*state = IntroState{Overlay: model.Jump(1)}
	})
	intro.state.publish(ctx, func(state *IntroState) {
		state.Overlay = model.FadeTo(0, timings.OverlayFade)
	})
	if !intro.clock.Sleep(ctx, timings.OverlayFade+timings.TextDelay) {
		return false
	}

	revealed := intro.quote.RevealSync(ctx, text, func(prefix string) {
		intro.state.publish(ctx, func(state *IntroState) {
			state.Quote = prefix
		})
	})
	if !revealed {
		return false
	}
	if !intro.clock.Sleep(ctx, timings.QuoteHold) {
		return false
	}

	intro.state.publish(ctx, func(state *IntroState) {
		state.Black = model.FadeTo(1, timings.BlackFade)
	})
	if !intro.clock.Sleep(ctx, timings.BlackFade) {
		return false
	}
	if !intro.clock.Sleep(ctx, timings.BlackHold) {
		return false
	}

	return intro.state.publish(ctx, func(state *IntroState) {
		state.Finished = true
	})
}
