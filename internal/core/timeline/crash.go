package timeline

import (
	"context"

	"odyssey/internal/core/crossfade"
	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
)

// CrashState is the Crash scene as seen by the renderer.
type CrashState struct {
	WhiteOverlay    model.Fade
	SceneOpacity    model.Fade
	Slides          crossfade.State
	FinalBackground bool
}

// Crash plays the white reveal and the crash slideshow.
type Crash struct {
	runner
	clock   pauseclock.Sleeper
	timings model.CrashTimings
	state   publisher[CrashState]
}

// NewCrash creates the Crash scene timeline.
func NewCrash(clock pauseclock.Sleeper, timings model.CrashTimings) *Crash {
	crash := &Crash{
		clock:   clock,
		timings: timings,
	}
	crash.runner.init(model.SceneCrash)
	return crash
}

// SetOnChange registers the state observer.
func (crash *Crash) SetOnChange(handler func(CrashState)) {
	crash.state.setOnChange(handler)
}

// Scene implements Timeline.
func (crash *Crash) Scene() model.Scene { return model.SceneCrash }

// Start runs the timeline. Calling Start while running is a no-op.
func (crash *Crash) Start(ctx context.Context) {
	crash.start(ctx, crash.run)
}

// Stop cancels the timeline and clears its state, slides included.
func (crash *Crash) Stop() {
	crash.stop()
	crash.state.reset()
}

// Running reports whether an activation is in flight.
func (crash *Crash) Running() bool { return crash.isRunning() }

// Done is closed when the current activation ends.
func (crash *Crash) Done() <-chan struct{} { return crash.doneCh() }

// State returns the current renderer state.
func (crash *Crash) State() CrashState { return crash.state.get() }

func (crash *Crash) run(ctx context.Context) bool {
	timings := crash.timings
	sequencer := crossfade.New(crash.clock, crossfade.Config{
		Forward:   timings.ForwardFade,
		Backward:  timings.BackwardFade,
		StepHold:  timings.StepHold,
		MinSettle: timings.MinSettle,
	}, func(slides crossfade.State) {
		crash.state.publish(ctx, func(state *CrashState) {
			state.Slides = slides
		})
	})

	crash.state.publish(ctx, func(state *CrashState) {
		*state = CrashState{
			WhiteOverlay: model.Jump(1),
			SceneOpacity: model.Jump(0),
		}
	})
	crash.state.publish(ctx, func(state *CrashState) {
		state.WhiteOverlay = model.FadeTo(0, timings.WhiteFade)
		state.SceneOpacity = model.FadeTo(1, timings.WhiteFade)
	})
	if !crash.clock.Sleep(ctx, timings.WhiteFade) {
		return false
	}
	if !crash.clock.Sleep(ctx, timings.Hold) {
		return false
	}

	if !sequencer.Run(ctx, timings.Slides) {
		return false
	}
	return crash.state.publish(ctx, func(state *CrashState) {
		state.FinalBackground = true
	})
}
