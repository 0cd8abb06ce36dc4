package timeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
	"odyssey/internal/core/typewriter"
)

// EarthPhase selects which dialogue slot is visible.
type EarthPhase int

const (
	EarthPhaseNone EarthPhase = iota
	EarthPhaseDialogue
	EarthPhaseTopLeft
	EarthPhaseThird
)

func (phase EarthPhase) String() string {
	switch phase {
	case EarthPhaseDialogue:
		return "dialogue"
	case EarthPhaseTopLeft:
		return "top_left"
	case EarthPhaseThird:
		return "third"
	default:
		return "none"
	}
}

// EarthState is the Earth scene as seen by the renderer.
type EarthState struct {
	Phase    EarthPhase
	Dialogue string
	TopLeft  string
	Third    string
	// TextBox is shared by the dialogue and third phases.
	TextBox  model.Fade
	Black    model.Fade
	Finished bool
}

// Earth plays the three dialogue phases.
type Earth struct {
	runner
	clock    pauseclock.Sleeper
	timings  model.EarthTimings
	scripts  model.ScriptProvider
	dialogue *typewriter.Typewriter
	topLeft  *typewriter.Typewriter
	third    *typewriter.Typewriter
	state    publisher[EarthState]
}

// NewEarth creates the Earth scene timeline.
func NewEarth(clock pauseclock.Sleeper, timings model.EarthTimings, scripts model.ScriptProvider) *Earth {
	earth := &Earth{
		clock:    clock,
		timings:  timings,
		scripts:  scripts,
		dialogue: typewriter.New(clock, timings.CharDelay),
		topLeft:  typewriter.New(clock, timings.CharDelay),
		third:    typewriter.New(clock, timings.CharDelay),
	}
	earth.runner.init(model.SceneEarth)
	return earth
}

// SetOnChange registers the state observer.
func (earth *Earth) SetOnChange(handler func(EarthState)) {
	earth.state.setOnChange(handler)
}

// Scene implements Timeline.
func (earth *Earth) Scene() model.Scene { return model.SceneEarth }

// Start runs the timeline. Calling Start while running is a no-op.
func (earth *Earth) Start(ctx context.Context) {
	earth.start(ctx, earth.run)
}

// Stop cancels the timeline, including reveals in flight, and clears its state.
func (earth *Earth) Stop() {
	for _, tw := range earth.typewriters() {
		tw.Stop()
	}
	earth.stop()
	for _, tw := range earth.typewriters() {
		tw.Reset()
	}
	earth.state.reset()
}

// Running reports whether an activation is in flight.
func (earth *Earth) Running() bool { return earth.isRunning() }

// Done is closed when the current activation ends.
func (earth *Earth) Done() <-chan struct{} { return earth.doneCh() }

// State returns the current renderer state.
func (earth *Earth) State() EarthState { return earth.state.get() }

func (earth *Earth) typewriters() []*typewriter.Typewriter {
	return []*typewriter.Typewriter{earth.dialogue, earth.topLeft, earth.third}
}

func (earth *Earth) run(ctx context.Context) bool {
	script := earth.scripts.Script(model.SceneEarth)
	timings := earth.timings

	earth.state.publish(ctx, func(state *EarthState) {
		*state = EarthState{Phase: EarthPhaseDialogue}
	})
	dialogue := model.TextOr(script.Dialogue)
	if !earth.revealWithTextBox(ctx, earth.dialogue, dialogue, timings.DialogueHold, func(state *EarthState, text string) {
		state.Dialogue = text
	}) {
		return false
	}

	earth.state.publish(ctx, func(state *EarthState) {
		state.Phase = EarthPhaseTopLeft
	})
	revealed := earth.topLeft.RevealSync(ctx, model.TextOr(script.TopLeft), func(prefix string) {
		earth.state.publish(ctx, func(state *EarthState) {
			state.TopLeft = prefix
		})
	})
	if !revealed || !earth.clock.Sleep(ctx, timings.TopLeftHold) {
		return false
	}

	earth.state.publish(ctx, func(state *EarthState) {
		state.Phase = EarthPhaseThird
	})
	third := model.TextOr(script.Third)
	if !earth.revealWithTextBox(ctx, earth.third, third, timings.ThirdHold, func(state *EarthState, text string) {
		state.Third = text
	}) {
		return false
	}

	earth.state.publish(ctx, func(state *EarthState) {
		state.Black = model.FadeTo(1, timings.BlackFade)
	})
	if !earth.clock.Sleep(ctx, timings.BlackFade) {
		return false
	}
	if !earth.clock.Sleep(ctx, timings.BlackHold) {
		return false
	}

	return earth.state.publish(ctx, func(state *EarthState) {
		state.Finished = true
	})
}

// revealWithTextBox fades the text box in and types text in the background.
// The box fades out once hold elapses, whether or not the text is complete;
// a reveal still in flight is then cancelled and the hidden slot is settled
// on the full text.
func (earth *Earth) revealWithTextBox(ctx context.Context, tw *typewriter.Typewriter, text string, hold time.Duration, assign func(*EarthState, string)) bool {
	revealCtx, cancelReveal := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		tw.RevealSync(revealCtx, text, func(prefix string) {
			earth.state.publish(revealCtx, func(state *EarthState) {
				assign(state, prefix)
			})
		})
		return nil
	})

	earth.fadeTextBox(ctx, 1)
	held := earth.clock.Sleep(ctx, hold)
	if held {
		earth.fadeTextBox(ctx, 0)
		held = earth.clock.Sleep(ctx, earth.timings.TextFade)
	}
	cancelReveal()
	_ = group.Wait()
	if !held {
		return false
	}
	return earth.state.publish(ctx, func(state *EarthState) {
		assign(state, text)
	})
}

func (earth *Earth) fadeTextBox(ctx context.Context, target float64) {
	earth.state.publish(ctx, func(state *EarthState) {
		state.TextBox = model.FadeTo(target, earth.timings.TextFade)
	})
}
