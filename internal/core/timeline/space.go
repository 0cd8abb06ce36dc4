package timeline

import (
	"context"
	"sync"
	"time"

	"odyssey/internal/core/choice"
	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
)

// ImpactStart is the impact amount published before the ramp begins.
const ImpactStart = 0.001

// DefaultChoices is used when the script does not define a valid choice.
var DefaultChoices = []model.ChoiceLabel{
	{ID: "evade", Label: "Evade"},
	{ID: "brace", Label: "Brace", Default: true},
}

// SpaceState is the Space scene as seen by the renderer.
type SpaceState struct {
	// Growing starts the long approach animation lasting GrowDuration.
	Growing       bool
	GrowDuration  time.Duration
	WarningActive bool
	WarningText   string
	Choice        choice.State
	Impact        model.Fade
	WhiteOut      model.Fade
	Finished      bool
}

// Space plays the flight, the warning with its choice and the impact.
type Space struct {
	runner
	clock    pauseclock.Sleeper
	timings  model.SpaceTimings
	scripts  model.ScriptProvider
	state    publisher[SpaceState]
	onFinish func()

	gateMu sync.Mutex
	gate   *choice.Gate
}

// NewSpace creates the Space scene timeline. onFinish runs on the
// timeline's goroutine once the white-out hold ends; it must not block on
// Stop of this timeline.
func NewSpace(clock pauseclock.Sleeper, timings model.SpaceTimings, scripts model.ScriptProvider, onFinish func()) *Space {
	space := &Space{
		clock:    clock,
		timings:  timings,
		scripts:  scripts,
		onFinish: onFinish,
	}
	space.runner.init(model.SceneSpace)
	return space
}

// SetOnChange registers the state observer.
func (space *Space) SetOnChange(handler func(SpaceState)) {
	space.state.setOnChange(handler)
}

// SetOnFinish replaces the completion callback. It must be set before Start.
func (space *Space) SetOnFinish(handler func()) {
	space.onFinish = handler
}

// Scene implements Timeline.
func (space *Space) Scene() model.Scene { return model.SceneSpace }

// Start runs the timeline. Calling Start while running is a no-op.
func (space *Space) Start(ctx context.Context) {
	space.start(ctx, space.run)
}

// Stop cancels the timeline and its choice gate and clears its state.
func (space *Space) Stop() {
	space.stop()
	space.gateMu.Lock()
	gate := space.gate
	space.gate = nil
	space.gateMu.Unlock()
	if gate != nil {
		gate.Close()
	}
	space.state.reset()
}

// Running reports whether an activation is in flight.
func (space *Space) Running() bool { return space.isRunning() }

// Done is closed when the current activation ends.
func (space *Space) Done() <-chan struct{} { return space.doneCh() }

// State returns the current renderer state.
func (space *Space) State() SpaceState { return space.state.get() }

// Select forwards a user choice to the open gate.
func (space *Space) Select(id model.ChoiceID) bool {
	gate := space.currentGate()
	if gate == nil {
		return false
	}
	accepted := gate.Select(id)
	if accepted {
		logger.Info("choice selected", "choice", string(id))
	}
	return accepted
}

func (space *Space) currentGate() *choice.Gate {
	space.gateMu.Lock()
	defer space.gateMu.Unlock()
	return space.gate
}

func (space *Space) run(ctx context.Context) bool {
	script := space.scripts.Script(model.SceneSpace)
	timings := space.timings

	gate := space.newGate(ctx, script.Choices)

	space.state.publish(ctx, func(state *SpaceState) {
		*state = SpaceState{
			Growing:      true,
			GrowDuration: timings.GrowDuration,
			Choice:       gate.State(),
		}
	})
	if !space.clock.Sleep(ctx, timings.WarningDelay) {
		return false
	}

	gate.Open(ctx, timings.ChoiceWindow(), timings.ChoiceLinger)
	space.state.publish(ctx, func(state *SpaceState) {
		state.WarningActive = true
		state.WarningText = model.TextOr(script.Warning)
	})
	if !space.clock.Sleep(ctx, timings.WarningVisible) {
		return false
	}
	space.state.publish(ctx, func(state *SpaceState) {
		state.WarningActive = false
	})

	if !space.clock.Sleep(ctx, timings.ImpactDelay) {
		return false
	}
	space.state.publish(ctx, func(state *SpaceState) {
		state.Impact = model.Jump(ImpactStart)
	})
	space.state.publish(ctx, func(state *SpaceState) {
		state.Impact = model.FadeTo(1, timings.ImpactRamp)
	})
	if !space.clock.Sleep(ctx, timings.ImpactRamp) {
		return false
	}

	space.state.publish(ctx, func(state *SpaceState) {
		state.WhiteOut = model.Jump(1)
	})
	if !space.clock.Sleep(ctx, timings.WhiteOutHold) {
		return false
	}

	if !space.state.publish(ctx, func(state *SpaceState) {
		state.Finished = true
	}) {
		return false
	}
	if space.onFinish != nil {
		space.onFinish()
	}
	return true
}

func (space *Space) newGate(ctx context.Context, options []model.ChoiceLabel) *choice.Gate {
	onChange := func(state choice.State) {
		space.state.publish(ctx, func(spaceState *SpaceState) {
			spaceState.Choice = state
		})
		if state.Automatic && state.Open {
			logger.InfoContext(ctx, "choice resolved by default", "choice", string(state.Selected))
		}
	}

	gate, err := choice.New(space.clock, options, onChange)
	if err != nil {
		if len(options) > 0 {
			logger.WarnContext(ctx, "invalid scripted choice, using defaults", "error", err)
		}
		gate, _ = choice.New(space.clock, DefaultChoices, onChange)
	}

	space.gateMu.Lock()
	space.gate = gate
	space.gateMu.Unlock()
	return gate
}
