package choice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
)

var (
	// ErrNoOptions indicates a gate was built without options.
	ErrNoOptions = errors.New("choice has no options")
	// ErrNoDefault indicates no option is marked as the automatic pick.
	ErrNoDefault = errors.New("choice has no default option")
	// ErrMultipleDefaults indicates more than one option is marked default.
	ErrMultipleDefaults = errors.New("choice has more than one default option")
)

// State is the renderer-facing view of a gate.
type State struct {
	Options       []model.ChoiceLabel
	Open          bool
	Inert         bool
	Selected      model.ChoiceID
	Automatic     bool
	WindowExpired bool
}

// HasSelection reports whether an option was picked.
func (state State) HasSelection() bool {
	return state.Selected != ""
}

// Gate is a timed binary choice. The first selection wins; if nobody picks
// before the window closes, the default option is picked automatically.
type Gate struct {
	mu        sync.Mutex
	clock     pauseclock.Sleeper
	options   []model.ChoiceLabel
	defaultID model.ChoiceID
	state     State
	onChange  func(State)
	selected  chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

// New validates options and creates a closed gate. onChange may be nil.
func New(clock pauseclock.Sleeper, options []model.ChoiceLabel, onChange func(State)) (*Gate, error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}

	var defaultID model.ChoiceID
	for _, option := range options {
		if !option.Default {
			continue
		}
		if defaultID != "" {
			return nil, fmt.Errorf("%w: %s and %s", ErrMultipleDefaults, defaultID, option.ID)
		}
		defaultID = option.ID
	}
	if defaultID == "" {
		return nil, ErrNoDefault
	}

	copied := append([]model.ChoiceLabel(nil), options...)
	return &Gate{
		clock:     clock,
		options:   copied,
		defaultID: defaultID,
		state:     State{Options: copied},
		onChange:  onChange,
		selected:  make(chan struct{}),
	}, nil
}

// Default returns the automatic pick.
func (gate *Gate) Default() model.ChoiceID {
	return gate.defaultID
}

// Open shows the gate and starts the selection window. The gate hides
// itself linger after a selection. Open on an already opened gate is a no-op.
func (gate *Gate) Open(ctx context.Context, window, linger time.Duration) {
	gate.mu.Lock()
	if gate.done != nil {
		gate.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	gate.cancel = cancel
	gate.done = make(chan struct{})
	done := gate.done
	gate.mu.Unlock()

	gate.update(func(state *State) {
		state.Open = true
	})

	go func() {
		defer close(done)
		defer cancel()
		gate.run(runCtx, window, linger)
	}()
}

// Select picks an option. It returns false when the gate is not open, a
// selection already exists, or id is unknown.
func (gate *Gate) Select(id model.ChoiceID) bool {
	return gate.resolve(id, false)
}

// State returns the current gate state.
func (gate *Gate) State() State {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.state
}

// Done is closed once the gate has hidden itself or was closed. It is nil
// before Open.
func (gate *Gate) Done() <-chan struct{} {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.done
}

// Close cancels the gate's timers and waits for them to exit. The
// selection, if any, is kept.
func (gate *Gate) Close() {
	gate.mu.Lock()
	cancel := gate.cancel
	done := gate.done
	gate.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (gate *Gate) run(ctx context.Context, window, linger time.Duration) {
	deadlineCtx, stopDeadline := context.WithCancel(ctx)
	defer stopDeadline()

	expired := make(chan bool, 1)
	go func() {
		expired <- gate.clock.Sleep(deadlineCtx, window)
	}()

	select {
	case <-ctx.Done():
		return
	case <-gate.selected:
		stopDeadline()
	case ok := <-expired:
		if !ok {
			return
		}
		gate.update(func(state *State) {
			state.WindowExpired = true
		})
		gate.resolve(gate.defaultID, true)
	}

	if !gate.clock.Sleep(ctx, linger) {
		return
	}
	gate.update(func(state *State) {
		state.Open = false
	})
}

func (gate *Gate) resolve(id model.ChoiceID, automatic bool) bool {
	gate.mu.Lock()
	if !gate.state.Open || gate.state.Selected != "" || !gate.knownLocked(id) {
		gate.mu.Unlock()
		return false
	}
	gate.state.Selected = id
	gate.state.Automatic = automatic
	gate.state.Inert = true
	close(gate.selected)
	state := gate.state
	onChange := gate.onChange
	gate.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
	return true
}

func (gate *Gate) knownLocked(id model.ChoiceID) bool {
	for _, option := range gate.options {
		if option.ID == id {
			return true
		}
	}
	return false
}

func (gate *Gate) update(mutate func(*State)) {
	gate.mu.Lock()
	mutate(&gate.state)
	state := gate.state
	onChange := gate.onChange
	gate.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}
