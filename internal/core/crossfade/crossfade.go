package crossfade

import (
	"context"
	"strconv"
	"sync"
	"time"
	"unicode"

	"odyssey/internal/core/pauseclock"
)

// Direction classifies a slide transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (direction Direction) String() string {
	if direction == Backward {
		return "backward"
	}
	return "forward"
}

// Config contains crossfade timing values.
type Config struct {
	Forward   time.Duration
	Backward  time.Duration
	StepHold  time.Duration
	MinSettle time.Duration
}

// State is what a renderer needs to draw the slideshow. Next is set only
// while a transition is running; NextOpacity is the target opacity of Next
// and FadeDuration the time to reach it.
type State struct {
	Current      string
	Next         string
	NextOpacity  float64
	FadeDuration time.Duration
	Done         bool
}

// Sequencer plays an ordered list of slides with crossfades between them.
type Sequencer struct {
	mu       sync.Mutex
	clock    pauseclock.Sleeper
	config   Config
	state    State
	onChange func(State)
}

// New creates a sequencer. onChange may be nil.
func New(clock pauseclock.Sleeper, config Config, onChange func(State)) *Sequencer {
	return &Sequencer{
		clock:    clock,
		config:   config,
		onChange: onChange,
	}
}

// Level extracts the trailing number of a slide name. Names without
// trailing digits are level 0.
func Level(name string) int {
	runes := []rune(name)
	end := len(runes)
	start := end
	for start > 0 && unicode.IsDigit(runes[start-1]) {
		start--
	}
	if start == end {
		return 0
	}
	level, err := strconv.Atoi(string(runes[start:end]))
	if err != nil {
		return 0
	}
	return level
}

// DirectionOf classifies the transition from current to next.
func DirectionOf(current, next string) Direction {
	if Level(next) < Level(current) {
		return Backward
	}
	return Forward
}

// DurationFor returns the crossfade duration between two slides.
func (sequencer *Sequencer) DurationFor(current, next string) time.Duration {
	if DirectionOf(current, next) == Backward {
		return sequencer.config.Backward
	}
	return sequencer.config.Forward
}

// SettleFor returns the pause after a crossfade of the given duration.
func (sequencer *Sequencer) SettleFor(crossfade time.Duration) time.Duration {
	settle := sequencer.config.StepHold - crossfade
	if settle < sequencer.config.MinSettle {
		settle = sequencer.config.MinSettle
	}
	return settle
}

// Run plays slides in order and reports whether the sequence completed.
// On cancellation the state is left as last published.
func (sequencer *Sequencer) Run(ctx context.Context, slides []string) bool {
	if len(slides) == 0 {
		sequencer.update(func(state *State) {
			*state = State{Done: true}
		})
		return ctx.Err() == nil
	}
	if ctx.Err() != nil {
		return false
	}

	sequencer.update(func(state *State) {
		*state = State{Current: slides[0]}
	})

	for index := 1; index < len(slides); index++ {
		if ctx.Err() != nil {
			return false
		}

		current := slides[index-1]
		next := slides[index]
		crossfade := sequencer.DurationFor(current, next)

		sequencer.update(func(state *State) {
			state.Next = next
			state.NextOpacity = 0
			state.FadeDuration = 0
		})
		sequencer.update(func(state *State) {
			state.NextOpacity = 1
			state.FadeDuration = crossfade
		})
		if !sequencer.clock.Sleep(ctx, crossfade) {
			return false
		}

		sequencer.update(func(state *State) {
			state.Current = next
			state.Next = ""
			state.NextOpacity = 0
			state.FadeDuration = 0
		})

		if settle := sequencer.SettleFor(crossfade); settle > 0 {
			if !sequencer.clock.Sleep(ctx, settle) {
				return false
			}
		}
	}

	sequencer.update(func(state *State) {
		*state = State{Done: true}
	})
	return true
}

// State returns the current slideshow state.
func (sequencer *Sequencer) State() State {
	sequencer.mu.Lock()
	defer sequencer.mu.Unlock()
	return sequencer.state
}

// Reset clears the visible slides.
func (sequencer *Sequencer) Reset() {
	sequencer.update(func(state *State) {
		*state = State{}
	})
}

func (sequencer *Sequencer) update(mutate func(*State)) {
	sequencer.mu.Lock()
	mutate(&sequencer.state)
	state := sequencer.state
	onChange := sequencer.onChange
	sequencer.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}
