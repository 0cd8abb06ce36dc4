package player

import (
	"context"
	"sync"
	"time"

	"odyssey/internal/core/flow"
	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
	"odyssey/internal/core/timeline"
)

// Observer receives every state published by the scene timelines.
type Observer interface {
	ObserveIntro(timeline.IntroState)
	ObserveEarth(timeline.EarthState)
	ObserveSpace(timeline.SpaceState)
	ObserveCrash(timeline.CrashState)
}

// Player owns the current flow and rebuilds it when timings or the script
// change. All methods are safe for concurrent use.
type Player struct {
	mu           sync.Mutex
	observer     Observer
	onEvent      func(flow.Event)
	orchestrator *flow.Orchestrator
	space        *timeline.Space
	forwarding   chan struct{}
	forwarded    sync.WaitGroup
}

// New creates a player. observer and onEvent may be nil.
func New(observer Observer, onEvent func(flow.Event)) *Player {
	return &Player{
		observer: observer,
		onEvent:  onEvent,
	}
}

// Load replaces the flow with one built from timings and scripts. The
// previous flow is closed; the new one is not started. Replacing a paused
// flow emits EventResume since the new flow starts unpaused.
func (player *Player) Load(timings model.Timings, scripts model.ScriptProvider) {
	clock := pauseclock.New(pauseclock.Config{})
	intro := timeline.NewIntro(clock, timings.Intro, scripts)
	earth := timeline.NewEarth(clock, timings.Earth, scripts)
	space := timeline.NewSpace(clock, timings.Space, scripts, nil)
	crash := timeline.NewCrash(clock, timings.Crash)

	if player.observer != nil {
		intro.SetOnChange(player.observer.ObserveIntro)
		earth.SetOnChange(player.observer.ObserveEarth)
		space.SetOnChange(player.observer.ObserveSpace)
		crash.SetOnChange(player.observer.ObserveCrash)
	}

	orchestrator := flow.New(clock, timings, map[model.Scene]flow.Timeline{
		model.SceneUniversal: intro,
		model.SceneEarth:     earth,
		model.SceneSpace:     space,
		model.SceneCrash:     crash,
	})
	events := orchestrator.Subscribe(16)
	forwarding := make(chan struct{})

	player.mu.Lock()
	previous := player.orchestrator
	previousForwarding := player.forwarding
	player.orchestrator = orchestrator
	player.space = space
	player.forwarding = forwarding
	player.forwarded.Add(1)
	player.mu.Unlock()

	go func() {
		defer player.forwarded.Done()
		defer close(forwarding)
		for event := range events {
			if player.onEvent != nil {
				player.onEvent(event)
			}
		}
	}()

	if previous == nil {
		return
	}
	paused := previous.Paused()
	previous.Close()
	<-previousForwarding
	if paused && player.onEvent != nil {
		player.onEvent(flow.Event{
			Type:  flow.EventResume,
			Scene: orchestrator.Step(),
			At:    time.Now(),
		})
	}
}

// Start starts the current flow.
func (player *Player) Start(ctx context.Context) {
	if orchestrator := player.current(); orchestrator != nil {
		orchestrator.Start(ctx)
	}
}

// Restart rewinds the current flow to the first scene.
func (player *Player) Restart(ctx context.Context) {
	if orchestrator := player.current(); orchestrator != nil {
		orchestrator.Restart(ctx)
	}
}

// Pause pauses the current flow.
func (player *Player) Pause() {
	if orchestrator := player.current(); orchestrator != nil {
		orchestrator.Pause()
	}
}

// Resume resumes the current flow.
func (player *Player) Resume() {
	if orchestrator := player.current(); orchestrator != nil {
		orchestrator.Resume()
	}
}

// Paused reports whether the current flow is paused.
func (player *Player) Paused() bool {
	if orchestrator := player.current(); orchestrator != nil {
		return orchestrator.Paused()
	}
	return false
}

// TogglePause pauses a running flow or resumes a paused one.
func (player *Player) TogglePause() {
	if orchestrator := player.current(); orchestrator != nil {
		orchestrator.TogglePause()
	}
}

// Select forwards a choice to the Space scene.
func (player *Player) Select(id model.ChoiceID) bool {
	player.mu.Lock()
	space := player.space
	player.mu.Unlock()
	if space == nil {
		return false
	}
	return space.Select(id)
}

// Snapshot returns the state of the current flow.
func (player *Player) Snapshot() flow.Snapshot {
	if orchestrator := player.current(); orchestrator != nil {
		return orchestrator.Snapshot()
	}
	return flow.Snapshot{}
}

// Close stops the flow and waits for event forwarding to end.
func (player *Player) Close() {
	player.mu.Lock()
	orchestrator := player.orchestrator
	player.orchestrator = nil
	player.space = nil
	player.mu.Unlock()

	if orchestrator != nil {
		orchestrator.Close()
	}
	player.forwarded.Wait()
}

func (player *Player) current() *flow.Orchestrator {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.orchestrator
}
