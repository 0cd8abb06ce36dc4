package flow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
)

// VisibilityThreshold is the opacity under which a scene need not be drawn.
const VisibilityThreshold = 0.001

// Clock is the shared pausable clock.
type Clock interface {
	pauseclock.Sleeper
	Pause()
	Resume()
	IsPaused() bool
}

// Timeline is the scripted sequence of one scene.
type Timeline interface {
	Start(ctx context.Context)
	Stop()
}

// finisher is implemented by timelines that end their scene themselves.
type finisher interface {
	SetOnFinish(func())
}

// Snapshot is the renderer-facing flow state.
type Snapshot struct {
	Step    model.Scene
	Opacity map[model.Scene]model.Fade
	// Outgoing is the scene fading out while Transitioning is set.
	Outgoing      model.Scene
	Transitioning bool
	Paused        bool
	Running       bool
	RunID         string
}

// Visible reports whether the renderer must keep drawing scene.
func (snapshot Snapshot) Visible(scene model.Scene) bool {
	if snapshot.Transitioning && snapshot.Outgoing == scene {
		return true
	}
	return snapshot.Opacity[scene].Target > VisibilityThreshold
}

// Orchestrator is the top-level scene state machine.
type Orchestrator struct {
	mu            sync.Mutex
	clock         Clock
	timings       model.Timings
	timelines     map[model.Scene]Timeline
	step          model.Scene
	opacity       map[model.Scene]model.Fade
	outgoing      model.Scene
	transitioning bool
	paused        bool
	running       bool
	runID         string
	runCtx        context.Context
	cancel        context.CancelFunc
	tasks         sync.WaitGroup
	events        []chan Event
}

// New creates an orchestrator positioned on the Universal scene. Timelines
// that can finish their scene (Space) are wired to StartCrashTransition.
func New(clock Clock, timings model.Timings, timelines map[model.Scene]Timeline) *Orchestrator {
	orchestrator := &Orchestrator{
		clock:     clock,
		timings:   timings,
		timelines: timelines,
	}
	orchestrator.resetLocked()

	if space, ok := timelines[model.SceneSpace].(finisher); ok {
		space.SetOnFinish(orchestrator.StartCrashTransition)
	}
	return orchestrator
}

// Subscribe registers a new observer channel.
func (orchestrator *Orchestrator) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	orchestrator.mu.Lock()
	orchestrator.events = append(orchestrator.events, ch)
	orchestrator.mu.Unlock()
	return ch
}

// Start launches the scene sequence. Calling Start while running is a no-op.
func (orchestrator *Orchestrator) Start(ctx context.Context) {
	orchestrator.mu.Lock()
	if orchestrator.running {
		orchestrator.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	orchestrator.running = true
	orchestrator.runCtx = runCtx
	orchestrator.cancel = cancel
	orchestrator.runID = uuid.NewString()
	orchestrator.tasks.Add(1)
	step := orchestrator.step
	runID := orchestrator.runID
	orchestrator.mu.Unlock()

	logger.InfoContext(runCtx, "flow started", "run_id", runID, "scene", step.String())
	orchestrator.startTimeline(runCtx, step)
	orchestrator.emit(Event{
		Type:     EventSceneChange,
		Scene:    step,
		Previous: step,
		RunID:    runID,
		At:       time.Now(),
	})

	go func() {
		defer orchestrator.tasks.Done()
		orchestrator.run(runCtx, runID)
	}()
}

// StartCrashTransition moves the flow to the terminal Crash scene right away.
// Calls while already in Crash, or while stopped, are no-ops.
func (orchestrator *Orchestrator) StartCrashTransition() {
	orchestrator.mu.Lock()
	if !orchestrator.running {
		orchestrator.mu.Unlock()
		return
	}
	ctx := orchestrator.runCtx
	orchestrator.tasks.Add(1)
	orchestrator.mu.Unlock()

	from, ok := orchestrator.beginTransition(nil, model.SceneCrash)
	if !ok {
		orchestrator.tasks.Done()
		return
	}

	go func() {
		defer orchestrator.tasks.Done()
		orchestrator.completeTransition(ctx, from, model.SceneCrash)
	}()
}

// Pause freezes every timer of the flow. The scene and opacities are kept.
func (orchestrator *Orchestrator) Pause() {
	orchestrator.clock.Pause()

	orchestrator.mu.Lock()
	if orchestrator.paused {
		orchestrator.mu.Unlock()
		return
	}
	orchestrator.paused = true
	event := orchestrator.eventLocked(EventPause)
	orchestrator.mu.Unlock()

	logger.Info("flow paused", "run_id", event.RunID, "scene", event.Scene.String())
	orchestrator.emit(event)
}

// Resume unfreezes the flow.
func (orchestrator *Orchestrator) Resume() {
	orchestrator.clock.Resume()

	orchestrator.mu.Lock()
	if !orchestrator.paused {
		orchestrator.mu.Unlock()
		return
	}
	orchestrator.paused = false
	event := orchestrator.eventLocked(EventResume)
	orchestrator.mu.Unlock()

	logger.Info("flow resumed", "run_id", event.RunID, "scene", event.Scene.String())
	orchestrator.emit(event)
}

// Paused reports whether the flow is paused.
func (orchestrator *Orchestrator) Paused() bool {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	return orchestrator.paused
}

// TogglePause pauses a running flow or resumes a paused one.
func (orchestrator *Orchestrator) TogglePause() {
	if orchestrator.Paused() {
		orchestrator.Resume()
		return
	}
	orchestrator.Pause()
}

// Stop cancels the sequence and every timeline. Safe to call repeatedly.
func (orchestrator *Orchestrator) Stop() {
	orchestrator.mu.Lock()
	if !orchestrator.running {
		orchestrator.mu.Unlock()
		return
	}
	orchestrator.running = false
	cancel := orchestrator.cancel
	event := orchestrator.eventLocked(EventStopped)
	orchestrator.mu.Unlock()

	cancel()
	orchestrator.tasks.Wait()
	for _, scene := range model.Scenes {
		if timeline, ok := orchestrator.timelines[scene]; ok {
			timeline.Stop()
		}
	}

	logger.Info("flow stopped", "run_id", event.RunID, "scene", event.Scene.String())
	orchestrator.emit(event)
}

// Restart stops the flow, rewinds to Universal and starts again unpaused.
func (orchestrator *Orchestrator) Restart(ctx context.Context) {
	orchestrator.Stop()
	orchestrator.Resume()

	orchestrator.mu.Lock()
	orchestrator.resetLocked()
	orchestrator.mu.Unlock()

	orchestrator.Start(ctx)
}

// Close stops the flow and closes observer channels.
func (orchestrator *Orchestrator) Close() {
	orchestrator.Stop()

	orchestrator.mu.Lock()
	events := orchestrator.events
	orchestrator.events = nil
	orchestrator.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Step returns the current scene.
func (orchestrator *Orchestrator) Step() model.Scene {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	return orchestrator.step
}

// Snapshot returns a copy of the flow state.
func (orchestrator *Orchestrator) Snapshot() Snapshot {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	opacity := make(map[model.Scene]model.Fade, len(orchestrator.opacity))
	for scene, fade := range orchestrator.opacity {
		opacity[scene] = fade
	}
	return Snapshot{
		Step:          orchestrator.step,
		Opacity:       opacity,
		Outgoing:      orchestrator.outgoing,
		Transitioning: orchestrator.transitioning,
		Paused:        orchestrator.paused,
		Running:       orchestrator.running,
		RunID:         orchestrator.runID,
	}
}

func (orchestrator *Orchestrator) run(ctx context.Context, runID string) {
	ctx, span := tracer.Start(ctx, "flow", trace.WithAttributes(attribute.String("flow.run_id", runID)))
	defer span.End()

	if !orchestrator.clock.Sleep(ctx, orchestrator.timings.UniversalToEarth) {
		return
	}
	if !orchestrator.transition(ctx, model.SceneUniversal, model.SceneEarth) {
		return
	}
	if !orchestrator.clock.Sleep(ctx, orchestrator.timings.EarthToSpace()) {
		return
	}
	orchestrator.transition(ctx, model.SceneEarth, model.SceneSpace)
}

func (orchestrator *Orchestrator) transition(ctx context.Context, from, to model.Scene) bool {
	if _, ok := orchestrator.beginTransition(&from, to); !ok {
		return false
	}
	return orchestrator.completeTransition(ctx, from, to)
}

// beginTransition switches the step to "to". With a nil from, the current
// step is the outgoing scene; otherwise the step must equal *from.
func (orchestrator *Orchestrator) beginTransition(from *model.Scene, to model.Scene) (model.Scene, bool) {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	current := orchestrator.step
	if current.Terminal() || current == to {
		return current, false
	}
	if from != nil && *from != current {
		return current, false
	}

	fade := orchestrator.timings.FadeDuration
	orchestrator.step = to
	orchestrator.opacity[current] = model.FadeTo(0, fade)
	orchestrator.opacity[to] = model.FadeTo(1, fade)
	orchestrator.outgoing = current
	orchestrator.transitioning = true
	return current, true
}

// completeTransition starts the incoming timeline, waits for the fade and
// stops the outgoing timeline.
func (orchestrator *Orchestrator) completeTransition(ctx context.Context, from, to model.Scene) bool {
	fade := orchestrator.timings.FadeDuration
	orchestrator.mu.Lock()
	runID := orchestrator.runID
	orchestrator.mu.Unlock()

	logger.InfoContext(ctx, "scene changed", "run_id", runID, "from", from.String(), "to", to.String())
	orchestrator.startTimeline(ctx, to)
	orchestrator.emit(Event{
		Type:     EventSceneChange,
		Scene:    to,
		Previous: from,
		Fade:     fade,
		RunID:    runID,
		At:       time.Now(),
	})

	if !orchestrator.clock.Sleep(ctx, fade) {
		return false
	}

	orchestrator.mu.Lock()
	if orchestrator.step == to && orchestrator.outgoing == from {
		orchestrator.transitioning = false
	}
	orchestrator.mu.Unlock()

	if timeline, ok := orchestrator.timelines[from]; ok {
		timeline.Stop()
	}
	return true
}

func (orchestrator *Orchestrator) startTimeline(ctx context.Context, scene model.Scene) {
	if timeline, ok := orchestrator.timelines[scene]; ok {
		timeline.Start(ctx)
	}
}

func (orchestrator *Orchestrator) resetLocked() {
	orchestrator.step = model.SceneUniversal
	orchestrator.opacity = map[model.Scene]model.Fade{
		model.SceneUniversal: model.Jump(1),
		model.SceneEarth:     model.Jump(0),
		model.SceneSpace:     model.Jump(0),
		model.SceneCrash:     model.Jump(0),
	}
	orchestrator.outgoing = model.SceneUniversal
	orchestrator.transitioning = false
}

func (orchestrator *Orchestrator) eventLocked(eventType EventType) Event {
	return Event{
		Type:     eventType,
		Scene:    orchestrator.step,
		Previous: orchestrator.step,
		RunID:    orchestrator.runID,
		At:       time.Now(),
	}
}

func (orchestrator *Orchestrator) emit(event Event) {
	orchestrator.mu.Lock()
	events := append([]chan Event(nil), orchestrator.events...)
	orchestrator.mu.Unlock()

	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
