package timeline

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"odyssey/internal/core/model"
	"odyssey/internal/core/pauseclock"
)

var testScripts = model.StaticScripts{
	model.SceneUniversal: {Quote: "Ad astra."},
	model.SceneEarth: {
		Dialogue: "Mission control, we are ready.",
		TopLeft:  "Baikonur, 05:40",
		Third:    "Godspeed.",
	},
	model.SceneSpace: {
		Warning: "HULL BREACH",
		Choices: []model.ChoiceLabel{
			{ID: "eject", Label: "Eject"},
			{ID: "hold", Label: "Hold course", Default: true},
		},
	},
}

func testTimings() model.Timings {
	return model.DefaultTimings().Scaled(0.01)
}

func newTestClock() *pauseclock.Clock {
	return pauseclock.New(pauseclock.Config{TickInterval: time.Millisecond})
}

// history collects every published state of a timeline.
type history[S any] struct {
	mu     sync.Mutex
	states []S
}

func (h *history[S]) record(state S) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, state)
}

func (h *history[S]) all() []S {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]S(nil), h.states...)
}

func (h *history[S]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.states)
}

func waitTimeline(t *testing.T, timeline Timeline) {
	t.Helper()
	select {
	case <-timeline.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("%s timeline did not finish", timeline.Scene())
	}
}

func TestIntroPlaysQuote(t *testing.T) {
	intro := NewIntro(newTestClock(), testTimings().Intro, testScripts)
	states := &history[IntroState]{}
	intro.SetOnChange(states.record)

	intro.Start(context.Background())
	waitTimeline(t, intro)

	final := intro.State()
	if !final.Finished || final.Quote != "Ad astra." {
		t.Fatalf("final state = %+v", final)
	}
	if final.Overlay.Target != 0 || final.Black.Target != 1 {
		t.Errorf("final fades = overlay %+v black %+v", final.Overlay, final.Black)
	}

	previous := ""
	for _, state := range states.all() {
		if !strings.HasPrefix("Ad astra.", state.Quote) {
			t.Fatalf("quote %q is not a prefix", state.Quote)
		}
		if len(state.Quote) < len(previous) {
			t.Fatalf("quote shrank from %q to %q", previous, state.Quote)
		}
		previous = state.Quote
	}
	if intro.Running() {
		t.Error("intro still running after Done")
	}
}

func TestIntroFallbackText(t *testing.T) {
	intro := NewIntro(newTestClock(), testTimings().Intro, model.StaticScripts{})
	intro.Start(context.Background())
	waitTimeline(t, intro)

	if got := intro.State().Quote; got != model.FallbackText {
		t.Errorf("Quote = %q, want fallback %q", got, model.FallbackText)
	}
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	intro := NewIntro(newTestClock(), testTimings().Intro, testScripts)
	var starts atomic.Int32
	intro.SetOnChange(func(state IntroState) {
		if state.Overlay == model.Jump(1) && state.Quote == "" {
			starts.Add(1)
		}
	})

	intro.Start(context.Background())
	intro.Start(context.Background())
	intro.Start(context.Background())
	waitTimeline(t, intro)

	if got := starts.Load(); got != 1 {
		t.Errorf("timeline started %d times, want 1", got)
	}
}

func TestStopLeavesNoWriters(t *testing.T) {
	timings := testTimings()
	timings.Earth.CharDelay = 5 * time.Millisecond
	earth := NewEarth(newTestClock(), timings.Earth, testScripts)
	states := &history[EarthState]{}
	earth.SetOnChange(states.record)

	earth.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	earth.Stop()

	if earth.Running() {
		t.Fatal("earth still running after Stop")
	}
	if earth.State() != (EarthState{}) {
		t.Errorf("state after Stop = %+v", earth.State())
	}
	count := states.len()
	time.Sleep(50 * time.Millisecond)
	if states.len() != count {
		t.Error("stopped timeline kept publishing")
	}

	earth.Stop()
}

func TestEarthPhases(t *testing.T) {
	timings := testTimings()
	timings.Earth.CharDelay = 2 * time.Millisecond
	earth := NewEarth(newTestClock(), timings.Earth, testScripts)
	states := &history[EarthState]{}
	earth.SetOnChange(states.record)

	earth.Start(context.Background())
	waitTimeline(t, earth)

	final := earth.State()
	script := testScripts[model.SceneEarth]
	if !final.Finished || final.Dialogue != script.Dialogue || final.TopLeft != script.TopLeft || final.Third != script.Third {
		t.Fatalf("final state = %+v", final)
	}
	if final.Black.Target != 1 || final.TextBox.Target != 0 {
		t.Errorf("final fades = %+v", final)
	}

	var phases []EarthPhase
	typedWhileFading := false
	for _, state := range states.all() {
		if len(phases) == 0 || phases[len(phases)-1] != state.Phase {
			phases = append(phases, state.Phase)
		}
		if state.Phase == EarthPhaseDialogue && state.TextBox.Target == 1 && state.Dialogue != script.Dialogue {
			typedWhileFading = true
		}
	}
	want := []EarthPhase{EarthPhaseDialogue, EarthPhaseTopLeft, EarthPhaseThird}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for index := range want {
		if phases[index] != want[index] {
			t.Fatalf("phases = %v, want %v", phases, want)
		}
	}
	if !typedWhileFading {
		t.Error("dialogue reveal should run while the text box fades in")
	}
}

func TestEarthHoldDoesNotWaitForReveal(t *testing.T) {
	timings := testTimings()
	timings.Earth.CharDelay = 10 * time.Millisecond
	timings.Earth.DialogueHold = 50 * time.Millisecond
	timings.Earth.TextFade = 10 * time.Millisecond
	dialogue := strings.Repeat("x", 40)
	scripts := model.StaticScripts{
		model.SceneEarth: {Dialogue: dialogue, TopLeft: "T", Third: "Go."},
	}
	earth := NewEarth(newTestClock(), timings.Earth, scripts)

	type fadeOut struct {
		at       time.Duration
		revealed int
	}
	var (
		mu      sync.Mutex
		shown   bool
		hidden  *fadeOut
		started = time.Now()
	)
	earth.SetOnChange(func(state EarthState) {
		mu.Lock()
		defer mu.Unlock()
		if state.Phase != EarthPhaseDialogue || hidden != nil {
			return
		}
		if state.TextBox.Target == 1 {
			shown = true
		} else if shown {
			hidden = &fadeOut{at: time.Since(started), revealed: len(state.Dialogue)}
		}
	})

	earth.Start(context.Background())
	defer earth.Stop()
	waitTimeline(t, earth)

	mu.Lock()
	defer mu.Unlock()
	if hidden == nil {
		t.Fatal("text box never faded out")
	}
	if hidden.at > 250*time.Millisecond {
		t.Errorf("text box faded out after %v, want close to %v", hidden.at, timings.Earth.DialogueHold)
	}
	if hidden.revealed >= len(dialogue) {
		t.Errorf("dialogue fully typed (%d chars) before the hold ended", hidden.revealed)
	}
	if final := earth.State(); final.Dialogue != dialogue {
		t.Errorf("final dialogue = %q, want the full text", final.Dialogue)
	}
}

func TestPauseFreezesEarth(t *testing.T) {
	clock := newTestClock()
	timings := testTimings()
	timings.Earth.CharDelay = 3 * time.Millisecond
	earth := NewEarth(clock, timings.Earth, testScripts)
	states := &history[EarthState]{}
	earth.SetOnChange(states.record)

	earth.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	clock.Pause()
	time.Sleep(10 * time.Millisecond)
	frozen := earth.State()
	time.Sleep(60 * time.Millisecond)
	if earth.State() != frozen {
		t.Fatalf("earth advanced while paused: %+v -> %+v", frozen, earth.State())
	}
	clock.Resume()
	waitTimeline(t, earth)
	if !earth.State().Finished {
		t.Error("earth did not finish after resume")
	}
}

func TestSpaceAutoChoiceAndFinish(t *testing.T) {
	var finished atomic.Int32
	space := NewSpace(newTestClock(), testTimings().Space, testScripts, func() {
		finished.Add(1)
	})
	states := &history[SpaceState]{}
	space.SetOnChange(states.record)

	space.Start(context.Background())
	waitTimeline(t, space)

	if finished.Load() != 1 {
		t.Fatalf("onFinish called %d times", finished.Load())
	}
	final := space.State()
	if !final.Finished || final.WarningActive || !final.Growing {
		t.Errorf("final state = %+v", final)
	}
	if final.Impact.Target != 1 || final.WhiteOut.Target != 1 {
		t.Errorf("final impact/white-out = %+v / %+v", final.Impact, final.WhiteOut)
	}
	if final.Choice.Selected != "hold" || !final.Choice.Automatic {
		t.Errorf("choice = %+v, want automatic default", final.Choice)
	}

	sawWarning := false
	sawImpactStart := false
	for _, state := range states.all() {
		if state.WarningActive && state.WarningText == "HULL BREACH" {
			sawWarning = true
		}
		if state.Impact == model.Jump(ImpactStart) {
			sawImpactStart = true
		}
	}
	if !sawWarning || !sawImpactStart {
		t.Errorf("warning seen %v, impact start seen %v", sawWarning, sawImpactStart)
	}
}

func TestSpaceManualChoice(t *testing.T) {
	timings := testTimings().Space
	space := NewSpace(newTestClock(), timings, testScripts, nil)

	if space.Select("eject") {
		t.Fatal("selection accepted before the warning")
	}

	space.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for !space.State().WarningActive {
		if time.Now().After(deadline) {
			t.Fatal("warning never became active")
		}
		time.Sleep(time.Millisecond)
	}

	if !space.Select("eject") {
		t.Fatal("selection rejected during the warning")
	}
	if space.Select("hold") {
		t.Error("second selection accepted")
	}
	waitTimeline(t, space)

	if choice := space.State().Choice; choice.Selected != "eject" || choice.Automatic {
		t.Errorf("choice = %+v", choice)
	}
}

func TestSpaceInvalidScriptChoicesFallBack(t *testing.T) {
	scripts := model.StaticScripts{
		model.SceneSpace: {Choices: []model.ChoiceLabel{{ID: "a"}, {ID: "b"}}},
	}
	space := NewSpace(newTestClock(), testTimings().Space, scripts, nil)
	space.Start(context.Background())
	waitTimeline(t, space)

	if got := space.State().Choice.Selected; got != "brace" {
		t.Errorf("Selected = %q, want default brace", got)
	}
	if got := space.State().WarningText; got != model.FallbackText {
		t.Errorf("WarningText = %q, want fallback", got)
	}
}

func TestCrashSlideshow(t *testing.T) {
	crash := NewCrash(newTestClock(), testTimings().Crash)
	states := &history[CrashState]{}
	crash.SetOnChange(states.record)

	crash.Start(context.Background())
	waitTimeline(t, crash)

	final := crash.State()
	if !final.FinalBackground || !final.Slides.Done {
		t.Fatalf("final state = %+v", final)
	}
	if final.WhiteOverlay.Target != 0 || final.SceneOpacity.Target != 1 {
		t.Errorf("final fades = %+v", final)
	}

	seen := map[string]bool{}
	for _, state := range states.all() {
		if state.Slides.Current != "" {
			seen[state.Slides.Current] = true
		}
		if state.FinalBackground && !state.Slides.Done {
			t.Error("final background set before the slideshow ended")
		}
	}
	for _, slide := range testTimings().Crash.Slides {
		if !seen[slide] {
			t.Errorf("slide %s never became current", slide)
		}
	}
}

func TestCrashStopClearsSlides(t *testing.T) {
	timings := testTimings().Crash
	timings.StepHold = time.Second
	crash := NewCrash(newTestClock(), timings)

	crash.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for crash.State().Slides.Current == "" {
		if time.Now().After(deadline) {
			t.Fatal("slideshow never started")
		}
		time.Sleep(time.Millisecond)
	}
	crash.Stop()

	if crash.State() != (CrashState{}) {
		t.Errorf("state after Stop = %+v", crash.State())
	}
}
