package stage

import (
	"sync"
	"time"

	"odyssey/internal/core/crossfade"
	"odyssey/internal/core/flow"
	"odyssey/internal/core/model"
	"odyssey/internal/core/timeline"
	"odyssey/internal/ui/animation"
)

// ChoiceButton is one option of the Space choice.
type ChoiceButton struct {
	ID       model.ChoiceID
	Label    string
	Enabled  bool
	Selected bool
}

// UniversalView is the Intro scene at a frame.
type UniversalView struct {
	Opacity float64
	Overlay float64
	Quote   string
	Black   float64
}

// EarthView is the Earth scene at a frame.
type EarthView struct {
	Opacity  float64
	Phase    timeline.EarthPhase
	Dialogue string
	TopLeft  string
	Third    string
	TextBox  float64
	Black    float64
}

// SpaceView is the Space scene at a frame.
type SpaceView struct {
	Opacity float64
	Growth  float64
	Warning string
	Choices []ChoiceButton
	Impact  float64
	White   float64
}

// CrashView is the Crash scene at a frame.
type CrashView struct {
	Opacity         float64
	White           float64
	Scene           float64
	Current         string
	Next            string
	NextOpacity     float64
	FinalBackground bool
}

// View is everything the window draws for one frame.
type View struct {
	Paused    bool
	Universal UniversalView
	Earth     EarthView
	Space     SpaceView
	Crash     CrashView
}

// Composer turns the published core state into interpolated frames. The
// Observe methods are safe to use as timeline onChange handlers.
type Composer struct {
	mu     sync.Mutex
	now    func() time.Time
	tweens map[string]*animation.Tween
	paused bool
	intro  timeline.IntroState
	earth  timeline.EarthState
	space  timeline.SpaceState
	crash  timeline.CrashState
}

// NewComposer creates a composer reading the wall clock.
func NewComposer() *Composer {
	return newComposer(time.Now)
}

func newComposer(now func() time.Time) *Composer {
	return &Composer{
		now:    now,
		tweens: map[string]*animation.Tween{},
	}
}

// ObserveIntro records a Universal scene state.
func (composer *Composer) ObserveIntro(state timeline.IntroState) {
	composer.mu.Lock()
	defer composer.mu.Unlock()
	now := composer.now()
	composer.intro = state
	composer.setLocked("intro.overlay", state.Overlay, now)
	composer.setLocked("intro.black", state.Black, now)
}

// ObserveEarth records an Earth scene state.
func (composer *Composer) ObserveEarth(state timeline.EarthState) {
	composer.mu.Lock()
	defer composer.mu.Unlock()
	now := composer.now()
	composer.earth = state
	composer.setLocked("earth.textbox", state.TextBox, now)
	composer.setLocked("earth.black", state.Black, now)
}

// ObserveSpace records a Space scene state.
func (composer *Composer) ObserveSpace(state timeline.SpaceState) {
	composer.mu.Lock()
	defer composer.mu.Unlock()
	now := composer.now()
	composer.space = state
	growth := model.Jump(0)
	if state.Growing {
		growth = model.FadeTo(1, state.GrowDuration)
	}
	composer.setLocked("space.growth", growth, now)
	composer.setLocked("space.impact", state.Impact, now)
	composer.setLocked("space.white", state.WhiteOut, now)
}

// ObserveCrash records a Crash scene state.
func (composer *Composer) ObserveCrash(state timeline.CrashState) {
	composer.mu.Lock()
	defer composer.mu.Unlock()
	now := composer.now()
	if state.Slides.Next != composer.crash.Slides.Next {
		composer.setLocked("crash.next", model.Jump(0), now)
	}
	composer.crash = state
	composer.setLocked("crash.white", state.WhiteOverlay, now)
	composer.setLocked("crash.scene", state.SceneOpacity, now)
	composer.setLocked("crash.next", slideFade(state.Slides), now)
}

// Compose returns the frame for the flow snapshot.
func (composer *Composer) Compose(snapshot flow.Snapshot) View {
	composer.mu.Lock()
	defer composer.mu.Unlock()
	now := composer.now()

	composer.freezeLocked(snapshot.Paused, now)
	for _, scene := range model.Scenes {
		composer.setLocked("flow."+scene.String(), snapshot.Opacity[scene], now)
	}

	value := func(name string) float64 {
		return composer.valueLocked(name, now)
	}

	view := View{
		Paused: snapshot.Paused,
		Universal: UniversalView{
			Opacity: visible(snapshot, model.SceneUniversal, value("flow.universal")),
			Overlay: value("intro.overlay"),
			Quote:   composer.intro.Quote,
			Black:   value("intro.black"),
		},
		Earth: EarthView{
			Opacity:  visible(snapshot, model.SceneEarth, value("flow.earth")),
			Phase:    composer.earth.Phase,
			Dialogue: composer.earth.Dialogue,
			TopLeft:  composer.earth.TopLeft,
			Third:    composer.earth.Third,
			TextBox:  value("earth.textbox"),
			Black:    value("earth.black"),
		},
		Space: SpaceView{
			Opacity: visible(snapshot, model.SceneSpace, value("flow.space")),
			Growth:  value("space.growth"),
			Choices: choiceButtons(composer.space),
			Impact:  value("space.impact"),
			White:   value("space.white"),
		},
		Crash: CrashView{
			Opacity:         visible(snapshot, model.SceneCrash, value("flow.crash")),
			White:           value("crash.white"),
			Scene:           value("crash.scene"),
			Current:         composer.crash.Slides.Current,
			Next:            composer.crash.Slides.Next,
			NextOpacity:     value("crash.next"),
			FinalBackground: composer.crash.FinalBackground,
		},
	}
	if composer.space.WarningActive {
		view.Space.Warning = composer.space.WarningText
	}
	return view
}

func (composer *Composer) setLocked(name string, fade model.Fade, now time.Time) {
	tween, ok := composer.tweens[name]
	if !ok {
		tween = animation.NewTween(0)
		if composer.paused {
			tween.Freeze(now)
		}
		composer.tweens[name] = tween
	}
	tween.Set(fade, now)
}

func (composer *Composer) valueLocked(name string, now time.Time) float64 {
	tween, ok := composer.tweens[name]
	if !ok {
		return 0
	}
	return tween.Value(now)
}

func (composer *Composer) freezeLocked(paused bool, now time.Time) {
	if paused == composer.paused {
		return
	}
	composer.paused = paused
	for _, tween := range composer.tweens {
		if paused {
			tween.Freeze(now)
		} else {
			tween.Thaw(now)
		}
	}
}

// visible zeroes scenes the flow no longer draws.
func visible(snapshot flow.Snapshot, scene model.Scene, opacity float64) float64 {
	if !snapshot.Visible(scene) && opacity <= flow.VisibilityThreshold {
		return 0
	}
	return opacity
}

func slideFade(slides crossfade.State) model.Fade {
	if slides.Next == "" || slides.NextOpacity == 0 {
		return model.Jump(0)
	}
	return model.FadeTo(slides.NextOpacity, slides.FadeDuration)
}

func choiceButtons(state timeline.SpaceState) []ChoiceButton {
	if !state.Choice.Open {
		return nil
	}
	buttons := make([]ChoiceButton, 0, len(state.Choice.Options))
	for _, option := range state.Choice.Options {
		label := option.Label
		if label == "" {
			label = string(option.ID)
		}
		buttons = append(buttons, ChoiceButton{
			ID:       option.ID,
			Label:    label,
			Enabled:  !state.Choice.Inert,
			Selected: option.ID == state.Choice.Selected,
		})
	}
	return buttons
}
