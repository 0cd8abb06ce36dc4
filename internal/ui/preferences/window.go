package preferences

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"odyssey/internal/core/idlewatch"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	typing      *widget.Slider
	typingLabel *widget.Label
	scale       *widget.Slider
	scaleLabel  *widget.Label
	fullscreen  *widget.Check
	idleCheck   *widget.Check
	idleMinutes *widget.Entry
	idleStatus  *widget.Label
	scriptPath  *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Odyssey Settings")

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		typing:      widget.NewSlider(MinTypingSpeed, MaxTypingSpeed),
		typingLabel: widget.NewLabel(""),
		scale:       widget.NewSlider(MinTimingScale, MaxTimingScale),
		scaleLabel:  widget.NewLabel(""),
		fullscreen:  widget.NewCheck("Fullscreen stage", nil),
		idleCheck:   widget.NewCheck("Pause when I am away", nil),
		idleMinutes: widget.NewEntry(),
		idleStatus:  widget.NewLabel(""),
		scriptPath:  widget.NewEntry(),
	}
	prefs.typing.Step = 0.1
	prefs.scale.Step = 0.05
	prefs.typing.OnChanged = func(value float64) {
		prefs.typingLabel.SetText(fmt.Sprintf("%.1fx", value))
	}
	prefs.scale.OnChanged = func(value float64) {
		prefs.scaleLabel.SetText(fmt.Sprintf("%.2fx", value))
	}
	prefs.scriptPath.SetPlaceHolder("bundled script")
	prefs.idleStatus.Wrapping = fyne.TextWrapWord

	form := container.NewVBox(
		widget.NewLabelWithStyle("Playback", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Typing speed"), prefs.typingLabel, prefs.typing),
		container.NewBorder(nil, nil, widget.NewLabel("Scene durations"), prefs.scaleLabel, prefs.scale),
		prefs.fullscreen,
		widget.NewLabelWithStyle("Idle", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.idleCheck,
		container.NewHBox(widget.NewLabel("Away after"), prefs.idleMinutes, widget.NewLabel("min")),
		prefs.idleStatus,
		widget.NewLabelWithStyle("Script", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.scriptPath,
		widget.NewLabel("Changes apply on the next restart of the flow."),
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 420))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.typing.SetValue(clamp(settings.TypingSpeed, MinTypingSpeed, MaxTypingSpeed))
	prefs.scale.SetValue(clamp(settings.TimingScale, MinTimingScale, MaxTimingScale))
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.idleCheck.SetChecked(settings.IdleAutoPause)
	prefs.idleMinutes.SetText(strconv.Itoa(int(settings.IdleThreshold.Minutes())))
	prefs.scriptPath.SetText(settings.ScriptPath)
}

// SetIdleStatus shows the state of idle detection below the idle options.
func (prefs *Window) SetIdleStatus(watching bool, err error) {
	prefs.idleStatus.SetText(idleStatusText(watching, err))
}

func idleStatusText(watching bool, err error) string {
	switch {
	case errors.Is(err, idlewatch.ErrIdleUnsupported):
		return "Idle detection is not available on this system."
	case err != nil:
		return fmt.Sprintf("Idle detection failed: %v", err)
	case !watching:
		return "Idle pause is off."
	default:
		return "Watching for inactivity."
	}
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	settings.TypingSpeed = prefs.typing.Value
	settings.TimingScale = prefs.scale.Value
	settings.Fullscreen = prefs.fullscreen.Checked
	settings.IdleAutoPause = prefs.idleCheck.Checked
	if minutes, ok := parsePositiveInt(prefs.idleMinutes.Text); ok {
		settings.IdleThreshold = time.Duration(minutes) * time.Minute
	}
	settings.ScriptPath = strings.TrimSpace(prefs.scriptPath.Text)

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
