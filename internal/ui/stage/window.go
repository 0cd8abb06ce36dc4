package stage

import (
	"context"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"odyssey/internal/core/crossfade"
	"odyssey/internal/core/flow"
	"odyssey/internal/core/model"
	"odyssey/internal/core/timeline"
	"odyssey/internal/ui/animation"
)

// Config defines stage visuals.
type Config struct {
	Fullscreen bool
	Title      string
}

// Callbacks defines stage input handlers.
type Callbacks struct {
	OnTogglePause func()
	OnSelect      func(model.ChoiceID)
	OnClose       func()
}

var (
	colorBlack    = color.NRGBA{A: 255}
	colorWhite    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colorText     = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	colorCosmos   = color.NRGBA{R: 8, G: 10, B: 30, A: 255}
	colorSky      = color.NRGBA{R: 24, G: 62, B: 110, A: 255}
	colorTextBox  = color.NRGBA{R: 0, G: 0, B: 0, A: 170}
	colorSpace    = color.NRGBA{R: 2, G: 2, B: 8, A: 255}
	colorPlanet   = color.NRGBA{R: 150, G: 120, B: 90, A: 255}
	colorWarning  = color.NRGBA{R: 255, G: 70, B: 60, A: 255}
	colorImpact   = color.NRGBA{R: 255, G: 120, B: 40, A: 255}
	colorRuins    = color.NRGBA{R: 60, G: 52, B: 48, A: 255}
	colorAccent   = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	slidePalette  = []color.NRGBA{{R: 90, G: 40, B: 30, A: 255}, {R: 70, G: 60, B: 50, A: 255}, {R: 50, G: 55, B: 65, A: 255}, {R: 35, G: 35, B: 40, A: 255}}
	choiceSpacing = float32(24)
)

// Window renders the flow in a fyne window.
type Window struct {
	window    fyne.Window
	config    Config
	callbacks Callbacks
	composer  *Composer
	snapshot  func() flow.Snapshot
	engine    *animation.Engine

	universalBg    *canvas.Rectangle
	quote          *canvas.Text
	introOverlay   *canvas.Rectangle
	introBlack     *canvas.Rectangle
	earthBg        *canvas.Rectangle
	textBox        *canvas.Rectangle
	dialogue       *canvas.Text
	topLeft        *canvas.Text
	third          *canvas.Text
	earthBlack     *canvas.Rectangle
	spaceBg        *canvas.Rectangle
	planet         *canvas.Circle
	planetLayout   *growLayout
	planetBox      *fyne.Container
	warning        *canvas.Text
	choices        *fyne.Container
	choiceKey      string
	impact         *canvas.Rectangle
	whiteOut       *canvas.Rectangle
	crashBg        *canvas.Rectangle
	currentSlide   *canvas.Rectangle
	currentCaption *canvas.Text
	nextSlide      *canvas.Rectangle
	nextCaption    *canvas.Text
	crashWhite     *canvas.Rectangle
	pausedLabel    *canvas.Text
	pauseButton    *widget.Button
}

// New creates the stage window. snapshot is polled on every frame.
func New(app fyne.App, config Config, composer *Composer, snapshot func() flow.Snapshot, callbacks Callbacks) *Window {
	if config.Title == "" {
		config.Title = "Odyssey"
	}
	window := app.NewWindow(config.Title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	stage := &Window{
		window:    window,
		config:    config,
		callbacks: callbacks,
		composer:  composer,
		snapshot:  snapshot,

		universalBg:    canvas.NewRectangle(colorCosmos),
		quote:          newText(24, true),
		introOverlay:   canvas.NewRectangle(colorBlack),
		introBlack:     canvas.NewRectangle(colorBlack),
		earthBg:        canvas.NewRectangle(colorSky),
		textBox:        canvas.NewRectangle(colorTextBox),
		dialogue:       newText(20, false),
		topLeft:        newText(16, true),
		third:          newText(20, false),
		earthBlack:     canvas.NewRectangle(colorBlack),
		spaceBg:        canvas.NewRectangle(colorSpace),
		planet:         canvas.NewCircle(colorPlanet),
		warning:        newText(28, true),
		choices:        container.NewHBox(),
		impact:         canvas.NewRectangle(colorImpact),
		whiteOut:       canvas.NewRectangle(colorWhite),
		crashBg:        canvas.NewRectangle(colorRuins),
		currentSlide:   canvas.NewRectangle(slidePalette[0]),
		currentCaption: newText(18, false),
		nextSlide:      canvas.NewRectangle(slidePalette[0]),
		nextCaption:    newText(18, false),
		crashWhite:     canvas.NewRectangle(colorWhite),
		pausedLabel:    newText(18, true),
	}
	stage.planetLayout = &growLayout{scale: 0.1}
	stage.pausedLabel.Text = "PAUSED"
	stage.pausedLabel.Color = colorAccent
	stage.warning.Color = colorWarning
	stage.pauseButton = widget.NewButton("Pause", func() {
		if stage.callbacks.OnTogglePause != nil {
			stage.callbacks.OnTogglePause()
		}
	})

	window.SetContent(stage.build())
	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeySpace && stage.callbacks.OnTogglePause != nil {
			stage.callbacks.OnTogglePause()
		}
	})
	window.SetCloseIntercept(func() {
		if stage.callbacks.OnClose != nil {
			stage.callbacks.OnClose()
			return
		}
		window.Close()
	})

	stage.engine = animation.New(animation.DefaultConfig(), stage.frame)
	stage.applyWindowMode()
	return stage
}

// Show displays the stage and starts drawing frames.
func (stage *Window) Show(ctx context.Context) {
	stage.applyWindowMode()
	stage.window.Show()
	stage.window.RequestFocus()
	stage.engine.Start(ctx)
}

// Hide stops drawing and hides the window.
func (stage *Window) Hide() {
	stage.engine.Stop()
	stage.window.Hide()
}

// UpdateConfig applies new visuals.
func (stage *Window) UpdateConfig(config Config) {
	if config.Title == "" {
		config.Title = stage.config.Title
	}
	stage.config = config
	stage.window.SetTitle(config.Title)
	stage.applyWindowMode()
}

func (stage *Window) build() fyne.CanvasObject {
	universal := container.NewStack(
		stage.universalBg,
		container.NewCenter(stage.quote),
		stage.introOverlay,
		stage.introBlack,
	)

	dialogueBox := container.NewStack(stage.textBox, container.NewPadded(container.NewVBox(stage.dialogue, stage.third)))
	earth := container.NewStack(
		stage.earthBg,
		container.NewBorder(
			container.NewPadded(container.NewHBox(stage.topLeft)),
			container.NewPadded(dialogueBox),
			nil, nil,
		),
		stage.earthBlack,
	)

	stage.planetBox = container.New(stage.planetLayout, stage.planet)
	space := container.NewStack(
		stage.spaceBg,
		stage.planetBox,
		container.NewBorder(
			container.NewPadded(container.NewCenter(stage.warning)),
			container.NewPadded(container.NewCenter(stage.choices)),
			nil, nil,
		),
		stage.impact,
		stage.whiteOut,
	)

	crash := container.NewStack(
		stage.crashBg,
		container.NewStack(stage.currentSlide, container.NewCenter(stage.currentCaption)),
		container.NewStack(stage.nextSlide, container.NewCenter(stage.nextCaption)),
		stage.crashWhite,
	)

	controls := container.NewBorder(
		container.NewHBox(stage.pausedLabel, layout.NewSpacer(), stage.pauseButton),
		nil, nil, nil,
	)

	return container.NewStack(canvas.NewRectangle(colorBlack), universal, earth, space, crash, controls)
}

func (stage *Window) frame(time.Time) {
	view := stage.composer.Compose(stage.snapshot())
	fyne.Do(func() {
		stage.render(view)
	})
}

func (stage *Window) render(view View) {
	universal := view.Universal
	setRect(stage.universalBg, colorCosmos, universal.Opacity)
	setText(stage.quote, universal.Quote, colorText, universal.Opacity)
	setRect(stage.introOverlay, colorBlack, universal.Opacity*universal.Overlay)
	setRect(stage.introBlack, colorBlack, universal.Opacity*universal.Black)

	earth := view.Earth
	setRect(stage.earthBg, colorSky, earth.Opacity)
	setRect(stage.textBox, colorTextBox, earth.Opacity*earth.TextBox)
	dialogue, third := "", ""
	if earth.Phase == timeline.EarthPhaseDialogue {
		dialogue = earth.Dialogue
	}
	if earth.Phase == timeline.EarthPhaseThird {
		third = earth.Third
	}
	setText(stage.dialogue, dialogue, colorText, earth.Opacity*earth.TextBox)
	setText(stage.third, third, colorText, earth.Opacity*earth.TextBox)
	topLeft := ""
	if earth.Phase == timeline.EarthPhaseTopLeft {
		topLeft = earth.TopLeft
	}
	setText(stage.topLeft, topLeft, colorAccent, earth.Opacity)
	setRect(stage.earthBlack, colorBlack, earth.Opacity*earth.Black)

	space := view.Space
	setRect(stage.spaceBg, colorSpace, space.Opacity)
	stage.planetLayout.scale = float32(0.1 + 0.9*space.Growth)
	stage.planet.FillColor = withAlpha(colorPlanet, space.Opacity)
	stage.planetBox.Refresh()
	setText(stage.warning, space.Warning, colorWarning, space.Opacity)
	stage.renderChoices(space.Choices, space.Opacity)
	setRect(stage.impact, colorImpact, space.Opacity*space.Impact*0.8)
	setRect(stage.whiteOut, colorWhite, space.Opacity*space.White)

	crash := view.Crash
	crashOpacity := crash.Opacity * crash.Scene
	setRect(stage.crashBg, colorRuins, crash.Opacity)
	stage.renderSlide(stage.currentSlide, stage.currentCaption, crash.Current, crashOpacity)
	stage.renderSlide(stage.nextSlide, stage.nextCaption, crash.Next, crashOpacity*crash.NextOpacity)
	setRect(stage.crashWhite, colorWhite, crash.Opacity*crash.White)

	label := "Pause"
	stage.pausedLabel.Hide()
	if view.Paused {
		label = "Resume"
		stage.pausedLabel.Show()
	}
	if stage.pauseButton.Text != label {
		stage.pauseButton.SetText(label)
	}
}

func (stage *Window) renderSlide(rect *canvas.Rectangle, caption *canvas.Text, name string, opacity float64) {
	if name == "" {
		opacity = 0
	}
	base := slidePalette[crossfade.Level(name)%len(slidePalette)]
	setRect(rect, base, opacity)
	setText(caption, name, colorText, opacity)
}

func (stage *Window) renderChoices(buttons []ChoiceButton, opacity float64) {
	key := choiceKey(buttons)
	if key == stage.choiceKey {
		return
	}
	stage.choiceKey = key

	objects := make([]fyne.CanvasObject, 0, len(buttons)*2)
	for index, button := range buttons {
		id := button.ID
		item := widget.NewButton(button.Label, func() {
			if stage.callbacks.OnSelect != nil {
				stage.callbacks.OnSelect(id)
			}
		})
		if button.Selected {
			item.Importance = widget.HighImportance
		}
		if !button.Enabled || opacity <= flow.VisibilityThreshold {
			item.Disable()
		}
		if index > 0 {
			spacer := canvas.NewRectangle(color.Transparent)
			spacer.SetMinSize(fyne.NewSize(choiceSpacing, 0))
			objects = append(objects, spacer)
		}
		objects = append(objects, item)
	}
	stage.choices.Objects = objects
	stage.choices.Refresh()
}

func (stage *Window) applyWindowMode() {
	if stage.config.Fullscreen {
		stage.window.SetFullScreen(true)
		return
	}
	stage.window.SetFullScreen(false)
	stage.window.Resize(fyne.NewSize(1280, 720))
	stage.window.CenterOnScreen()
}

func newText(size float32, bold bool) *canvas.Text {
	text := canvas.NewText("", colorText)
	text.TextSize = size
	text.TextStyle = fyne.TextStyle{Bold: bold}
	text.Alignment = fyne.TextAlignCenter
	return text
}

func setRect(rect *canvas.Rectangle, base color.NRGBA, opacity float64) {
	rect.FillColor = withAlpha(base, opacity)
	rect.Refresh()
}

func setText(text *canvas.Text, value string, base color.NRGBA, opacity float64) {
	text.Text = value
	text.Color = withAlpha(base, opacity)
	text.Refresh()
}

func withAlpha(base color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	base.A = uint8(float64(base.A) * opacity)
	return base
}

func choiceKey(buttons []ChoiceButton) string {
	key := ""
	for _, button := range buttons {
		key += string(button.ID) + "|" + button.Label
		if button.Enabled {
			key += "|on"
		}
		if button.Selected {
			key += "|selected"
		}
		key += ";"
	}
	return key
}

// growLayout centers a single object sized to scale of the shorter side.
type growLayout struct {
	scale float32
}

func (grow *growLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	side *= grow.scale
	for _, object := range objects {
		object.Resize(fyne.NewSize(side, side))
		object.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
	}
}

func (grow *growLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, 0)
}
