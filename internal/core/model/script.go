package model

// FallbackText is shown when the script has no text for a slot.
const FallbackText = "..."

// ChoiceID identifies an option of a timed choice.
type ChoiceID string

// ChoiceLabel is the displayed text of a choice option.
type ChoiceLabel struct {
	ID      ChoiceID
	Label   string
	Default bool
}

// Script holds the text shown by a single scene. Empty fields mean the
// scene does not use the slot.
type Script struct {
	Quote    string
	Dialogue string
	TopLeft  string
	Third    string
	Warning  string
	Choices  []ChoiceLabel
}

// ScriptProvider returns the script of a scene. Implementations substitute
// FallbackText for missing data and never fail.
type ScriptProvider interface {
	Script(scene Scene) Script
}

// StaticScripts is an in-memory ScriptProvider.
type StaticScripts map[Scene]Script

// Script implements ScriptProvider.
func (scripts StaticScripts) Script(scene Scene) Script {
	return scripts[scene]
}

// TextOr returns value, or FallbackText when value is empty.
func TextOr(value string) string {
	if value == "" {
		return FallbackText
	}
	return value
}
