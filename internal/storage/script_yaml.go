package storage

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"odyssey/internal/core/model"
	"odyssey/resources"
)

// ErrUnknownScene is returned for script sections that name no scene.
var ErrUnknownScene = errors.New("unknown scene")

type yamlChoice struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Default bool   `yaml:"default"`
}

type yamlScene struct {
	Quote    string       `yaml:"quote"`
	Dialogue string       `yaml:"dialogue"`
	TopLeft  string       `yaml:"top_left"`
	Third    string       `yaml:"third"`
	Warning  string       `yaml:"warning"`
	Choices  []yamlChoice `yaml:"choices"`
}

// Scripts is a model.ScriptProvider backed by a YAML document. Missing
// text is returned as model.FallbackText.
type Scripts struct {
	scenes map[model.Scene]model.Script
}

// Script implements model.ScriptProvider.
func (scripts *Scripts) Script(scene model.Scene) model.Script {
	script := scripts.scenes[scene]
	script.Quote = model.TextOr(script.Quote)
	script.Dialogue = model.TextOr(script.Dialogue)
	script.TopLeft = model.TextOr(script.TopLeft)
	script.Third = model.TextOr(script.Third)
	script.Warning = model.TextOr(script.Warning)
	script.Choices = append([]model.ChoiceLabel(nil), script.Choices...)
	return script
}

// ParseScripts decodes a YAML script keyed by scene name.
func ParseScripts(data []byte) (*Scripts, error) {
	var document map[string]yamlScene
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse script yaml: %w", err)
	}

	names := make([]string, 0, len(document))
	for name := range document {
		names = append(names, name)
	}
	sort.Strings(names)

	scenes := make(map[model.Scene]model.Script, len(document))
	for _, name := range names {
		scene, ok := model.ParseScene(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("script section %q: %w", name, ErrUnknownScene)
		}
		scenes[scene] = toScript(document[name])
	}
	return &Scripts{scenes: scenes}, nil
}

// LoadScriptFile reads a YAML script from path.
func LoadScriptFile(path string) (*Scripts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}
	return ParseScripts(data)
}

// LoadDefaultScripts returns the script bundled with the player.
func LoadDefaultScripts() (*Scripts, error) {
	data, err := resources.Script(resources.DefaultScript)
	if err != nil {
		return nil, err
	}
	return ParseScripts(data)
}

// LoadScripts reads path when set and falls back to the bundled script
// when path is empty. An unreadable user script is an error.
func LoadScripts(path string) (*Scripts, error) {
	if strings.TrimSpace(path) == "" {
		return LoadDefaultScripts()
	}
	return LoadScriptFile(path)
}

func toScript(scene yamlScene) model.Script {
	script := model.Script{
		Quote:    strings.TrimSpace(scene.Quote),
		Dialogue: strings.TrimSpace(scene.Dialogue),
		TopLeft:  strings.TrimSpace(scene.TopLeft),
		Third:    strings.TrimSpace(scene.Third),
		Warning:  strings.TrimSpace(scene.Warning),
	}
	for _, choice := range scene.Choices {
		label := strings.TrimSpace(choice.Label)
		if label == "" {
			label = choice.ID
		}
		script.Choices = append(script.Choices, model.ChoiceLabel{
			ID:      model.ChoiceID(strings.TrimSpace(choice.ID)),
			Label:   label,
			Default: choice.Default,
		})
	}
	return script
}
