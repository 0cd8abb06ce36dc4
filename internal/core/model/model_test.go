package model

import (
	"testing"
	"time"
)

func TestSceneNext(t *testing.T) {
	tests := []struct {
		scene Scene
		want  Scene
		ok    bool
	}{
		{SceneUniversal, SceneEarth, true},
		{SceneEarth, SceneSpace, true},
		{SceneSpace, SceneCrash, true},
		{SceneCrash, SceneCrash, false},
	}
	for _, tt := range tests {
		t.Run(tt.scene.String(), func(t *testing.T) {
			got, ok := tt.scene.Next()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Next() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
	if !SceneCrash.Terminal() || SceneSpace.Terminal() {
		t.Error("only crash should be terminal")
	}
}

func TestTimingsScaled(t *testing.T) {
	timings := DefaultTimings()
	scaled := timings.Scaled(0.5)

	if scaled.FadeDuration != 600*time.Millisecond {
		t.Errorf("FadeDuration = %v, want 600ms", scaled.FadeDuration)
	}
	if scaled.Space.GrowDuration != 20*time.Second {
		t.Errorf("GrowDuration = %v, want 20s", scaled.Space.GrowDuration)
	}
	if scaled.EarthToSpace() != timings.EarthToSpace()/2 {
		t.Errorf("EarthToSpace = %v, want %v", scaled.EarthToSpace(), timings.EarthToSpace()/2)
	}

	scaled.Crash.Slides[0] = "changed"
	if timings.Crash.Slides[0] != "Crash1" {
		t.Error("Scaled must not share the slide list")
	}

	if same := timings.Scaled(0); same.FadeDuration != timings.FadeDuration {
		t.Error("non-positive factor must leave timings unchanged")
	}
}

func TestChoiceWindow(t *testing.T) {
	timings := DefaultTimings().Space
	if got := timings.ChoiceWindow(); got != 8*time.Second {
		t.Errorf("ChoiceWindow() = %v, want 8s", got)
	}
	timings.ChoiceMargin = time.Hour
	if got := timings.ChoiceWindow(); got != 0 {
		t.Errorf("ChoiceWindow() = %v, want 0", got)
	}
}

func TestTextOr(t *testing.T) {
	if TextOr("") != FallbackText {
		t.Error("empty text should fall back")
	}
	if TextOr("hello") != "hello" {
		t.Error("non-empty text should pass through")
	}
}

func TestParseScene(t *testing.T) {
	for _, scene := range Scenes {
		parsed, ok := ParseScene(scene.String())
		if !ok || parsed != scene {
			t.Errorf("ParseScene(%q) = %v, %v", scene.String(), parsed, ok)
		}
	}
	if _, ok := ParseScene("moon"); ok {
		t.Error("unknown scene parsed")
	}
}
