package preferences

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"odyssey/internal/core/idlewatch"
	"odyssey/internal/core/model"
)

func TestDefaultSettingsKeepDefaultTimings(t *testing.T) {
	got := DefaultSettings().Timings()
	want := model.DefaultTimings()
	if got.UniversalToEarth != want.UniversalToEarth || got.Intro.CharDelay != want.Intro.CharDelay {
		t.Errorf("Timings() = %+v, want defaults", got)
	}
}

func TestTimingsScaleAndSpeed(t *testing.T) {
	settings := DefaultSettings()
	settings.TimingScale = 0.5
	settings.TypingSpeed = 2

	defaults := model.DefaultTimings()
	timings := settings.Timings()
	if timings.UniversalToEarth != defaults.UniversalToEarth/2 {
		t.Errorf("UniversalToEarth = %v", timings.UniversalToEarth)
	}
	if timings.Earth.CharDelay != defaults.Earth.CharDelay/4 {
		t.Errorf("Earth.CharDelay = %v, want %v", timings.Earth.CharDelay, defaults.Earth.CharDelay/4)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "unset", value: 0, want: 1},
		{name: "negative", value: -2, want: 1},
		{name: "low", value: 0.1, want: MinTimingScale},
		{name: "high", value: 9, want: MaxTimingScale},
		{name: "inside", value: 1.5, want: 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clamp(tc.value, MinTimingScale, MaxTimingScale); got != tc.want {
				t.Errorf("clamp(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestIdleConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.IdleThreshold = 0
	config := settings.IdleConfig()
	if !config.Enabled || config.Threshold != DefaultSettings().IdleThreshold {
		t.Errorf("IdleConfig() = %+v", config)
	}

	settings.IdleAutoPause = false
	settings.IdleThreshold = 30 * time.Second
	config = settings.IdleConfig()
	if config.Enabled || config.Threshold != 30*time.Second {
		t.Errorf("IdleConfig() = %+v", config)
	}
}

func TestParsePositiveInt(t *testing.T) {
	cases := map[string]struct {
		value int
		ok    bool
	}{
		"5":   {5, true},
		" 12": {12, true},
		"0":   {0, false},
		"-1":  {0, false},
		"abc": {0, false},
	}
	for input, want := range cases {
		value, ok := parsePositiveInt(input)
		if value != want.value || ok != want.ok {
			t.Errorf("parsePositiveInt(%q) = %d, %v", input, value, ok)
		}
	}
}

func TestIdleStatusText(t *testing.T) {
	cases := []struct {
		name     string
		watching bool
		err      error
		want     string
	}{
		{"watching", true, nil, "Watching"},
		{"off", false, nil, "off"},
		{"unsupported", false, fmt.Errorf("idle checker: %w", idlewatch.ErrIdleUnsupported), "not available"},
		{"failed", true, errors.New("xprintidle: exit status 1"), "exit status 1"},
	}
	for _, tc := range cases {
		if got := idleStatusText(tc.watching, tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("%s: idleStatusText = %q, want it to mention %q", tc.name, got, tc.want)
		}
	}
}
