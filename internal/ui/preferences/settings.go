package preferences

import (
	"time"

	"odyssey/internal/core/idlewatch"
	"odyssey/internal/core/model"
)

const (
	MinTypingSpeed = 0.5
	MaxTypingSpeed = 3.0
	MinTimingScale = 0.25
	MaxTimingScale = 2.0
)

// Settings defines editable player preferences.
type Settings struct {
	// TypingSpeed multiplies the typewriter speed; 2 types twice as fast.
	TypingSpeed float64
	// TimingScale multiplies every scene duration; 0.5 plays twice as fast.
	TimingScale float64
	Fullscreen  bool

	IdleAutoPause bool
	IdleThreshold time.Duration

	// ScriptPath optionally replaces the bundled script.
	ScriptPath string
}

// DefaultSettings returns default settings for the player.
func DefaultSettings() Settings {
	return Settings{
		TypingSpeed:   1,
		TimingScale:   1,
		Fullscreen:    false,
		IdleAutoPause: true,
		IdleThreshold: 2 * time.Minute,
	}
}

// Timings converts settings to the scene timings.
func (settings Settings) Timings() model.Timings {
	timings := model.DefaultTimings().Scaled(clamp(settings.TimingScale, MinTimingScale, MaxTimingScale))

	speed := clamp(settings.TypingSpeed, MinTypingSpeed, MaxTypingSpeed)
	timings.Intro.CharDelay = time.Duration(float64(timings.Intro.CharDelay) / speed)
	timings.Earth.CharDelay = time.Duration(float64(timings.Earth.CharDelay) / speed)
	return timings
}

// IdleConfig converts settings to the idle watcher options.
func (settings Settings) IdleConfig() idlewatch.Config {
	threshold := settings.IdleThreshold
	if threshold <= 0 {
		threshold = DefaultSettings().IdleThreshold
	}
	return idlewatch.Config{
		Enabled:       settings.IdleAutoPause,
		Threshold:     threshold,
		CheckInterval: 5 * time.Second,
	}
}

// clamp limits value to [low, high]; unset values become 1.
func clamp(value, low, high float64) float64 {
	if value <= 0 {
		return 1
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
