package model

import "time"

// IntroTimings drives the Universal scene.
type IntroTimings struct {
	OverlayFade time.Duration
	TextDelay   time.Duration
	CharDelay   time.Duration
	QuoteHold   time.Duration
	BlackFade   time.Duration
	BlackHold   time.Duration
}

// EarthTimings drives the three dialogue phases of the Earth scene.
type EarthTimings struct {
	CharDelay    time.Duration
	TextFade     time.Duration
	DialogueHold time.Duration
	TopLeftHold  time.Duration
	ThirdHold    time.Duration
	BlackFade    time.Duration
	BlackHold    time.Duration
}

// SpaceTimings drives the warning, choice and impact of the Space scene.
type SpaceTimings struct {
	GrowDuration   time.Duration
	WarningDelay   time.Duration
	WarningVisible time.Duration
	ChoiceMargin   time.Duration
	ChoiceLinger   time.Duration
	ImpactDelay    time.Duration
	ImpactRamp     time.Duration
	WhiteOutHold   time.Duration
}

// ChoiceWindow is the time the user has to pick before the default is used.
func (timings SpaceTimings) ChoiceWindow() time.Duration {
	window := timings.WarningVisible - timings.ChoiceMargin
	if window < 0 {
		return 0
	}
	return window
}

// CrashTimings drives the Crash scene slideshow.
type CrashTimings struct {
	WhiteFade    time.Duration
	Hold         time.Duration
	ForwardFade  time.Duration
	BackwardFade time.Duration
	StepHold     time.Duration
	MinSettle    time.Duration
	Slides       []string
}

// Timings contains every duration used by the scene flow.
type Timings struct {
	FadeDuration     time.Duration
	UniversalToEarth time.Duration
	EarthHold        time.Duration
	EarthBlackFade   time.Duration
	PostBlackDelay   time.Duration

	Intro IntroTimings
	Earth EarthTimings
	Space SpaceTimings
	Crash CrashTimings
}

// EarthToSpace is the time the flow stays on Earth before moving to Space.
func (timings Timings) EarthToSpace() time.Duration {
	return timings.EarthHold + timings.EarthBlackFade + timings.PostBlackDelay
}

// Scaled returns a copy with every duration multiplied by factor.
// A non-positive factor returns the timings unchanged.
func (timings Timings) Scaled(factor float64) Timings {
	if factor <= 0 || factor == 1 {
		return timings
	}
	scale := func(value *time.Duration) {
		*value = time.Duration(float64(*value) * factor)
	}

	out := timings
	for _, value := range []*time.Duration{
		&out.FadeDuration, &out.UniversalToEarth, &out.EarthHold, &out.EarthBlackFade, &out.PostBlackDelay,
		&out.Intro.OverlayFade, &out.Intro.TextDelay, &out.Intro.CharDelay, &out.Intro.QuoteHold,
		&out.Intro.BlackFade, &out.Intro.BlackHold,
		&out.Earth.CharDelay, &out.Earth.TextFade, &out.Earth.DialogueHold, &out.Earth.TopLeftHold,
		&out.Earth.ThirdHold, &out.Earth.BlackFade, &out.Earth.BlackHold,
		&out.Space.GrowDuration, &out.Space.WarningDelay, &out.Space.WarningVisible, &out.Space.ChoiceMargin,
		&out.Space.ChoiceLinger, &out.Space.ImpactDelay, &out.Space.ImpactRamp, &out.Space.WhiteOutHold,
		&out.Crash.WhiteFade, &out.Crash.Hold, &out.Crash.ForwardFade, &out.Crash.BackwardFade,
		&out.Crash.StepHold, &out.Crash.MinSettle,
	} {
		scale(value)
	}
	out.Crash.Slides = append([]string(nil), timings.Crash.Slides...)
	return out
}
