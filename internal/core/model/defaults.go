package model

import "time"

// DefaultTimings returns the reference scene timings.
func DefaultTimings() Timings {
	return Timings{
		FadeDuration:     1200 * time.Millisecond,
		UniversalToEarth: 11 * time.Second,
		EarthHold:        26 * time.Second,
		EarthBlackFade:   1200 * time.Millisecond,
		PostBlackDelay:   time.Second,
		Intro: IntroTimings{
			OverlayFade: 1500 * time.Millisecond,
			TextDelay:   500 * time.Millisecond,
			CharDelay:   50 * time.Millisecond,
			QuoteHold:   4 * time.Second,
			BlackFade:   1500 * time.Millisecond,
			BlackHold:   time.Second,
		},
		Earth: EarthTimings{
			CharDelay:    40 * time.Millisecond,
			TextFade:     800 * time.Millisecond,
			DialogueHold: 5 * time.Second,
			TopLeftHold:  4 * time.Second,
			ThirdHold:    5 * time.Second,
			BlackFade:    1200 * time.Millisecond,
			BlackHold:    time.Second,
		},
		Space: SpaceTimings{
			GrowDuration:   40 * time.Second,
			WarningDelay:   6 * time.Second,
			WarningVisible: 10 * time.Second,
			ChoiceMargin:   2 * time.Second,
			ChoiceLinger:   1500 * time.Millisecond,
			ImpactDelay:    time.Second,
			ImpactRamp:     3 * time.Second,
			WhiteOutHold:   600 * time.Millisecond,
		},
		Crash: CrashTimings{
			WhiteFade:    1500 * time.Millisecond,
			Hold:         500 * time.Millisecond,
			ForwardFade:  1200 * time.Millisecond,
			BackwardFade: 600 * time.Millisecond,
			StepHold:     3500 * time.Millisecond,
			MinSettle:    300 * time.Millisecond,
			Slides:       []string{"Crash1", "Crash2", "Crash3", "Crash4"},
		},
	}
}
