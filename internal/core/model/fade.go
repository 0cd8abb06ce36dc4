package model

import "time"

// Fade is an animated value published by the core. Renderers move the
// displayed value toward Target over Duration; a zero Duration is a jump.
type Fade struct {
	Target   float64
	Duration time.Duration
}

// Jump returns a Fade that applies value immediately.
func Jump(value float64) Fade {
	return Fade{Target: value}
}

// FadeTo returns a Fade reaching value after duration.
func FadeTo(value float64, duration time.Duration) Fade {
	return Fade{Target: value, Duration: duration}
}
