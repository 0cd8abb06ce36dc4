package animation

import (
	"time"

	"odyssey/internal/core/model"
)

// Tween interpolates one opacity-like value toward the targets published
// by the core. Time spent frozen does not count toward the fade.
type Tween struct {
	fade     model.Fade
	from     float64
	start    time.Time
	frozenAt time.Time
	frozen   bool
	set      bool
}

// NewTween returns a tween resting at value.
func NewTween(value float64) *Tween {
	return &Tween{fade: model.Jump(value), from: value, set: true}
}

// Set retargets the tween. Setting the current fade again is a no-op.
func (tween *Tween) Set(fade model.Fade, now time.Time) {
	if tween.set && fade == tween.fade {
		return
	}
	tween.from = tween.Value(now)
	tween.fade = fade
	tween.start = now
	if tween.frozen {
		tween.frozenAt = now
	}
	tween.set = true
}

// Freeze stops the clock of the tween.
func (tween *Tween) Freeze(now time.Time) {
	if tween.frozen {
		return
	}
	tween.frozen = true
	tween.frozenAt = now
}

// Thaw restarts the clock of the tween.
func (tween *Tween) Thaw(now time.Time) {
	if !tween.frozen {
		return
	}
	tween.frozen = false
	tween.start = tween.start.Add(now.Sub(tween.frozenAt))
}

// Target returns the value the tween is heading to.
func (tween *Tween) Target() float64 {
	return tween.fade.Target
}

// Value returns the interpolated value at now.
func (tween *Tween) Value(now time.Time) float64 {
	if !tween.set {
		return 0
	}
	if tween.fade.Duration <= 0 {
		return tween.fade.Target
	}
	if tween.frozen {
		now = tween.frozenAt
	}
	progress := float64(now.Sub(tween.start)) / float64(tween.fade.Duration)
	switch {
	case progress <= 0:
		return tween.from
	case progress >= 1:
		return tween.fade.Target
	}
	return tween.from + (tween.fade.Target-tween.from)*easeInOut(progress)
}

// Settled reports whether the tween reached its target at now.
func (tween *Tween) Settled(now time.Time) bool {
	return tween.Value(now) == tween.fade.Target
}

// easeInOut is the smoothstep curve.
func easeInOut(progress float64) float64 {
	return progress * progress * (3 - 2*progress)
}
