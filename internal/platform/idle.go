package platform

import (
	"time"

	"odyssey/internal/core/idlewatch"
)

// NewIdleChecker returns the platform's source of user inactivity. It
// reports idlewatch.ErrIdleUnsupported where no source exists.
func NewIdleChecker() idlewatch.IdleChecker {
	return newIdleChecker()
}

type unsupportedIdleChecker struct{}

func (unsupportedIdleChecker) IdleDuration() (time.Duration, error) {
	return 0, idlewatch.ErrIdleUnsupported
}
