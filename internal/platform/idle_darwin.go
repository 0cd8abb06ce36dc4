package platform

import "odyssey/internal/core/idlewatch"

func newIdleChecker() idlewatch.IdleChecker {
	return unsupportedIdleChecker{}
}
