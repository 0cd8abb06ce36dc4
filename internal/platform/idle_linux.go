package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"odyssey/internal/core/idlewatch"
)

// xprintidleChecker asks the X server through xprintidle. Wayland sessions
// without XWayland make the tool fail, which is reported as a check error.
type xprintidleChecker struct {
	path string
}

func newIdleChecker() idlewatch.IdleChecker {
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		return unsupportedIdleChecker{}
	}
	return &xprintidleChecker{path: path}
}

func (checker *xprintidleChecker) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(checker.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(string(output))
}

func parseIdleMillis(value string) (time.Duration, error) {
	idleMillis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
