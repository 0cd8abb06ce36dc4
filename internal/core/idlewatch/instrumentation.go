package idlewatch

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "odyssey/internal/core/idlewatch"

var logger = otelslog.NewLogger(scopeName)
