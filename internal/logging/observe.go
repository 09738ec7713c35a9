package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Observed returns a logger that keeps entries at or above level in memory.
// Tests use it to assert what was logged.
func Observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level.zap())
	return FromZap(zap.New(core)), logs
}
