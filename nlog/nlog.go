// Package nlog wraps github.com/golang/glog with the four diagnostic
// severities the shuffle core's error-handling policy requires: INFO,
// WARNING, ERROR, and ABORT. ABORT terminates the process, matching the
// original preload's msg_abort() chokepoint.
package nlog

import (
	"github.com/golang/glog"
)

// Info logs an informational line, prefixed INFO by glog's own formatting.
func Info(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

// Warning logs a recoverable-but-notable condition.
func Warning(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

// Error logs a non-fatal error. The shuffle core has no non-fatal error
// path (see cmn.Abort); Error exists for diagnostics emitted by callers
// outside the core, e.g. the bench harness reporting a per-iteration issue.
func Error(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

// Abort logs at fatal severity and terminates the process. glog.Fatalf
// flushes pending log output before calling os.Exit, which is what lets
// the job scheduler observe the failure per the error-handling policy.
func Abort(format string, args ...interface{}) {
	glog.Fatalf(format, args...)
}

// Flush forces any buffered log lines to their destination. Call before a
// graceful shutdown that doesn't itself Abort.
func Flush() {
	glog.Flush()
}
