// Package log provides a leveled logger with structured fields, backed by logrus.
package log

var std = New()

// Default returns the process-wide fallback logger, used when no logger was injected. Tests
// should build their own with New.
func Default() Logger {
	return std
}
