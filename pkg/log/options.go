package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures the logrus logger behind a Logger.
type Option func(base *logrus.Logger)

func WithLevel(level Level) Option {
	return func(base *logrus.Logger) {
		base.SetLevel(level.logrus())
	}
}

func WithOutput(output io.Writer) Option {
	return func(base *logrus.Logger) {
		base.SetOutput(output)
	}
}

func WithFormat(format Format) Option {
	return func(base *logrus.Logger) {
		base.SetFormatter(format.formatter())
	}
}
