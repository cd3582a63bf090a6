package log

import (
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across wilson. It hides logrus so no other package imports
// it. Loggers derived with `With*` share the output of their parent.
type Logger interface {
	// WithOptions returns a copy of the logger with opts applied; the receiver is unchanged.
	WithOptions(opts ...Option) Logger

	Level() Level

	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	Trace(args ...any)
	Error(args ...any)
}

type logger struct {
	entry *logrus.Entry
}

// New returns a logger writing text to stderr at info level unless opts say otherwise.
func New(opts ...Option) Logger {
	base := logrus.New()
	base.SetLevel(InfoLevel.logrus())

	l := &logger{entry: logrus.NewEntry(base)}
	l.apply(opts...)

	return l
}

func (l *logger) apply(opts ...Option) {
	for _, opt := range opts {
		opt(l.entry.Logger)
	}
}

func (l *logger) WithOptions(opts ...Option) Logger {
	if len(opts) == 0 {
		return l
	}

	parent := l.entry.Logger

	base := logrus.New()
	base.SetOutput(parent.Out)
	base.SetLevel(parent.GetLevel())
	base.SetFormatter(parent.Formatter)

	entry := l.entry.Dup()
	entry.Logger = base

	derived := &logger{entry: entry}
	derived.apply(opts...)

	return derived
}

func (l *logger) Level() Level {
	return levelFromLogrus(l.entry.Logger.GetLevel())
}

func (l *logger) WithField(key string, value any) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logger) WithError(err error) Logger {
	return &logger{entry: l.entry.WithError(err)}
}

func (l *logger) Tracef(format string, args ...any) { l.entry.Tracef(format, args...) }
func (l *logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l *logger) Trace(args ...any) { l.entry.Trace(args...) }
func (l *logger) Error(args ...any) { l.entry.Error(args...) }
