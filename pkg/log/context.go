package log

import "context"

const loggerContextKey ctxKey = iota

type ctxKey byte

// ContextWithLogger returns a copy of ctx carrying l.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, l)
}

// LoggerFromContext returns the logger stored in ctx, or the default logger.
func LoggerFromContext(ctx context.Context) Logger {
	if val := ctx.Value(loggerContextKey); val != nil {
		if l, ok := val.(Logger); ok {
			return l
		}
	}

	return Default()
}
