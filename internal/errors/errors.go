// Package errors wraps errors with stack traces, aggregates per-entity failures and recovers panics.
package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates a new error with a stack trace. `val` may be a string or an existing error; an
// error that already carries a stack trace is returned unchanged.
func New(val any) error {
	if val == nil {
		return nil
	}

	if err, ok := val.(error); ok {
		if ContainsStackTrace(err) {
			return err
		}

		return goerrors.Wrap(err, 1)
	}

	return goerrors.Wrap(fmt.Errorf("%v", val), 1) //nolint:err113
}

// Errorf creates a new error from the format and wraps it with a stack trace. `%w` verbs are kept
// so callers can still match the wrapped error with Is/As.
func Errorf(format string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(format, args...), 1)
}

// WithPrefix wraps err with a stack trace and prepends the formatted message.
func WithPrefix(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(format, args...), 1)
}
