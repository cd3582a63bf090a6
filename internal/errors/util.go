package errors

import (
	"errors"
	"fmt"
	"strings"
)

type stackTracer interface {
	ErrorStack() string
}

// ErrorStack returns the stack traces found along every branch of err, one per wrapped error
// carrying a trace.
func ErrorStack(err error) string {
	var stacks []string

	walkChains(err, func(err error) bool {
		if tracer, ok := err.(stackTracer); ok {
			stacks = append(stacks, tracer.ErrorStack())
		}

		return true
	})

	return strings.Join(stacks, "\n")
}

// ContainsStackTrace reports whether some error in the tree already carries a stack trace, so
// New does not nest a second one.
func ContainsStackTrace(err error) bool {
	found := false

	walkChains(err, func(err error) bool {
		_, found = err.(stackTracer)
		return !found
	})

	return found
}

// Recover converts a panic into an error passed to onPanic. Call it only from a defer statement.
func Recover(onPanic func(cause error)) {
	rec := recover()
	if rec == nil {
		return
	}

	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", rec) //nolint:err113
	}

	onPanic(New(err))
}

// UnwrapMultiErrors flattens nested multi-errors (anything with `Unwrap() []error`) into the
// list of their leaf errors. An error without multi-errors in its chain is returned alone.
func UnwrapMultiErrors(err error) []error {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		multi, ok := cur.(interface{ Unwrap() []error })
		if !ok {
			continue
		}

		var leaves []error
		for _, inner := range multi.Unwrap() {
			leaves = append(leaves, UnwrapMultiErrors(inner)...)
		}

		return leaves
	}

	return []error{err}
}

// walkChains calls fn for each error on the single-unwrap chain of every leaf of err until fn
// returns false.
func walkChains(err error, fn func(error) bool) {
	for _, leaf := range UnwrapMultiErrors(err) {
		for cur := leaf; cur != nil; cur = errors.Unwrap(cur) {
			if !fn(cur) {
				return
			}
		}
	}
}
