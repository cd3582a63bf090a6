package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MultiError collects independent failures, e.g. one per entity during a bulk scan, so that a
// single broken entity never hides the others. A nil *MultiError is an empty collection.
type MultiError struct {
	inner *multierror.Error
}

// Append returns a collection holding the errors of errs followed by appendErrs. Nil errors are
// skipped by go-multierror.
func (errs *MultiError) Append(appendErrs ...error) *MultiError {
	var inner *multierror.Error
	if errs != nil {
		inner = errs.inner
	}

	inner = multierror.Append(inner, appendErrs...)
	inner.ErrorFormat = listFormat

	return &MultiError{inner: inner}
}

func (errs *MultiError) Error() string {
	if errs == nil || errs.inner == nil {
		return ""
	}

	return errs.inner.Error()
}

// WrappedErrors returns the collected errors in the order they were appended.
func (errs *MultiError) WrappedErrors() []error {
	if errs == nil || errs.inner == nil {
		return nil
	}

	return errs.inner.WrappedErrors()
}

func (errs *MultiError) Unwrap() []error {
	return errs.WrappedErrors()
}

func (errs *MultiError) Len() int {
	return len(errs.WrappedErrors())
}

// ErrorOrNil returns errs as an error, or nil when nothing was collected.
func (errs *MultiError) ErrorOrNil() error {
	if errs.Len() == 0 {
		return nil
	}

	return errs
}

// listFormat renders one bullet per error, indenting continuation lines under their bullet.
func listFormat(errs []error) string {
	var sb strings.Builder

	if len(errs) == 1 {
		sb.WriteString("error occurred:\n")
	} else {
		fmt.Fprintf(&sb, "%d errors occurred:\n", len(errs))
	}

	for _, err := range errs {
		msg := strings.ReplaceAll(err.Error(), "\r\n", "\n")
		msg = strings.ReplaceAll(strings.TrimRight(msg, "\n"), "\n", "\n  ")
		fmt.Fprintf(&sb, "* %s\n", msg)
	}

	return sb.String()
}
