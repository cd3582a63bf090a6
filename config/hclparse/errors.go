package hclparse

import (
	"fmt"

	"github.com/hightail/wilson-sub000/internal/errors"
)

// ParsePanicError reports a panic raised by the HCL parser or a cty conversion while reading Path.
type ParsePanicError struct {
	Path  string
	Value any
}

func (err ParsePanicError) Error() string {
	return fmt.Sprintf("parsing %s panicked (%T): %v", err.Path, err.Value, err.Value)
}

// recoverPanic turns a panic in the calling function into a ParsePanicError stored in errp.
// It must be deferred directly.
func recoverPanic(path string, errp *error) {
	if value := recover(); value != nil {
		*errp = errors.New(ParsePanicError{Path: path, Value: value})
	}
}
