package library

import (
	"fmt"

	"github.com/hightail/wilson-sub000/internal/component"
)

// MissingResourceError is returned when a template explicitly references a behavior or guide
// whose directory does not exist.
type MissingResourceError struct {
	Owner string
	Kind  component.Kind
	ID    string
	Path  string
}

func (err MissingResourceError) Error() string {
	kind := string(err.Kind)
	if kind == "" {
		kind = "resource"
	}

	if err.Path == "" {
		return fmt.Sprintf("%s references missing %s %q", err.Owner, kind, err.ID)
	}

	return fmt.Sprintf("%s references missing %s %q in %s", err.Owner, kind, err.ID, err.Path)
}
