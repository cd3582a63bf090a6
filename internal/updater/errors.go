package updater

import "fmt"

// InvalidChangeListError is returned when the change list is not valid JSON.
type InvalidChangeListError struct {
	Path  string
	Cause error
}

func (err InvalidChangeListError) Error() string {
	return fmt.Sprintf("invalid change list %s: %v", err.Path, err.Cause)
}

func (err InvalidChangeListError) Unwrap() error {
	return err.Cause
}

// InvalidActionError is returned for actions other than added, changed and removed.
type InvalidActionError struct {
	ID     string
	Action Action
}

func (err InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q for %s", err.Action, err.ID)
}
