package updater

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/hightail/wilson-sub000/internal/errors"
)

// Action is what happened to an entity named in a change list.
type Action string

const (
	ActionAdded   Action = "added"
	ActionChanged Action = "changed"
	ActionRemoved Action = "removed"
)

// Change names the changed path of one entity.
type Change struct {
	Path   string `json:"path"`
	Action Action `json:"action"`
}

// ChangeList is the externally produced manifest driving an incremental update. Guides are
// listed under components.
type ChangeList struct {
	Services   map[string]Change `json:"services,omitempty"`
	Behaviors  map[string]Change `json:"behaviors,omitempty"`
	Components map[string]Change `json:"components,omitempty"`
}

// ReadChangeList reads the change list at path. A missing file yields nil without error.
func ReadChangeList(path string) (*ChangeList, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.New(err)
	}

	var changes ChangeList
	if err := json.Unmarshal(content, &changes); err != nil {
		return nil, errors.New(InvalidChangeListError{Path: path, Cause: err})
	}

	if err := changes.Validate(); err != nil {
		return nil, err
	}

	return &changes, nil
}

// Empty returns true if the change list names nothing.
func (changes *ChangeList) Empty() bool {
	return changes == nil || len(changes.Services)+len(changes.Behaviors)+len(changes.Components) == 0
}

// Validate checks every action.
func (changes *ChangeList) Validate() error {
	for _, group := range []map[string]Change{changes.Services, changes.Behaviors, changes.Components} {
		for id, change := range group {
			switch change.Action {
			case ActionAdded, ActionChanged, ActionRemoved:
			default:
				return errors.New(InvalidActionError{ID: id, Action: change.Action})
			}
		}
	}

	return nil
}

func sortedIDs(group map[string]Change) []string {
	ids := make([]string, 0, len(group))
	for id := range group {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
