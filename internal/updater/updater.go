// Package updater applies a change list to the cached libraries without a full rescan.
//
// The named entities are re-extracted, and so is every node they can affect: users found through
// script paths (a component's scripts include the scripts of everything it depends on) and
// nodes whose edges or templates name an added or removed entity. The delta is the named ids,
// the re-extracted nodes that differ from their cached version and every node whose scripts
// live below a changed path. Closures are recomputed in memory and a library is persisted only
// if it actually differs from the cached one.
package updater

import (
	"context"
	"os"
	"slices"
	"sort"
	"sync"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/library"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
	"github.com/wI2L/jsondiff"
)

// State of the updater.
type State int

const (
	StateIdle State = iota
	StateChangeDetected
	StateRecomputing
	StatePersisted
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateChangeDetected:
		return "change-detected"
	case StateRecomputing:
		return "recomputing"
	case StatePersisted:
		return "persisted"
	}

	return "unknown"
}

// Store is the part of the library store the updater reads and writes.
type Store interface {
	Get(ctx context.Context, name string) (component.Library, error)
	Write(ctx context.Context, name string, lib component.Library) error
	InvalidateResolved(ctx context.Context, ids ...string) (int, error)
}

// Result describes an applied change list.
type Result struct {
	// Services are the re-extracted services.
	Services []string `json:"services"`
	// Components is the inferred delta: named and referencing component-library ids, sorted.
	Components []string `json:"components"`
	// Persisted names the libraries that were written.
	Persisted []string `json:"persisted"`
	// Invalidated counts removed resolved documents.
	Invalidated int `json:"invalidated"`
}

// Updater consumes change lists.
type Updater struct {
	logger  log.Logger
	store   Store
	builder *library.Builder
	path    string
	state   State
	mu      sync.Mutex
}

// New returns an updater reading the change list configured in opts.
func New(opts *options.ResolverOptions, store Store, builder *library.Builder) *Updater {
	return &Updater{
		logger:  opts.Logger.WithField(log.FieldKeyLibrary, "updater"),
		store:   store,
		builder: builder,
		path:    opts.ChangeListPath,
	}
}

// State returns the current state.
func (updater *Updater) State() State {
	updater.mu.Lock()
	defer updater.mu.Unlock()

	return updater.state
}

func (updater *Updater) setState(state State) {
	updater.state = state
	updater.logger.WithField(log.FieldKeyState, state.String()).Tracef("Updater is %s", state)
}

// Apply reads the change list file, applies it and deletes it. A missing or empty change list is
// a no-op returning a nil result.
func (updater *Updater) Apply(ctx context.Context) (*Result, error) {
	changes, err := ReadChangeList(updater.path)
	if err != nil {
		return nil, err
	}

	if changes.Empty() {
		updater.logger.Debugf("No changes in %s", updater.path)
		return nil, updater.consume()
	}

	result, err := updater.ApplyChanges(ctx, changes)
	if err != nil {
		return nil, err
	}

	return result, updater.consume()
}

func (updater *Updater) consume() error {
	if err := os.Remove(updater.path); err != nil && !os.IsNotExist(err) {
		return errors.New(err)
	}

	return nil
}

// ApplyChanges applies changes to the cached libraries.
func (updater *Updater) ApplyChanges(ctx context.Context, changes *ChangeList) (*Result, error) {
	updater.mu.Lock()
	defer updater.mu.Unlock()

	if changes.Empty() {
		return &Result{Services: []string{}, Components: []string{}, Persisted: []string{}}, nil
	}

	if err := changes.Validate(); err != nil {
		return nil, err
	}

	defer updater.setState(StateIdle)

	updater.setState(StateChangeDetected)
	telemetry.Count(ctx, "update_apply", 1)

	oldServices, err := updater.store.Get(ctx, component.ServicesLibrary)
	if err != nil {
		return nil, err
	}

	oldComponents, err := updater.store.Get(ctx, component.ComponentsLibrary)
	if err != nil {
		return nil, err
	}

	updater.setState(StateRecomputing)

	services, paths, err := updater.recomputeServices(ctx, oldServices, changes.Services)
	if err != nil {
		return nil, err
	}

	components, named, inferred, componentPaths, err := updater.recomputeComponents(ctx, oldComponents, services, changes, paths)
	if err != nil {
		return nil, err
	}

	paths = util.AppendMissing(paths, componentPaths...)

	for _, id := range inferred {
		changed, err := nodeChanged(oldComponents[id], components[id])
		if err != nil {
			return nil, err
		}

		if changed {
			named = util.AppendMissing(named, id)
		}
	}

	result := &Result{
		Services:   sortedIDs(changes.Services),
		Components: delta(named, paths, oldComponents, components),
		Persisted:  []string{},
	}

	for _, lib := range []struct {
		name          string
		before, after component.Library
	}{
		{component.ServicesLibrary, oldServices, services},
		{component.ComponentsLibrary, oldComponents, components},
	} {
		patch, err := jsondiff.Compare(lib.before, lib.after)
		if err != nil {
			return nil, errors.New(err)
		}

		if len(patch) == 0 {
			updater.logger.WithField(log.FieldKeyLibrary, lib.name).Debugf("%s library unchanged", lib.name)
			continue
		}

		if err := updater.store.Write(ctx, lib.name, lib.after); err != nil {
			return nil, err
		}

		updater.logger.WithField(log.FieldKeyLibrary, lib.name).Infof("Persisted %s library with %d changes", lib.name, len(patch))
		result.Persisted = append(result.Persisted, lib.name)
	}

	updater.setState(StatePersisted)

	if result.Invalidated, err = updater.store.InvalidateResolved(ctx, result.Components...); err != nil {
		return nil, err
	}

	updater.logger.Infof("Applied changes to %d services, %d components affected", len(result.Services), len(result.Components))

	return result, nil
}

// recomputeServices returns a relinked copy of services with the named services re-extracted,
// and the paths whose users must be recomputed. Adding a service can turn names already used by
// other scripts into edges, so every service is re-extracted then; removing one re-extracts its
// dependents.
func (updater *Updater) recomputeServices(ctx context.Context, old component.Library, changes map[string]Change) (component.Library, []string, error) {
	services := old.Clone()
	paths := changedPaths(old, changes)

	var added, removed []string

	for _, id := range sortedIDs(changes) {
		switch changes[id].Action {
		case ActionRemoved:
			delete(services, id)

			removed = append(removed, id)
		case ActionAdded:
			added = append(added, id)
		}

		if _, ok := services[id]; !ok && changes[id].Action != ActionRemoved {
			services[id] = &component.Node{ID: id, Kind: component.KindService}
		}
	}

	for _, id := range services.IDs() {
		_, isNamed := changes[id]

		prev, known := old[id]
		if !isNamed && len(added) == 0 && !(known && dependsOnAny(prev.Dependencies, removed)) {
			continue
		}

		node, err := updater.builder.RebuildServiceNode(ctx, id, services)
		if err != nil {
			return nil, nil, err
		}

		if isNamed || !known || !slices.Equal(prev.Dependencies, node.Dependencies) {
			if known {
				updater.logger.WithField(log.FieldKeyEntity, id).Debugf("Dependencies of %s changed from %v to %v", id, prev.Dependencies, node.Dependencies)
			}

			paths = util.AppendMissing(paths, node.Dir)
		}

		services[id] = node
	}

	library.LinkServices(updater.logger, services)

	return services, paths, nil
}

// recomputeComponents returns a relinked copy of the component library together with the named
// ids, the re-extracted ids that were not named, and the paths of the named entities.
//
// Besides the named entities, every node is re-extracted whose scripts live below servicePaths
// or a named path, whose edges, services or missing references name an added or removed id, or
// whose templates reference an added component. Adding a service re-extracts every node.
func (updater *Updater) recomputeComponents(ctx context.Context, old, services component.Library, changes *ChangeList, servicePaths []string) (component.Library, []string, []string, []string, error) {
	components := old.Clone()
	entities := library.Entities(components)

	var (
		named           []string
		paths           = append(changedPaths(old, changes.Behaviors), changedPaths(old, changes.Components)...)
		kinds           = make(map[string]component.Kind)
		addedComponents []string
		addedOrRemoved  []string
		servicesRemoved []string
		servicesAdded   bool
	)

	for _, id := range sortedIDs(changes.Services) {
		switch changes.Services[id].Action {
		case ActionAdded:
			servicesAdded = true
		case ActionRemoved:
			servicesRemoved = append(servicesRemoved, id)
		}
	}

	for _, group := range []struct {
		kind    component.Kind
		changes map[string]Change
	}{
		{component.KindBehavior, changes.Behaviors},
		{component.KindComponent, changes.Components},
	} {
		for _, id := range sortedIDs(group.changes) {
			named = util.AppendMissing(named, id)

			action := group.changes[id].Action
			if action != ActionChanged {
				addedOrRemoved = append(addedOrRemoved, id)
			}

			if action == ActionRemoved {
				delete(components, id)
				delete(entities, id)

				continue
			}

			kind := updater.kindOf(old, id, group.kind)
			kinds[id] = kind

			if action == ActionAdded && kind == component.KindComponent {
				addedComponents = append(addedComponents, id)
			}

			if _, ok := entities[id]; !ok {
				entities[id] = &component.Entity{ID: id, Kind: kind}
			}
		}
	}

	var inferred []string

	if servicesAdded {
		inferred = components.IDs()
	} else {
		watched := util.AppendMissing(append([]string{}, servicePaths...), paths...)

		for _, id := range components.IDs() {
			node := components[id]

			if referencesAny(node, watched) || dependsOnAny(node.Dependencies, addedOrRemoved) ||
				dependsOnAny(node.MissingIDs(), addedOrRemoved) || dependsOnAny(node.Services, servicesRemoved) {
				inferred = append(inferred, id)
			}
		}
	}

	if len(addedComponents) > 0 {
		referencing, err := updater.builder.Referencing(ctx, components, entities, addedComponents)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		inferred = util.AppendMissing(inferred, referencing...)
	}

	inferred = util.RemoveSublistFromList(inferred, named)

	for _, id := range named {
		kind, ok := kinds[id]
		if !ok {
			continue
		}

		node, err := updater.builder.RebuildComponentNode(ctx, kind, id, entities, services)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		components[id] = node
		paths = util.AppendMissing(paths, node.Dir)
	}

	for _, id := range inferred {
		node, err := updater.builder.RebuildComponentNode(ctx, components[id].Kind, id, entities, services)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		components[id] = node
	}

	library.LinkComponents(updater.logger, components, services)

	return components, named, inferred, paths, nil
}

// kindOf keeps the kind of a known node. Ids listed under components may be guides.
func (updater *Updater) kindOf(lib component.Library, id string, kind component.Kind) component.Kind {
	if node, ok := lib[id]; ok {
		return node.Kind
	}

	if kind == component.KindComponent && !updater.builder.Scanner().Exists(component.KindComponent, id) &&
		updater.builder.Scanner().Exists(component.KindGuide, id) {
		return component.KindGuide
	}

	return kind
}

// changedPaths returns the change-list path and the cached directory of every named entity.
func changedPaths(lib component.Library, changes map[string]Change) []string {
	var paths []string

	for _, id := range sortedIDs(changes) {
		if path := changes[id].Path; path != "" {
			paths = util.AppendMissing(paths, util.CleanPath(path))
		}

		if node, ok := lib[id]; ok && node.Dir != "" {
			paths = util.AppendMissing(paths, node.Dir)
		}
	}

	return paths
}

// nodeChanged reports whether a re-extracted node differs from its cached version.
func nodeChanged(before, after *component.Node) (bool, error) {
	if before == nil || after == nil {
		return before != after, nil
	}

	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		return false, errors.New(err)
	}

	return len(patch) > 0, nil
}

func dependsOnAny(deps, ids []string) bool {
	for _, id := range ids {
		if slices.Contains(deps, id) {
			return true
		}
	}

	return false
}

func referencesAny(node *component.Node, paths []string) bool {
	for _, path := range paths {
		if path != "" && node.ReferencesPath(path) {
			return true
		}
	}

	return false
}

// delta returns the named ids plus every node, before or after the update, whose scripts
// reference one of paths.
func delta(named, paths []string, libs ...component.Library) []string {
	ids := util.ToSet(named)

	for _, lib := range libs {
		for id, node := range lib {
			if referencesAny(node, paths) {
				ids[id] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(ids))
	for id := range ids {
		result = append(result, id)
	}

	sort.Strings(result)

	return result
}
