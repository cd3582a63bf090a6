// Package library builds the service and component libraries from scanned entities: it extracts
// direct dependencies, expands them into closures and orders every node's scripts.
package library

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/extract"
	"github.com/hightail/wilson-sub000/internal/scanner"
	"github.com/hightail/wilson-sub000/internal/worker"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
)

// Builder turns scanned entities into libraries.
type Builder struct {
	logger      log.Logger
	scanner     *scanner.Scanner
	extractor   extract.DependencyExtractor
	markup      *extract.MarkupExtractor
	workingDir  string
	templateExt string
	parallelism int
}

// NewBuilder returns a builder using the pattern extractor configured by opts.
func NewBuilder(opts *options.ResolverOptions, scanner *scanner.Scanner) *Builder {
	return &Builder{
		logger:      opts.Logger,
		scanner:     scanner,
		extractor:   extract.NewPatternExtractor(opts.DeclarationObject, opts.BuiltinSigil, opts.IgnoreList()),
		markup:      extract.NewMarkupExtractor(opts.MarkupPrefix),
		workingDir:  opts.WorkingDir,
		templateExt: opts.TemplateExt,
		parallelism: opts.Parallelism,
	}
}

// WithExtractor replaces the script dependency extractor.
func (builder *Builder) WithExtractor(extractor extract.DependencyExtractor) *Builder {
	builder.extractor = extractor
	return builder
}

// Scanner returns the scanner the builder reads entities with.
func (builder *Builder) Scanner() *scanner.Scanner {
	return builder.scanner
}

// Extractor returns the script dependency extractor.
func (builder *Builder) Extractor() extract.DependencyExtractor {
	return builder.extractor
}

// BuildServices scans the service roots and returns the linked service library.
func (builder *Builder) BuildServices(ctx context.Context) (component.Library, error) {
	entities, err := builder.scanner.Scan(ctx, builder.scanner.ServiceRoots()...)
	if err != nil {
		return nil, err
	}

	lib := make(component.Library, len(entities))
	for id, entity := range entities {
		lib[id] = builder.newNode(entity)
	}

	pool := worker.NewWorkerPool(builder.parallelism)

	for _, id := range entities.IDs() {
		node, entity := lib[id], entities[id]

		pool.Submit(func() error {
			deps, err := builder.ServiceDependencies(entity, lib)
			node.Dependencies = deps

			return err
		})
	}

	builder.logSoftErrors(pool.Wait())

	LinkServices(builder.logger, lib)

	telemetry.Count(ctx, "library_build_services", 1)
	builder.logger.Debugf("Built service library with %d services", len(lib))

	return lib, nil
}

// BuildComponents scans the component, behavior and guide roots and returns the linked
// component library.
func (builder *Builder) BuildComponents(ctx context.Context, services component.Library) (component.Library, error) {
	entities, err := builder.scanner.Scan(ctx, builder.scanner.ComponentRoots()...)
	if err != nil {
		return nil, err
	}

	lib := make(component.Library, len(entities))
	for id, entity := range entities {
		lib[id] = builder.newNode(entity)
	}

	lookup := NewLookup(entities)
	pool := worker.NewWorkerPool(builder.parallelism)

	for _, id := range entities.IDs() {
		node, entity := lib[id], entities[id]

		pool.Submit(func() error {
			return builder.fillComponentNode(node, entity, entities, lookup, services)
		})
	}

	builder.logSoftErrors(pool.Wait())

	LinkComponents(builder.logger, lib, services)

	telemetry.Count(ctx, "library_build_components", 1)
	builder.logger.Debugf("Built component library with %d entries", len(lib))

	return lib, nil
}

// RebuildServiceNode rescans one service and re-extracts its direct dependencies against lib.
// The returned node is not linked.
func (builder *Builder) RebuildServiceNode(ctx context.Context, id string, lib component.Library) (*component.Node, error) {
	entity, err := builder.scanner.ScanEntity(ctx, component.KindService, id)
	if err != nil {
		return nil, err
	}

	node := builder.newNode(entity)

	deps, err := builder.ServiceDependencies(entity, lib)
	builder.logSoftErrors(err)

	node.Dependencies = deps

	return node, nil
}

// RebuildComponentNode rescans one component-library entity of the given kind. entities must
// describe every entity of the component library so markup references can be resolved.
// The returned node is not linked.
func (builder *Builder) RebuildComponentNode(ctx context.Context, kind component.Kind, id string, entities component.Entities, services component.Library) (*component.Node, error) {
	entity, err := builder.scanner.ScanEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	node := builder.newNode(entity)

	builder.logSoftErrors(builder.fillComponentNode(node, entity, entities, NewLookup(entities), services))

	return node, nil
}

// Referencing returns the sorted ids of lib whose templates reference one of ids. Templates are
// read again because references to unknown components are not recorded in the library.
// entities resolves element names and must already contain ids.
func (builder *Builder) Referencing(ctx context.Context, lib component.Library, entities component.Entities, ids []string) ([]string, error) {
	var (
		targets = util.ToSet(ids)
		lookup  = NewLookup(entities)
		found   []string
	)

	for _, id := range lib.IDs() {
		if _, ok := targets[id]; ok {
			continue
		}

		entity, err := builder.scanner.ScanEntity(ctx, lib[id].Kind, id)
		if err != nil {
			return nil, err
		}

		if builder.templatesReference(entity, lookup, targets) {
			found = append(found, id)
		}
	}

	return found, nil
}

func (builder *Builder) templatesReference(entity *component.Entity, lookup extract.Lookup, targets map[string]struct{}) bool {
	for _, templatePath := range entity.Paths(component.ArtifactTemplate) {
		content, err := util.ReadFileAsString(filepath.Join(builder.workingDir, templatePath))
		if err != nil {
			builder.logger.WithField(log.FieldKeyEntity, entity.ID).Debugf("Skipping template %s: %v", templatePath, err)
			continue
		}

		refs, err := builder.markup.ExtractString(content, lookup)
		if err != nil {
			continue
		}

		for _, ref := range refs.All() {
			if _, ok := targets[ref]; ok {
				return true
			}
		}
	}

	return false
}

// ServiceDependencies extracts the known service ids used by the scripts of entity.
func (builder *Builder) ServiceDependencies(entity *component.Entity, services component.Library) ([]string, error) {
	return builder.scriptDependencies(entity, extract.ModeService, services)
}

func (builder *Builder) newNode(entity *component.Entity) *component.Node {
	return &component.Node{
		ID:           entity.ID,
		Kind:         entity.Kind,
		Group:        entity.Group,
		Dir:          entity.Dir,
		Dependencies: []string{},
		Transitive:   []string{},
		Sources:      util.RemoveDuplicatesFromList(entity.Paths(component.ArtifactScript)),
		Scripts:      []string{},
		Styles:       util.RemoveDuplicatesFromList(entity.Paths(component.ArtifactStyle)),
		Templates:    scanner.Variants(entity, builder.templateExt),
	}
}

func (builder *Builder) fillComponentNode(node *component.Node, entity *component.Entity, entities component.Entities, lookup extract.Lookup, services component.Library) error {
	mode := extract.ModeComponent
	if entity.Kind == component.KindBehavior {
		mode = extract.ModeBehavior
	}

	var errs *errors.MultiError

	svcDeps, err := builder.scriptDependencies(entity, mode, services)
	if err != nil {
		errs = errs.Append(err)
	}

	node.Services = svcDeps

	for _, templatePath := range entity.Paths(component.ArtifactTemplate) {
		content, err := util.ReadFileAsString(filepath.Join(builder.workingDir, templatePath))
		if err != nil {
			errs = errs.Append(err)
			continue
		}

		refs, err := builder.markup.ExtractString(content, lookup)
		if err != nil {
			var parseErr extract.ParseError
			if errors.As(err, &parseErr) {
				parseErr.Path = templatePath
				err = parseErr
			}

			builder.logger.WithField(log.FieldKeyEntity, node.ID).Warnf("Ignoring template %s: %v", templatePath, err)

			continue
		}

		node.Dependencies = util.AppendMissing(node.Dependencies, refs.Components...)

		for _, ref := range []struct {
			kind component.Kind
			ids  []string
		}{
			{component.KindBehavior, refs.Behaviors},
			{component.KindGuide, refs.Guides},
		} {
			for _, id := range ref.ids {
				if target, ok := entities[id]; ok && target.Kind == ref.kind {
					node.Dependencies = util.AppendMissing(node.Dependencies, id)
					continue
				}

				missing := MissingResourceError{Owner: node.ID, Kind: ref.kind, ID: id, Path: templatePath}
				builder.logger.WithFields(log.Fields{
					log.FieldKeyEntity: node.ID,
					log.FieldKeyPath:   templatePath,
				}).Errorf("%v", missing)

				node.Missing = util.AppendMissing(node.Missing, component.MissingReference{ID: id, Kind: ref.kind, Path: templatePath})
			}
		}
	}

	return errs.ErrorOrNil()
}

// scriptDependencies reads every script of entity and keeps the extracted names that are
// services of lib, in first-occurrence order.
func (builder *Builder) scriptDependencies(entity *component.Entity, mode extract.Mode, services component.Library) ([]string, error) {
	var (
		deps = []string{}
		errs *errors.MultiError
	)

	for _, scriptPath := range entity.Paths(component.ArtifactScript) {
		source, err := util.ReadFileAsString(filepath.Join(builder.workingDir, scriptPath))
		if err != nil {
			errs = errs.Append(err)
			continue
		}

		names, err := builder.extractor.Extract(source, mode)
		if err != nil {
			errs = errs.Append(err)
			continue
		}

		for _, name := range names {
			if _, ok := services[name]; !ok || (entity.Kind == component.KindService && name == entity.ID) {
				continue
			}

			deps = util.AppendMissing(deps, name)
		}
	}

	return deps, errs.ErrorOrNil()
}

func (builder *Builder) logSoftErrors(err error) {
	if err == nil {
		return
	}

	for _, err := range errors.UnwrapMultiErrors(err) {
		builder.logger.Warnf("%v", err)
	}
}

// NewLookup resolves `<prefix-NAME>` element names to component ids of entities.
func NewLookup(entities component.Entities) extract.Lookup {
	ids := make(map[string]string, len(entities))

	for _, id := range entities.IDs() {
		if entities[id].Kind != component.KindComponent {
			continue
		}

		key := extract.NormalizeName(id)
		if _, ok := ids[key]; !ok {
			ids[key] = id
		}
	}

	return func(name string) (string, bool) {
		id, ok := ids[extract.NormalizeName(name)]
		return id, ok
	}
}

// Entities recreates the entity index of a component library, so single nodes can be rebuilt
// without a rescan.
func Entities(lib component.Library) component.Entities {
	entities := make(component.Entities, len(lib))

	for id, node := range lib {
		entities[id] = &component.Entity{ID: id, Kind: node.Kind, Group: node.Group, Dir: node.Dir}
	}

	return entities
}

// Kinds that live in the component library.
var componentKinds = []component.Kind{component.KindComponent, component.KindBehavior, component.KindGuide}

// IsComponentKind returns true for kinds that live in the component library.
func IsComponentKind(kind component.Kind) bool {
	return slices.Contains(componentKinds, kind)
}
