// Package resolver is the query API of the engine. It owns the library store of one cache
// directory and answers component, bundle and name requests from it.
package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/hightail/wilson-sub000/internal/bundle"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/filter"
	"github.com/hightail/wilson-sub000/internal/graph"
	"github.com/hightail/wilson-sub000/internal/library"
	"github.com/hightail/wilson-sub000/internal/scanner"
	"github.com/hightail/wilson-sub000/internal/selector"
	"github.com/hightail/wilson-sub000/internal/store"
	"github.com/hightail/wilson-sub000/internal/updater"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
)

// Resolver answers queries against the libraries of one project.
type Resolver struct {
	opts     *options.ResolverOptions
	logger   log.Logger
	registry *filter.Registry
	builder  *library.Builder
	store    *store.Store
	bundler  *bundle.Bundler
	updater  *updater.Updater
}

// New initializes a resolver: it normalizes opts, takes the cache directory and loads or builds
// both libraries.
func New(ctx context.Context, opts *options.ResolverOptions) (*Resolver, error) {
	opts = opts.Clone()

	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	registry, err := opts.Registry()
	if err != nil {
		return nil, err
	}

	sc, err := scanner.New(opts)
	if err != nil {
		return nil, err
	}

	builder := library.NewBuilder(opts, sc)

	libraries, err := store.New(opts, builder)
	if err != nil {
		return nil, err
	}

	resolver := &Resolver{
		opts:     opts,
		logger:   opts.Logger,
		registry: registry,
		builder:  builder,
		store:    libraries,
		bundler:  bundle.New(opts, libraries, builder.Extractor()),
		updater:  updater.New(opts, libraries, builder),
	}

	for _, name := range []string{component.ServicesLibrary, component.ComponentsLibrary} {
		if _, err := libraries.Get(ctx, name); err != nil {
			libraries.Close() //nolint:errcheck
			return nil, err
		}
	}

	resolver.logger.WithField(log.FieldKeyVersion, opts.Version).Debugf("Resolver ready in %s", opts.WorkingDir)

	return resolver, nil
}

// Close releases the cache directory.
func (resolver *Resolver) Close() error {
	return resolver.store.Close()
}

// Options returns the normalized options the resolver runs with.
func (resolver *Resolver) Options() *options.ResolverOptions {
	return resolver.opts
}

// Registry returns the context filter registry built from the configured tags.
func (resolver *Resolver) Registry() *filter.Registry {
	return resolver.registry
}

// Store returns the library store.
func (resolver *Resolver) Store() *store.Store {
	return resolver.store
}

// GetComponentData resolves component id for filters: its full script list, styles, the
// selected template of itself and of every component-library node it depends on, and its
// dependency ids. Results are cached per filter values and version.
func (resolver *Resolver) GetComponentData(ctx context.Context, id string, filters filter.Filters) (*component.Data, error) {
	lib, err := resolver.store.Get(ctx, component.ComponentsLibrary)
	if err != nil {
		return nil, err
	}

	node, err := resolvable(lib, id)
	if err != nil {
		return nil, err
	}

	key := filters.Key()
	logger := resolver.logger.WithFields(log.Fields{log.FieldKeyEntity: id, log.FieldKeyVersion: resolver.opts.Version})

	if data, ok := resolver.store.GetResolved(ctx, id, key, resolver.opts.Version); ok {
		logger.Tracef("Resolved %s from cache", id)
		return data, nil
	}

	telemetry.Count(ctx, "resolve_component", 1)

	templates, err := resolver.templates(lib, node, filters)
	if err != nil {
		return nil, err
	}

	data := &component.Data{
		Name:       id,
		Version:    resolver.opts.Version,
		Scripts:    resolver.urls(node.Scripts),
		Styles:     resolver.urls(node.Styles),
		Templates:  templates,
		Components: append([]string{}, node.Transitive...),
	}

	if err := resolver.store.PutResolved(ctx, id, key, data); err != nil {
		logger.Warnf("Not caching resolved %s: %v", id, err)
	}

	return data, nil
}

// GetServableComponent is GetComponentData without the dependency list. With bundle_scripts
// enabled the scripts are replaced by the component bundle.
func (resolver *Resolver) GetServableComponent(ctx context.Context, id string, filters filter.Filters) (*component.Servable, error) {
	data, err := resolver.GetComponentData(ctx, id, filters)
	if err != nil {
		return nil, err
	}

	servable := data.Servable()

	if resolver.opts.BundleScripts {
		artifact, err := resolver.bundler.Build(ctx, id)
		if err != nil {
			return nil, err
		}

		bundleURL, err := resolver.bundleURL(artifact)
		if err != nil {
			return nil, err
		}

		servable.Scripts = []string{bundleURL}
	}

	return servable, nil
}

// GenerateComponentBundle writes the script bundle of component id.
func (resolver *Resolver) GenerateComponentBundle(ctx context.Context, id string) (*component.Artifact, error) {
	lib, err := resolver.store.Get(ctx, component.ComponentsLibrary)
	if err != nil {
		return nil, err
	}

	if _, err := resolvable(lib, id); err != nil {
		return nil, err
	}

	return resolver.bundler.Build(ctx, id)
}

// GenerateCoreBundle writes the core bundle. With ignoreCache an existing bundle is rebuilt.
func (resolver *Resolver) GenerateCoreBundle(ctx context.Context, ignoreCache bool) (*component.Artifact, error) {
	return resolver.bundler.BuildCore(ctx, ignoreCache)
}

// GetComponentNames returns the sorted ids of all page and block components.
func (resolver *Resolver) GetComponentNames(ctx context.Context) ([]string, error) {
	lib, err := resolver.store.Get(ctx, component.ComponentsLibrary)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, node := range lib.Filter(component.KindComponent) {
		names = append(names, node.ID)
	}

	return names, nil
}

// Reload drops everything held in memory and reads the caches from disk again.
func (resolver *Resolver) Reload(ctx context.Context) error {
	return resolver.store.Reload(ctx)
}

// ApplyChanges consumes the configured change list. It returns nil if there was none.
func (resolver *Resolver) ApplyChanges(ctx context.Context) (*updater.Result, error) {
	return resolver.updater.Apply(ctx)
}

// VersionCheck tells a caller which version to use.
type VersionCheck struct {
	Requested string `json:"requested"`
	Current   string `json:"current"`
	// Redirect is set when the requested version is not the one being served.
	Redirect bool `json:"redirect"`
}

// CheckVersion compares a requested version with the served one. A mismatch is not an error, the
// caller is expected to redirect to Current. Unparsable versions are compared verbatim.
func (resolver *Resolver) CheckVersion(requested string) VersionCheck {
	current := resolver.opts.Version
	check := VersionCheck{Requested: requested, Current: current, Redirect: requested != current}

	requestedVersion, err := version.NewVersion(requested)
	if err != nil {
		return check
	}

	currentVersion, err := version.NewVersion(current)
	if err != nil {
		return check
	}

	check.Redirect = !requestedVersion.Equal(currentVersion)

	if check.Redirect {
		resolver.logger.WithField(log.FieldKeyVersion, requested).Debugf("Version %s requested, serving %s", requested, current)
	}

	return check
}

// resolvable returns the component node of id, or the error that prevents resolving it.
func resolvable(lib component.Library, id string) (*component.Node, error) {
	node, ok := lib[id]
	if !ok || node.Kind != component.KindComponent {
		return nil, errors.New(component.UnknownEntityError{ID: id, Kind: component.KindComponent})
	}

	if len(node.Cycle) > 0 {
		return nil, errors.New(graph.DependencyCycleError(node.Cycle))
	}

	for _, depID := range append([]string{id}, node.Transitive...) {
		dep, ok := lib[depID]
		if !ok || len(dep.Missing) == 0 {
			continue
		}

		ref := dep.Missing[0]

		return nil, errors.New(library.MissingResourceError{Owner: depID, Kind: ref.Kind, ID: ref.ID, Path: ref.Path})
	}

	return node, nil
}

// templates selects one template of every node in the closure that has templates, dependencies
// first.
func (resolver *Resolver) templates(lib component.Library, node *component.Node, filters filter.Filters) ([]component.Template, error) {
	templates := []component.Template{}

	for _, id := range append(append([]string{}, node.Transitive...), node.ID) {
		dep, ok := lib[id]
		if !ok || len(dep.Templates) == 0 {
			continue
		}

		variant, err := selector.Select(dep.Templates, filters)
		if err != nil {
			return nil, err
		}

		content, err := util.ReadFileAsString(filepath.Join(resolver.opts.WorkingDir, variant.Path))
		if err != nil {
			return nil, err
		}

		templates = append(templates, component.Template{ID: id, Type: component.TemplateType, Data: content})
	}

	return templates, nil
}

func (resolver *Resolver) urls(paths []string) []string {
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		urls = append(urls, joinURL(resolver.opts.ScriptURLPrefix, path))
	}

	return urls
}

// bundleURL maps a bundle file to bundle_url_prefix, or to its path relative to the project.
func (resolver *Resolver) bundleURL(artifact *component.Artifact) (string, error) {
	if resolver.opts.BundleURLPrefix != "" {
		rel, err := util.GetPathRelativeTo(artifact.Path, filepath.Dir(resolver.bundler.Dir()))
		if err != nil {
			return "", err
		}

		return joinURL(resolver.opts.BundleURLPrefix, rel), nil
	}

	return util.GetPathRelativeTo(artifact.Path, resolver.opts.WorkingDir)
}

func joinURL(prefix, path string) string {
	if prefix == "" {
		return path
	}

	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}
