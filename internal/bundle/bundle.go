// Package bundle concatenates ordered script lists into versioned bundle files under the cache
// directory. Bundles are immutable per version: an existing file is reused as is.
package bundle

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/extract"
	"github.com/hightail/wilson-sub000/internal/graph"
	"github.com/hightail/wilson-sub000/internal/library"
	"github.com/hightail/wilson-sub000/internal/store"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
	"golang.org/x/sync/singleflight"
)

const (
	dirName      = "bundles"
	coreName     = "core"
	coreFileName = "core.js"
	filePerm     = 0o644
)

// Libraries gives the bundler read access to the libraries.
type Libraries interface {
	Get(ctx context.Context, name string) (component.Library, error)
}

// Bundler writes component and core bundles.
type Bundler struct {
	logger           log.Logger
	libraries        Libraries
	extractor        extract.DependencyExtractor
	group            singleflight.Group
	workingDir       string
	dir              string
	version          string
	coreScripts      []string
	coreDependencies []string
	appScripts       []string
	ignore           []string
}

// New returns a bundler writing below `<cacheDir>/bundles/<version>`.
func New(opts *options.ResolverOptions, libraries Libraries, extractor extract.DependencyExtractor) *Bundler {
	return &Bundler{
		logger:           opts.Logger.WithField(log.FieldKeyLibrary, dirName),
		libraries:        libraries,
		extractor:        extractor,
		workingDir:       opts.WorkingDir,
		dir:              filepath.Join(opts.CacheDir, dirName, opts.Version),
		version:          opts.Version,
		coreScripts:      opts.CoreScripts,
		coreDependencies: opts.CoreDependencies,
		appScripts:       opts.AppScripts,
		ignore:           opts.IgnoreList(),
	}
}

// Dir returns the directory holding the bundles of the current version.
func (bundler *Bundler) Dir() string {
	return bundler.dir
}

// Path returns the bundle file of a component, or of the core bundle for an empty id.
func (bundler *Bundler) Path(id string) string {
	if id == "" {
		return filepath.Join(bundler.dir, coreFileName)
	}

	return filepath.Join(bundler.dir, "component."+id+".js")
}

// Build writes the bundle of component id, concatenating its full script list.
func (bundler *Bundler) Build(ctx context.Context, id string) (*component.Artifact, error) {
	lib, err := bundler.libraries.Get(ctx, component.ComponentsLibrary)
	if err != nil {
		return nil, err
	}

	node, ok := lib[id]
	if !ok || node.Kind != component.KindComponent {
		return nil, errors.New(component.UnknownEntityError{ID: id, Kind: component.KindComponent})
	}

	if len(node.Cycle) > 0 {
		return nil, errors.New(graph.DependencyCycleError(node.Cycle))
	}

	return bundler.build(ctx, id, bundler.Path(id), node.Scripts, false)
}

// BuildCore writes the core bundle. With ignoreCache an existing bundle of the same version is
// rebuilt.
func (bundler *Bundler) BuildCore(ctx context.Context, ignoreCache bool) (*component.Artifact, error) {
	sources, err := bundler.CoreSources(ctx)
	if err != nil {
		return nil, err
	}

	return bundler.build(ctx, coreName, bundler.Path(""), sources, ignoreCache)
}

// CoreSources returns the scripts of the core bundle: the configured core scripts, then the
// service closure of the core dependencies and of every service the app scripts use.
func (bundler *Bundler) CoreSources(ctx context.Context) ([]string, error) {
	services, err := bundler.libraries.Get(ctx, component.ServicesLibrary)
	if err != nil {
		return nil, err
	}

	deps := util.RemoveSublistFromList(bundler.coreDependencies, bundler.ignore)

	appDeps, err := bundler.appDependencies()
	if err != nil {
		return nil, err
	}

	for _, id := range appDeps {
		if _, ok := services[id]; ok && !util.ListContainsElement(bundler.ignore, id) {
			deps = util.AppendMissing(deps, id)
		}
	}

	sources := util.RemoveDuplicatesFromList(bundler.coreScripts)

	for _, id := range library.ServiceClosure(services, deps) {
		if util.ListContainsElement(bundler.ignore, id) {
			continue
		}

		sources = util.AppendMissing(sources, services[id].Sources...)
	}

	return sources, nil
}

func (bundler *Bundler) appDependencies() ([]string, error) {
	var deps []string

	for _, script := range bundler.appScripts {
		source, err := util.ReadFileAsString(filepath.Join(bundler.workingDir, script))
		if err != nil {
			return nil, err
		}

		names, err := bundler.extractor.Extract(source, extract.ModeApp)
		if err != nil {
			return nil, err
		}

		deps = util.AppendMissing(deps, names...)
	}

	return deps, nil
}

func (bundler *Bundler) build(ctx context.Context, id, path string, sources []string, force bool) (*component.Artifact, error) {
	artifact := &component.Artifact{ID: id, Version: bundler.version, Path: path, Sources: sources}
	logger := bundler.logger.WithFields(log.Fields{log.FieldKeyEntity: id, log.FieldKeyPath: path})

	if !force && util.IsFile(path) {
		telemetry.Count(ctx, "bundle_reuse", 1)
		logger.Debugf("Reusing bundle %s", path)

		return artifact, nil
	}

	_, err, shared := bundler.group.Do(path, func() (any, error) {
		return nil, bundler.write(path, sources)
	})
	if err != nil {
		return nil, err
	}

	if !shared {
		telemetry.Count(ctx, "bundle_build", 1)
		logger.Infof("Wrote bundle %s with %d scripts", path, len(sources))
	}

	return artifact, nil
}

func (bundler *Bundler) write(path string, sources []string) error {
	err := util.WriteFileAtomicFunc(path, filePerm, func(w io.Writer) error {
		for _, source := range sources {
			content, err := os.ReadFile(filepath.Join(bundler.workingDir, source))
			if err != nil {
				return err
			}

			if _, err := w.Write(content); err != nil {
				return err
			}

			if !strings.HasSuffix(string(content), "\n") {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return errors.New(store.CacheWriteError{Path: path, Cause: err})
	}

	return nil
}
