// Package scanner enumerates entities below the configured roots. Every immediate subdirectory
// of a root is an entity; its scripts, templates and styles are its artifacts.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/worker"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
	"github.com/mattn/go-zglob"
)

// Root is a directory holding entities of one kind.
type Root struct {
	Path  string
	Kind  component.Kind
	Group component.Group
}

// Scanner lists entities and their artifacts.
type Scanner struct {
	logger     log.Logger
	workingDir string
	noise      []glob.Glob
	exts       map[component.ArtifactKind]string
	roots      []Root
	parallel   int
}

// New compiles the noise patterns and derives the roots from opts.
func New(opts *options.ResolverOptions) (*Scanner, error) {
	scanner := &Scanner{
		logger:     opts.Logger,
		workingDir: opts.WorkingDir,
		parallel:   opts.Parallelism,
		exts: map[component.ArtifactKind]string{
			component.ArtifactScript:   opts.ScriptExt,
			component.ArtifactTemplate: opts.TemplateExt,
			component.ArtifactStyle:    opts.StyleExt,
		},
	}

	for _, pattern := range opts.Noise {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.WithPrefix(err, "invalid noise pattern %q", pattern)
		}

		scanner.noise = append(scanner.noise, compiled)
	}

	for _, path := range opts.Roots.Services {
		scanner.roots = append(scanner.roots, Root{Path: path, Kind: component.KindService})
	}

	for _, path := range opts.Roots.Pages {
		scanner.roots = append(scanner.roots, Root{Path: path, Kind: component.KindComponent, Group: component.GroupPage})
	}

	for _, path := range opts.Roots.Blocks {
		scanner.roots = append(scanner.roots, Root{Path: path, Kind: component.KindComponent, Group: component.GroupBlock})
	}

	if path := opts.Roots.Behaviors; path != "" {
		scanner.roots = append(scanner.roots, Root{Path: path, Kind: component.KindBehavior})
	}

	if path := opts.Roots.Guides; path != "" {
		scanner.roots = append(scanner.roots, Root{Path: path, Kind: component.KindGuide})
	}

	return scanner, nil
}

// Roots returns the configured roots holding entities of the given kinds, in configuration order.
func (scanner *Scanner) Roots(kinds ...component.Kind) []Root {
	var roots []Root

	for _, root := range scanner.roots {
		if slices.Contains(kinds, root.Kind) {
			roots = append(roots, root)
		}
	}

	return roots
}

// ServiceRoots returns the roots of the service library.
func (scanner *Scanner) ServiceRoots() []Root {
	return scanner.Roots(component.KindService)
}

// ComponentRoots returns the roots of the component library: pages, blocks, behaviors and guides.
func (scanner *Scanner) ComponentRoots() []Root {
	return scanner.Roots(component.KindComponent, component.KindBehavior, component.KindGuide)
}

// IsNoise returns true if the entry name matches a noise pattern.
func (scanner *Scanner) IsNoise(name string) bool {
	for _, pattern := range scanner.noise {
		if pattern.Match(name) {
			return true
		}
	}

	return false
}

// Scan enumerates the entities of roots. A missing root or entity directory is a warning, never
// an error. When two roots declare the same id, the first one wins.
func (scanner *Scanner) Scan(ctx context.Context, roots ...Root) (component.Entities, error) {
	var (
		entities = make(component.Entities)
		softErrs *errors.MultiError
	)

	for _, root := range roots {
		dir := filepath.Join(scanner.workingDir, root.Path)

		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				softErrs = softErrs.Append(MissingEntityDirectoryError{Kind: root.Kind, Path: root.Path})
				continue
			}

			return nil, errors.New(err)
		}

		for _, entry := range dirEntries {
			if !entry.IsDir() || scanner.IsNoise(entry.Name()) {
				continue
			}

			id := entry.Name()

			if existing, ok := entities[id]; ok {
				scanner.logger.WithField(log.FieldKeyEntity, id).Warnf("Duplicate id %s in %s, keeping %s", id, root.Path, existing.Dir)
				continue
			}

			entities[id] = &component.Entity{
				ID:    id,
				Kind:  root.Kind,
				Group: root.Group,
				Dir:   util.JoinPath(root.Path, id),
			}
		}
	}

	if err := scanner.listArtifacts(ctx, entities); err != nil {
		softErrs = softErrs.Append(err)
	}

	if err := softErrs.ErrorOrNil(); err != nil {
		scanner.logger.Warnf("Scan finished with warnings: %v", err)
	}

	telemetry.Count(ctx, "scan_entities", int64(len(entities)))

	return entities, nil
}

// ScanEntity rescans one entity of the given kind. A missing directory yields a warning and an
// entity without artifacts.
func (scanner *Scanner) ScanEntity(ctx context.Context, kind component.Kind, id string) (*component.Entity, error) {
	telemetry.Count(ctx, "scan_entity", 1)

	for _, root := range scanner.roots {
		if root.Kind != kind {
			continue
		}

		if !util.IsDir(filepath.Join(scanner.workingDir, root.Path, id)) {
			continue
		}

		entity := &component.Entity{ID: id, Kind: kind, Group: root.Group, Dir: util.JoinPath(root.Path, id)}

		artifacts, err := scanner.artifacts(entity.Dir)
		if err != nil {
			return nil, err
		}

		entity.Artifacts = artifacts

		return entity, nil
	}

	scanner.logger.WithField(log.FieldKeyEntity, id).Warnf("%v", MissingEntityDirectoryError{Kind: kind, Path: id})

	return &component.Entity{ID: id, Kind: kind}, nil
}

// Exists returns true if an entity directory of the given kind exists.
func (scanner *Scanner) Exists(kind component.Kind, id string) bool {
	for _, root := range scanner.Roots(kind) {
		if util.IsDir(filepath.Join(scanner.workingDir, root.Path, id)) {
			return true
		}
	}

	return false
}

func (scanner *Scanner) listArtifacts(ctx context.Context, entities component.Entities) error {
	pool := worker.NewWorkerPool(scanner.parallel)

	for _, id := range entities.IDs() {
		entity := entities[id]

		pool.Submit(func() error {
			artifacts, err := scanner.artifacts(entity.Dir)
			if err != nil {
				return err
			}

			entity.Artifacts = artifacts

			return nil
		})
	}

	err := pool.Wait()

	telemetry.Count(ctx, "scan_artifact_lists", int64(len(entities)))

	return err
}

// artifacts lists the scripts, templates and styles below dir, sorted per kind.
func (scanner *Scanner) artifacts(dir string) ([]component.SourceArtifact, error) {
	var artifacts []component.SourceArtifact

	for _, kind := range []component.ArtifactKind{component.ArtifactScript, component.ArtifactTemplate, component.ArtifactStyle} {
		pattern := filepath.Join(scanner.workingDir, dir, "**", "*"+scanner.exts[kind])

		matches, err := zglob.Glob(pattern)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.New(err)
		}

		var paths []string

		for _, match := range matches {
			rel, err := util.GetPathRelativeTo(match, scanner.workingDir)
			if err != nil {
				return nil, err
			}

			if !util.IsFile(match) || scanner.inNoise(strings.TrimPrefix(rel, dir+"/")) {
				continue
			}

			paths = append(paths, rel)
		}

		slices.Sort(paths)

		for _, path := range paths {
			artifacts = append(artifacts, component.SourceArtifact{Path: path, Kind: kind})
		}
	}

	return artifacts, nil
}

func (scanner *Scanner) inNoise(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if scanner.IsNoise(part) {
			return true
		}
	}

	return false
}

// MissingEntityDirectoryError is logged when a root or an entity directory does not exist.
type MissingEntityDirectoryError struct {
	Kind component.Kind
	Path string
}

func (err MissingEntityDirectoryError) Error() string {
	return fmt.Sprintf("%s directory %s does not exist", err.Kind, err.Path)
}
