// Package store holds the service and component libraries in memory, backed by one JSON
// document per library, and the resolved component documents per filter set.
//
// Read path: memory, then the document on disk, then a full build that is persisted before it
// is returned. Writes update memory and replace the document atomically. The store assumes it
// is the only writer of its directory and asserts that with an advisory lock.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/hightail/wilson-sub000/internal/cache"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
)

// FormatVersion is written into every persisted document. Documents of another format are misses.
const FormatVersion = 2

const (
	lockFileName = ".lock"
	filePerm     = 0o644
)

// Builder rebuilds a library on a cache miss.
type Builder interface {
	BuildServices(ctx context.Context) (component.Library, error)
	BuildComponents(ctx context.Context, services component.Library) (component.Library, error)
}

type libraryDocument struct {
	FormatVersion int               `json:"formatVersion"`
	Library       component.Library `json:"library"`
}

// Store is the library store of one cache directory.
type Store struct {
	logger    log.Logger
	builder   Builder
	libraries *cache.Cache[component.Library]
	resolved  *resolvedCache
	lock      *util.Lockfile
	rebuilt   map[string]bool
	dir       string
	useCache  bool
	mu        sync.Mutex
}

// New creates the cache directory and takes its lock.
func New(opts *options.ResolverOptions, builder Builder) (*Store, error) {
	if err := util.EnsureDirectory(opts.CacheDir); err != nil {
		return nil, err
	}

	lock := util.NewLockfile(filepath.Join(opts.CacheDir, lockFileName))
	if err := lock.TryAcquire(); err != nil {
		return nil, err
	}

	resolved, err := newResolvedCache(opts.CacheDir)
	if err != nil {
		lock.Release() //nolint:errcheck
		return nil, err
	}

	return &Store{
		logger:    opts.Logger.WithField(log.FieldKeyLibrary, "store"),
		builder:   builder,
		libraries: cache.NewCache[component.Library]("library"),
		resolved:  resolved,
		lock:      lock,
		rebuilt:   make(map[string]bool),
		dir:       opts.CacheDir,
		useCache:  opts.UseCache,
	}, nil
}

// Close releases the directory lock.
func (store *Store) Close() error {
	return store.lock.Release()
}

// Dir returns the cache directory.
func (store *Store) Dir() string {
	return store.dir
}

// Path returns the document path of the named library.
func (store *Store) Path(name string) string {
	return filepath.Join(store.dir, name+".json")
}

// Get returns the named library. The returned map is shared; callers that modify it must Clone.
func (store *Store) Get(ctx context.Context, name string) (component.Library, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.get(ctx, name)
}

func (store *Store) get(ctx context.Context, name string) (component.Library, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	logger := store.logger.WithField(log.FieldKeyLibrary, name)

	if store.useCache || store.rebuilt[name] {
		if lib, ok := store.libraries.Get(ctx, name); ok {
			return lib, nil
		}
	}

	if store.useCache {
		lib, err := store.read(name)
		if err == nil && lib != nil {
			logger.Debugf("Loaded %s from %s", name, store.Path(name))
			store.libraries.Put(ctx, name, lib)

			return lib, nil
		}

		if err != nil {
			logger.Warnf("Ignoring cached %s: %v", name, err)
		}
	}

	logger.Infof("Building %s library", name)

	lib, err := store.build(ctx, name)
	if err != nil {
		return nil, err
	}

	store.rebuilt[name] = true

	if err := store.write(ctx, name, lib); err != nil {
		return nil, err
	}

	return lib, nil
}

func (store *Store) build(ctx context.Context, name string) (component.Library, error) {
	telemetry.Count(ctx, "library_build", 1)

	if name == component.ServicesLibrary {
		return store.builder.BuildServices(ctx)
	}

	services, err := store.get(ctx, component.ServicesLibrary)
	if err != nil {
		return nil, err
	}

	return store.builder.BuildComponents(ctx, services)
}

// Write replaces the named library in memory and on disk.
func (store *Store) Write(ctx context.Context, name string, lib component.Library) error {
	if err := validName(name); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	return store.write(ctx, name, lib)
}

func (store *Store) write(ctx context.Context, name string, lib component.Library) error {
	data, err := json.MarshalIndent(libraryDocument{FormatVersion: FormatVersion, Library: lib}, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	if err := util.WriteFileAtomic(store.Path(name), data, filePerm); err != nil {
		return errors.New(CacheWriteError{Path: store.Path(name), Cause: err})
	}

	store.libraries.Put(ctx, name, lib)

	return nil
}

// read returns nil without error when there is no document or it has another format version.
func (store *Store) read(name string) (component.Library, error) {
	path := store.Path(name)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.New(err)
	}

	var doc libraryDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errors.New(ParseError{Path: path, Cause: err})
	}

	if doc.FormatVersion != FormatVersion {
		store.logger.Debugf("Format version %d of %s differs from %d", doc.FormatVersion, path, FormatVersion)
		return nil, nil
	}

	if doc.Library == nil {
		doc.Library = component.Library{}
	}

	return doc.Library, nil
}

// IsCached reports whether key is available without a build: a library name held in memory or
// on disk, or a resolved document key `<component>.<filters>`.
func (store *Store) IsCached(key string) bool {
	if key == component.ServicesLibrary || key == component.ComponentsLibrary {
		if store.libraries.Has(key) {
			return true
		}

		lib, err := store.read(key)

		return err == nil && lib != nil
	}

	return store.resolved.has(key)
}

// Reload drops everything held in memory and reads the library documents again.
func (store *Store) Reload(ctx context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.libraries.Clear(ctx)
	store.resolved.purge()

	for _, name := range []string{component.ServicesLibrary, component.ComponentsLibrary} {
		lib, err := store.read(name)
		if err != nil {
			store.logger.Warnf("Ignoring cached %s: %v", name, err)
			continue
		}

		if lib != nil {
			store.libraries.Put(ctx, name, lib)
		}
	}

	return nil
}

func validName(name string) error {
	if name != component.ServicesLibrary && name != component.ComponentsLibrary {
		return errors.New(UnknownLibraryError{Name: name})
	}

	return nil
}
