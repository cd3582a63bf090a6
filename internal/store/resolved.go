package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
	"github.com/mattn/go-zglob"
)

const (
	resolvedDirName   = "resolved"
	resolvedCacheSize = 512
)

type resolvedDocument struct {
	FormatVersion int             `json:"formatVersion"`
	Version       string          `json:"version"`
	Data          *component.Data `json:"data"`
}

// resolvedCache fronts the resolved documents on disk with an in-process LRU.
type resolvedCache struct {
	entries *lru.Cache[string, *component.Data]
	dir     string
}

func newResolvedCache(cacheDir string) (*resolvedCache, error) {
	entries, err := lru.New[string, *component.Data](resolvedCacheSize)
	if err != nil {
		return nil, errors.New(err)
	}

	return &resolvedCache{entries: entries, dir: filepath.Join(cacheDir, resolvedDirName)}, nil
}

func (resolved *resolvedCache) path(key string) string {
	return filepath.Join(resolved.dir, key+".json")
}

func (resolved *resolvedCache) has(key string) bool {
	return resolved.entries.Contains(key) || util.IsFile(resolved.path(key))
}

func (resolved *resolvedCache) purge() {
	resolved.entries.Purge()
}

// ResolvedKey names the resolved document of component id for a filter key.
func ResolvedKey(id, filterKey string) string {
	return id + "." + filterKey
}

// GetResolved returns the resolved document of id for filterKey if it was resolved for version.
func (store *Store) GetResolved(ctx context.Context, id, filterKey, version string) (*component.Data, bool) {
	if !store.useCache {
		return nil, false
	}

	key := ResolvedKey(id, filterKey)

	telemetry.Count(ctx, "resolved_cache_get", 1)

	if data, ok := store.resolved.entries.Get(key); ok && data.Version == version {
		telemetry.Count(ctx, "resolved_cache_hit", 1)
		return data, true
	}

	content, err := os.ReadFile(store.resolved.path(key))
	if err != nil {
		return nil, false
	}

	var doc resolvedDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		store.logger.WithField(log.FieldKeyEntity, id).Warnf("%v", ParseError{Path: store.resolved.path(key), Cause: err})
		return nil, false
	}

	if doc.FormatVersion != FormatVersion || doc.Version != version || doc.Data == nil {
		return nil, false
	}

	store.resolved.entries.Add(key, doc.Data)
	telemetry.Count(ctx, "resolved_cache_hit", 1)

	return doc.Data, true
}

// PutResolved persists the resolved document of id for filterKey, keyed by data.Version.
func (store *Store) PutResolved(ctx context.Context, id, filterKey string, data *component.Data) error {
	key := ResolvedKey(id, filterKey)

	content, err := json.MarshalIndent(resolvedDocument{FormatVersion: FormatVersion, Version: data.Version, Data: data}, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	if err := util.WriteFileAtomic(store.resolved.path(key), content, filePerm); err != nil {
		return errors.New(CacheWriteError{Path: store.resolved.path(key), Cause: err})
	}

	store.resolved.entries.Add(key, data)
	telemetry.Count(ctx, "resolved_cache_put", 1)

	return nil
}

// InvalidateResolved removes every resolved document of the given components and returns how
// many files were removed.
func (store *Store) InvalidateResolved(ctx context.Context, ids ...string) (int, error) {
	var (
		removed int
		errs    *errors.MultiError
	)

	for _, id := range ids {
		prefix := ResolvedKey(id, "")

		for _, key := range store.resolved.entries.Keys() {
			if strings.HasPrefix(key, prefix) {
				store.resolved.entries.Remove(key)
			}
		}

		matches, err := zglob.Glob(filepath.Join(store.resolved.dir, prefix+"*.json"))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = errs.Append(err)
			continue
		}

		for _, match := range matches {
			if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
				errs = errs.Append(err)
				continue
			}

			removed++
		}

		store.logger.WithField(log.FieldKeyEntity, id).Debugf("Invalidated resolved documents of %s", id)
	}

	telemetry.Count(ctx, "resolved_cache_invalidate", int64(removed))

	return removed, errs.ErrorOrNil()
}
