package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/store"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct {
	services   component.Library
	components component.Library
	builds     atomic.Int32
}

func (builder *fakeBuilder) BuildServices(context.Context) (component.Library, error) {
	builder.builds.Add(1)
	return builder.services.Clone(), nil
}

func (builder *fakeBuilder) BuildComponents(_ context.Context, services component.Library) (component.Library, error) {
	builder.builds.Add(1)

	if services == nil {
		return nil, errors.New("services must be loaded first")
	}

	return builder.components.Clone(), nil
}

func sampleLibraries() (component.Library, component.Library) {
	services := component.Library{
		"S2": {ID: "S2", Kind: component.KindService, Dir: "client/services/S2", Sources: []string{"client/services/S2/S2.js"}, Scripts: []string{"client/services/S2/S2.js"}},
		"S": {
			ID:           "S",
			Kind:         component.KindService,
			Dir:          "client/services/S",
			Dependencies: []string{"S2"},
			Transitive:   []string{"S2"},
			Sources:      []string{"client/services/S/S.js"},
			Scripts:      []string{"client/services/S2/S2.js", "client/services/S/S.js"},
		},
	}

	components := component.Library{
		"A": {
			ID:        "A",
			Kind:      component.KindComponent,
			Group:     component.GroupPage,
			Services:  []string{"S"},
			Scripts:   []string{"client/services/S2/S2.js", "client/services/S/S.js", "client/components/pages/A/A.js"},
			Templates: []component.TemplateVariant{{Owner: "A", Qualities: []string{"mobile"}, Path: "client/components/pages/A/A.mobile.html"}},
		},
	}

	return services, components
}

func newStore(t *testing.T, dir string, builder store.Builder) *store.Store {
	t.Helper()

	opts := options.NewResolverOptionsForTest(dir)
	require.NoError(t, opts.Normalize())

	s, err := store.New(opts, builder)
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() }) //nolint:errcheck

	return s
}

func TestGetBuildsOnceAndPersists(t *testing.T) {
	t.Parallel()

	services, components := sampleLibraries()
	builder := &fakeBuilder{services: services, components: components}
	s := newStore(t, t.TempDir(), builder)

	ctx := context.Background()

	lib, err := s.Get(ctx, component.ComponentsLibrary)
	require.NoError(t, err)
	assert.Equal(t, components, lib)
	assert.Equal(t, int32(2), builder.builds.Load(), "components need the services library")

	_, err = s.Get(ctx, component.ComponentsLibrary)
	require.NoError(t, err)
	_, err = s.Get(ctx, component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, int32(2), builder.builds.Load())

	assert.FileExists(t, s.Path(component.ServicesLibrary))
	assert.FileExists(t, s.Path(component.ComponentsLibrary))
	assert.True(t, s.IsCached(component.ComponentsLibrary))
}

func TestCacheRoundTripWithoutRescan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	services, components := sampleLibraries()
	ctx := context.Background()

	opts := options.NewResolverOptionsForTest(dir)
	require.NoError(t, opts.Normalize())

	first, err := store.New(opts, &fakeBuilder{})
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, component.ServicesLibrary, services))
	require.NoError(t, first.Write(ctx, component.ComponentsLibrary, components))
	require.NoError(t, first.Close())

	builder := &fakeBuilder{}
	second := newStore(t, dir, builder)

	lib, err := second.Get(ctx, component.ComponentsLibrary)
	require.NoError(t, err)
	assert.Equal(t, components, lib)

	lib, err = second.Get(ctx, component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, services, lib)

	assert.Equal(t, int32(0), builder.builds.Load())
}

func TestMismatchingFormatVersionIsAMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	services, components := sampleLibraries()
	builder := &fakeBuilder{services: services, components: components}
	s := newStore(t, dir, builder)

	require.NoError(t, util.WriteFileAtomic(s.Path(component.ServicesLibrary), []byte(`{"formatVersion": 0, "library": {}}`), 0o644))

	lib, err := s.Get(context.Background(), component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, services, lib)
	assert.Equal(t, int32(1), builder.builds.Load())
}

func TestMalformedDocumentIsRebuilt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	services, components := sampleLibraries()
	builder := &fakeBuilder{services: services, components: components}
	s := newStore(t, dir, builder)

	require.NoError(t, os.WriteFile(s.Path(component.ServicesLibrary), []byte(`{"formatVersion": 2, "library": [`), 0o644))

	lib, err := s.Get(context.Background(), component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, services, lib)
	assert.Equal(t, int32(1), builder.builds.Load())
}

func TestDisabledCacheRebuildsOncePerProcess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	services, components := sampleLibraries()
	ctx := context.Background()

	opts := options.NewResolverOptionsForTest(dir)
	require.NoError(t, opts.Normalize())

	first, err := store.New(opts, &fakeBuilder{})
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, component.ServicesLibrary, component.Library{}))
	require.NoError(t, first.Close())

	opts.UseCache = false
	builder := &fakeBuilder{services: services, components: components}

	s, err := store.New(opts, builder)
	require.NoError(t, err)

	defer s.Close() //nolint:errcheck

	lib, err := s.Get(ctx, component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, services, lib)

	_, err = s.Get(ctx, component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, int32(1), builder.builds.Load())
}

func TestReloadReadsDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	services, components := sampleLibraries()
	ctx := context.Background()
	s := newStore(t, dir, &fakeBuilder{services: services, components: components})

	require.NoError(t, s.Write(ctx, component.ServicesLibrary, services))

	changed := services.Clone()
	delete(changed, "S")

	content := `{"formatVersion": 2, "library": {"S2": {"id": "S2", "kind": "service", "dir": "client/services/S2", "dependencies": null, "services": null, "transitive": null, "sources": ["client/services/S2/S2.js"], "scripts": ["client/services/S2/S2.js"], "styles": null, "templates": null}}}`
	require.NoError(t, os.WriteFile(s.Path(component.ServicesLibrary), []byte(content), 0o644))

	lib, err := s.Get(ctx, component.ServicesLibrary)
	require.NoError(t, err)
	assert.Contains(t, lib, "S", "memory wins until reload")

	require.NoError(t, s.Reload(ctx))

	lib, err = s.Get(ctx, component.ServicesLibrary)
	require.NoError(t, err)
	assert.Equal(t, changed, lib)
}

func TestSecondStoreOnSameDirectoryFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	newStore(t, dir, &fakeBuilder{})

	opts := options.NewResolverOptionsForTest(dir)
	require.NoError(t, opts.Normalize())

	_, err := store.New(opts, &fakeBuilder{})

	var held util.LockHeldError
	require.True(t, errors.As(err, &held))
}

func TestUnknownLibrary(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir(), &fakeBuilder{})

	_, err := s.Get(context.Background(), "behaviors")

	var target store.UnknownLibraryError
	require.True(t, errors.As(err, &target))
}

func TestResolvedDocuments(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir(), &fakeBuilder{})
	ctx := context.Background()

	data := &component.Data{Name: "Bar", Version: "1.0.0", Scripts: []string{"client/services/Foo/Foo.js"}}
	require.NoError(t, s.PutResolved(ctx, "Bar", "mobile", data))
	require.NoError(t, s.PutResolved(ctx, "Bar", "default", data))
	require.NoError(t, s.PutResolved(ctx, "Baz", "default", &component.Data{Name: "Baz", Version: "1.0.0"}))

	assert.FileExists(t, filepath.Join(s.Dir(), "resolved", "Bar.mobile.json"))
	assert.True(t, s.IsCached("Bar.mobile"))

	cached, ok := s.GetResolved(ctx, "Bar", "mobile", "1.0.0")
	require.True(t, ok)
	assert.Equal(t, data, cached)

	_, ok = s.GetResolved(ctx, "Bar", "mobile", "2.0.0")
	assert.False(t, ok, "another version is a miss")

	removed, err := s.InvalidateResolved(ctx, "Bar")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok = s.GetResolved(ctx, "Bar", "mobile", "1.0.0")
	assert.False(t, ok)
	assert.False(t, s.IsCached("Bar.mobile"))
	assert.True(t, s.IsCached("Baz.default"))
}

func TestResolvedDocumentsSurviveReload(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir(), &fakeBuilder{})
	ctx := context.Background()

	data := &component.Data{Name: "Bar", Version: "1.0.0", Scripts: []string{"a.js"}, Styles: []string{}, Templates: []component.Template{}, Components: []string{}}
	require.NoError(t, s.PutResolved(ctx, "Bar", "default", data))
	require.NoError(t, s.Reload(ctx))

	cached, ok := s.GetResolved(ctx, "Bar", "default", "1.0.0")
	require.True(t, ok)
	assert.Equal(t, data, cached)
}
