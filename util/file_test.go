package util_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "services.json")

	require.NoError(t, util.WriteFileAtomic(path, []byte(`{"a":1}`), 0o644))
	require.NoError(t, util.WriteFileAtomic(path, []byte(`{"a":2}`), 0o644))

	content, err := util.ReadFileAsString(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, content)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomicFuncFailureKeepsOldContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.js")

	require.NoError(t, util.WriteFileAtomic(path, []byte("old"), 0o644))

	err := util.WriteFileAtomicFunc(path, 0o644, func(w io.Writer) error {
		if _, err := w.Write([]byte("partial")); err != nil {
			return err
		}

		return errors.New("disk full")
	})
	require.Error(t, err)

	content, err := util.ReadFileAsString(path)
	require.NoError(t, err)
	assert.Equal(t, "old", content)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnsureDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b")

	require.NoError(t, util.EnsureDirectory(target))
	assert.True(t, util.IsDir(target))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	err := util.EnsureDirectory(file)
	require.Error(t, err)

	var notDir util.PathIsNotDirectory
	assert.True(t, errors.As(err, &notDir))
}

func TestCanonicalPathAndRelative(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	canonical, err := util.CanonicalPath("services/../services/Foo", base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "services", "Foo"), canonical)

	rel, err := util.GetPathRelativeTo(canonical, base)
	require.NoError(t, err)
	assert.Equal(t, "services/Foo", rel)
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	assert.True(t, util.HasPathPrefix("client/services/Foo/Foo.js", "client/services"))
	assert.True(t, util.HasPathPrefix("client/services", "client/services/"))
	assert.False(t, util.HasPathPrefix("client/services2/Foo.js", "client/services"))
}

func TestLockfileIsExclusive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".lock")

	first := util.NewLockfile(path)
	require.NoError(t, first.TryAcquire())

	second := util.NewLockfile(path)
	err := second.TryAcquire()
	require.Error(t, err)

	var held util.LockHeldError
	assert.True(t, errors.As(err, &held))

	require.NoError(t, first.Release())
	require.NoError(t, second.TryAcquire())
	require.NoError(t, second.Release())
}
