// Package helpers provides helper functions for tests.
package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hightail/wilson-sub000/options"
	"github.com/stretchr/testify/require"
)

// WriteFiles writes every path -> content pair below dir, creating parent directories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for path, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(path))

		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

// RemoveFile removes the file or directory at path below dir.
func RemoveFile(t *testing.T, dir, path string) {
	t.Helper()

	require.NoError(t, os.RemoveAll(filepath.Join(dir, filepath.FromSlash(path))))
}

// CreateProject writes files into a fresh temporary directory and returns it.
func CreateProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, files)

	return dir
}

// NewOptions returns normalized options rooted at dir with a silent logger.
func NewOptions(t *testing.T, dir string) *options.ResolverOptions {
	t.Helper()

	opts := options.NewResolverOptionsForTest(dir)
	opts.Version = "1.0.0"
	opts.AppScripts = []string{"client/app.js"}
	opts.CoreScripts = []string{"client/core/core.js"}
	opts.CoreDependencies = []string{"Foo"}

	require.NoError(t, opts.Normalize())

	return opts
}
