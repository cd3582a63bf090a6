package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hightail/wilson-sub000/config"
	"github.com/hightail/wilson-sub000/internal/filter"
	"github.com/hightail/wilson-sub000/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), options.DefaultConfigName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadFileAppliesValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
version          = "2.4.0"
use_cache        = false
parallelism      = 8
ignored_services = ["Legacy"]
bundle_scripts   = true

roots {
  pages     = ["app/pages"]
  behaviors = "app/behaviors"
}

tag "device" {
  attribute = "device-class"
  priority  = 5
  default   = "desktop"
}

tag "locale" {
  priority = 1
}
`)

	opts := options.NewResolverOptionsForTest(filepath.Dir(path))
	require.NoError(t, config.LoadFile(opts, path))

	assert.Equal(t, path, opts.ConfigPath)
	assert.Equal(t, "2.4.0", opts.Version)
	assert.False(t, opts.UseCache)
	assert.True(t, opts.BundleScripts)
	assert.Equal(t, 8, opts.Parallelism)
	assert.Equal(t, []string{"Legacy"}, opts.IgnoredServices)
	assert.Equal(t, []string{"app/pages"}, opts.Roots.Pages)
	assert.Equal(t, "app/behaviors", opts.Roots.Behaviors)
	assert.Equal(t, []string{"client/components/blocks"}, opts.Roots.Blocks, "unset values keep defaults")
	assert.Equal(t, options.DefaultScriptExt, opts.ScriptExt)
	assert.Equal(t, []filter.AttributeHandler{
		{Tag: "device", Attribute: "device-class", Default: "desktop", Priority: 5},
		{Tag: "locale", Priority: 1},
	}, opts.Tags)
}

func TestLoadFileEvaluatesFunctions(t *testing.T) {
	t.Setenv("WILSON_TEST_VERSION", "9.9.9")

	path := writeConfig(t, `
version   = env.WILSON_TEST_VERSION
cache_dir = abspath("cache")
markup_prefix = lower(get_env("WILSON_TEST_UNSET_PREFIX", "XY"))
`)

	opts := options.NewResolverOptionsForTest(filepath.Dir(path))
	require.NoError(t, config.LoadFile(opts, path))

	assert.Equal(t, "9.9.9", opts.Version)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "cache"), opts.CacheDir)
	assert.Equal(t, "xy", opts.MarkupPrefix)
}

func TestLoadFileReportsSyntaxErrors(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `version = `)

	opts := options.NewResolverOptionsForTest(filepath.Dir(path))
	require.Error(t, config.LoadFile(opts, path))
	assert.Equal(t, options.DefaultVersion, opts.Version)
}

func TestLoadFileRejectsUnknownAttributes(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `unknown_setting = true`)

	opts := options.NewResolverOptionsForTest(filepath.Dir(path))
	require.Error(t, config.LoadFile(opts, path))
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, ``)

	assert.Equal(t, path, config.FindConfigFile(filepath.Dir(path)))
	assert.Empty(t, config.FindConfigFile(t.TempDir()))
}
