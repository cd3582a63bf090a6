package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hightail/wilson-sub000/cli"
	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/internal/updater"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
version           = "3.1.0"
app_scripts       = ["client/app.js"]
core_scripts      = ["client/core/core.js"]
core_dependencies = ["Foo"]

tag "device" {
  attribute = "device-class"
  priority  = 5
}
`

func newProject(t *testing.T) string {
	t.Helper()

	files := helpers.SampleProject()
	files[options.DefaultConfigName] = testConfig

	return helpers.CreateProject(t, files)
}

func runApp(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := cli.NewDefaultApp(&out, io.Discard)
	err := app.Run(append([]string{cli.AppName, "--working-dir", dir}, args...))

	return out.String(), err
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	out, err := runApp(t, newProject(t), "list")
	require.NoError(t, err)
	assert.Equal(t, "A\nB\nBar\n", out)

	out, err = runApp(t, newProject(t), "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["A", "B", "Bar"]`, out)
}

func TestBuildCommand(t *testing.T) {
	t.Parallel()

	dir := newProject(t)

	out, err := runApp(t, dir, "--no-cache", "build")
	require.NoError(t, err)
	assert.Equal(t, "services: 3\ncomponents: 5\n", out)
	assert.FileExists(t, filepath.Join(dir, options.DefaultCacheDir, component.ComponentsLibrary+".json"))
}

func TestResolveCommandWithTags(t *testing.T) {
	t.Parallel()

	out, err := runApp(t, newProject(t), "resolve", "--tag", "device-class=mobile", "A")
	require.NoError(t, err)

	var servable component.Servable
	require.NoError(t, json.Unmarshal([]byte(out), &servable))

	assert.Equal(t, "A", servable.Name)
	assert.Equal(t, "3.1.0", servable.Version)
	require.Len(t, servable.Templates, 2)
	assert.Equal(t, `<div class="mobile"><ht-B></ht-B></div>`, servable.Templates[1].Data)
	assert.NotContains(t, out, `"components"`)
}

func TestResolveCommandWithFilters(t *testing.T) {
	t.Parallel()

	out, err := runApp(t, newProject(t), "resolve", "--data", "--filter", "device=desktop:1", "A")
	require.NoError(t, err)

	var data component.Data
	require.NoError(t, json.Unmarshal([]byte(out), &data))

	assert.Equal(t, []string{"B", "tabbed"}, data.Components)
	assert.Equal(t, `<div ht-behavior="tabbed"><ht-B></ht-B><ht-unknown></ht-unknown></div>`, data.Templates[1].Data)
}

func TestResolveCommandErrors(t *testing.T) {
	t.Parallel()

	dir := newProject(t)

	_, err := runApp(t, dir, "resolve")

	var args common.WrongNumberOfArgsError
	require.True(t, errors.As(err, &args))

	_, err = runApp(t, dir, "resolve", "missing")

	var unknown component.UnknownEntityError
	require.True(t, errors.As(err, &unknown))

	_, err = runApp(t, dir, "resolve", "--filter", "=mobile", "A")
	require.Error(t, err)
}

func TestBundleCommand(t *testing.T) {
	t.Parallel()

	dir := newProject(t)

	out, err := runApp(t, dir, "bundle", "--core")
	require.NoError(t, err)

	var core component.Artifact
	require.NoError(t, json.Unmarshal([]byte(out), &core))
	assert.Equal(t, []string{helpers.ScriptCore, helpers.ScriptFoo, helpers.ScriptS2, helpers.ScriptS}, core.Sources)
	assert.Equal(t, "3.1.0", core.Version)
	assert.FileExists(t, core.Path)

	out, err = runApp(t, dir, "bundle", "Bar")
	require.NoError(t, err)

	var bar component.Artifact
	require.NoError(t, json.Unmarshal([]byte(out), &bar))
	assert.Equal(t, filepath.Join(dir, options.DefaultCacheDir, "bundles", "3.1.0", "component.Bar.js"), bar.Path)

	_, err = runApp(t, dir, "bundle")

	var args common.WrongNumberOfArgsError
	require.True(t, errors.As(err, &args))
}

func TestUpdateCommand(t *testing.T) {
	t.Parallel()

	dir := newProject(t)

	out, err := runApp(t, dir, "update")
	require.NoError(t, err)
	assert.Empty(t, out)

	changes := filepath.Join(dir, "changes.json")
	require.NoError(t, os.WriteFile(changes, []byte(`{"services": {"Foo": {"path": "client/services/Foo/Foo.js", "action": "changed"}}}`), 0o644))

	out, err = runApp(t, dir, "update", "--change-list", "changes.json")
	require.NoError(t, err)

	var result updater.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"A", "Bar", "tabbed"}, result.Components)
	assert.NoFileExists(t, changes)
}

func TestCheckVersionCommand(t *testing.T) {
	t.Parallel()

	dir := newProject(t)

	out, err := runApp(t, dir, "check-version", "3.0.0")
	require.NoError(t, err)

	var check resolver.VersionCheck
	require.NoError(t, json.Unmarshal([]byte(out), &check))
	assert.Equal(t, resolver.VersionCheck{Requested: "3.0.0", Current: "3.1.0", Redirect: true}, check)
}

func TestInvalidGlobalFlags(t *testing.T) {
	t.Parallel()

	_, err := runApp(t, newProject(t), "--log-level", "loud", "list")
	require.Error(t, err)

	_, err = runApp(t, newProject(t), "--config", "missing.hcl", "list")
	require.Error(t, err)
}
