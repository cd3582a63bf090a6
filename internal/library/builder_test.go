package library_test

import (
	"context"
	"testing"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/library"
	"github.com/hightail/wilson-sub000/internal/scanner"
	"github.com/hightail/wilson-sub000/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T, files map[string]string) *library.Builder {
	t.Helper()

	opts := helpers.NewOptions(t, helpers.CreateProject(t, files))

	s, err := scanner.New(opts)
	require.NoError(t, err)

	return library.NewBuilder(opts, s)
}

func build(t *testing.T, builder *library.Builder) (component.Library, component.Library) {
	t.Helper()

	ctx := context.Background()

	services, err := builder.BuildServices(ctx)
	require.NoError(t, err)

	components, err := builder.BuildComponents(ctx, services)
	require.NoError(t, err)

	return services, components
}

func TestBuildServices(t *testing.T) {
	t.Parallel()

	services, _ := build(t, newBuilder(t, helpers.SampleProject()))

	assert.Equal(t, []string{"Foo", "S", "S2"}, services.IDs())

	s := services["S"]
	assert.Equal(t, component.KindService, s.Kind)
	assert.Equal(t, []string{"S2"}, s.Dependencies)
	assert.Equal(t, []string{"S2"}, s.Transitive)
	assert.Equal(t, []string{helpers.ScriptS2, helpers.ScriptS}, s.Scripts)

	assert.Empty(t, services["Foo"].Dependencies, "core names are never dependencies")
}

func TestBuildComponentsOrdersScripts(t *testing.T) {
	t.Parallel()

	_, components := build(t, newBuilder(t, helpers.SampleProject()))

	assert.Equal(t, []string{"A", "B", "Bar", "tabbed", "tour"}, components.IDs())

	a := components["A"]
	assert.Equal(t, []string{"S"}, a.Services)
	assert.Equal(t, []string{"B", "tabbed"}, a.Dependencies)
	assert.Equal(t, []string{"B", "tabbed"}, a.Transitive)
	assert.Equal(t, []string{
		helpers.ScriptFoo,
		helpers.ScriptS2,
		helpers.ScriptS,
		helpers.ScriptB,
		helpers.ScriptTabbed,
		helpers.ScriptA,
	}, a.Scripts)
	assert.Equal(t, []string{"client/components/pages/A/A.scss"}, a.Styles)
	require.Len(t, a.Templates, 2)
	assert.True(t, a.Templates[0].IsDefault())
	assert.Equal(t, []string{"mobile"}, a.Templates[1].Qualities)

	assert.Equal(t, []string{helpers.ScriptFoo, helpers.ScriptBar}, components["Bar"].Scripts)
	assert.Equal(t, []string{helpers.ScriptFoo, helpers.ScriptTabbed}, components["tabbed"].Scripts)
	assert.Equal(t, []string{helpers.ScriptTour}, components["tour"].Scripts)
}

func TestBuildComponentsSelfExclusion(t *testing.T) {
	t.Parallel()

	files := helpers.SampleProject()
	files["client/components/blocks/B/B.html"] = `<span><ht-B></ht-B></span>`

	_, components := build(t, newBuilder(t, files))

	for id, node := range components {
		assert.NotContains(t, node.Transitive, id)
		assert.Empty(t, node.Cycle)
	}
}

func TestBuildComponentsRecordsMissingResources(t *testing.T) {
	t.Parallel()

	files := helpers.SampleProject()
	files["client/components/blocks/B/B.html"] = `<span ht-guide="ghost" ht-behavior="tabbed"></span>`

	_, components := build(t, newBuilder(t, files))

	b := components["B"]
	assert.Equal(t, []component.MissingReference{
		{ID: "ghost", Kind: component.KindGuide, Path: "client/components/blocks/B/B.html"},
	}, b.Missing)
	assert.Equal(t, []string{"tabbed"}, b.Dependencies)
	assert.Empty(t, components["Bar"].Missing, "unrelated entities are unaffected")
}

func TestBuildComponentsRecordsCycles(t *testing.T) {
	t.Parallel()

	files := helpers.SampleProject()
	files["client/components/blocks/C1/C1.html"] = `<ht-C2></ht-C2>`
	files["client/components/blocks/C2/C2.html"] = `<ht-C1></ht-C1>`

	_, components := build(t, newBuilder(t, files))

	assert.NotEmpty(t, components["C1"].Cycle)
	assert.NotEmpty(t, components["C2"].Cycle)
	assert.Empty(t, components["A"].Cycle)
	assert.Equal(t, []string{"B", "tabbed"}, components["A"].Transitive)
}

func TestServiceClosure(t *testing.T) {
	t.Parallel()

	services, _ := build(t, newBuilder(t, helpers.SampleProject()))

	assert.Equal(t, []string{"S2", "S", "Foo"}, library.ServiceClosure(services, []string{"S", "Foo", "unknown", "S2"}))
}

func TestRebuildServiceNode(t *testing.T) {
	t.Parallel()

	files := helpers.SampleProject()
	builder := newBuilder(t, files)
	services, _ := build(t, builder)

	node, err := builder.RebuildServiceNode(context.Background(), "Foo", services)
	require.NoError(t, err)
	assert.Equal(t, []string{helpers.ScriptFoo}, node.Sources)
	assert.Empty(t, node.Dependencies)
}
