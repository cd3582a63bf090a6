package extract_test

import (
	"testing"
	"testing/iotest"

	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatternExtractor() *extract.PatternExtractor {
	return extract.NewPatternExtractor("wilson", "$", []string{"angular", "Legacy"})
}

func TestPatternExtractorModes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		source   string
		mode     extract.Mode
		expected []string
	}{
		{
			"service",
			"wilson.service('S', function($q, S2, Logger) { return {}; });",
			extract.ModeService,
			[]string{"S2", "Logger"},
		},
		{
			"utility with named function",
			"wilson.utility('U', function util(angular, S) {});",
			extract.ModeService,
			[]string{"S"},
		},
		{
			"factory and parser in one file",
			"wilson.factory('F', function(A) {});\nwilson.parser('P', function(B, A) {});",
			extract.ModeService,
			[]string{"A", "B"},
		},
		{
			"constructor reference",
			"wilson.service('S', SCtor);\nfunction helper(X) {}",
			extract.ModeService,
			nil,
		},
		{
			"parenthesis in string argument",
			"wilson.service('S)', function(A) {});\nfunction helper(X) {}",
			extract.ModeService,
			[]string{"A"},
		},
		{
			"component array notation",
			"wilson.component('A', {\n  controller: ['$scope', 'S', function($scope, S) {}]\n});",
			extract.ModeComponent,
			[]string{"S"},
		},
		{
			"behavior",
			"wilson.behavior('tabbed', function($timeout, Foo) {});",
			extract.ModeBehavior,
			[]string{"Foo"},
		},
		{
			"app reads config and run",
			"wilson.config(function($locationProvider, S) {});\nwilson.run(function(Foo, S) {});",
			extract.ModeApp,
			[]string{"S", "Foo"},
		},
		{
			"other mode ignored",
			"wilson.component('A', { controller: [function(S) {}] });",
			extract.ModeService,
			nil,
		},
		{
			"ignore list and comments",
			"wilson.service('S', function(/* injected */ Legacy, Cache /* lru */, $http) {});",
			extract.ModeService,
			[]string{"Cache"},
		},
		{
			"other object",
			"angular.service('S', function(X) {});",
			extract.ModeService,
			nil,
		},
		{
			"formatting variance",
			"wilson . service ( 'S' ,\n  function (\n    A,\n    B\n  ) {})",
			extract.ModeService,
			[]string{"A", "B"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			names, err := newPatternExtractor().Extract(tc.source, tc.mode)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, names)
		})
	}
}

func TestPatternExtractorUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := newPatternExtractor().Extract("", extract.Mode("module"))

	var target extract.UnknownModeError
	assert.True(t, errors.As(err, &target))
}

func TestPatternExtractorSatisfiesInterface(t *testing.T) {
	t.Parallel()

	var extractor extract.DependencyExtractor = newPatternExtractor()

	names, err := extractor.Extract("wilson.service('S', function(S2) {});", extract.ModeService)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, names)
}

func lookupOf(ids ...string) extract.Lookup {
	known := make(map[string]string, len(ids))
	for _, id := range ids {
		known[extract.NormalizeName(id)] = id
	}

	return func(name string) (string, bool) {
		id, ok := known[extract.NormalizeName(name)]
		return id, ok
	}
}

func TestMarkupExtractor(t *testing.T) {
	t.Parallel()

	markup := `
<div ht-behavior="tabbed sticky" class="x">
  <ht-user-card></ht-user-card>
  <HT-B/>
  <ht-unknown></ht-unknown>
  <section ht-guide="tour" ht-behavior="tabbed"><ht-b></ht-b></section>
</div>`

	refs, err := extract.NewMarkupExtractor("ht").ExtractString(markup, lookupOf("UserCard", "B"))
	require.NoError(t, err)

	assert.Equal(t, []string{"UserCard", "B"}, refs.Components)
	assert.Equal(t, []string{"tabbed", "sticky"}, refs.Behaviors)
	assert.Equal(t, []string{"tour"}, refs.Guides)
	assert.Equal(t, []string{"UserCard", "B", "tabbed", "sticky", "tour"}, refs.All())
}

func TestMarkupExtractorParseError(t *testing.T) {
	t.Parallel()

	refs, err := extract.NewMarkupExtractor("ht").Extract(iotest.ErrReader(errors.New("disk gone")), lookupOf("B"))

	var target extract.ParseError
	require.True(t, errors.As(err, &target))
	assert.Empty(t, refs.All())
}
