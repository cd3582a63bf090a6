package selector_test

import (
	"testing"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/filter"
	"github.com/hightail/wilson-sub000/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variant(content string, qualities ...string) component.TemplateVariant {
	return component.TemplateVariant{Owner: "A", Qualities: qualities, Content: content}
}

func TestSelectMatchingVariant(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{variant("default"), variant("mobile-version", "mobile")}
	filters := filter.Filters{{TagName: "device", Value: "mobile", Priority: 5}}

	selected, err := selector.Select(variants, filters)
	require.NoError(t, err)
	assert.Equal(t, "mobile-version", selected.Content)
}

func TestSelectRejectsDeviation(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{variant("both", "mobile", "enterprise"), variant("default")}
	filters := filter.Filters{{TagName: "device", Value: "mobile", Priority: 5}}

	selected, err := selector.Select(variants, filters)
	require.NoError(t, err)
	assert.Equal(t, "default", selected.Content)
}

func TestSelectWithoutDefaultFails(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{variant("both", "mobile", "enterprise")}
	filters := filter.Filters{{TagName: "device", Value: "mobile", Priority: 5}}

	_, err := selector.Select(variants, filters)

	var target selector.NoMatchingVariantError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "A", target.Owner)
}

func TestSelectPrefersLargerIntersection(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{
		variant("default"),
		variant("mobile", "mobile"),
		variant("mobile-ios", "mobile", "ios"),
	}
	filters := filter.Filters{
		{TagName: "device", Value: "mobile", Priority: 1},
		{TagName: "platform", Value: "ios", Priority: 1},
	}

	selected, err := selector.Select(variants, filters)
	require.NoError(t, err)
	assert.Equal(t, "mobile-ios", selected.Content)
}

func TestSelectTieBreaksOnPriority(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{
		variant("default"),
		variant("brand", "acme"),
		variant("ios", "ios"),
	}
	filters := filter.Filters{
		{TagName: "brand", Value: "acme", Priority: 1},
		{TagName: "platform", Value: "ios", Priority: 7},
	}

	selected, err := selector.Select(variants, filters)
	require.NoError(t, err)
	assert.Equal(t, "ios", selected.Content)
}

func TestSelectEqualScoreKeepsFirst(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{variant("first", "acme"), variant("second", "ios")}
	filters := filter.Filters{
		{TagName: "brand", Value: "acme", Priority: 3},
		{TagName: "platform", Value: "ios", Priority: 3},
	}

	selected, err := selector.Select(variants, filters)
	require.NoError(t, err)
	assert.Equal(t, "first", selected.Content)
}

func TestSelectIsTotalWithDefault(t *testing.T) {
	t.Parallel()

	variants := []component.TemplateVariant{variant("default"), variant("tablet", "tablet")}

	for _, filters := range []filter.Filters{
		nil,
		{{TagName: "device", Value: "mobile"}},
		{{TagName: "device", Value: "tablet"}, {TagName: "locale", Value: "fr"}},
	} {
		selected, err := selector.Select(variants, filters)
		require.NoError(t, err)
		assert.NotEmpty(t, selected.Content)
	}
}
