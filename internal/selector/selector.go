// Package selector picks the template variant that best fits a set of context filters.
package selector

import (
	"fmt"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/filter"
)

// Select returns exactly one variant. A non-default variant is a candidate only if every one of
// its qualities is a filter value. The candidate with the most matched qualities wins; on equal
// counts the higher priority sum wins and the first candidate keeps ties. Without a candidate
// the default variant is returned, and without a default NoMatchingVariantError.
func Select(variants []component.TemplateVariant, filters filter.Filters) (component.TemplateVariant, error) {
	var (
		fallback   *component.TemplateVariant
		best       *component.TemplateVariant
		bestCount  int
		bestScore  int
		filterVals = make(map[string]struct{}, len(filters))
	)

	for _, value := range filters.Values() {
		filterVals[value] = struct{}{}
	}

	for i := range variants {
		variant := &variants[i]

		if variant.IsDefault() {
			if fallback == nil {
				fallback = variant
			}

			continue
		}

		count, score, ok := match(variant, filterVals, filters)
		if !ok {
			continue
		}

		if best == nil || count > bestCount || (count == bestCount && score > bestScore) {
			best, bestCount, bestScore = variant, count, score
		}
	}

	if best != nil {
		return *best, nil
	}

	if fallback != nil {
		return *fallback, nil
	}

	owner := ""
	if len(variants) > 0 {
		owner = variants[0].Owner
	}

	return component.TemplateVariant{}, errors.New(NoMatchingVariantError{Owner: owner, Filters: filters})
}

// match returns the size of the intersection of the variant's qualities with the filter values
// and the priority sum of the filters contributing to it. ok is false when a quality deviates.
func match(variant *component.TemplateVariant, filterVals map[string]struct{}, filters filter.Filters) (int, int, bool) {
	var count, score int

	seen := make(map[string]struct{}, len(variant.Qualities))

	for _, quality := range variant.Qualities {
		if _, ok := filterVals[quality]; !ok {
			return 0, 0, false
		}

		if _, ok := seen[quality]; ok {
			continue
		}

		seen[quality] = struct{}{}
		count++
		score += filters.PriorityOf(quality)
	}

	return count, score, true
}

// NoMatchingVariantError is returned when no variant fits and the owner has no default variant.
type NoMatchingVariantError struct {
	Owner   string
	Filters filter.Filters
}

func (err NoMatchingVariantError) Error() string {
	return fmt.Sprintf("no template variant of %s matches %v and no default variant exists", err.Owner, err.Filters.Values())
}
