// Package filter describes the requesting client as an ordered list of weighted context filters
// and derives that list from request attributes through an explicit registry of tag handlers.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hightail/wilson-sub000/internal/errors"
)

// DefaultKey names resolved documents requested without any filter.
const DefaultKey = "default"

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ContextFilter is one weighted attribute of the requesting client, e.g. `device=mobile`.
type ContextFilter struct {
	TagName  string `json:"tagName"`
	Value    string `json:"value"`
	Priority int    `json:"priority"`
}

func (filter ContextFilter) String() string {
	return fmt.Sprintf("%s=%s:%d", filter.TagName, filter.Value, filter.Priority)
}

// Filters keeps request order.
type Filters []ContextFilter

// Values returns the filter values in order.
func (filters Filters) Values() []string {
	values := make([]string, 0, len(filters))
	for _, filter := range filters {
		values = append(values, filter.Value)
	}

	return values
}

// PriorityOf returns the summed priority of the filters whose value equals value.
func (filters Filters) PriorityOf(value string) int {
	var sum int

	for _, filter := range filters {
		if filter.Value == value {
			sum += filter.Priority
		}
	}

	return sum
}

// Key joins the filter values with dots into a file name safe key. It identifies the resolved
// document of a component for this filter set.
func (filters Filters) Key() string {
	parts := make([]string, 0, len(filters))

	for _, value := range filters.Values() {
		value = unsafeKeyChars.ReplaceAllString(value, "_")
		if value != "" {
			parts = append(parts, value)
		}
	}

	if len(parts) == 0 {
		return DefaultKey
	}

	return strings.Join(parts, ".")
}

// Parse reads a filter in the `tag=value[:priority]` notation used on the command line.
func Parse(str string) (ContextFilter, error) {
	tag, rest, ok := strings.Cut(str, "=")
	if !ok || strings.TrimSpace(tag) == "" {
		return ContextFilter{}, errors.New(InvalidFilterError{Filter: str})
	}

	filter := ContextFilter{TagName: strings.TrimSpace(tag), Value: strings.TrimSpace(rest)}

	if value, priority, ok := strings.Cut(filter.Value, ":"); ok {
		n, err := strconv.Atoi(priority)
		if err != nil {
			return ContextFilter{}, errors.New(InvalidFilterError{Filter: str})
		}

		filter.Value, filter.Priority = value, n
	}

	if filter.Value == "" {
		return ContextFilter{}, errors.New(InvalidFilterError{Filter: str})
	}

	return filter, nil
}

// ParseAll parses every string with Parse, keeping order.
func ParseAll(strs []string) (Filters, error) {
	filters := make(Filters, 0, len(strs))

	for _, str := range strs {
		filter, err := Parse(str)
		if err != nil {
			return nil, err
		}

		filters = append(filters, filter)
	}

	return filters, nil
}

// InvalidFilterError is returned for filters not in `tag=value[:priority]` notation.
type InvalidFilterError struct {
	Filter string
}

func (err InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q, expected tag=value[:priority]", err.Filter)
}
