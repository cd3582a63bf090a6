package filter

import (
	"fmt"
	"sync"

	"github.com/hightail/wilson-sub000/internal/errors"
)

// TagHandler turns request attributes into one context filter.
type TagHandler interface {
	// Name is the tag name of the produced filter.
	Name() string
	// Filter returns the filter for attrs and false when the tag does not apply.
	Filter(attrs map[string]string) (ContextFilter, bool)
}

// AttributeHandler reads one request attribute and falls back to Default when it is absent.
type AttributeHandler struct {
	Tag       string
	Attribute string
	Default   string
	Priority  int
}

// Name implements TagHandler.
func (handler AttributeHandler) Name() string {
	return handler.Tag
}

// Filter implements TagHandler.
func (handler AttributeHandler) Filter(attrs map[string]string) (ContextFilter, bool) {
	attribute := handler.Attribute
	if attribute == "" {
		attribute = handler.Tag
	}

	value, ok := attrs[attribute]
	if !ok || value == "" {
		value = handler.Default
	}

	if value == "" {
		return ContextFilter{}, false
	}

	return ContextFilter{TagName: handler.Tag, Value: value, Priority: handler.Priority}, true
}

// Registry is the ordered set of tag handlers, populated once at startup.
type Registry struct {
	handlers []TagHandler
	names    map[string]struct{}
	mu       sync.RWMutex
}

// NewRegistry returns a registry holding handlers in the given order.
func NewRegistry(handlers ...TagHandler) (*Registry, error) {
	registry := &Registry{names: make(map[string]struct{})}

	for _, handler := range handlers {
		if err := registry.Register(handler); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Register appends handler. Tag names are unique.
func (registry *Registry) Register(handler TagHandler) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.names[handler.Name()]; ok {
		return errors.New(DuplicateTagError{Tag: handler.Name()})
	}

	registry.names[handler.Name()] = struct{}{}
	registry.handlers = append(registry.handlers, handler)

	return nil
}

// Names returns the registered tag names in registration order.
func (registry *Registry) Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.handlers))
	for _, handler := range registry.handlers {
		names = append(names, handler.Name())
	}

	return names
}

// Filters runs every handler against attrs, in registration order.
func (registry *Registry) Filters(attrs map[string]string) Filters {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	filters := make(Filters, 0, len(registry.handlers))

	for _, handler := range registry.handlers {
		if filter, ok := handler.Filter(attrs); ok {
			filters = append(filters, filter)
		}
	}

	return filters
}

// DuplicateTagError is returned when two handlers share a tag name.
type DuplicateTagError struct {
	Tag string
}

func (err DuplicateTagError) Error() string {
	return fmt.Sprintf("tag handler %q is already registered", err.Tag)
}
