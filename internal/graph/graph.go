// Package graph expands direct dependency edges into transitive closures.
package graph

import (
	"slices"
	"strings"
	"sync"

	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/util"
)

// Graph holds the direct edges of one library. It is immutable once built, so closures are
// memoized for its lifetime.
type Graph struct {
	edges map[string][]string
	memo  map[string][]string
	mu    sync.Mutex
}

// New builds a graph from id -> direct dependency ids.
func New(edges map[string][]string) *Graph {
	graph := &Graph{
		edges: make(map[string][]string, len(edges)),
		memo:  make(map[string][]string, len(edges)),
	}

	for id, deps := range edges {
		graph.edges[id] = slices.Clone(deps)
	}

	return graph
}

// FromLibrary builds a graph from the Dependencies of every node.
func FromLibrary(lib component.Library) *Graph {
	edges := make(map[string][]string, len(lib))
	for id, node := range lib {
		edges[id] = node.Dependencies
	}

	return New(edges)
}

// Has returns true if id is a node of the graph.
func (graph *Graph) Has(id string) bool {
	_, ok := graph.edges[id]
	return ok
}

// IDs returns the node ids sorted.
func (graph *Graph) IDs() []string {
	ids := make([]string, 0, len(graph.edges))
	for id := range graph.edges {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// ResolveTransitive returns the closure of id: for every direct dependency, its own closure
// followed by the dependency itself, skipping ids already present. The result is in
// first-discovery order and never contains id. Edges to ids outside the graph are skipped.
// A cycle between distinct nodes is reported as DependencyCycleError.
func (graph *Graph) ResolveTransitive(id string) ([]string, error) {
	if !graph.Has(id) {
		return nil, errors.New(component.UnknownEntityError{ID: id})
	}

	graph.mu.Lock()
	defer graph.mu.Unlock()

	closure, err := graph.resolve(id, nil)
	if err != nil {
		return nil, err
	}

	return slices.Clone(closure), nil
}

// ResolveAll returns the closure of every node.
func (graph *Graph) ResolveAll() (map[string][]string, error) {
	closures := make(map[string][]string, len(graph.edges))

	for _, id := range graph.IDs() {
		closure, err := graph.ResolveTransitive(id)
		if err != nil {
			return nil, err
		}

		closures[id] = closure
	}

	return closures, nil
}

// Dependents returns the sorted ids whose closure contains id.
func (graph *Graph) Dependents(id string) ([]string, error) {
	var dependents []string

	for _, other := range graph.IDs() {
		if other == id {
			continue
		}

		closure, err := graph.ResolveTransitive(other)
		if err != nil {
			return nil, err
		}

		if slices.Contains(closure, id) {
			dependents = append(dependents, other)
		}
	}

	return dependents, nil
}

func (graph *Graph) resolve(id string, stack []string) ([]string, error) {
	if closure, ok := graph.memo[id]; ok {
		return closure, nil
	}

	stack = append(stack, id)
	closure := []string{}

	for _, dep := range graph.edges[id] {
		if dep == id || !graph.Has(dep) {
			continue
		}

		if slices.Contains(stack, dep) {
			return nil, errors.New(DependencyCycleError(append(slices.Clone(stack), dep)))
		}

		depClosure, err := graph.resolve(dep, stack)
		if err != nil {
			return nil, err
		}

		closure = util.AppendMissing(closure, depClosure...)
		closure = util.AppendMissing(closure, dep)
	}

	graph.memo[id] = closure

	return closure, nil
}

// CheckForCycles checks for dependency cycles over every node and returns an error if one is found.
func (graph *Graph) CheckForCycles() error {
	visited := []string{}
	currentTraversal := []string{}

	for _, id := range graph.IDs() {
		if err := graph.checkForCyclesUsingDepthFirstSearch(id, &visited, &currentTraversal); err != nil {
			return err
		}
	}

	return nil
}

// Check for cycles using a depth-first-search as described here:
// https://en.wikipedia.org/wiki/Topological_sorting#Depth-first_search
//
// The two lists keep their order so a cycle is reported in traversal order. Self edges are not cycles.
func (graph *Graph) checkForCyclesUsingDepthFirstSearch(id string, visited *[]string, currentTraversal *[]string) error {
	if util.ListContainsElement(*visited, id) {
		return nil
	}

	if util.ListContainsElement(*currentTraversal, id) {
		return errors.New(DependencyCycleError(append(slices.Clone(*currentTraversal), id)))
	}

	*currentTraversal = append(*currentTraversal, id)

	for _, dep := range graph.edges[id] {
		if dep == id || !graph.Has(dep) {
			continue
		}

		if err := graph.checkForCyclesUsingDepthFirstSearch(dep, visited, currentTraversal); err != nil {
			return err
		}
	}

	*visited = append(*visited, id)
	*currentTraversal = util.RemoveElementFromList(*currentTraversal, id)

	return nil
}

// DependencyCycleError lists the ids of a cycle in traversal order.
type DependencyCycleError []string

func (err DependencyCycleError) Error() string {
	return "Found a dependency cycle between entities: " + strings.Join([]string(err), " -> ")
}
