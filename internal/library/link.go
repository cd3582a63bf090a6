package library

import (
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/internal/graph"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/util"
)

// LinkServices recomputes Transitive and Scripts of the given services, or of every service
// when ids is empty. A service on a dependency cycle keeps an empty closure and records the
// cycle. Linking only reads the library, no file is touched.
func LinkServices(logger log.Logger, lib component.Library, ids ...string) {
	g := graph.FromLibrary(lib)

	if len(ids) == 0 {
		ids = lib.IDs()
	}

	for _, id := range ids {
		node, ok := lib[id]
		if !ok {
			continue
		}

		node.Transitive, node.Cycle = closure(logger, g, id)

		scripts := []string{}
		for _, dep := range node.Transitive {
			scripts = util.AppendMissing(scripts, lib[dep].Sources...)
		}

		node.Scripts = util.AppendMissing(scripts, node.Sources...)
	}
}

// LinkComponents recomputes Transitive, Scripts and Styles of the given component-library
// nodes, or of every node when ids is empty. Scripts are ordered: the service closure first, then
// the own scripts of every transitive dependency, then the node's own scripts.
func LinkComponents(logger log.Logger, lib component.Library, services component.Library, ids ...string) {
	g := graph.FromLibrary(lib)

	if len(ids) == 0 {
		ids = lib.IDs()
	}

	for _, id := range ids {
		node, ok := lib[id]
		if !ok {
			continue
		}

		node.Transitive, node.Cycle = closure(logger, g, id)

		var used []string
		for _, dep := range node.Transitive {
			used = util.AppendMissing(used, lib[dep].Services...)
		}

		used = util.AppendMissing(used, node.Services...)

		scripts := []string{}
		for _, svc := range ServiceClosure(services, used) {
			scripts = util.AppendMissing(scripts, services[svc].Sources...)
		}

		styles := []string{}

		for _, dep := range node.Transitive {
			scripts = util.AppendMissing(scripts, lib[dep].Sources...)
			styles = util.AppendMissing(styles, ownStyles(lib[dep])...)
		}

		node.Scripts = util.AppendMissing(scripts, node.Sources...)
		node.Styles = util.AppendMissing(styles, ownStyles(node)...)
	}
}

// ownStyles returns the styles living in the node's own directory.
func ownStyles(node *component.Node) []string {
	var styles []string

	for _, style := range node.Styles {
		if util.HasPathPrefix(style, node.Dir) {
			styles = append(styles, style)
		}
	}

	return styles
}

// ServiceClosure expands ids into their dependency-first service closure, each id following its
// own dependencies. Ids that are not services are skipped.
func ServiceClosure(services component.Library, ids []string) []string {
	closure := []string{}

	for _, id := range ids {
		node, ok := services[id]
		if !ok {
			continue
		}

		closure = util.AppendMissing(closure, node.Transitive...)
		closure = util.AppendMissing(closure, id)
	}

	return closure
}

func closure(logger log.Logger, g *graph.Graph, id string) ([]string, []string) {
	transitive, err := g.ResolveTransitive(id)
	if err == nil {
		return transitive, nil
	}

	var cycle graph.DependencyCycleError
	if errors.As(err, &cycle) {
		logger.WithField(log.FieldKeyEntity, id).Errorf("%v", err)
		return []string{}, []string(cycle)
	}

	logger.WithField(log.FieldKeyEntity, id).Warnf("Resolving %s: %v", id, err)

	return []string{}, nil
}
