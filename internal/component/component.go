// Package component provides the data types shared by the scanner, the library builder, the
// store and the resolver: entities, their source artifacts, library nodes and resolved output.
//
// This package contains only data types and their associated methods, with no discovery logic.
package component

import (
	"slices"
	"sort"
	"strings"
)

// Kind is the type of a discovered entity.
type Kind string

const (
	KindService   Kind = "service"
	KindBehavior  Kind = "behavior"
	KindGuide     Kind = "guide"
	KindComponent Kind = "component"
)

// Group distinguishes page-level components from building blocks.
type Group string

const (
	GroupPage  Group = "page"
	GroupBlock Group = "block"
)

// ArtifactKind is the kind of a source file inside an entity directory.
type ArtifactKind string

const (
	ArtifactScript   ArtifactKind = "script"
	ArtifactTemplate ArtifactKind = "template"
	ArtifactStyle    ArtifactKind = "style"
)

// Library names used as store keys and as file names of the persisted documents.
const (
	ServicesLibrary   = "services"
	ComponentsLibrary = "components"
)

// SourceArtifact is a file found inside an entity directory. Path is slash-separated and
// relative to the project root.
type SourceArtifact struct {
	Path string       `json:"path"`
	Kind ArtifactKind `json:"kind"`
}

// Entity is one scanned directory.
type Entity struct {
	ID        string           `json:"id"`
	Kind      Kind             `json:"kind"`
	Group     Group            `json:"group,omitempty"`
	Dir       string           `json:"dir"`
	Artifacts []SourceArtifact `json:"artifacts"`
}

// Paths returns the paths of the artifacts of the given kind, in scan order.
func (entity *Entity) Paths(kind ArtifactKind) []string {
	var paths []string

	for _, artifact := range entity.Artifacts {
		if artifact.Kind == kind {
			paths = append(paths, artifact.Path)
		}
	}

	return paths
}

// Entities maps entity ids to entities.
type Entities map[string]*Entity

// IDs returns the entity ids sorted.
func (entities Entities) IDs() []string {
	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// TemplateVariant is one template file of an entity. Qualities come from the dot-separated
// suffix of the file name; an empty set marks the default variant.
type TemplateVariant struct {
	Owner     string   `json:"owner"`
	Qualities []string `json:"qualities"`
	Path      string   `json:"path"`
	Content   string   `json:"content,omitempty"`
}

// IsDefault returns true for the variant without quality tags.
func (variant TemplateVariant) IsDefault() bool {
	return len(variant.Qualities) == 0
}

// Name returns the variant's declared name, `<owner>.<q1>.<q2>`.
func (variant TemplateVariant) Name() string {
	return strings.Join(append([]string{variant.Owner}, variant.Qualities...), ".")
}

// Node is a resolved entry of a Library.
type Node struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Group Group  `json:"group,omitempty"`
	Dir   string `json:"dir"`

	// Dependencies are the direct edges inside the node's own library graph.
	Dependencies []string `json:"dependencies"`
	// Services are the service ids used by the scripts of a component-library node.
	Services []string `json:"services"`
	// Transitive is the closure of Dependencies in first-discovery order, never containing ID.
	Transitive []string `json:"transitive"`

	Sources   []string          `json:"sources"`
	Scripts   []string          `json:"scripts"`
	Styles    []string          `json:"styles"`
	Templates []TemplateVariant `json:"templates"`

	// Missing lists explicitly referenced behaviors and guides whose directories do not exist.
	Missing []MissingReference `json:"missing,omitempty"`
	// Cycle is a dependency cycle reachable from the node, if any.
	Cycle []string `json:"cycle,omitempty"`
}

// MissingReference is a behavior or guide named by a template that no scanned entity provides.
type MissingReference struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	// Path is the template holding the reference.
	Path string `json:"path"`
}

// MissingIDs returns the ids of Missing in recording order.
func (node *Node) MissingIDs() []string {
	ids := make([]string, 0, len(node.Missing))
	for _, ref := range node.Missing {
		ids = append(ids, ref.ID)
	}

	return ids
}

// DependsOn returns true if id is a direct or transitive dependency of the node.
func (node *Node) DependsOn(id string) bool {
	return slices.Contains(node.Dependencies, id) || slices.Contains(node.Transitive, id)
}

// ReferencesPath returns true if any of the node's scripts equals path or lives below it.
func (node *Node) ReferencesPath(path string) bool {
	path = strings.TrimSuffix(path, "/")

	for _, script := range node.Scripts {
		if script == path || strings.HasPrefix(script, path+"/") {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the node.
func (node *Node) Clone() *Node {
	clone := *node
	clone.Dependencies = slices.Clone(node.Dependencies)
	clone.Services = slices.Clone(node.Services)
	clone.Transitive = slices.Clone(node.Transitive)
	clone.Sources = slices.Clone(node.Sources)
	clone.Scripts = slices.Clone(node.Scripts)
	clone.Styles = slices.Clone(node.Styles)
	clone.Templates = slices.Clone(node.Templates)
	clone.Missing = slices.Clone(node.Missing)
	clone.Cycle = slices.Clone(node.Cycle)

	for i := range clone.Templates {
		clone.Templates[i].Qualities = slices.Clone(clone.Templates[i].Qualities)
	}

	return &clone
}

// Library maps ids to nodes. It is persisted as one JSON document.
type Library map[string]*Node

// IDs returns the node ids sorted.
func (lib Library) IDs() []string {
	ids := make([]string, 0, len(lib))
	for id := range lib {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Clone returns a deep copy of the library.
func (lib Library) Clone() Library {
	if lib == nil {
		return nil
	}

	clone := make(Library, len(lib))
	for id, node := range lib {
		clone[id] = node.Clone()
	}

	return clone
}

// Filter returns the nodes of the given kinds, sorted by id.
func (lib Library) Filter(kinds ...Kind) []*Node {
	var nodes []*Node

	for _, id := range lib.IDs() {
		if node := lib[id]; slices.Contains(kinds, node.Kind) {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// UnknownEntityError is returned when an id is not part of the library.
type UnknownEntityError struct {
	ID   string
	Kind Kind
}

func (err UnknownEntityError) Error() string {
	if err.Kind == "" {
		return "unknown entity " + err.ID
	}

	return "unknown " + string(err.Kind) + " " + err.ID
}
