package graph

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/goreach/internal/extract"
	"github.com/dbsmedya/goreach/internal/record"
)

// Builder constructs a reference graph from loaded collections and their
// extraction results.
type Builder struct {
	collections []*record.Collection
	results     map[string]*extract.Result
}

// NewBuilder creates a new graph builder.
func NewBuilder(collections []*record.Collection, results map[string]*extract.Result) *Builder {
	return &Builder{collections: collections, results: results}
}

// Build adds one backed node per collection, then one edge per referenced
// type. Referenced types without a collection become unbacked nodes.
func (b *Builder) Build() (*Graph, error) {
	g := NewGraph()

	for _, c := range b.collections {
		if c == nil {
			return nil, fmt.Errorf("collection is nil")
		}
		if g.HasNode(c.Type) {
			return nil, fmt.Errorf("duplicate collection for type %q", c.Type)
		}
		g.AddNode(c.Type, &Node{Backed: true, Records: c.Len()})
	}

	sources := make([]string, 0, len(b.results))
	for typeName := range b.results {
		sources = append(sources, typeName)
	}
	sort.Strings(sources)

	for _, source := range sources {
		if !g.HasNode(source) {
			return nil, fmt.Errorf("extraction result for %q has no collection", source)
		}
		res := b.results[source]
		for _, target := range res.Targets() {
			g.AddEdgeWithPaths(source, target, res.Paths(target)...)
		}
	}

	return g, nil
}

// BuildFromCollections is a convenience function that builds a graph directly
// from collections and their extraction results.
func BuildFromCollections(collections []*record.Collection, results map[string]*extract.Result) (*Graph, error) {
	return NewBuilder(collections, results).Build()
}
