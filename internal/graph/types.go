// Package graph provides the type-level reference graph: one node per record
// type, one edge per (source type, target type) pair seen in the data.
package graph

import "sort"

// Node represents a record type in the reference graph.
type Node struct {
	Name    string // Type name
	Backed  bool   // True if a collection exists for this type
	Records int    // Number of records in the collection (0 when not backed)
}

// Edge represents a reference relationship between types.
type Edge struct {
	From string // Type holding the pointer field
	To   string // Type the pointers name
}

// EdgeMeta contains metadata about an edge relationship.
type EdgeMeta struct {
	Paths []string // Sorted field paths in From that point to To
}

// Graph represents the reference structure of one snapshot.
type Graph struct {
	Nodes        map[string]*Node    // type name -> node
	Children     map[string][]string // type name -> referenced types (outgoing edges)
	Parents      map[string][]string // type name -> referencing types (incoming edges)
	edgeMetadata map[Edge]*EdgeMeta  // Edge -> metadata
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:        make(map[string]*Node),
		Children:     make(map[string][]string),
		Parents:      make(map[string][]string),
		edgeMetadata: make(map[Edge]*EdgeMeta),
	}
}

// AddNode adds a type node to the graph, replacing any existing node.
// If node is nil, a new unbacked node is created.
func (g *Graph) AddNode(name string, node *Node) {
	if node == nil {
		node = &Node{Name: name}
	}
	node.Name = name
	g.Nodes[name] = node
}

// ensureNode adds an unbacked node for name unless one exists.
func (g *Graph) ensureNode(name string) {
	if _, exists := g.Nodes[name]; !exists {
		g.AddNode(name, nil)
	}
}

// AddEdge adds a from -> to relationship to the graph. Adding an existing
// edge is a no-op. Both endpoints are added as nodes when missing.
func (g *Graph) AddEdge(from, to string) {
	g.ensureNode(from)
	g.ensureNode(to)

	edge := Edge{From: from, To: to}
	if _, exists := g.edgeMetadata[edge]; exists {
		return
	}
	g.edgeMetadata[edge] = &EdgeMeta{}

	// Add to children map (forward edges)
	g.Children[from] = insertSorted(g.Children[from], to)

	// Add to parents map (reverse edges)
	g.Parents[to] = insertSorted(g.Parents[to], from)
}

// AddEdgeWithPaths adds an edge and merges the given field paths into its metadata.
func (g *Graph) AddEdgeWithPaths(from, to string, paths ...string) {
	g.AddEdge(from, to)

	meta := g.edgeMetadata[Edge{From: from, To: to}]
	for _, p := range paths {
		meta.Paths = insertSorted(meta.Paths, p)
	}
}

// GetChildren returns the types referenced by name, sorted.
func (g *Graph) GetChildren(name string) []string {
	return g.Children[name]
}

// GetParents returns the types referencing name, sorted.
func (g *Graph) GetParents(name string) []string {
	return g.Parents[name]
}

// Neighbors returns every type linked to name in either direction, sorted.
// A type that references itself is its own neighbor.
func (g *Graph) Neighbors(name string) []string {
	var out []string
	for _, t := range g.Children[name] {
		out = insertSorted(out, t)
	}
	for _, t := range g.Parents[name] {
		out = insertSorted(out, t)
	}
	return out
}

// GetNode returns the node for a given type name, or nil if not found.
func (g *Graph) GetNode(name string) *Node {
	return g.Nodes[name]
}

// GetEdgeMeta returns metadata for an edge, or nil if not found.
func (g *Graph) GetEdgeMeta(from, to string) *EdgeMeta {
	return g.edgeMetadata[Edge{From: from, To: to}]
}

// HasNode returns true if the graph contains a node with the given name.
func (g *Graph) HasNode(name string) bool {
	_, exists := g.Nodes[name]
	return exists
}

// HasEdge returns true if from references to.
func (g *Graph) HasEdge(from, to string) bool {
	_, exists := g.edgeMetadata[Edge{From: from, To: to}]
	return exists
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edgeMetadata)
}

// AllNodes returns all type names in the graph, sorted.
func (g *Graph) AllNodes() []string {
	nodes := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		nodes = append(nodes, name)
	}
	sort.Strings(nodes)
	return nodes
}

// AllEdges returns all edges ordered by From, then To.
func (g *Graph) AllEdges() []Edge {
	var edges []Edge
	for _, from := range g.AllNodes() {
		for _, to := range g.Children[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// MissingTypes returns referenced types that have no backing collection, sorted.
func (g *Graph) MissingTypes() []string {
	var missing []string
	for _, name := range g.AllNodes() {
		if !g.Nodes[name].Backed {
			missing = append(missing, name)
		}
	}
	return missing
}

// InDegree returns the number of types referencing name.
func (g *Graph) InDegree(name string) int {
	return len(g.Parents[name])
}

// OutDegree returns the number of types referenced by name.
func (g *Graph) OutDegree(name string) int {
	return len(g.Children[name])
}

func insertSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	if i < len(list) && list[i] == s {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}
