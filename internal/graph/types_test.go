package graph

import (
	"reflect"
	"testing"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph()

	if g == nil {
		t.Fatal("NewGraph() returned nil")
	}
	if g.Nodes == nil {
		t.Error("Nodes map is nil")
	}
	if g.Children == nil {
		t.Error("Children map is nil")
	}
	if g.Parents == nil {
		t.Error("Parents map is nil")
	}
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestAddNode(t *testing.T) {
	g := NewGraph()

	g.AddNode("Location", nil)
	if !g.HasNode("Location") {
		t.Fatal("AddNode with nil should create node")
	}
	if g.GetNode("Location").Backed {
		t.Error("nil node should be unbacked")
	}

	g.AddNode("Patient", &Node{Name: "ignored", Backed: true, Records: 3})
	node := g.GetNode("Patient")
	if node.Name != "Patient" {
		t.Errorf("node name should be overwritten, got %q", node.Name)
	}
	if !node.Backed || node.Records != 3 {
		t.Errorf("unexpected node %+v", node)
	}

	if g.GetNode("Missing") != nil {
		t.Error("GetNode should return nil for unknown type")
	}
}

func TestAddEdge(t *testing.T) {
	g := NewGraph()
	g.AddEdge("Observation", "Patient")
	g.AddEdge("Encounter", "Patient")
	g.AddEdge("Observation", "Patient")

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
	if !g.HasNode("Observation") || !g.HasNode("Patient") {
		t.Error("AddEdge should add missing endpoints")
	}
	if got := g.GetParents("Patient"); !reflect.DeepEqual(got, []string{"Encounter", "Observation"}) {
		t.Errorf("GetParents = %v", got)
	}
	if got := g.GetChildren("Observation"); !reflect.DeepEqual(got, []string{"Patient"}) {
		t.Errorf("GetChildren = %v", got)
	}
	if g.InDegree("Patient") != 2 || g.OutDegree("Patient") != 0 {
		t.Errorf("unexpected degrees in=%d out=%d", g.InDegree("Patient"), g.OutDegree("Patient"))
	}
	if !g.HasEdge("Observation", "Patient") || g.HasEdge("Patient", "Observation") {
		t.Error("HasEdge should respect direction")
	}
}

func TestAddEdgeWithPaths(t *testing.T) {
	g := NewGraph()
	g.AddEdgeWithPaths("Observation", "Patient", "subject")
	g.AddEdgeWithPaths("Observation", "Patient", "performer", "subject")

	meta := g.GetEdgeMeta("Observation", "Patient")
	if meta == nil {
		t.Fatal("expected edge metadata")
	}
	if !reflect.DeepEqual(meta.Paths, []string{"performer", "subject"}) {
		t.Errorf("Paths = %v", meta.Paths)
	}
	if g.GetEdgeMeta("Patient", "Observation") != nil {
		t.Error("reverse edge should have no metadata")
	}
}

func TestNeighbors(t *testing.T) {
	g := NewGraph()
	g.AddEdge("Observation", "Patient")
	g.AddEdge("Patient", "Organization")
	g.AddEdge("Patient", "Patient")
	g.AddEdge("Encounter", "Observation")

	want := []string{"Observation", "Organization", "Patient"}
	if got := g.Neighbors("Patient"); !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(Patient) = %v, want %v", got, want)
	}
	if got := g.Neighbors("Unknown"); len(got) != 0 {
		t.Errorf("Neighbors(Unknown) = %v, want empty", got)
	}
}

func TestAllNodesAndEdgesSorted(t *testing.T) {
	g := NewGraph()
	g.AddEdge("Observation", "Patient")
	g.AddEdge("Encounter", "Patient")
	g.AddEdge("Encounter", "Location")

	if got := g.AllNodes(); !reflect.DeepEqual(got, []string{"Encounter", "Location", "Observation", "Patient"}) {
		t.Errorf("AllNodes = %v", got)
	}

	want := []Edge{
		{From: "Encounter", To: "Location"},
		{From: "Encounter", To: "Patient"},
		{From: "Observation", To: "Patient"},
	}
	if got := g.AllEdges(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllEdges = %v, want %v", got, want)
	}
}

func TestMissingTypes(t *testing.T) {
	g := NewGraph()
	g.AddNode("Patient", &Node{Backed: true, Records: 1})
	g.AddNode("Encounter", &Node{Backed: true, Records: 1})
	g.AddEdge("Encounter", "Patient")
	g.AddEdge("Encounter", "Location")
	g.AddEdge("Encounter", "Device")

	if got := g.MissingTypes(); !reflect.DeepEqual(got, []string{"Device", "Location"}) {
		t.Errorf("MissingTypes = %v", got)
	}
}

func TestComponent(t *testing.T) {
	g := NewGraph()
	g.AddEdge("Observation", "Patient")
	g.AddEdge("Encounter", "Observation")
	g.AddEdge("Claim", "Coverage")
	g.AddNode("Device", nil)

	got := g.Component("Patient")
	want := []string{"Patient", "Observation", "Encounter"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Component(Patient) = %v, want %v", got, want)
	}

	if g.Component("Unknown") != nil {
		t.Error("Component of unknown type should be nil")
	}

	comps := g.Components()
	wantComps := [][]string{
		{"Claim", "Coverage"},
		{"Device"},
		{"Encounter", "Observation", "Patient"},
	}
	if !reflect.DeepEqual(comps, wantComps) {
		t.Errorf("Components = %v, want %v", comps, wantComps)
	}
}

func TestInsertSorted(t *testing.T) {
	var list []string
	for _, s := range []string{"b", "a", "c", "b"} {
		list = insertSorted(list, s)
	}
	if !reflect.DeepEqual(list, []string{"a", "b", "c"}) {
		t.Errorf("insertSorted = %v", list)
	}
}
