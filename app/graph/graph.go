package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

type Edge struct {
	Source string
	Target string
	Label  string
}

type edgeKey struct {
	a, b string
}

func newEdgeKey(x, y string) edgeKey {
	if y < x {
		x, y = y, x
	}
	return edgeKey{a: x, b: y}
}

// Graph is an undirected labeled graph without self-loops or parallel edges.
// Nodes and edges keep insertion order.
type Graph struct {
	nodes     []string
	nodeSet   mapset.Set[string]
	edges     map[edgeKey]Edge
	edgeOrder []edgeKey
}

func New() *Graph {
	return &Graph{
		nodeSet: mapset.NewThreadUnsafeSet[string](),
		edges:   make(map[edgeKey]Edge),
	}
}

// BuildGraph adds one edge labeled with the relation for every triple.
func BuildGraph(triples []Triple) *Graph {
	g := New()
	for _, t := range triples {
		g.AddEdge(t.A, t.B, t.Relation)
	}
	return g
}

func (g *Graph) AddNode(name string) {
	if g.nodeSet.Add(name) {
		g.nodes = append(g.nodes, name)
	}
}

// AddEdge connects a and b. Adding an existing edge again only replaces its
// label; a == b is ignored.
func (g *Graph) AddEdge(a, b, label string) {
	if a == b {
		return
	}

	g.AddNode(a)
	g.AddNode(b)

	key := newEdgeKey(a, b)
	if existing, ok := g.edges[key]; ok {
		existing.Label = label
		g.edges[key] = existing
		return
	}

	g.edges[key] = Edge{Source: a, Target: b, Label: label}
	g.edgeOrder = append(g.edgeOrder, key)
}

func (g *Graph) HasNode(name string) bool {
	return g.nodeSet.Contains(name)
}

func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.edges[newEdgeKey(a, b)]
	return ok
}

func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		out = append(out, g.edges[key])
	}
	return out
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	return len(g.edgeOrder)
}
