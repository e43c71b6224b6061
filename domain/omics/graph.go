package omics

import (
	"sort"

	"gobiomark/domain/core"
)

// Interaction is one undirected edge with a confidence score in [0,1].
type Interaction struct {
	A          core.FeatureID `json:"a"`
	B          core.FeatureID `json:"b"`
	Confidence float64        `json:"confidence"`
}

type edgeKey struct {
	a, b core.FeatureID
}

func newEdgeKey(a, b core.FeatureID) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// InteractionGraph is an undirected, optionally weighted interaction network.
// Multi-edges between the same pair collapse to one, keeping the maximum
// confidence. Nodes may be declared without edges so isolated features can
// still be scored.
type InteractionGraph struct {
	nodes map[core.FeatureID]bool
	edges map[edgeKey]float64
}

// NewInteractionGraph creates an empty graph.
func NewInteractionGraph() *InteractionGraph {
	return &InteractionGraph{
		nodes: make(map[core.FeatureID]bool),
		edges: make(map[edgeKey]float64),
	}
}

// AddNode declares a node, possibly isolated.
func (g *InteractionGraph) AddNode(id core.FeatureID) {
	g.nodes[id] = true
}

// AddEdge adds an undirected edge, declaring both endpoints. A repeated pair
// keeps the maximum confidence seen. Self-loops are ignored.
func (g *InteractionGraph) AddEdge(a, b core.FeatureID, confidence float64) {
	if a == b {
		g.nodes[a] = true
		return
	}
	g.nodes[a] = true
	g.nodes[b] = true
	key := newEdgeKey(a, b)
	if prev, ok := g.edges[key]; !ok || confidence > prev {
		g.edges[key] = confidence
	}
}

// HasNode reports whether a node was declared.
func (g *InteractionGraph) HasNode(id core.FeatureID) bool { return g.nodes[id] }

// NodeCount returns the number of declared nodes.
func (g *InteractionGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of collapsed edges.
func (g *InteractionGraph) EdgeCount() int { return len(g.edges) }

// Nodes returns all node ids in lexical order.
func (g *InteractionGraph) Nodes() []core.FeatureID {
	out := make([]core.FeatureID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns all collapsed edges ordered by (A, B).
func (g *InteractionGraph) Edges() []Interaction {
	out := make([]Interaction, 0, len(g.edges))
	for key, conf := range g.edges {
		out = append(out, Interaction{A: key.a, B: key.b, Confidence: conf})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Subgraph returns the induced subgraph over the given nodes. Declared nodes
// in the keep set survive even when every incident edge is cut.
func (g *InteractionGraph) Subgraph(keep []core.FeatureID) *InteractionGraph {
	want := make(map[core.FeatureID]bool, len(keep))
	for _, id := range keep {
		want[id] = true
	}
	sub := NewInteractionGraph()
	for id := range g.nodes {
		if want[id] {
			sub.AddNode(id)
		}
	}
	for key, conf := range g.edges {
		if want[key.a] && want[key.b] {
			sub.AddEdge(key.a, key.b, conf)
		}
	}
	return sub
}
