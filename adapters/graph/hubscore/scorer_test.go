package hubscore

import (
	"errors"
	"math"
	"testing"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"
)

func TestScore_EmptyGraph(t *testing.T) {
	_, err := New().Score(omics.NewInteractionGraph(), Options{})
	if !errors.Is(err, core.ErrEmptyGraph) {
		t.Fatalf("expected ErrEmptyGraph, got %v", err)
	}
}

func TestScore_PathGraph(t *testing.T) {
	// A - B - C: all shortest paths between A and C pass through B.
	g := omics.NewInteractionGraph()
	g.AddEdge("A", "B", 0.9)
	g.AddEdge("B", "C", 0.9)

	scores, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}

	b := scores["B"]
	if b.Degree != 2 {
		t.Errorf("degree(B) = %d, want 2", b.Degree)
	}
	if math.Abs(b.Betweenness-1) > 1e-12 {
		t.Errorf("betweenness(B) = %g, want 1", b.Betweenness)
	}
	if math.Abs(b.Closeness-1) > 1e-12 {
		t.Errorf("closeness(B) = %g, want 1", b.Closeness)
	}

	for _, end := range []core.FeatureID{"A", "C"} {
		s := scores[end]
		if s.Degree != 1 {
			t.Errorf("degree(%s) = %d, want 1", end, s.Degree)
		}
		if s.Betweenness != 0 {
			t.Errorf("betweenness(%s) = %g, want 0", end, s.Betweenness)
		}
		// One neighbor at distance 1, one node at distance 2.
		if math.Abs(s.Closeness-2.0/3.0) > 1e-12 {
			t.Errorf("closeness(%s) = %g, want 2/3", end, s.Closeness)
		}
	}

	if scores["B"].Betweenness <= scores["A"].Betweenness {
		t.Error("the bridge node must outrank the endpoints on betweenness")
	}
}

func TestScore_CompleteGraphUniform(t *testing.T) {
	nodes := []core.FeatureID{"A", "B", "C", "D"}
	g := omics.NewInteractionGraph()
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			g.AddEdge(nodes[i], nodes[j], 0.9)
		}
	}

	scores, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	for _, id := range nodes {
		s := scores[id]
		if s.Degree != 3 {
			t.Errorf("degree(%s) = %d, want 3", id, s.Degree)
		}
		if s.Betweenness != 0 {
			t.Errorf("betweenness(%s) = %g, want 0 in a complete graph", id, s.Betweenness)
		}
		if math.Abs(s.Closeness-1) > 1e-12 {
			t.Errorf("closeness(%s) = %g, want 1", id, s.Closeness)
		}
	}
}

func TestScore_IsolatedNode(t *testing.T) {
	g := omics.NewInteractionGraph()
	g.AddEdge("A", "B", 0.8)
	g.AddNode("LONER")

	scores, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	loner, ok := scores["LONER"]
	if !ok {
		t.Fatal("declared isolated node must still get a score")
	}
	if loner.Degree != 0 || loner.Betweenness != 0 || loner.Closeness != 0 {
		t.Errorf("isolated node scored %+v, want zeros", loner)
	}
}

func TestScore_DisconnectedComponents(t *testing.T) {
	// Two separate edges. Closeness is per-component, so every node has one
	// neighbor at distance 1 and closeness exactly 1.
	g := omics.NewInteractionGraph()
	g.AddEdge("A", "B", 0.9)
	g.AddEdge("C", "D", 0.9)

	scores, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	for _, id := range []core.FeatureID{"A", "B", "C", "D"} {
		s := scores[id]
		if math.Abs(s.Closeness-1) > 1e-12 {
			t.Errorf("closeness(%s) = %g, want 1 within its component", id, s.Closeness)
		}
		if s.Betweenness != 0 {
			t.Errorf("betweenness(%s) = %g, want 0", id, s.Betweenness)
		}
	}
}

func TestScore_WeightedDistances(t *testing.T) {
	// A - B at confidence 1.0 (distance 1), B - C at confidence 0.5
	// (distance 2). A's far node moves from distance 2 to distance 3.
	g := omics.NewInteractionGraph()
	g.AddEdge("A", "B", 1.0)
	g.AddEdge("B", "C", 0.5)

	unweighted, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("unweighted: %v", err)
	}
	weighted, err := New().Score(g, Options{Weighted: true})
	if err != nil {
		t.Fatalf("weighted: %v", err)
	}

	if math.Abs(unweighted["A"].Closeness-2.0/3.0) > 1e-12 {
		t.Errorf("unweighted closeness(A) = %g, want 2/3", unweighted["A"].Closeness)
	}
	if math.Abs(weighted["A"].Closeness-0.5) > 1e-12 {
		t.Errorf("weighted closeness(A) = %g, want 1/2", weighted["A"].Closeness)
	}
}

func TestScore_ZeroConfidenceIgnoredWhenWeighted(t *testing.T) {
	g := omics.NewInteractionGraph()
	g.AddEdge("A", "B", 0.9)
	g.AddEdge("B", "C", 0)

	weighted, err := New().Score(g, Options{Weighted: true})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// C keeps its declared-node score but is cut off from the component.
	if weighted["C"].Closeness != 0 {
		t.Errorf("closeness(C) = %g, want 0 with its only edge dropped", weighted["C"].Closeness)
	}
	if weighted["A"].Closeness != 1 {
		t.Errorf("closeness(A) = %g, want 1", weighted["A"].Closeness)
	}
}

func TestScore_Deterministic(t *testing.T) {
	g := omics.NewInteractionGraph()
	g.AddEdge("IL6", "STAT3", 0.999)
	g.AddEdge("IL6", "TNF", 0.95)
	g.AddEdge("TNF", "CXCL8", 0.92)
	g.AddEdge("IL6", "CXCL8", 0.90)

	first, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := New().Score(g, Options{})
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	for id, s := range first {
		if second[id] != s {
			t.Errorf("node %s scored %+v then %+v", id, s, second[id])
		}
	}
}
