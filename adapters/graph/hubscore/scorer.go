// Package hubscore computes degree, betweenness, and closeness centrality
// over an interaction graph.
//
// Closeness is per-component: for a node v it is (reachable-1)/sum(d(v,u))
// taken over v's connected component only. A global definition is ill-posed
// on disconnected graphs, so unreachable nodes simply do not contribute.
// Isolated nodes score betweenness = closeness = 0.
package hubscore

import (
	"math"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Options configures a scoring call.
type Options struct {
	// Weighted makes shortest paths use 1/confidence as edge distance, so
	// high-confidence interactions are "shorter". Default treats every edge
	// as distance 1. Edges with confidence <= 0 are ignored in weighted
	// mode: a zero-confidence interaction is no link at all.
	Weighted bool
}

// Scorer computes raw centralities. It imposes no ranking policy; callers
// sort by whichever centrality defines "hub" for them.
type Scorer struct{}

// New creates a Scorer.
func New() *Scorer { return &Scorer{} }

// Score computes a CentralityScore for every declared node. Fails with
// ErrEmptyGraph when the graph has zero nodes. The scorer owns the graph
// only for the duration of the call and never mutates it.
func (s *Scorer) Score(g *omics.InteractionGraph, opts Options) (map[core.FeatureID]omics.CentralityScore, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil, core.ErrEmptyGraph
	}

	// Deterministic node numbering: lexical order -> 0..n-1.
	toID := make(map[core.FeatureID]int64, len(nodes))
	wg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i, id := range nodes {
		toID[id] = int64(i)
		wg.AddNode(simple.Node(int64(i)))
	}

	degree := make(map[core.FeatureID]int, len(nodes))
	for _, e := range g.Edges() {
		dist := 1.0
		if opts.Weighted {
			if e.Confidence <= 0 {
				continue
			}
			dist = 1 / e.Confidence
		}
		wg.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(toID[e.A]),
			T: simple.Node(toID[e.B]),
			W: dist,
		})
		degree[e.A]++
		degree[e.B]++
	}

	shortest := path.DijkstraAllPaths(wg)
	betweenness := network.BetweennessWeighted(wg, shortest)

	n := len(nodes)
	scores := make(map[core.FeatureID]omics.CentralityScore, n)
	for _, id := range nodes {
		uid := toID[id]
		scores[id] = omics.CentralityScore{
			Degree:      degree[id],
			Betweenness: normalizeBetweenness(betweenness[uid], n),
			Closeness:   closeness(shortest, uid, nodes, toID),
		}
	}
	return scores, nil
}

// normalizeBetweenness scales the raw pair count to [0,1]. Brandes over an
// undirected graph visits each unordered pair from both endpoints, so the
// raw value is divided by (n-1)(n-2), the doubled pair count excluding v.
func normalizeBetweenness(raw float64, n int) float64 {
	if n <= 2 {
		return 0
	}
	return raw / float64((n-1)*(n-2))
}

// closeness computes per-component closeness for one node: the number of
// other reachable nodes over the sum of shortest-path distances to them.
func closeness(shortest path.AllShortest, uid int64, nodes []core.FeatureID, toID map[core.FeatureID]int64) float64 {
	var sum float64
	reachable := 0
	for _, other := range nodes {
		vid := toID[other]
		if vid == uid {
			continue
		}
		d := shortest.Weight(uid, vid)
		if math.IsInf(d, 1) {
			continue
		}
		sum += d
		reachable++
	}
	if reachable == 0 || sum == 0 {
		return 0
	}
	return float64(reachable) / sum
}
