// Package app wires the analysis stages into runnable pipelines and joins
// their outputs into the ranked candidate list.
package app

import (
	"math"
	"sort"

	"gobiomark/adapters/registry"
	"gobiomark/domain/core"
	"gobiomark/domain/omics"
)

// Orchestrator joins per-layer test results, cross-layer correlations, and
// network centralities into one ranked biomarker table.
type Orchestrator struct{}

// NewOrchestrator creates an integration orchestrator
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// evidence accumulates a single feature's signals during the join
type evidence struct {
	layersTested      int
	layersSignificant int
	bestAdjustedP     float64
	maxAbsEffect      float64
	maxAbsCorrelation float64
	centrality        *omics.CentralityScore
}

// Rank joins the stage outputs and orders candidates by evidence strength.
// Features appear once regardless of how many layers tested them. Missing
// correlation or centrality evidence never excludes a feature, it only
// weakens its rank. The ordering is total and deterministic: layers
// significant descending, then best adjusted p ascending, then max absolute
// correlation descending, then feature id ascending. NaN keys sort after
// defined ones.
func (o *Orchestrator) Rank(
	tests map[string][]omics.TestResult,
	correlations []omics.CorrelationResult,
	centralities map[core.FeatureID]omics.CentralityScore,
) []omics.RankedBiomarker {
	byFeature := make(map[core.FeatureID]*evidence)

	get := func(id core.FeatureID) *evidence {
		ev, ok := byFeature[id]
		if !ok {
			ev = &evidence{
				bestAdjustedP:     math.NaN(),
				maxAbsEffect:      math.NaN(),
				maxAbsCorrelation: math.NaN(),
			}
			byFeature[id] = ev
		}
		return ev
	}

	for _, results := range tests {
		for _, r := range results {
			ev := get(r.Feature)
			ev.layersTested++
			if r.Significant {
				ev.layersSignificant++
			}
			ev.bestAdjustedP = nanMin(ev.bestAdjustedP, r.AdjustedP)
			ev.maxAbsEffect = nanMax(ev.maxAbsEffect, math.Abs(r.EffectSize))
		}
	}

	for _, c := range correlations {
		r := math.Abs(c.PearsonR)
		evA := get(c.FeatureA)
		evA.maxAbsCorrelation = nanMax(evA.maxAbsCorrelation, r)
		evB := get(c.FeatureB)
		evB.maxAbsCorrelation = nanMax(evB.maxAbsCorrelation, r)
	}

	for id, score := range centralities {
		s := score
		get(id).centrality = &s
	}

	ranked := make([]omics.RankedBiomarker, 0, len(byFeature))
	for id, ev := range byFeature {
		ranked = append(ranked, omics.RankedBiomarker{
			Feature:           id,
			LayersTested:      ev.layersTested,
			LayersSignificant: ev.layersSignificant,
			BestAdjustedP:     ev.bestAdjustedP,
			MaxAbsEffect:      ev.maxAbsEffect,
			MaxAbsCorrelation: ev.maxAbsCorrelation,
			Centrality:        ev.centrality,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.LayersSignificant != b.LayersSignificant {
			return a.LayersSignificant > b.LayersSignificant
		}
		if c := compareAsc(a.BestAdjustedP, b.BestAdjustedP); c != 0 {
			return c < 0
		}
		if c := compareAsc(b.MaxAbsCorrelation, a.MaxAbsCorrelation); c != 0 {
			return c < 0
		}
		return a.Feature < b.Feature
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// PathwaySummary aggregates the significant features that share a pathway
// annotation.
type PathwaySummary struct {
	Pathway    string
	Features   []core.FeatureID
	MeanEffect float64
	SDEffect   float64
}

// RollupPathways groups significant test results by pathway annotation.
// Unannotated features are skipped. Summaries come back in descending mean
// effect order, ties broken by pathway name, with member features sorted.
func (o *Orchestrator) RollupPathways(annotator registry.Annotator, tests map[string][]omics.TestResult) ([]PathwaySummary, error) {
	type bucket struct {
		features map[core.FeatureID]bool
		effects  []float64
	}
	buckets := make(map[string]*bucket)

	for _, results := range tests {
		for _, r := range results {
			if !r.Significant {
				continue
			}
			annotations, err := annotator.Annotations(r.Feature)
			if err != nil {
				return nil, err
			}
			for _, a := range annotations {
				b, ok := buckets[a.Label]
				if !ok {
					b = &bucket{features: make(map[core.FeatureID]bool)}
					buckets[a.Label] = b
				}
				if !b.features[r.Feature] {
					b.features[r.Feature] = true
					b.effects = append(b.effects, r.EffectSize)
				}
			}
		}
	}

	pathways := make([]string, 0, len(buckets))
	for p := range buckets {
		pathways = append(pathways, p)
	}
	sort.Strings(pathways)

	summaries := make([]PathwaySummary, 0, len(pathways))
	for _, p := range pathways {
		b := buckets[p]
		features := make([]core.FeatureID, 0, len(b.features))
		for id := range b.features {
			features = append(features, id)
		}
		sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })

		mean, sd := meanSD(b.effects)
		summaries = append(summaries, PathwaySummary{
			Pathway:    p,
			Features:   features,
			MeanEffect: mean,
			SDEffect:   sd,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].MeanEffect != summaries[j].MeanEffect {
			return summaries[i].MeanEffect > summaries[j].MeanEffect
		}
		return summaries[i].Pathway < summaries[j].Pathway
	})
	return summaries, nil
}

// nanMin returns the smaller value, treating NaN as absent.
func nanMin(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Min(a, b)
}

// nanMax returns the larger value, treating NaN as absent.
func nanMax(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}

// compareAsc orders ascending with NaN after every defined value.
func compareAsc(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func meanSD(data []float64) (float64, float64) {
	if len(data) == 0 {
		return math.NaN(), math.NaN()
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))
	if len(data) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range data {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(data)-1))
}
