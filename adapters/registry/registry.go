// Package registry models external annotation providers (pathway,
// interaction, and clinical-trial registries) as injected lookup
// capabilities. The core never performs network calls: providers here are
// backed by in-memory tables materialized before a run, and tests inject
// their own.
package registry

import (
	"sort"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"
)

// Annotation is one opaque fact about a feature from an external registry.
type Annotation struct {
	Source string `json:"source"` // registry name, e.g. "kegg", "clinicaltrials"
	Key    string `json:"key"`    // registry-side identifier
	Label  string `json:"label"`  // human-readable annotation
}

// Annotator is the single-method lookup capability the core depends on.
type Annotator interface {
	Annotations(feature core.FeatureID) ([]Annotation, error)
}

// Static is a table-backed Annotator.
type Static struct {
	source string
	table  map[core.FeatureID][]Annotation
}

// NewStatic creates a table-backed annotator for one registry source.
func NewStatic(source string, table map[core.FeatureID][]Annotation) *Static {
	return &Static{source: source, table: table}
}

// Annotations returns the feature's annotations; unknown features return an
// empty slice, never an error.
func (s *Static) Annotations(feature core.FeatureID) ([]Annotation, error) {
	return append([]Annotation(nil), s.table[feature]...), nil
}

// Multi fans one lookup out across several registries, concatenating results
// in registry order.
type Multi []Annotator

func (m Multi) Annotations(feature core.FeatureID) ([]Annotation, error) {
	var out []Annotation
	for _, a := range m {
		anns, err := a.Annotations(feature)
		if err != nil {
			return nil, err
		}
		out = append(out, anns...)
	}
	return out, nil
}

// DefaultPathways returns the bundled KEGG pathway table for the immune
// signalling panel.
func DefaultPathways() *Static {
	table := map[core.FeatureID][]Annotation{}
	add := func(feature core.FeatureID, pathways ...string) {
		for _, p := range pathways {
			table[feature] = append(table[feature], Annotation{Source: "kegg", Key: p[:8], Label: p})
		}
	}
	add("IL6", "hsa04620: Toll-like receptor signaling pathway", "hsa04060: Cytokine-cytokine receptor interaction")
	add("TNF", "hsa04060: Cytokine-cytokine receptor interaction", "hsa04668: TNF signaling pathway")
	add("IFNG", "hsa04060: Cytokine-cytokine receptor interaction", "hsa04062: Chemokine signaling pathway")
	add("IL1B", "hsa04060: Cytokine-cytokine receptor interaction", "hsa04620: Toll-like receptor signaling pathway")
	add("NFKB1", "hsa04620: Toll-like receptor signaling pathway", "hsa04668: TNF signaling pathway")
	add("STAT1", "hsa04620: Toll-like receptor signaling pathway", "hsa04687: Jak-STAT signaling pathway")
	add("JAK1", "hsa04687: Jak-STAT signaling pathway")
	add("JAK2", "hsa04687: Jak-STAT signaling pathway")
	add("TLR4", "hsa04620: Toll-like receptor signaling pathway")
	return NewStatic("kegg", table)
}

// DefaultTrials returns the bundled clinical-trial registry table linking
// biomarkers to registered interventional studies.
func DefaultTrials() *Static {
	table := map[core.FeatureID][]Annotation{}
	add := func(trial, title string, features ...core.FeatureID) {
		for _, f := range features {
			table[f] = append(table[f], Annotation{Source: "clinicaltrials", Key: trial, Label: title})
		}
	}
	add("NCT04287686", "Study of JAK Inhibitor in Hospitalized Patients With COVID-19", "JAK1", "STAT1", "IL6")
	add("NCT03799133", "Efficacy and Safety of IL-6 Receptor Antagonist in Patients With Sepsis", "IL6", "TNF", "NFKB1")
	add("NCT04643236", "Study of Interferon-Beta in Hospitalized Patients With Severe COVID-19", "IFNG", "JAK1", "STAT1")
	add("NCT04660331", "TNF-Alpha Inhibition for Moderate to Severe COVID-19", "TNF", "IL1B", "NFKB1")
	return NewStatic("clinicaltrials", table)
}

// DefaultInteractions returns the bundled high-confidence interaction edges
// for the immune signalling panel as a ready-to-score graph.
func DefaultInteractions() *omics.InteractionGraph {
	g := omics.NewInteractionGraph()
	edges := []omics.Interaction{
		{A: "IL6", B: "STAT3", Confidence: 0.999},
		{A: "IL6", B: "JAK1", Confidence: 0.998},
		{A: "TNF", B: "NFKB1", Confidence: 0.999},
		{A: "TNF", B: "MAPK1", Confidence: 0.997},
		{A: "IFNG", B: "STAT1", Confidence: 0.999},
		{A: "NFKB1", B: "RELA", Confidence: 0.999},
		{A: "JAK1", B: "STAT1", Confidence: 0.999},
		{A: "JAK2", B: "STAT1", Confidence: 0.999},
		{A: "TLR4", B: "MYD88", Confidence: 0.999},
		{A: "IL1B", B: "IL1R1", Confidence: 0.999},
		{A: "CD4", B: "LCK", Confidence: 0.999},
		{A: "CD8A", B: "LCK", Confidence: 0.998},
	}
	for _, e := range edges {
		g.AddEdge(e.A, e.B, e.Confidence)
	}
	return g
}

// PathwayLabels extracts the distinct pathway labels for a feature set,
// sorted for deterministic reporting.
func PathwayLabels(a Annotator, features []core.FeatureID) (map[core.FeatureID][]string, error) {
	out := make(map[core.FeatureID][]string, len(features))
	for _, f := range features {
		anns, err := a.Annotations(f)
		if err != nil {
			return nil, err
		}
		for _, ann := range anns {
			out[f] = append(out[f], ann.Label)
		}
		sort.Strings(out[f])
	}
	return out, nil
}
