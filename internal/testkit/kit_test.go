package testkit

import (
	"math"
	"testing"

	"gobiomark/domain/core"
)

func TestLabels_Balanced(t *testing.T) {
	labels := New(42).Labels(5)
	if len(labels) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(labels))
	}

	counts := map[string]int{}
	for _, c := range labels {
		counts[c.String()]++
	}
	if counts["Control"] != 5 || counts["Infected"] != 5 {
		t.Errorf("counts = %v, want 5/5", counts)
	}
}

func TestTranscriptomics_SpikedSeparation(t *testing.T) {
	kit := New(42)
	labels := kit.Labels(10)
	m := kit.Transcriptomics(labels, 20)

	if m.FeatureCount() != len(SpikedGenes)+20 {
		t.Fatalf("feature count = %d", m.FeatureCount())
	}

	infectedCols := m.ColumnsFor(labels, ConditionInfected)
	controlCols := m.ColumnsFor(labels, ConditionControl)

	for _, gene := range SpikedGenes {
		row, ok := m.Row(core.FeatureID(gene))
		if !ok {
			t.Fatalf("spiked gene %s missing", gene)
		}
		var infSum, ctlSum float64
		for _, c := range infectedCols {
			infSum += row[c]
		}
		for _, c := range controlCols {
			ctlSum += row[c]
		}
		if infSum <= 2*ctlSum {
			t.Errorf("%s: infected mean should be well above control (inf=%g, ctl=%g)",
				gene, infSum/10, ctlSum/10)
		}
	}

	// Counts are non-negative integers.
	for _, id := range m.Features() {
		row, _ := m.Row(id)
		for _, v := range row {
			if v < 0 || v != math.Trunc(v) {
				t.Fatalf("%s carries non-count value %g", id, v)
			}
		}
	}
}

func TestGeneration_SeedDeterminism(t *testing.T) {
	a := New(7)
	b := New(7)
	labelsA := a.Labels(6)
	labelsB := b.Labels(6)

	ma := a.Proteomics(labelsA, 10)
	mb := b.Proteomics(labelsB, 10)

	for _, id := range ma.Features() {
		rowA, _ := ma.Row(id)
		rowB, ok := mb.Row(id)
		if !ok {
			t.Fatalf("feature %s missing under same seed", id)
		}
		for i := range rowA {
			if rowA[i] != rowB[i] {
				t.Fatalf("%s[%d] differs: %g vs %g", id, i, rowA[i], rowB[i])
			}
		}
	}
}

func TestWithMissing(t *testing.T) {
	kit := New(42)
	labels := kit.Labels(10)
	m := kit.WithMissing(kit.Metabolomics(labels, 30), 0.2)

	nan, total := 0, 0
	for _, id := range m.Features() {
		row, _ := m.Row(id)
		for _, v := range row {
			total++
			if math.IsNaN(v) {
				nan++
			}
		}
	}
	frac := float64(nan) / float64(total)
	if frac < 0.1 || frac > 0.3 {
		t.Errorf("missing fraction = %g, want about 0.2", frac)
	}
}

func TestInteractionGraph_CoversSpikedPanel(t *testing.T) {
	g := New(42).InteractionGraph()
	for _, gene := range []string{"IL6", "STAT3", "TNF", "CRP"} {
		if !g.HasNode(core.FeatureID(gene)) {
			t.Errorf("graph missing %s", gene)
		}
	}
	if !g.HasNode("kynurenine") {
		t.Error("isolated metabolite node missing")
	}
}
