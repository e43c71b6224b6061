package registry

import (
	"testing"

	"gobiomark/domain/core"
)

func TestStatic_UnknownFeatureIsEmptyNotError(t *testing.T) {
	s := NewStatic("kegg", map[core.FeatureID][]Annotation{
		"IL6": {{Source: "kegg", Key: "hsa04620", Label: "Toll-like receptor signaling pathway"}},
	})

	anns, err := s.Annotations("NOT_A_GENE")
	if err != nil {
		t.Fatalf("unknown feature must not error: %v", err)
	}
	if len(anns) != 0 {
		t.Errorf("unknown feature returned %v", anns)
	}

	known, err := s.Annotations("IL6")
	if err != nil {
		t.Fatal(err)
	}
	if len(known) != 1 || known[0].Key != "hsa04620" {
		t.Errorf("annotations = %v", known)
	}
}

func TestStatic_ReturnsCopy(t *testing.T) {
	table := map[core.FeatureID][]Annotation{
		"IL6": {{Source: "kegg", Key: "k", Label: "l"}},
	}
	s := NewStatic("kegg", table)

	anns, _ := s.Annotations("IL6")
	anns[0].Key = "mutated"

	again, _ := s.Annotations("IL6")
	if again[0].Key != "k" {
		t.Error("annotator must not expose its backing table to mutation")
	}
}

func TestMulti_ConcatenatesInOrder(t *testing.T) {
	first := NewStatic("kegg", map[core.FeatureID][]Annotation{
		"IL6": {{Source: "kegg", Key: "a", Label: "pathway"}},
	})
	second := NewStatic("clinicaltrials", map[core.FeatureID][]Annotation{
		"IL6": {{Source: "clinicaltrials", Key: "b", Label: "trial"}},
	})

	anns, err := Multi{first, second}.Annotations("IL6")
	if err != nil {
		t.Fatal(err)
	}
	if len(anns) != 2 || anns[0].Source != "kegg" || anns[1].Source != "clinicaltrials" {
		t.Errorf("annotations = %v", anns)
	}
}

func TestDefaultTables(t *testing.T) {
	anns, err := DefaultPathways().Annotations("IL6")
	if err != nil || len(anns) == 0 {
		t.Errorf("IL6 should carry pathway annotations, got %v (%v)", anns, err)
	}

	trials, err := DefaultTrials().Annotations("TNF")
	if err != nil || len(trials) == 0 {
		t.Errorf("TNF should carry trial annotations, got %v (%v)", trials, err)
	}

	g := DefaultInteractions()
	if !g.HasNode("IL6") || !g.HasNode("STAT3") {
		t.Error("bundled interaction graph should cover the immune panel")
	}
	if g.EdgeCount() != 12 {
		t.Errorf("edge count = %d, want 12", g.EdgeCount())
	}
}

func TestPathwayLabels_Sorted(t *testing.T) {
	labels, err := PathwayLabels(DefaultPathways(), []core.FeatureID{"TNF"})
	if err != nil {
		t.Fatal(err)
	}
	got := labels["TNF"]
	if len(got) != 2 {
		t.Fatalf("labels = %v", got)
	}
	if got[0] > got[1] {
		t.Errorf("labels must be sorted, got %v", got)
	}
}
