package omics

import (
	"errors"
	"math"
	"testing"

	"gobiomark/domain/core"
)

func TestAddFeature_LengthMismatch(t *testing.T) {
	m := NewFeatureMatrix("proteomics", []core.SampleID{"S1", "S2", "S3"})
	err := m.AddFeature("X", []float64{1, 2})
	if !errors.Is(err, core.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	if m.FeatureCount() != 0 {
		t.Error("rejected feature must not be stored")
	}
}

func TestFeatures_LexicalOrder(t *testing.T) {
	m := NewFeatureMatrix("proteomics", []core.SampleID{"S1"})
	for _, id := range []core.FeatureID{"TNF", "CRP", "IL6"} {
		if err := m.AddFeature(id, []float64{1}); err != nil {
			t.Fatal(err)
		}
	}

	got := m.Features()
	want := []core.FeatureID{"CRP", "IL6", "TNF"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("features = %v, want %v", got, want)
		}
	}
}

func TestValidate_UnlabeledSample(t *testing.T) {
	m := NewFeatureMatrix("proteomics", []core.SampleID{"S1", "S2"})
	labels := SampleLabels{"S1": "Control"}

	if err := m.Validate(labels); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}

	labels["S2"] = "Infected"
	if err := m.Validate(labels); err != nil {
		t.Fatalf("fully labeled matrix should validate, got %v", err)
	}
	// Extra labels for absent samples are fine.
	labels["S99"] = "Control"
	if err := m.Validate(labels); err != nil {
		t.Fatalf("extra labels should not fail validation, got %v", err)
	}
}

func TestColumnsFor(t *testing.T) {
	m := NewFeatureMatrix("proteomics", []core.SampleID{"S1", "S2", "S3", "S4"})
	labels := SampleLabels{"S1": "Control", "S2": "Infected", "S3": "Control", "S4": "Infected"}

	cols := m.ColumnsFor(labels, "Infected")
	if len(cols) != 2 || cols[0] != 1 || cols[1] != 3 {
		t.Errorf("infected columns = %v, want [1 3]", cols)
	}
	if got := m.ColumnsFor(labels, "Unknown"); len(got) != 0 {
		t.Errorf("unknown condition resolved columns %v", got)
	}
}

func TestConditions_LexicalVocabulary(t *testing.T) {
	labels := SampleLabels{"S1": "Infected", "S2": "Control", "S3": "Infected"}
	got := labels.Conditions()
	if len(got) != 2 || got[0] != "Control" || got[1] != "Infected" {
		t.Errorf("conditions = %v, want [Control Infected]", got)
	}
}

func TestProfile_IgnoresNaN(t *testing.T) {
	m := NewFeatureMatrix("metabolomics", []core.SampleID{"S1", "S2", "S3", "S4", "S5"})
	if err := m.AddFeature("lactate", []float64{1, 2, 3, 4, math.NaN()}); err != nil {
		t.Fatal(err)
	}

	p, err := m.Profile("lactate")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Mean != 2.5 {
		t.Errorf("mean = %g, want 2.5", p.Mean)
	}
	if p.Median != 2.5 {
		t.Errorf("median = %g, want 2.5", p.Median)
	}
	if p.Min != 1 || p.Max != 4 {
		t.Errorf("min/max = %g/%g, want 1/4", p.Min, p.Max)
	}
	if p.Missing != 1 {
		t.Errorf("missing = %d, want 1", p.Missing)
	}
}

func TestProfile_UnknownFeature(t *testing.T) {
	m := NewFeatureMatrix("metabolomics", []core.SampleID{"S1"})
	if _, err := m.Profile("nope"); !errors.Is(err, core.ErrFeatureNotFound) {
		t.Fatalf("expected ErrFeatureNotFound, got %v", err)
	}
}

func TestProfile_AllMissing(t *testing.T) {
	m := NewFeatureMatrix("metabolomics", []core.SampleID{"S1", "S2"})
	if err := m.AddFeature("X", []float64{math.NaN(), math.NaN()}); err != nil {
		t.Fatal(err)
	}
	p, err := m.Profile("X")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if !math.IsNaN(p.Mean) || p.Missing != 2 {
		t.Errorf("all-missing row: mean=%g missing=%d, want NaN/2", p.Mean, p.Missing)
	}
}

func TestAddFeature_CopiesRow(t *testing.T) {
	m := NewFeatureMatrix("proteomics", []core.SampleID{"S1", "S2"})
	values := []float64{1, 2}
	if err := m.AddFeature("X", values); err != nil {
		t.Fatal(err)
	}
	values[0] = 99

	row, _ := m.Row("X")
	if row[0] != 1 {
		t.Error("matrix must copy the row, not alias the caller's slice")
	}
}

func TestRestrict(t *testing.T) {
	m := NewFeatureMatrix("proteomics", []core.SampleID{"S1", "S2"})
	if err := m.AddFeature("IL6", []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddFeature("TNF", []float64{3, 4}); err != nil {
		t.Fatal(err)
	}

	sub := m.Restrict([]core.FeatureID{"IL6", "UNKNOWN"})
	if sub.FeatureCount() != 1 {
		t.Fatalf("restricted count = %d, want 1", sub.FeatureCount())
	}
	if _, ok := sub.Row("TNF"); ok {
		t.Error("TNF survived a restriction that excluded it")
	}

	// The copy must not alias the parent's rows.
	row, _ := sub.Row("IL6")
	row[0] = 99
	orig, _ := m.Row("IL6")
	if orig[0] != 1 {
		t.Error("restricted matrix aliases the parent's rows")
	}
}
