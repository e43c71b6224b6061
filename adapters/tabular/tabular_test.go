package tabular

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadMatrix_CSV(t *testing.T) {
	path := writeFile(t, "transcriptomics.csv",
		"feature,S1,S2,S3\n"+
			"IL6,100,110,400\n"+
			"TNF,50,NA,60\n")

	m, err := ReadMatrix(path, "transcriptomics")
	if err != nil {
		t.Fatalf("ReadMatrix: %v", err)
	}
	if m.Layer != "transcriptomics" {
		t.Errorf("layer = %s", m.Layer)
	}
	if m.SampleCount() != 3 || m.FeatureCount() != 2 {
		t.Fatalf("shape = %dx%d, want 2x3", m.FeatureCount(), m.SampleCount())
	}

	row, _ := m.Row("TNF")
	if row[0] != 50 || !math.IsNaN(row[1]) || row[2] != 60 {
		t.Errorf("TNF row = %v, want [50 NaN 60]", row)
	}
}

func TestReadMatrix_TSV(t *testing.T) {
	path := writeFile(t, "layer.tsv", "feature\tS1\tS2\nX\t1.5\t2.5\n")

	m, err := ReadMatrix(path, "proteomics")
	if err != nil {
		t.Fatalf("ReadMatrix: %v", err)
	}
	row, _ := m.Row("X")
	if row[0] != 1.5 || row[1] != 2.5 {
		t.Errorf("row = %v", row)
	}
}

func TestReadMatrix_Malformed(t *testing.T) {
	badCell := writeFile(t, "bad.csv", "feature,S1\nX,notanumber\n")
	if _, err := ReadMatrix(badCell, "l"); !errors.Is(err, core.ErrMalformedInput) {
		t.Errorf("bad cell: expected ErrMalformedInput, got %v", err)
	}

	headerOnly := writeFile(t, "empty.csv", "feature,S1\n")
	if _, err := ReadMatrix(headerOnly, "l"); !errors.Is(err, core.ErrMalformedInput) {
		t.Errorf("header only: expected ErrMalformedInput, got %v", err)
	}
}

func TestReadLabels(t *testing.T) {
	path := writeFile(t, "labels.csv", "sample,condition\nS1,Control\nS2,Infected\n")

	labels, err := ReadLabels(path)
	if err != nil {
		t.Fatalf("ReadLabels: %v", err)
	}
	if labels["S1"] != "Control" || labels["S2"] != "Infected" {
		t.Errorf("labels = %v", labels)
	}
}

func TestReadLabels_EmptyCondition(t *testing.T) {
	path := writeFile(t, "labels.csv", "sample,condition\nS1,\n")
	if _, err := ReadLabels(path); !errors.Is(err, core.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestReadEdges(t *testing.T) {
	path := writeFile(t, "edges.csv",
		"node_a,node_b,confidence\n"+
			"IL6,STAT3,0.999\n"+
			"IL6,TNF,0.95\n"+
			"LONER,,\n"+
			"A,B,\n")

	g, err := ReadEdges(path)
	if err != nil {
		t.Fatalf("ReadEdges: %v", err)
	}
	if g.NodeCount() != 6 {
		t.Errorf("nodes = %d, want 6", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("edges = %d, want 3", g.EdgeCount())
	}
	if !g.HasNode("LONER") {
		t.Error("row with empty second column should declare an isolated node")
	}
	// Missing confidence defaults to 1.
	for _, e := range g.Edges() {
		if e.A == "A" && e.Confidence != 1 {
			t.Errorf("default confidence = %g, want 1", e.Confidence)
		}
	}
}

func TestReadEdges_BadConfidence(t *testing.T) {
	path := writeFile(t, "edges.csv", "a,b,c\nX,Y,1.5\n")
	if _, err := ReadEdges(path); !errors.Is(err, core.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput for confidence > 1, got %v", err)
	}
}

func TestReadEdges_NoNodes(t *testing.T) {
	path := writeFile(t, "edges.csv", "a,b,c\n")
	if _, err := ReadEdges(path); !errors.Is(err, core.ErrEmptyGraph) {
		t.Fatalf("expected ErrEmptyGraph, got %v", err)
	}
}

func TestWriteTestResults_NaNAsNA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []omics.TestResult{{
		Feature:    "SPARSE",
		Layer:      "proteomics",
		EffectSize: 1.25,
		EffectKind: omics.EffectMeanDiff,
		Statistic:  math.NaN(),
		PValue:     math.NaN(),
		AdjustedP:  math.NaN(),
	}}

	if err := WriteTestResults(path, results); err != nil {
		t.Fatalf("WriteTestResults: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "SPARSE,proteomics,1.25,mean_diff,NA,NA,NA,false") {
		t.Errorf("unexpected row encoding:\n%s", content)
	}
}

func TestWriteRanked_MissingCentralityBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranked.csv")
	ranked := []omics.RankedBiomarker{
		{Feature: "IL6", Rank: 1, LayersTested: 2, LayersSignificant: 2,
			BestAdjustedP: 0.001, MaxAbsEffect: 2.1, MaxAbsCorrelation: 0.95,
			Centrality: &omics.CentralityScore{Degree: 3, Betweenness: 0.5, Closeness: 0.8}},
		{Feature: "kynurenine", Rank: 2, LayersTested: 1, LayersSignificant: 1,
			BestAdjustedP: 0.01, MaxAbsEffect: 0.9, MaxAbsCorrelation: math.NaN()},
	}

	if err := WriteRanked(path, ranked); err != nil {
		t.Fatalf("WriteRanked: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[2], ",NA,,,") {
		t.Errorf("missing centrality should leave blank columns, got %q", lines[2])
	}
}

func TestMatrixRoundTripThroughResults(t *testing.T) {
	// Write centralities, read the file back as raw CSV, check ordering.
	path := filepath.Join(t.TempDir(), "centrality.csv")
	scores := map[core.FeatureID]omics.CentralityScore{
		"TNF": {Degree: 1},
		"CRP": {Degree: 2},
		"IL6": {Degree: 3},
	}
	if err := WriteCentralities(path, scores); err != nil {
		t.Fatalf("WriteCentralities: %v", err)
	}

	records, err := readDelimited(path, ',')
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"CRP", "IL6", "TNF"}
	for i, w := range want {
		if records[i+1][0] != w {
			t.Errorf("row %d feature = %s, want %s (lexical order)", i+1, records[i+1][0], w)
		}
	}
}
