// Package tabular reads feature matrices, sample labels, and interaction
// edges from delimited files or XLSX workbooks, and exports every result
// collection as delimited tabular data.
package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"

	"github.com/xuri/excelize/v2"
)

// ReadMatrix reads a feature matrix: one row per feature, one column per
// sample, with sample ids in the header and the feature id in the first
// column. The format is chosen by extension (.csv, .tsv/.txt, .xlsx).
// Empty cells, "NA", and "NaN" parse to NaN.
func ReadMatrix(path, layer string) (*omics.FeatureMatrix, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, core.NewMalformedInputError(path, 1, "need a header row and at least one feature row")
	}

	header := records[0]
	if len(header) < 2 {
		return nil, core.NewMalformedInputError(path, 1, "need at least one sample column")
	}
	samples := make([]core.SampleID, 0, len(header)-1)
	for _, h := range header[1:] {
		samples = append(samples, core.SampleID(strings.TrimSpace(h)))
	}

	m := omics.NewFeatureMatrix(layer, samples)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(header) {
			return nil, core.NewMalformedInputError(path, line, fmt.Sprintf("expected %d columns, got %d", len(header), len(record)))
		}
		values := make([]float64, 0, len(samples))
		for _, cell := range record[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, core.NewMalformedInputError(path, line, err.Error())
			}
			values = append(values, v)
		}
		if err := m.AddFeature(core.FeatureID(strings.TrimSpace(record[0])), values); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ReadLabels reads a sample->condition mapping from a two-column file with a
// header row.
func ReadLabels(path string) (omics.SampleLabels, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, core.NewMalformedInputError(path, 1, "need a header row and at least one sample row")
	}

	labels := make(omics.SampleLabels, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, core.NewMalformedInputError(path, i+2, "need sample id and condition columns")
		}
		sample := core.SampleID(strings.TrimSpace(record[0]))
		condition := core.Condition(strings.TrimSpace(record[1]))
		if sample == "" || condition == "" {
			return nil, core.NewMalformedInputError(path, i+2, "empty sample id or condition")
		}
		labels[sample] = condition
	}
	return labels, nil
}

// ReadEdges reads (node A, node B, confidence) triples into an interaction
// graph. A row with an empty second column declares an isolated node.
func ReadEdges(path string) (*omics.InteractionGraph, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, core.NewMalformedInputError(path, 1, "empty edge list")
	}

	g := omics.NewInteractionGraph()
	for i, record := range records[1:] {
		line := i + 2
		if len(record) < 1 || strings.TrimSpace(record[0]) == "" {
			return nil, core.NewMalformedInputError(path, line, "missing node id")
		}
		a := core.FeatureID(strings.TrimSpace(record[0]))
		if len(record) < 2 || strings.TrimSpace(record[1]) == "" {
			g.AddNode(a)
			continue
		}
		b := core.FeatureID(strings.TrimSpace(record[1]))
		confidence := 1.0
		if len(record) >= 3 && strings.TrimSpace(record[2]) != "" {
			confidence, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
			if err != nil {
				return nil, core.NewMalformedInputError(path, line, "bad confidence: "+err.Error())
			}
			if confidence < 0 || confidence > 1 {
				return nil, core.NewMalformedInputError(path, line, fmt.Sprintf("confidence %v outside [0,1]", confidence))
			}
		}
		g.AddEdge(a, b, confidence)
	}
	if g.NodeCount() == 0 {
		return nil, core.ErrEmptyGraph
	}
	return g, nil
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".tsv", ".txt":
		return readDelimited(path, '\t')
	default:
		return readDelimited(path, ',')
	}
}

func readDelimited(path string, delim rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
