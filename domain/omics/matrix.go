// Package omics holds the data contracts shared by every analysis component:
// feature matrices, sample labels, and the immutable result types they
// produce. Nothing in this package performs statistics.
package omics

import (
	"fmt"
	"math"
	"sort"

	"gobiomark/domain/core"

	"github.com/montanaflynn/stats"
)

// FeatureMatrix is the canonical measurement object for one omics layer:
// one row per feature, one value per sample, in a fixed sample order.
// Missing measurements are NaN. Matrices are built once during ingest and
// treated as immutable by every downstream component.
type FeatureMatrix struct {
	Layer   string
	Samples []core.SampleID
	Rows    map[core.FeatureID][]float64
}

// NewFeatureMatrix creates an empty matrix with a fixed sample order.
func NewFeatureMatrix(layer string, samples []core.SampleID) *FeatureMatrix {
	return &FeatureMatrix{
		Layer:   layer,
		Samples: append([]core.SampleID(nil), samples...),
		Rows:    make(map[core.FeatureID][]float64),
	}
}

// AddFeature adds a feature row. The row must carry exactly one value per
// sample in the matrix's sample order.
func (m *FeatureMatrix) AddFeature(id core.FeatureID, values []float64) error {
	if len(values) != len(m.Samples) {
		return core.NewSchemaMismatchError(fmt.Sprintf(
			"feature %q has %d values for %d samples", id, len(values), len(m.Samples)))
	}
	m.Rows[id] = append([]float64(nil), values...)
	return nil
}

// Restrict returns a copy holding only the given features. Features the
// matrix never carried are ignored.
func (m *FeatureMatrix) Restrict(keep []core.FeatureID) *FeatureMatrix {
	sub := NewFeatureMatrix(m.Layer, m.Samples)
	for _, id := range keep {
		if row, ok := m.Rows[id]; ok {
			sub.Rows[id] = append([]float64(nil), row...)
		}
	}
	return sub
}

// Row returns the measurements for a feature.
func (m *FeatureMatrix) Row(id core.FeatureID) ([]float64, bool) {
	row, ok := m.Rows[id]
	return row, ok
}

// Features returns all feature ids in lexical order.
func (m *FeatureMatrix) Features() []core.FeatureID {
	ids := make([]core.FeatureID, 0, len(m.Rows))
	for id := range m.Rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FeatureCount returns the number of feature rows.
func (m *FeatureMatrix) FeatureCount() int { return len(m.Rows) }

// SampleCount returns the number of sample columns.
func (m *FeatureMatrix) SampleCount() int { return len(m.Samples) }

// SampleIndex returns the column position of each sample id.
func (m *FeatureMatrix) SampleIndex() map[core.SampleID]int {
	idx := make(map[core.SampleID]int, len(m.Samples))
	for i, s := range m.Samples {
		idx[s] = i
	}
	return idx
}

// Validate checks the matrix against a label mapping. Every matrix sample
// must be labeled; unlabeled columns are a schema mismatch, not a warning.
func (m *FeatureMatrix) Validate(labels SampleLabels) error {
	for _, s := range m.Samples {
		if _, ok := labels[s]; !ok {
			return core.NewSchemaMismatchError(fmt.Sprintf("sample %q has no condition label", s))
		}
	}
	return nil
}

// ColumnsFor returns the column indices of samples labeled with the given
// condition, in matrix sample order.
func (m *FeatureMatrix) ColumnsFor(labels SampleLabels, condition core.Condition) []int {
	cols := make([]int, 0, len(m.Samples))
	for i, s := range m.Samples {
		if labels[s] == condition {
			cols = append(cols, i)
		}
	}
	return cols
}

// SampleLabels maps each sample to its condition category.
type SampleLabels map[core.SampleID]core.Condition

// Conditions returns the distinct condition vocabulary in lexical order.
func (l SampleLabels) Conditions() []core.Condition {
	seen := make(map[core.Condition]bool)
	for _, c := range l {
		seen[c] = true
	}
	out := make([]core.Condition, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SamplesFor returns the sample ids carrying a condition, in lexical order.
func (l SampleLabels) SamplesFor(condition core.Condition) []core.SampleID {
	out := make([]core.SampleID, 0)
	for s, c := range l {
		if c == condition {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FeatureProfile summarizes one feature row for ingest QC and reporting.
type FeatureProfile struct {
	Feature core.FeatureID `json:"feature"`
	Mean    float64        `json:"mean"`
	StdDev  float64        `json:"std_dev"`
	Median  float64        `json:"median"`
	Q25     float64        `json:"q25"`
	Q75     float64        `json:"q75"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
	Missing int            `json:"missing"`
}

// Profile computes summary statistics for a feature row, ignoring NaNs.
func (m *FeatureMatrix) Profile(id core.FeatureID) (FeatureProfile, error) {
	row, ok := m.Rows[id]
	if !ok {
		return FeatureProfile{}, fmt.Errorf("%w: %s", core.ErrFeatureNotFound, id)
	}

	present := make([]float64, 0, len(row))
	missing := 0
	for _, v := range row {
		if math.IsNaN(v) {
			missing++
			continue
		}
		present = append(present, v)
	}

	p := FeatureProfile{Feature: id, Missing: missing}
	if len(present) == 0 {
		p.Mean, p.StdDev, p.Median = math.NaN(), math.NaN(), math.NaN()
		p.Q25, p.Q75, p.Min, p.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return p, nil
	}

	p.Mean, _ = stats.Mean(present)
	p.StdDev, _ = stats.StandardDeviationSample(present)
	p.Median, _ = stats.Median(present)
	p.Q25, _ = stats.Percentile(present, 25)
	p.Q75, _ = stats.Percentile(present, 75)
	p.Min, _ = stats.Min(present)
	p.Max, _ = stats.Max(present)
	return p, nil
}
