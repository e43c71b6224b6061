// Package difftest runs per-feature two-group differential abundance tests
// with Benjamini-Hochberg correction scoped to the invocation.
package difftest

import (
	"math"
	"sort"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"

	"gonum.org/v1/gonum/stat/distuv"
)

// Options configures one test invocation. The effect policy says which
// transform applies to this layer; it is never inferred from the data.
type Options struct {
	Kind      omics.TestKind
	Effect    omics.EffectKind
	Threshold omics.SignificanceThreshold
}

// DefaultOptions tests with Welch's t-test, mean-difference effects, and the
// padj<0.05 / |effect|>0.5 cut used for log-scale layers.
func DefaultOptions() Options {
	return Options{
		Kind:      omics.TestWelch,
		Effect:    omics.EffectMeanDiff,
		Threshold: omics.DefaultIntensityThreshold(),
	}
}

// Tester runs differential tests over a feature matrix. It is stateless;
// one instance may be shared across goroutines.
type Tester struct{}

// New creates a Tester.
func New() *Tester { return &Tester{} }

// Run tests every feature of the matrix between two condition groups.
// Results come back in lexical feature order with adjusted p-values computed
// across exactly this batch.
//
// A group resolving fewer than 2 labeled samples fails the whole call with
// ErrInsufficientSamples. Per-feature degeneracy (under 2 usable values in a
// group, zero variance in both) never fails the call: the feature is
// reported with p = NaN.
func (t *Tester) Run(m *omics.FeatureMatrix, labels omics.SampleLabels, groupA, groupB core.Condition, opts Options) ([]omics.TestResult, error) {
	if err := m.Validate(labels); err != nil {
		return nil, err
	}
	colsA := m.ColumnsFor(labels, groupA)
	colsB := m.ColumnsFor(labels, groupB)
	if len(colsA) < 2 {
		return nil, core.NewInsufficientSamplesError(groupA.String(), len(colsA))
	}
	if len(colsB) < 2 {
		return nil, core.NewInsufficientSamplesError(groupB.String(), len(colsB))
	}

	features := m.Features()
	results := make([]omics.TestResult, 0, len(features))
	raw := make([]float64, 0, len(features))

	for _, id := range features {
		row := m.Rows[id]
		a := gather(row, colsA)
		b := gather(row, colsB)
		res := t.testFeature(id, m.Layer, a, b, opts)
		results = append(results, res)
		raw = append(raw, res.PValue)
	}

	adjusted := BenjaminiHochberg(raw)
	for i := range results {
		results[i].AdjustedP = adjusted[i]
		results[i].Significant = significant(results[i], opts.Threshold)
	}
	return results, nil
}

func (t *Tester) testFeature(id core.FeatureID, layer string, a, b []float64, opts Options) omics.TestResult {
	res := omics.TestResult{
		Feature:    id,
		Layer:      layer,
		EffectKind: opts.Effect,
		GroupAN:    len(a),
		GroupBN:    len(b),
		Statistic:  math.NaN(),
		PValue:     math.NaN(),
	}

	res.GroupAMean = mean(a)
	res.GroupBMean = mean(b)
	res.EffectSize = effectSize(res.GroupAMean, res.GroupBMean, opts.Effect)

	if len(a) < 2 || len(b) < 2 {
		return res
	}

	switch opts.Kind {
	case omics.TestStudent:
		res.Statistic, res.PValue = studentTTest(a, b)
	case omics.TestRankSum:
		res.Statistic, res.PValue = rankSumTest(a, b)
	default:
		res.Statistic, res.PValue = welchTTest(a, b)
	}
	return res
}

func significant(r omics.TestResult, th omics.SignificanceThreshold) bool {
	if math.IsNaN(r.AdjustedP) || math.IsNaN(r.EffectSize) {
		return false
	}
	return r.AdjustedP < th.MaxAdjustedP && math.Abs(r.EffectSize) > th.MinAbsEffect
}

func effectSize(meanA, meanB float64, kind omics.EffectKind) float64 {
	switch kind {
	case omics.EffectLog2Ratio:
		if meanA <= 0 || meanB <= 0 {
			return math.NaN()
		}
		return math.Log2(meanA / meanB)
	default:
		return meanA - meanB
	}
}

// welchTTest computes Welch's t with Welch-Satterthwaite degrees of freedom
// and a two-tailed p-value from the t-distribution.
func welchTTest(a, b []float64) (float64, float64) {
	na, nb := float64(len(a)), float64(len(b))
	va, vb := variance(a), variance(b)

	se := math.Sqrt(va/na + vb/nb)
	if se == 0 {
		return math.NaN(), math.NaN()
	}
	tStat := (mean(a) - mean(b)) / se
	df := math.Pow(va/na+vb/nb, 2) /
		(math.Pow(va/na, 2)/(na-1) + math.Pow(vb/nb, 2)/(nb-1))
	return tStat, twoTailedT(tStat, df)
}

// studentTTest is the pooled-variance two-sample t-test.
func studentTTest(a, b []float64) (float64, float64) {
	na, nb := float64(len(a)), float64(len(b))
	va, vb := variance(a), variance(b)

	pooled := ((na-1)*va + (nb-1)*vb) / (na + nb - 2)
	se := math.Sqrt(pooled * (1/na + 1/nb))
	if se == 0 {
		return math.NaN(), math.NaN()
	}
	tStat := (mean(a) - mean(b)) / se
	return tStat, twoTailedT(tStat, na+nb-2)
}

// rankSumTest is the Mann-Whitney U test with the normal approximation,
// tie correction, and continuity correction.
func rankSumTest(a, b []float64) (float64, float64) {
	na, nb := float64(len(a)), float64(len(b))
	combined := make([]float64, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)

	ranks, tieTerm := averageRanks(combined)

	var rankSumA float64
	for i := range a {
		rankSumA += ranks[i]
	}
	u := rankSumA - na*(na+1)/2

	mu := na * nb / 2
	n := na + nb
	sigmaSq := na * nb / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if sigmaSq <= 0 {
		// All values tied: no ordering information.
		return u, math.NaN()
	}

	z := u - mu
	switch {
	case z > 0:
		z -= 0.5
	case z < 0:
		z += 0.5
	}
	z /= math.Sqrt(sigmaSq)

	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	return u, math.Min(p, 1)
}

func twoTailedT(tStat, df float64) float64 {
	if df <= 0 || math.IsNaN(tStat) {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(tStat))
	return math.Min(p, 1)
}

// averageRanks assigns 1-based ranks with ties averaged, and returns the
// tie-correction term sum(t^3 - t) over tie groups.
func averageRanks(data []float64) ([]float64, float64) {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return data[idx[i]] < data[idx[j]] })

	ranks := make([]float64, n)
	var tieTerm float64
	for i := 0; i < n; {
		j := i + 1
		for j < n && data[idx[j]] == data[idx[i]] {
			j++
		}
		size := j - i
		avg := float64(i+1) + float64(size-1)/2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if size > 1 {
			s := float64(size)
			tieTerm += s*s*s - s
		}
		i = j
	}
	return ranks, tieTerm
}

func gather(row []float64, cols []int) []float64 {
	out := make([]float64, 0, len(cols))
	for _, c := range cols {
		if !math.IsNaN(row[c]) {
			out = append(out, row[c])
		}
	}
	return out
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(data)-1)
}
