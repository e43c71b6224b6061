// Package correlate computes cross-layer feature associations (Pearson and
// Spearman) over the samples two layers share.
package correlate

import (
	"math"
	"sort"

	"gobiomark/adapters/stats/difftest"
	"gobiomark/domain/core"
	"gobiomark/domain/omics"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minOverlap is the fewest overlapping samples a pair needs to be reported.
// Below 3 a correlation coefficient carries no information.
const minOverlap = 3

// Pair names one layer-A feature matched to one layer-B feature.
type Pair struct {
	A core.FeatureID
	B core.FeatureID
}

// Options configures one correlation batch.
type Options struct {
	// AdjustFDR applies Benjamini-Hochberg across this batch, independently
	// for the Pearson and Spearman p-value families. Correction scope is the
	// batch, exactly as in differential testing.
	AdjustFDR bool
	// SortByAbsPearson orders results by descending |Pearson r| instead of
	// pairing order. NaN coefficients sort last; ties break on pair ids.
	SortByAbsPearson bool
}

// Engine computes pairwise associations. Stateless.
type Engine struct{}

// New creates an Engine.
func New() *Engine { return &Engine{} }

// Correlate computes Pearson and Spearman association for each requested
// pair. Samples missing from either layer, or NaN in either feature, are
// dropped pairwise. Pairs with fewer than 3 overlapping samples are skipped
// entirely, not reported. Output order follows the pairing slice unless
// opts.SortByAbsPearson is set.
func (e *Engine) Correlate(layerA, layerB *omics.FeatureMatrix, pairing []Pair, opts Options) ([]omics.CorrelationResult, error) {
	idxB := layerB.SampleIndex()

	// Column pairs for samples present in both layers, in layer-A order.
	shared := make([][2]int, 0, len(layerA.Samples))
	for i, s := range layerA.Samples {
		if j, ok := idxB[s]; ok {
			shared = append(shared, [2]int{i, j})
		}
	}

	results := make([]omics.CorrelationResult, 0, len(pairing))
	for _, pair := range pairing {
		rowA, okA := layerA.Row(pair.A)
		rowB, okB := layerB.Row(pair.B)
		if !okA || !okB {
			continue
		}

		x := make([]float64, 0, len(shared))
		y := make([]float64, 0, len(shared))
		for _, cols := range shared {
			va, vb := rowA[cols[0]], rowB[cols[1]]
			if math.IsNaN(va) || math.IsNaN(vb) {
				continue
			}
			x = append(x, va)
			y = append(y, vb)
		}
		if len(x) < minOverlap {
			continue
		}

		res := omics.CorrelationResult{FeatureA: pair.A, FeatureB: pair.B, N: len(x)}
		res.PearsonR = clampR(stat.Correlation(x, y, nil))
		res.PearsonP = correlationP(res.PearsonR, len(x))

		rx := ranks(x)
		ry := ranks(y)
		res.SpearmanR = clampR(stat.Correlation(rx, ry, nil))
		res.SpearmanP = correlationP(res.SpearmanR, len(x))

		results = append(results, res)
	}

	if opts.AdjustFDR {
		adjustBatch(results)
	}
	if opts.SortByAbsPearson {
		sortByAbsPearson(results)
	}
	return results, nil
}

func adjustBatch(results []omics.CorrelationResult) {
	pearson := make([]float64, len(results))
	spearman := make([]float64, len(results))
	for i, r := range results {
		pearson[i] = r.PearsonP
		spearman[i] = r.SpearmanP
	}
	pearson = difftest.BenjaminiHochberg(pearson)
	spearman = difftest.BenjaminiHochberg(spearman)
	for i := range results {
		results[i].PearsonP = pearson[i]
		results[i].SpearmanP = spearman[i]
	}
}

func sortByAbsPearson(results []omics.CorrelationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ai, aj := math.Abs(results[i].PearsonR), math.Abs(results[j].PearsonR)
		if math.IsNaN(aj) && !math.IsNaN(ai) {
			return true
		}
		if math.IsNaN(ai) {
			return false
		}
		if ai != aj {
			return ai > aj
		}
		if results[i].FeatureA != results[j].FeatureA {
			return results[i].FeatureA < results[j].FeatureA
		}
		return results[i].FeatureB < results[j].FeatureB
	})
}

// correlationP is the two-tailed p-value from the t transform
// t = r*sqrt((n-2)/(1-r^2)) with n-2 degrees of freedom.
func correlationP(r float64, n int) float64 {
	if math.IsNaN(r) || n < 3 {
		return math.NaN()
	}
	if 1-r*r <= 0 {
		// Perfect correlation: the t statistic diverges.
		return 0
	}
	tStat := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return math.Min(2*dist.CDF(-math.Abs(tStat)), 1)
}

func clampR(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// ranks assigns 1-based ranks with ties averaged.
func ranks(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return data[idx[i]] < data[idx[j]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && data[idx[j]] == data[idx[i]] {
			j++
		}
		avg := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			out[idx[k]] = avg
		}
		i = j
	}
	return out
}
