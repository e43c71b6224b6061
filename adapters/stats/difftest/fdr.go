package difftest

import (
	"math"
	"sort"
)

// BenjaminiHochberg returns BH-adjusted p-values for one batch. The
// correction scope is exactly the slice passed in: adjusted values must be
// recomputed whenever the feature set changes, never cached across batches
// of different sizes.
//
// NaN entries (untestable features) stay NaN and do not count toward the
// number of tests.
func BenjaminiHochberg(pvalues []float64) []float64 {
	adjusted := make([]float64, len(pvalues))

	order := make([]int, 0, len(pvalues))
	for i, p := range pvalues {
		if math.IsNaN(p) {
			adjusted[i] = math.NaN()
			continue
		}
		order = append(order, i)
	}

	m := len(order)
	if m == 0 {
		return adjusted
	}

	sort.Slice(order, func(i, j int) bool { return pvalues[order[i]] < pvalues[order[j]] })

	// Walk from the largest p downward so adjusted values are monotonically
	// non-decreasing along the raw-p ordering.
	running := 1.0
	for rank := m; rank >= 1; rank-- {
		idx := order[rank-1]
		adj := pvalues[idx] * float64(m) / float64(rank)
		if adj < running {
			running = adj
		}
		adjusted[idx] = running
	}
	return adjusted
}
