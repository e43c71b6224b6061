package ml

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// BoostSpec configures gradient boosted stumps under logistic loss. Each
// round fits a depth-1 regression tree to the pseudo-residuals and takes a
// damped Newton step per leaf. Importance is the normalized squared-error
// reduction accumulated per feature.
//
// Training is deterministic: no subsampling, so the seed has no effect.
type BoostSpec struct {
	Rounds    int
	LearnRate float64
	MinLeaf   int
}

// DefaultBoost mirrors the conventional n_estimators=100,
// learning_rate=0.1 configuration.
func DefaultBoost() BoostSpec {
	return BoostSpec{Rounds: 100, LearnRate: 0.1, MinLeaf: 2}
}

func (s BoostSpec) Name() string { return "gradient_boosting" }

func (s BoostSpec) New(seed int64) Classifier {
	cfg := s
	if cfg.Rounds == 0 {
		cfg.Rounds = 100
	}
	if cfg.LearnRate == 0 {
		cfg.LearnRate = 0.1
	}
	if cfg.MinLeaf == 0 {
		cfg.MinLeaf = 2
	}
	return &boost{cfg: cfg}
}

type boost struct {
	cfg        BoostSpec
	base       float64
	stumps     []stump
	importance []float64
}

// stump is a single-split regression tree. left holds the leaf value for
// rows at or below the threshold.
type stump struct {
	feature     int
	threshold   float64
	left, right float64
}

func (b *boost) Fit(X *mat.Dense, y []int) error {
	n, p := X.Dims()
	if n != len(y) {
		return fmt.Errorf("boost: %d rows but %d labels", n, len(y))
	}
	rows := denseRows(X)

	var pos float64
	for _, yi := range y {
		pos += float64(yi)
	}
	prior := math.Min(math.Max(pos/float64(n), 1e-6), 1-1e-6)
	b.base = math.Log(prior / (1 - prior))

	score := make([]float64, n)
	for i := range score {
		score[i] = b.base
	}

	b.importance = make([]float64, p)
	b.stumps = make([]stump, 0, b.cfg.Rounds)
	resid := make([]float64, n)
	hess := make([]float64, n)

	for m := 0; m < b.cfg.Rounds; m++ {
		for i := 0; i < n; i++ {
			pi := sigmoid(score[i])
			resid[i] = float64(y[i]) - pi
			hess[i] = pi * (1 - pi)
		}

		s, gain := b.bestStump(rows, resid, hess)
		if s.feature < 0 {
			break
		}
		b.importance[s.feature] += gain
		b.stumps = append(b.stumps, s)

		for i := 0; i < n; i++ {
			if rows[i][s.feature] <= s.threshold {
				score[i] += b.cfg.LearnRate * s.left
			} else {
				score[i] += b.cfg.LearnRate * s.right
			}
		}
	}

	// Normalize accumulated error reductions to sum to 1.
	var total float64
	for _, v := range b.importance {
		total += v
	}
	if total > 0 {
		for i := range b.importance {
			b.importance[i] /= total
		}
	}
	return nil
}

// bestStump scans every feature for the split with the largest squared-error
// reduction over the residuals, then sets the leaf values by a Newton step.
// Returns feature -1 when no split reduces the error.
func (b *boost) bestStump(rows [][]float64, resid, hess []float64) (stump, float64) {
	n := len(rows)
	p := len(rows[0])

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var sumAll float64
	for _, r := range resid {
		sumAll += r
	}

	best := stump{feature: -1}
	var bestGain float64
	var bestLeft []int

	for feature := 0; feature < p; feature++ {
		sorted := append([]int(nil), idx...)
		sort.Slice(sorted, func(i, j int) bool {
			return rows[sorted[i]][feature] < rows[sorted[j]][feature]
		})

		var sumLeft float64
		for split := 1; split <= n-b.cfg.MinLeaf; split++ {
			sumLeft += resid[sorted[split-1]]
			if split < b.cfg.MinLeaf {
				continue
			}
			lo := rows[sorted[split-1]][feature]
			hi := rows[sorted[split]][feature]
			if lo == hi {
				continue
			}
			nl, nr := float64(split), float64(n-split)
			sumRight := sumAll - sumLeft
			gain := sumLeft*sumLeft/nl + sumRight*sumRight/nr - sumAll*sumAll/float64(n)
			if gain > bestGain {
				best.feature = feature
				best.threshold = (lo + hi) / 2
				bestGain = gain
				bestLeft = append(bestLeft[:0], sorted[:split]...)
			}
		}
	}

	if best.feature < 0 {
		return best, 0
	}

	inLeft := make([]bool, n)
	for _, i := range bestLeft {
		inLeft[i] = true
	}
	var sumL, hessL, sumR, hessR float64
	for i := 0; i < n; i++ {
		if inLeft[i] {
			sumL += resid[i]
			hessL += hess[i]
		} else {
			sumR += resid[i]
			hessR += hess[i]
		}
	}
	best.left = sumL / math.Max(hessL, 1e-12)
	best.right = sumR / math.Max(hessR, 1e-12)
	return best, bestGain
}

func (b *boost) PredictProba(X *mat.Dense) []float64 {
	rows := denseRows(X)
	probs := make([]float64, len(rows))
	for i, row := range rows {
		score := b.base
		for _, s := range b.stumps {
			if row[s.feature] <= s.threshold {
				score += b.cfg.LearnRate * s.left
			} else {
				score += b.cfg.LearnRate * s.right
			}
		}
		probs[i] = sigmoid(score)
	}
	return probs
}

func (b *boost) FeatureImportance() []float64 {
	return append([]float64(nil), b.importance...)
}
