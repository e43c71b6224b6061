package ml

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ForestSpec configures a random forest of CART trees grown on bootstrap
// samples with random feature subsets at each split. Importance is the
// normalized mean impurity decrease, the tree-ensemble counterpart of the
// linear model's coefficient magnitudes.
type ForestSpec struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
}

// DefaultForest mirrors the conventional n_estimators=100 configuration.
func DefaultForest() ForestSpec {
	return ForestSpec{Trees: 100, MaxDepth: 10, MinLeaf: 2}
}

func (s ForestSpec) Name() string { return "random_forest" }

func (s ForestSpec) New(seed int64) Classifier {
	cfg := s
	if cfg.Trees == 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinLeaf == 0 {
		cfg.MinLeaf = 2
	}
	return &forest{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

type forest struct {
	cfg        ForestSpec
	rng        *rand.Rand
	trees      []*treeNode
	importance []float64
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	leaf      bool
	prob      float64
}

func (f *forest) Fit(X *mat.Dense, y []int) error {
	n, p := X.Dims()
	rows := denseRows(X)

	f.importance = make([]float64, p)
	f.trees = make([]*treeNode, 0, f.cfg.Trees)
	mtry := int(math.Ceil(math.Sqrt(float64(p))))

	for t := 0; t < f.cfg.Trees; t++ {
		// Bootstrap sample.
		sample := make([]int, n)
		for i := range sample {
			sample[i] = f.rng.Intn(n)
		}
		f.trees = append(f.trees, f.grow(rows, y, sample, mtry, 0, n))
	}

	// Normalize accumulated impurity decreases to sum to 1.
	var total float64
	for _, v := range f.importance {
		total += v
	}
	if total > 0 {
		for i := range f.importance {
			f.importance[i] /= total
		}
	}
	return nil
}

func (f *forest) grow(rows [][]float64, y []int, idx []int, mtry, depth, nTotal int) *treeNode {
	prob := classProb(y, idx)
	if depth >= f.cfg.MaxDepth || len(idx) < 2*f.cfg.MinLeaf || prob == 0 || prob == 1 {
		return &treeNode{leaf: true, prob: prob}
	}

	feature, threshold, gain, left, right := f.bestSplit(rows, y, idx, mtry)
	if feature < 0 {
		return &treeNode{leaf: true, prob: prob}
	}

	f.importance[feature] += float64(len(idx)) / float64(nTotal) * gain
	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      f.grow(rows, y, left, mtry, depth+1, nTotal),
		right:     f.grow(rows, y, right, mtry, depth+1, nTotal),
	}
}

// bestSplit scans a random feature subset for the split with the largest
// gini gain. Returns feature -1 when no split improves impurity.
func (f *forest) bestSplit(rows [][]float64, y []int, idx []int, mtry int) (int, float64, float64, []int, []int) {
	p := len(rows[0])
	candidates := f.rng.Perm(p)[:mtry]
	parent := gini(y, idx)

	bestFeature := -1
	var bestThreshold, bestGain float64
	var bestLeft, bestRight []int

	for _, feature := range candidates {
		sorted := append([]int(nil), idx...)
		sort.Slice(sorted, func(i, j int) bool {
			return rows[sorted[i]][feature] < rows[sorted[j]][feature]
		})

		for split := f.cfg.MinLeaf; split <= len(sorted)-f.cfg.MinLeaf; split++ {
			lo := rows[sorted[split-1]][feature]
			hi := rows[sorted[split]][feature]
			if lo == hi {
				continue
			}
			left := sorted[:split]
			right := sorted[split:]
			nl, nr := float64(len(left)), float64(len(right))
			nTot := nl + nr
			gain := parent - nl/nTot*gini(y, left) - nr/nTot*gini(y, right)
			if gain > bestGain {
				bestFeature = feature
				bestThreshold = (lo + hi) / 2
				bestGain = gain
				bestLeft = append([]int(nil), left...)
				bestRight = append([]int(nil), right...)
			}
		}
	}
	return bestFeature, bestThreshold, bestGain, bestLeft, bestRight
}

func (f *forest) PredictProba(X *mat.Dense) []float64 {
	rows := denseRows(X)
	probs := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for _, tree := range f.trees {
			sum += predictTree(tree, row)
		}
		probs[i] = sum / float64(len(f.trees))
	}
	return probs
}

func (f *forest) FeatureImportance() []float64 {
	return append([]float64(nil), f.importance...)
}

func predictTree(node *treeNode, row []float64) float64 {
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.prob
}

func classProb(y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	pos := 0
	for _, i := range idx {
		if y[i] == 1 {
			pos++
		}
	}
	return float64(pos) / float64(len(idx))
}

func gini(y []int, idx []int) float64 {
	p := classProb(y, idx)
	return 2 * p * (1 - p)
}

func denseRows(X *mat.Dense) [][]float64 {
	n, p := X.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, p)
		mat.Row(rows[i], i, X)
	}
	return rows
}
