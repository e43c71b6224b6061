package ml

import (
	"math/rand"
)

// SplitPolicy fixes the train/test partition for one evaluation call. The
// same partition is reused by every model in the call so their metrics are
// comparable. Seeds are explicit and never silently re-seeded.
type SplitPolicy struct {
	// TestFraction of samples held out, used when KFold < 2.
	TestFraction float64
	// KFold enables stratified k-fold cross validation when >= 2.
	KFold int
	// Seed drives sample shuffling and any model-internal randomness.
	Seed int64
}

// DefaultSplit is the 80/20 holdout the original modeling stage used.
func DefaultSplit(seed int64) SplitPolicy {
	return SplitPolicy{TestFraction: 0.2, Seed: seed}
}

// partition is one train/test index split.
type partition struct {
	train []int
	test  []int
}

// partitions materializes the split policy over the label vector. Both
// holdout and k-fold splits are stratified: each class is shuffled and dealt
// separately so class balance survives the split.
func (p SplitPolicy) partitions(y []int) []partition {
	rng := rand.New(rand.NewSource(p.Seed))
	byClass := indicesByClass(y)
	for _, idx := range byClass {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}

	if p.KFold >= 2 {
		return kfold(byClass, p.KFold)
	}
	return []partition{holdout(byClass, p.TestFraction)}
}

func indicesByClass(y []int) [][]int {
	classes := 0
	for _, c := range y {
		if c+1 > classes {
			classes = c + 1
		}
	}
	byClass := make([][]int, classes)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	return byClass
}

func holdout(byClass [][]int, testFraction float64) partition {
	var part partition
	for _, idx := range byClass {
		nTest := int(float64(len(idx)) * testFraction)
		if nTest < 1 && len(idx) > 1 {
			nTest = 1
		}
		part.test = append(part.test, idx[:nTest]...)
		part.train = append(part.train, idx[nTest:]...)
	}
	return part
}

func kfold(byClass [][]int, k int) []partition {
	folds := make([][]int, k)
	for _, idx := range byClass {
		for i, sample := range idx {
			folds[i%k] = append(folds[i%k], sample)
		}
	}

	parts := make([]partition, 0, k)
	for i := 0; i < k; i++ {
		var part partition
		for j, fold := range folds {
			if j == i {
				part.test = append(part.test, fold...)
			} else {
				part.train = append(part.train, fold...)
			}
		}
		parts = append(parts, part)
	}
	return parts
}
