package ml

import (
	"fmt"
	"math"
	"sort"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"

	"gonum.org/v1/gonum/mat"
)

// Evaluator trains and scores classifier variants on a feature matrix.
// Stateless; all randomness flows from the SplitPolicy seed.
type Evaluator struct{}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator { return &Evaluator{} }

// Evaluate fits every model spec on the same seeded partition(s) and returns
// one ModelReport per spec, in spec order.
//
// Labels must form exactly two conditions; the lexically later condition is
// class 1 (so Control/Infected maps Infected to the positive class). A
// one-class test partition keeps its accuracy but reports AUC as NaN rather
// than aborting; ErrDegenerateSplit is returned only when no partition has a
// trainable (two-class) train side.
func (e *Evaluator) Evaluate(m *omics.FeatureMatrix, labels omics.SampleLabels, specs []ModelSpec, split SplitPolicy) ([]omics.ModelReport, error) {
	if len(specs) == 0 {
		return nil, core.ErrNoModels
	}
	if err := m.Validate(labels); err != nil {
		return nil, err
	}

	conditions := labels.Conditions()
	if len(conditions) != 2 {
		return nil, fmt.Errorf("evaluator requires exactly 2 conditions, got %d", len(conditions))
	}

	features := m.Features()
	X, y := designMatrix(m, labels, features, conditions)

	parts := split.partitions(y)
	trainable := 0
	for _, part := range parts {
		if !oneClass(y, part.train) {
			trainable++
		}
	}
	if trainable == 0 {
		return nil, fmt.Errorf("%w: every partition under seed %d", core.ErrDegenerateSplit, split.Seed)
	}

	reports := make([]omics.ModelReport, 0, len(specs))
	for i, spec := range specs {
		seed := split.Seed + int64(i)*7919 // distinct per-model stream, still seed-derived
		report, err := e.evaluateModel(spec, seed, X, y, parts, features, conditions)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.Name(), err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (e *Evaluator) evaluateModel(spec ModelSpec, seed int64, X *mat.Dense, y []int, parts []partition, features []core.FeatureID, conditions []core.Condition) (omics.ModelReport, error) {
	_, p := X.Dims()
	report := omics.ModelReport{Model: spec.Name()}
	if len(parts) > 1 {
		report.Folds = len(parts)
	}

	var accSum, aucSum float64
	accN, aucN := 0, 0
	confusion := make(map[[2]int]int)
	importanceSum := make([]float64, p)

	for _, part := range parts {
		if oneClass(y, part.train) {
			continue
		}
		clf := spec.New(seed)
		trainX, trainY := subset(X, y, part.train)
		if err := clf.Fit(trainX, trainY); err != nil {
			return report, err
		}
		testX, testY := subset(X, y, part.test)
		probs := clf.PredictProba(testX)

		accSum += accuracy(probs, testY)
		accN++
		report.TrainN += len(part.train)
		report.TestN += len(part.test)

		if auc := rocAUC(probs, testY); !math.IsNaN(auc) {
			aucSum += auc
			aucN++
		}
		for i, prob := range probs {
			confusion[[2]int{testY[i], predictClass(prob)}]++
		}
		for j, v := range clf.FeatureImportance() {
			importanceSum[j] += v
		}
	}

	if accN == 0 {
		return report, core.ErrDegenerateSplit
	}
	report.Accuracy = accSum / float64(accN)
	report.AUC = math.NaN()
	if aucN > 0 {
		report.AUC = aucSum / float64(aucN)
	}
	report.Confusion = confusionCells(confusion, conditions)
	report.Importance = importanceRanking(importanceSum, features)
	return report, nil
}

// designMatrix lays the matrix out samples x features with lexically ordered
// feature columns. Missing measurements become 0, matching the upstream
// convention for model input.
func designMatrix(m *omics.FeatureMatrix, labels omics.SampleLabels, features []core.FeatureID, conditions []core.Condition) (*mat.Dense, []int) {
	n := m.SampleCount()
	X := mat.NewDense(n, len(features), nil)
	for j, id := range features {
		row := m.Rows[id]
		for i := 0; i < n; i++ {
			v := row[i]
			if math.IsNaN(v) {
				v = 0
			}
			X.Set(i, j, v)
		}
	}

	y := make([]int, n)
	for i, s := range m.Samples {
		if labels[s] == conditions[1] {
			y[i] = 1
		}
	}
	return X, y
}

func subset(X *mat.Dense, y []int, idx []int) (*mat.Dense, []int) {
	_, p := X.Dims()
	sub := mat.NewDense(len(idx), p, nil)
	subY := make([]int, len(idx))
	row := make([]float64, p)
	for i, sample := range idx {
		mat.Row(row, sample, X)
		sub.SetRow(i, row)
		subY[i] = y[sample]
	}
	return sub, subY
}

func oneClass(y []int, idx []int) bool {
	if len(idx) == 0 {
		return true
	}
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

func confusionCells(counts map[[2]int]int, conditions []core.Condition) []omics.ConfusionCell {
	cells := make([]omics.ConfusionCell, 0, 4)
	for actual := 0; actual < len(conditions); actual++ {
		for predicted := 0; predicted < len(conditions); predicted++ {
			cells = append(cells, omics.ConfusionCell{
				Actual:    conditions[actual],
				Predicted: conditions[predicted],
				Count:     counts[[2]int{actual, predicted}],
			})
		}
	}
	return cells
}

func importanceRanking(scores []float64, features []core.FeatureID) []omics.FeatureImportance {
	out := make([]omics.FeatureImportance, len(features))
	for i, id := range features {
		out[i] = omics.FeatureImportance{Feature: id, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
