// Package ml trains and evaluates classifier variants over a feature matrix
// with a shared, seeded train/test partition.
package ml

import (
	"gonum.org/v1/gonum/mat"
)

// Classifier is the capability set every model family implements. Dispatch
// across families goes through this interface, never through runtime type
// inspection.
//
// X is samples x features; y holds class indices 0/1.
type Classifier interface {
	Fit(X *mat.Dense, y []int) error
	// PredictProba returns the probability of class 1 for each row of X.
	PredictProba(X *mat.Dense) []float64
	// FeatureImportance returns one non-negative score per feature column.
	// The scale is family-specific; only the ordering is comparable.
	FeatureImportance() []float64
}

// ModelSpec names a model variant and builds a fresh classifier for it.
// The seed is supplied by the evaluator so that every source of randomness
// in a run flows from the caller's split policy.
type ModelSpec interface {
	Name() string
	New(seed int64) Classifier
}
