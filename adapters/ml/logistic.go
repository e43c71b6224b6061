package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticSpec configures an L2-regularized logistic regression trained by
// batch gradient descent. Inputs are standardized with train-partition
// mean/sd; the same transform is applied at prediction time.
type LogisticSpec struct {
	// Lambda is the L2 penalty on the weights (not the intercept).
	Lambda float64
	// LearnRate and MaxIter bound the gradient descent loop.
	LearnRate float64
	MaxIter   int
	// Tol stops early when the gradient norm falls below it.
	Tol float64
}

// DefaultLogistic mirrors the conventional max_iter=1000 configuration.
func DefaultLogistic() LogisticSpec {
	return LogisticSpec{Lambda: 1.0, LearnRate: 0.1, MaxIter: 1000, Tol: 1e-6}
}

func (s LogisticSpec) Name() string { return "logistic_regression" }

func (s LogisticSpec) New(seed int64) Classifier {
	cfg := s
	if cfg.LearnRate == 0 {
		cfg.LearnRate = 0.1
	}
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 1000
	}
	return &logistic{cfg: cfg}
}

type logistic struct {
	cfg     LogisticSpec
	weights []float64
	bias    float64
	mean    []float64
	scale   []float64
}

func (l *logistic) Fit(X *mat.Dense, y []int) error {
	n, p := X.Dims()
	if n != len(y) {
		return fmt.Errorf("logistic: %d rows but %d labels", n, len(y))
	}

	l.mean, l.scale = columnStats(X)
	Z := standardize(X, l.mean, l.scale)

	l.weights = make([]float64, p)
	l.bias = 0
	grad := make([]float64, p)
	row := make([]float64, p)

	for iter := 0; iter < l.cfg.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64

		for i := 0; i < n; i++ {
			mat.Row(row, i, Z)
			resid := sigmoid(floats.Dot(l.weights, row)+l.bias) - float64(y[i])
			floats.AddScaled(grad, resid, row)
			gradBias += resid
		}

		inv := 1 / float64(n)
		floats.Scale(inv, grad)
		gradBias *= inv
		floats.AddScaled(grad, l.cfg.Lambda*inv, l.weights)

		floats.AddScaled(l.weights, -l.cfg.LearnRate, grad)
		l.bias -= l.cfg.LearnRate * gradBias

		if floats.Norm(grad, 2) < l.cfg.Tol {
			break
		}
	}
	return nil
}

func (l *logistic) PredictProba(X *mat.Dense) []float64 {
	n, p := X.Dims()
	Z := standardize(X, l.mean, l.scale)
	row := make([]float64, p)
	probs := make([]float64, n)
	for i := 0; i < n; i++ {
		mat.Row(row, i, Z)
		probs[i] = sigmoid(floats.Dot(l.weights, row) + l.bias)
	}
	return probs
}

// FeatureImportance is the coefficient magnitude on the standardized scale.
func (l *logistic) FeatureImportance() []float64 {
	out := make([]float64, len(l.weights))
	for i, w := range l.weights {
		out[i] = math.Abs(w)
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func columnStats(X *mat.Dense) (means, scales []float64) {
	n, p := X.Dims()
	means = make([]float64, p)
	scales = make([]float64, p)
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, X)
		var sum float64
		for _, v := range col {
			sum += v
		}
		mu := sum / float64(n)
		var sq float64
		for _, v := range col {
			d := v - mu
			sq += d * d
		}
		sd := math.Sqrt(sq / float64(n))
		if sd == 0 {
			sd = 1 // constant column carries no signal; avoid dividing by zero
		}
		means[j], scales[j] = mu, sd
	}
	return means, scales
}

func standardize(X *mat.Dense, means, scales []float64) *mat.Dense {
	n, p := X.Dims()
	Z := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			Z.Set(i, j, (X.At(i, j)-means[j])/scales[j])
		}
	}
	return Z
}
