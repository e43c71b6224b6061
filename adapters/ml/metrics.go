package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// accuracy is the argmax-class agreement at a 0.5 probability cut.
func accuracy(probs []float64, y []int) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	correct := 0
	for i, p := range probs {
		if predictClass(p) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

func predictClass(prob float64) int {
	if prob >= 0.5 {
		return 1
	}
	return 0
}

// rocAUC computes the area under the ROC curve for class-1 probabilities.
// Returns NaN when the labels contain a single class, where the curve is
// undefined.
func rocAUC(probs []float64, y []int) float64 {
	pos, neg := 0, 0
	for _, c := range y {
		if c == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return math.NaN()
	}

	// gonum's ROC wants scores ascending with classes aligned.
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return probs[order[i]] < probs[order[j]] })

	scores := make([]float64, len(probs))
	classes := make([]bool, len(probs))
	for rank, idx := range order {
		scores[rank] = probs[idx]
		classes[rank] = y[idx] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
