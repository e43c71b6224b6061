// Package testkit generates seeded synthetic multi-omics fixtures.
//
// The generated cohorts carry a handful of spiked immune features that
// separate the two conditions, so downstream tests can assert on known
// positives without shipping real data.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"
)

// Conditions used by every generated cohort.
const (
	ConditionControl  = core.Condition("Control")
	ConditionInfected = core.Condition("Infected")
)

// Spiked feature identifiers shared across layers. These are the
// features a correct analysis should recover as significant.
var (
	SpikedGenes       = []string{"IL6", "TNF", "STAT3", "CXCL8", "IFNG"}
	SpikedProteins    = []string{"CRP", "SAA1", "IL6", "TNF"}
	SpikedMetabolites = []string{"kynurenine", "lactate", "citrulline"}
)

// TestKit produces deterministic synthetic cohorts
type TestKit struct {
	rng *rand.Rand
}

// New creates a test kit seeded for reproducible generation
func New(seed int64) *TestKit {
	return &TestKit{rng: rand.New(rand.NewSource(seed))}
}

// Labels builds a balanced label set with n samples per condition.
// Sample ids are S01..Snn with controls first.
func (t *TestKit) Labels(perGroup int) omics.SampleLabels {
	labels := omics.SampleLabels{}
	for i := 0; i < 2*perGroup; i++ {
		id := core.SampleID(fmt.Sprintf("S%02d", i+1))
		if i < perGroup {
			labels[id] = ConditionControl
		} else {
			labels[id] = ConditionInfected
		}
	}
	return labels
}

// Transcriptomics generates a count matrix with negative binomial noise.
// Spiked genes are upregulated roughly fourfold in the infected group.
func (t *TestKit) Transcriptomics(labels omics.SampleLabels, extraFeatures int) *omics.FeatureMatrix {
	samples := sortedSamples(labels)
	m := omics.NewFeatureMatrix("transcriptomics", samples)

	for _, gene := range SpikedGenes {
		base := 80.0 + t.rng.Float64()*120.0
		row := make([]float64, len(samples))
		for i, s := range samples {
			mean := base
			if labels[s] == ConditionInfected {
				mean = base * 4.0
			}
			row[i] = float64(t.negBinomial(mean, 0.2))
		}
		mustAdd(m, core.FeatureID(gene), row)
	}

	for i := 0; i < extraFeatures; i++ {
		base := 20.0 + t.rng.Float64()*200.0
		row := make([]float64, len(samples))
		for j := range samples {
			row[j] = float64(t.negBinomial(base, 0.2))
		}
		mustAdd(m, core.FeatureID(fmt.Sprintf("GENE%03d", i+1)), row)
	}
	return m
}

// Proteomics generates log-intensity values with gaussian noise.
// Spiked proteins shift by about one log2 unit in the infected group.
func (t *TestKit) Proteomics(labels omics.SampleLabels, extraFeatures int) *omics.FeatureMatrix {
	return t.intensityLayer("proteomics", labels, SpikedProteins, "PROT%03d", extraFeatures, 1.2)
}

// Metabolomics generates log-intensity values for metabolite features
func (t *TestKit) Metabolomics(labels omics.SampleLabels, extraFeatures int) *omics.FeatureMatrix {
	return t.intensityLayer("metabolomics", labels, SpikedMetabolites, "met_%03d", extraFeatures, 0.9)
}

func (t *TestKit) intensityLayer(layer string, labels omics.SampleLabels, spiked []string, pattern string, extra int, shift float64) *omics.FeatureMatrix {
	samples := sortedSamples(labels)
	m := omics.NewFeatureMatrix(layer, samples)

	for _, id := range spiked {
		base := 10.0 + t.rng.Float64()*6.0
		row := make([]float64, len(samples))
		for i, s := range samples {
			mean := base
			if labels[s] == ConditionInfected {
				mean = base + shift
			}
			row[i] = mean + t.rng.NormFloat64()*0.4
		}
		mustAdd(m, core.FeatureID(id), row)
	}

	for i := 0; i < extra; i++ {
		base := 8.0 + t.rng.Float64()*10.0
		row := make([]float64, len(samples))
		for j := range samples {
			row[j] = base + t.rng.NormFloat64()*0.4
		}
		mustAdd(m, core.FeatureID(fmt.Sprintf(pattern, i+1)), row)
	}
	return m
}

// WithMissing knocks out a fraction of cells in place and returns the matrix
func (t *TestKit) WithMissing(m *omics.FeatureMatrix, fraction float64) *omics.FeatureMatrix {
	for _, id := range m.Features() {
		row, _ := m.Row(id)
		for i := range row {
			if t.rng.Float64() < fraction {
				row[i] = math.NaN()
			}
		}
	}
	return m
}

// InteractionGraph builds a small immune interaction network linking the
// spiked genes and proteins, plus one isolated metabolite node.
func (t *TestKit) InteractionGraph() *omics.InteractionGraph {
	g := omics.NewInteractionGraph()
	edges := []struct {
		a, b string
		conf float64
	}{
		{"IL6", "STAT3", 0.999},
		{"IL6", "TNF", 0.95},
		{"TNF", "CXCL8", 0.92},
		{"IL6", "CXCL8", 0.90},
		{"IFNG", "STAT3", 0.97},
		{"CRP", "IL6", 0.93},
		{"SAA1", "IL6", 0.88},
	}
	for _, e := range edges {
		g.AddEdge(core.FeatureID(e.a), core.FeatureID(e.b), e.conf)
	}
	g.AddNode(core.FeatureID("kynurenine"))
	return g
}

// negBinomial samples a negative binomial count as a gamma-Poisson
// mixture with the given mean and dispersion.
func (t *TestKit) negBinomial(mean, dispersion float64) int {
	shape := 1.0 / dispersion
	scale := mean * dispersion
	lambda := t.gamma(shape) * scale
	return t.poisson(lambda)
}

// gamma samples a Gamma(shape, 1) variate using Marsaglia-Tsang.
func (t *TestKit) gamma(shape float64) float64 {
	if shape < 1 {
		u := t.rng.Float64()
		return t.gamma(shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := t.rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := t.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// poisson samples via inversion for small lambda and a normal
// approximation for large lambda.
func (t *TestKit) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda > 30 {
		n := math.Round(lambda + math.Sqrt(lambda)*t.rng.NormFloat64())
		if n < 0 {
			return 0
		}
		return int(n)
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= t.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func sortedSamples(labels omics.SampleLabels) []core.SampleID {
	conditions := labels.Conditions()
	var samples []core.SampleID
	for _, c := range conditions {
		samples = append(samples, labels.SamplesFor(c)...)
	}
	return samples
}

func mustAdd(m *omics.FeatureMatrix, id core.FeatureID, row []float64) {
	if err := m.AddFeature(id, row); err != nil {
		panic(err)
	}
}
