package app

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gobiomark/adapters/graph/hubscore"
	"gobiomark/adapters/ml"
	"gobiomark/adapters/stats/correlate"
	"gobiomark/adapters/stats/difftest"
	"gobiomark/domain/core"
	"gobiomark/domain/omics"
	"gobiomark/internal/errors"
)

// LayerInput pairs one omics layer with its differential test settings.
type LayerInput struct {
	Matrix  *omics.FeatureMatrix
	Options difftest.Options
}

// PipelineInputs collects everything one discovery run consumes.
type PipelineInputs struct {
	Layers []LayerInput
	Labels omics.SampleLabels
	GroupA core.Condition
	GroupB core.Condition

	// Graph is optional; when nil the centrality stage is skipped.
	Graph      *omics.InteractionGraph
	HubOptions hubscore.Options

	// Correlate selects which layer pairs to cross. Empty means every
	// distinct layer pair, restricted to significant features.
	CorrelateOptions correlate.Options

	// Models and Split drive the evaluation stage on each layer.
	Models []ml.ModelSpec
	Split  ml.SplitPolicy
}

// PipelineResult is the complete output of one discovery run.
type PipelineResult struct {
	RunID        core.RunID
	Fingerprint  core.Hash
	Started      core.Timestamp
	Tests        map[string][]omics.TestResult
	Correlations []omics.CorrelationResult
	Centralities map[core.FeatureID]omics.CentralityScore
	Models       map[string][]omics.ModelReport
	Ranked       []omics.RankedBiomarker
	Elapsed      time.Duration
}

// Pipeline runs the discovery stages in dependency order. Differential tests
// fan out per layer; correlation, hub scoring, and model evaluation fan out
// once the tests land; the orchestrator joins everything before ranking.
type Pipeline struct {
	tester       *difftest.Tester
	engine       *correlate.Engine
	scorer       *hubscore.Scorer
	evaluator    *ml.Evaluator
	orchestrator *Orchestrator
}

// NewPipeline creates a pipeline with default stage implementations
func NewPipeline() *Pipeline {
	return &Pipeline{
		tester:       difftest.New(),
		engine:       correlate.New(),
		scorer:       hubscore.New(),
		evaluator:    ml.NewEvaluator(),
		orchestrator: NewOrchestrator(),
	}
}

// Run executes one full discovery run
func (p *Pipeline) Run(ctx context.Context, in PipelineInputs) (*PipelineResult, error) {
	if len(in.Layers) == 0 {
		return nil, errors.InvalidInput("at least one omics layer is required")
	}

	start := time.Now()
	runID := core.NewRunID()

	layerSizes := make(map[string]int, len(in.Layers))
	for _, l := range in.Layers {
		layerSizes[l.Matrix.Layer] = len(l.Matrix.Features())
	}
	fingerprint := core.InputFingerprint(layerSizes, in.Split.Seed)
	log.Printf("[Pipeline] run %s started (%d layers, fingerprint %s)", runID, len(in.Layers), fingerprint)

	tests, err := p.runTests(ctx, in)
	if err != nil {
		return nil, errors.AnalysisError("differential", err)
	}

	result := &PipelineResult{
		RunID:       runID,
		Fingerprint: fingerprint,
		Started:     core.NewTimestamp(start),
		Tests:       tests,
		Models:      make(map[string][]omics.ModelReport),
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	g.Go(func() error {
		correlations, err := p.runCorrelations(gctx, in, tests)
		if err != nil {
			return errors.AnalysisError("correlation", err)
		}
		mu.Lock()
		result.Correlations = correlations
		mu.Unlock()
		return nil
	})

	if in.Graph != nil {
		// Hub scoring runs on the interaction graph restricted to the
		// features the differential stage found significant.
		sub := in.Graph.Subgraph(significantUnion(tests))
		if len(sub.Nodes()) == 0 {
			log.Printf("[Pipeline] no significant features on the interaction graph, centrality skipped")
		} else {
			g.Go(func() error {
				stageStart := time.Now()
				scores, err := p.scorer.Score(sub, in.HubOptions)
				if err != nil {
					return errors.AnalysisError("centrality", err)
				}
				log.Printf("[Pipeline] centrality scored %d nodes in %s", len(scores), time.Since(stageStart))
				mu.Lock()
				result.Centralities = scores
				mu.Unlock()
				return nil
			})
		}
	}

	if len(in.Models) > 0 {
		for _, layer := range in.Layers {
			layer := layer
			// Models train on the layer restricted to its significant
			// features.
			sig := layer.Matrix.Restrict(significantIn(tests[layer.Matrix.Layer]))
			if sig.FeatureCount() == 0 {
				log.Printf("[Pipeline] no significant features on %s, evaluation skipped", layer.Matrix.Layer)
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				stageStart := time.Now()
				reports, err := p.evaluator.Evaluate(sig, in.Labels, in.Models, in.Split)
				if err != nil {
					return errors.AnalysisError("evaluation", err)
				}
				log.Printf("[Pipeline] evaluated %d models on %s in %s", len(reports), layer.Matrix.Layer, time.Since(stageStart))
				mu.Lock()
				result.Models[layer.Matrix.Layer] = reports
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Ranked = p.orchestrator.Rank(tests, result.Correlations, result.Centralities)
	result.Elapsed = time.Since(start)
	log.Printf("[Pipeline] run %s finished: %d candidates ranked in %s", runID, len(result.Ranked), result.Elapsed)
	return result, nil
}

// runTests fans the differential stage out per layer
func (p *Pipeline) runTests(ctx context.Context, in PipelineInputs) (map[string][]omics.TestResult, error) {
	tests := make(map[string][]omics.TestResult, len(in.Layers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, layer := range in.Layers {
		layer := layer
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stageStart := time.Now()
			results, err := p.tester.Run(layer.Matrix, in.Labels, in.GroupA, in.GroupB, layer.Options)
			if err != nil {
				return err
			}
			log.Printf("[Pipeline] tested %d features on %s in %s", len(results), layer.Matrix.Layer, time.Since(stageStart))
			mu.Lock()
			tests[layer.Matrix.Layer] = results
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tests, nil
}

// runCorrelations crosses every distinct layer pair over the features each
// layer found significant. Layers with no significant features contribute
// nothing.
func (p *Pipeline) runCorrelations(ctx context.Context, in PipelineInputs, tests map[string][]omics.TestResult) ([]omics.CorrelationResult, error) {
	significant := make(map[string][]core.FeatureID, len(tests))
	for layer, results := range tests {
		significant[layer] = significantIn(results)
	}

	var all []omics.CorrelationResult
	for i := 0; i < len(in.Layers); i++ {
		for j := i + 1; j < len(in.Layers); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			a, b := in.Layers[i].Matrix, in.Layers[j].Matrix
			pairs := crossPairs(significant[a.Layer], significant[b.Layer])
			if len(pairs) == 0 {
				continue
			}
			results, err := p.engine.Correlate(a, b, pairs, in.CorrelateOptions)
			if err != nil {
				return nil, err
			}
			all = append(all, results...)
		}
	}
	log.Printf("[Pipeline] correlated %d cross-layer pairs", len(all))
	return all, nil
}

// significantIn lists one layer's significant features.
func significantIn(results []omics.TestResult) []core.FeatureID {
	var ids []core.FeatureID
	for _, r := range results {
		if r.Significant {
			ids = append(ids, r.Feature)
		}
	}
	return ids
}

// significantUnion collects every feature any layer found significant.
func significantUnion(tests map[string][]omics.TestResult) []core.FeatureID {
	seen := make(map[core.FeatureID]bool)
	var union []core.FeatureID
	for _, results := range tests {
		for _, r := range significantIn(results) {
			if !seen[r] {
				seen[r] = true
				union = append(union, r)
			}
		}
	}
	return union
}

func crossPairs(a, b []core.FeatureID) []correlate.Pair {
	pairs := make([]correlate.Pair, 0, len(a)*len(b))
	for _, fa := range a {
		for _, fb := range b {
			pairs = append(pairs, correlate.Pair{A: fa, B: fb})
		}
	}
	return pairs
}
