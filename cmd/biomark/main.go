package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gobiomark/adapters/graph/hubscore"
	"gobiomark/adapters/ml"
	"gobiomark/adapters/postgres"
	"gobiomark/adapters/registry"
	"gobiomark/adapters/stats/correlate"
	"gobiomark/adapters/stats/difftest"
	"gobiomark/adapters/tabular"
	"gobiomark/app"
	"gobiomark/domain/core"
	"gobiomark/domain/omics"
	"gobiomark/internal/config"
	"gobiomark/internal/errors"
	"gobiomark/internal/testkit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file found, using environment as-is")
	}

	rootCmd := &cobra.Command{
		Use:   "biomark",
		Short: "Multi-omics biomarker discovery toolkit",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newTestCmd(),
		newCorrelateCmd(),
		newHubsCmd(),
		newEvaluateCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		labelsPath  string
		edgesPath   string
		groupA      string
		groupB      string
		outDir      string
		countLayers []string
	)

	cmd := &cobra.Command{
		Use:   "run [matrix.csv ...]",
		Short: "Run the full discovery pipeline over one or more omics layers",
		Long: `Run differential testing, cross-layer correlation, network hub scoring,
and model evaluation over the given layer matrices, then write the ranked
candidate table and a run report.

Each matrix file becomes one layer named after its basename.

Example: biomark run transcriptomics.csv proteomics.csv --labels labels.csv --edges string_edges.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), args, labelsPath, edgesPath, groupA, groupB, outDir, countLayers)
		},
	}

	cmd.Flags().StringVar(&labelsPath, "labels", "", "Two-column sample,condition CSV (required)")
	cmd.Flags().StringVar(&edgesPath, "edges", "", "Interaction edge list CSV (optional)")
	cmd.Flags().StringVar(&groupA, "group-a", "Infected", "Numerator condition")
	cmd.Flags().StringVar(&groupB, "group-b", "Control", "Denominator condition")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from config)")
	cmd.Flags().StringSliceVar(&countLayers, "counts", nil,
		"Layer names measured as raw counts (log2-ratio effect); others are treated as log-scale")
	cmd.MarkFlagRequired("labels")

	return cmd
}

func newTestCmd() *cobra.Command {
	var (
		labelsPath string
		groupA     string
		groupB     string
		kind       string
		counts     bool
		out        string
	)

	cmd := &cobra.Command{
		Use:   "test [matrix.csv]",
		Short: "Run a two-group differential test on one layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tabular.ReadMatrix(args[0], layerName(args[0]))
			if err != nil {
				return err
			}
			labels, err := tabular.ReadLabels(labelsPath)
			if err != nil {
				return err
			}

			opts := layerOptions(kind, counts)
			results, err := difftest.New().Run(m, labels, core.Condition(groupA), core.Condition(groupB), opts)
			if err != nil {
				return err
			}

			sig := 0
			for _, r := range results {
				if r.Significant {
					sig++
				}
			}
			log.Printf("[Test] %d features tested, %d significant", len(results), sig)
			return tabular.WriteTestResults(out, results)
		},
	}

	cmd.Flags().StringVar(&labelsPath, "labels", "", "Two-column sample,condition CSV (required)")
	cmd.Flags().StringVar(&groupA, "group-a", "Infected", "Numerator condition")
	cmd.Flags().StringVar(&groupB, "group-b", "Control", "Denominator condition")
	cmd.Flags().StringVar(&kind, "kind", "welch", "Test kind: welch, student, or ranksum")
	cmd.Flags().BoolVar(&counts, "counts", false, "Treat the layer as raw counts (log2 ratio effect, |log2FC|>1 cut)")
	cmd.Flags().StringVar(&out, "out", "test_results.csv", "Output CSV path")
	cmd.MarkFlagRequired("labels")

	return cmd
}

func newCorrelateCmd() *cobra.Command {
	var (
		fdr  bool
		out  string
		sort bool
	)

	cmd := &cobra.Command{
		Use:   "correlate [layer_a.csv] [layer_b.csv]",
		Short: "Correlate every feature pair across two layers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := tabular.ReadMatrix(args[0], layerName(args[0]))
			if err != nil {
				return err
			}
			b, err := tabular.ReadMatrix(args[1], layerName(args[1]))
			if err != nil {
				return err
			}

			var pairs []correlate.Pair
			for _, fa := range a.Features() {
				for _, fb := range b.Features() {
					pairs = append(pairs, correlate.Pair{A: fa, B: fb})
				}
			}

			results, err := correlate.New().Correlate(a, b, pairs, correlate.Options{
				AdjustFDR:        fdr,
				SortByAbsPearson: sort,
			})
			if err != nil {
				return err
			}
			log.Printf("[Correlate] %d pairs scored", len(results))
			return tabular.WriteCorrelations(out, results)
		},
	}

	cmd.Flags().BoolVar(&fdr, "fdr", false, "Apply BH adjustment across the pair batch")
	cmd.Flags().BoolVar(&sort, "sort", true, "Sort output by |pearson r| descending")
	cmd.Flags().StringVar(&out, "out", "correlations.csv", "Output CSV path")

	return cmd
}

func newHubsCmd() *cobra.Command {
	var (
		weighted bool
		out      string
	)

	cmd := &cobra.Command{
		Use:   "hubs [edges.csv]",
		Short: "Score interaction network hubs by centrality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := tabular.ReadEdges(args[0])
			if err != nil {
				return err
			}
			scores, err := hubscore.New().Score(g, hubscore.Options{Weighted: weighted})
			if err != nil {
				return err
			}
			log.Printf("[Hubs] %d nodes scored", len(scores))
			return tabular.WriteCentralities(out, scores)
		},
	}

	cmd.Flags().BoolVar(&weighted, "weighted", false, "Use 1/confidence edge distances")
	cmd.Flags().StringVar(&out, "out", "centrality.csv", "Output CSV path")

	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var (
		labelsPath string
		seed       int64
		kfold      int
		out        string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [matrix.csv]",
		Short: "Evaluate classifiers on one layer with a shared seeded split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tabular.ReadMatrix(args[0], layerName(args[0]))
			if err != nil {
				return err
			}
			labels, err := tabular.ReadLabels(labelsPath)
			if err != nil {
				return err
			}

			split := ml.DefaultSplit(seed)
			split.KFold = kfold
			reports, err := ml.NewEvaluator().Evaluate(m, labels, defaultModels(), split)
			if err != nil {
				return err
			}
			for _, r := range reports {
				log.Printf("[Evaluate] %s: accuracy %.3f, AUC %.3f", r.Model, r.Accuracy, r.AUC)
			}
			return tabular.WriteModelReports(out, reports)
		},
	}

	cmd.Flags().StringVar(&labelsPath, "labels", "", "Two-column sample,condition CSV (required)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed shared by the split and every model")
	cmd.Flags().IntVar(&kfold, "kfold", 0, "Stratified k-fold count (0 = 80/20 holdout)")
	cmd.Flags().StringVar(&out, "out", "model_reports.csv", "Output CSV path")
	cmd.MarkFlagRequired("labels")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		seed     int64
		perGroup int
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full pipeline on a seeded synthetic cohort",
		Long: `Generate a synthetic three-layer cohort with spiked immune features and
run the complete discovery pipeline on it. Useful for smoke-testing an
installation and for inspecting output formats.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), seed, perGroup, outDir)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Generation and split seed")
	cmd.Flags().IntVar(&perGroup, "per-group", 10, "Samples per condition")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from config)")

	return cmd
}

func runPipeline(ctx context.Context, matrixPaths []string, labelsPath, edgesPath, groupA, groupB, outDir string, countLayers []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	startProfiling(cfg)
	if outDir == "" {
		outDir = cfg.Data.OutputDir
	}

	labels, err := tabular.ReadLabels(labelsPath)
	if err != nil {
		return err
	}

	var layers []app.LayerInput
	for _, path := range matrixPaths {
		m, err := tabular.ReadMatrix(path, layerName(path))
		if err != nil {
			return errors.IngestError(path, err)
		}
		layers = append(layers, app.LayerInput{Matrix: m, Options: optionsForLayer(m.Layer, countLayers, cfg)})
	}

	// Without an edge list the centrality stage is skipped entirely.
	var graph *omics.InteractionGraph
	if edgesPath != "" {
		graph, err = tabular.ReadEdges(edgesPath)
		if err != nil {
			return err
		}
	}

	split := ml.DefaultSplit(cfg.Pipeline.Seed)
	split.TestFraction = cfg.Pipeline.TestFraction
	split.KFold = cfg.Pipeline.KFold

	inputs := app.PipelineInputs{
		Layers:     layers,
		Labels:     labels,
		GroupA:     core.Condition(groupA),
		GroupB:     core.Condition(groupB),
		Graph:      graph,
		HubOptions: hubscore.Options{Weighted: cfg.Pipeline.WeightedHubs},
		Models:     defaultModels(),
		Split:      split,
	}

	result, err := app.NewPipeline().Run(ctx, inputs)
	if err != nil {
		return err
	}

	if err := writeOutputs(outDir, result); err != nil {
		return err
	}
	return persistRun(ctx, cfg, result)
}

func runDemo(ctx context.Context, seed int64, perGroup int, outDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.Data.OutputDir
	}

	kit := testkit.New(seed)
	labels := kit.Labels(perGroup)

	countOpts := difftest.DefaultOptions()
	countOpts.Effect = omics.EffectLog2Ratio
	countOpts.Threshold = omics.DefaultCountThreshold()

	inputs := app.PipelineInputs{
		Layers: []app.LayerInput{
			{Matrix: kit.Transcriptomics(labels, 40), Options: countOpts},
			{Matrix: kit.Proteomics(labels, 30), Options: difftest.DefaultOptions()},
			{Matrix: kit.Metabolomics(labels, 20), Options: difftest.DefaultOptions()},
		},
		Labels: labels,
		GroupA: testkit.ConditionInfected,
		GroupB: testkit.ConditionControl,
		Graph:  kit.InteractionGraph(),
		Models: defaultModels(),
		Split:  ml.DefaultSplit(seed),
	}

	result, err := app.NewPipeline().Run(ctx, inputs)
	if err != nil {
		return err
	}
	return writeOutputs(outDir, result)
}

func writeOutputs(outDir string, result *app.PipelineResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for layer, results := range result.Tests {
		path := filepath.Join(outDir, fmt.Sprintf("tests_%s.csv", layer))
		if err := tabular.WriteTestResults(path, results); err != nil {
			return err
		}
	}
	if len(result.Correlations) > 0 {
		if err := tabular.WriteCorrelations(filepath.Join(outDir, "correlations.csv"), result.Correlations); err != nil {
			return err
		}
	}
	if len(result.Centralities) > 0 {
		if err := tabular.WriteCentralities(filepath.Join(outDir, "centrality.csv"), result.Centralities); err != nil {
			return err
		}
	}
	for layer, reports := range result.Models {
		path := filepath.Join(outDir, fmt.Sprintf("models_%s.csv", layer))
		if err := tabular.WriteModelReports(path, reports); err != nil {
			return err
		}
	}
	if err := tabular.WriteRanked(filepath.Join(outDir, "ranked_biomarkers.csv"), result.Ranked); err != nil {
		return err
	}

	if err := writePathways(filepath.Join(outDir, "pathways.csv"), result); err != nil {
		return err
	}

	writer := app.NewReportWriter()
	if err := os.WriteFile(filepath.Join(outDir, "report.md"), []byte(writer.Markdown(result)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "report.html"), writer.HTML(result), 0o644); err != nil {
		return err
	}

	log.Printf("[Main] results written to %s", outDir)
	return nil
}

// writePathways rolls significant features up by bundled pathway annotation
func writePathways(path string, result *app.PipelineResult) error {
	annotator := registry.Multi{registry.DefaultPathways(), registry.DefaultTrials()}
	summaries, err := app.NewOrchestrator().RollupPathways(annotator, result.Tests)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"pathway", "features", "mean_effect", "sd_effect"}); err != nil {
		return err
	}
	for _, s := range summaries {
		members := make([]string, len(s.Features))
		for i, id := range s.Features {
			members[i] = id.String()
		}
		row := []string{
			s.Pathway, strings.Join(members, ";"),
			strconv.FormatFloat(s.MeanEffect, 'g', 6, 64),
			strconv.FormatFloat(s.SDEffect, 'g', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// persistRun saves the ranked table when a database is configured
func persistRun(ctx context.Context, cfg *config.Config, result *app.PipelineResult) error {
	if cfg.Database.URL == "" {
		return nil
	}
	repo, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.SaveRun(ctx, result.RunID, result.Fingerprint, result.Ranked); err != nil {
		return err
	}
	log.Printf("[Main] run %s persisted", result.RunID)
	return nil
}

func startProfiling(cfg *config.Config) {
	if !cfg.Profiling.Enabled {
		return
	}
	go func() {
		addr := ":" + cfg.Profiling.Port
		log.Printf("[Main] pprof listening on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Printf("[Main] pprof server stopped: %v", err)
		}
	}()
}

func defaultModels() []ml.ModelSpec {
	return []ml.ModelSpec{ml.DefaultLogistic(), ml.DefaultForest(), ml.DefaultBoost()}
}

// layerName derives a layer label from a matrix file path
func layerName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// optionsForLayer maps the run command's explicit count-layer list onto
// per-layer difftest options. The effect policy is never inferred from the
// layer name.
func optionsForLayer(layer string, countLayers []string, cfg *config.Config) difftest.Options {
	opts := difftest.DefaultOptions()
	opts.Threshold = omics.SignificanceThreshold{
		MaxAdjustedP: cfg.Pipeline.MaxAdjustedP,
		MinAbsEffect: cfg.Pipeline.MinAbsEffect,
	}
	for _, name := range countLayers {
		if name == layer {
			opts.Effect = omics.EffectLog2Ratio
			opts.Threshold.MinAbsEffect = 1.0
			break
		}
	}
	return opts
}

// layerOptions maps the test command's flags onto difftest options
func layerOptions(kind string, counts bool) difftest.Options {
	opts := difftest.DefaultOptions()
	switch kind {
	case "student":
		opts.Kind = omics.TestStudent
	case "ranksum":
		opts.Kind = omics.TestRankSum
	default:
		opts.Kind = omics.TestWelch
	}
	if counts {
		opts.Effect = omics.EffectLog2Ratio
		opts.Threshold = omics.DefaultCountThreshold()
	}
	return opts
}
