package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"gobiomark/domain/core"
	"gobiomark/domain/omics"
)

// WriteTestResults exports differential test results as CSV.
func WriteTestResults(path string, results []omics.TestResult) error {
	rows := [][]string{{"feature", "layer", "effect_size", "effect_kind", "statistic", "p_value", "adjusted_p", "significant", "group_a_mean", "group_b_mean", "group_a_n", "group_b_n"}}
	for _, r := range results {
		rows = append(rows, []string{
			r.Feature.String(), r.Layer,
			formatFloat(r.EffectSize), string(r.EffectKind), formatFloat(r.Statistic),
			formatFloat(r.PValue), formatFloat(r.AdjustedP), strconv.FormatBool(r.Significant),
			formatFloat(r.GroupAMean), formatFloat(r.GroupBMean),
			strconv.Itoa(r.GroupAN), strconv.Itoa(r.GroupBN),
		})
	}
	return writeCSV(path, rows)
}

// WriteCorrelations exports correlation results as CSV.
func WriteCorrelations(path string, results []omics.CorrelationResult) error {
	rows := [][]string{{"feature_a", "feature_b", "pearson_r", "pearson_p", "spearman_r", "spearman_p", "n"}}
	for _, r := range results {
		rows = append(rows, []string{
			r.FeatureA.String(), r.FeatureB.String(),
			formatFloat(r.PearsonR), formatFloat(r.PearsonP),
			formatFloat(r.SpearmanR), formatFloat(r.SpearmanP),
			strconv.Itoa(r.N),
		})
	}
	return writeCSV(path, rows)
}

// WriteCentralities exports centrality scores as CSV in lexical node order.
func WriteCentralities(path string, scores map[core.FeatureID]omics.CentralityScore) error {
	nodes := make([]core.FeatureID, 0, len(scores))
	for id := range scores {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	rows := [][]string{{"feature", "degree", "betweenness", "closeness"}}
	for _, id := range nodes {
		s := scores[id]
		rows = append(rows, []string{
			id.String(), strconv.Itoa(s.Degree),
			formatFloat(s.Betweenness), formatFloat(s.Closeness),
		})
	}
	return writeCSV(path, rows)
}

// WriteModelReports exports model performance as CSV, one row per model.
func WriteModelReports(path string, reports []omics.ModelReport) error {
	rows := [][]string{{"model", "accuracy", "auc", "train_n", "test_n", "folds"}}
	for _, r := range reports {
		rows = append(rows, []string{
			r.Model, formatFloat(r.Accuracy), formatFloat(r.AUC),
			strconv.Itoa(r.TrainN), strconv.Itoa(r.TestN), strconv.Itoa(r.Folds),
		})
	}
	return writeCSV(path, rows)
}

// WriteRanked exports the ranked biomarker list, the terminal artifact.
func WriteRanked(path string, ranked []omics.RankedBiomarker) error {
	rows := [][]string{{"rank", "feature", "layers_significant", "layers_tested", "best_adjusted_p", "max_abs_effect", "max_abs_correlation", "degree", "betweenness", "closeness"}}
	for _, r := range ranked {
		row := []string{
			strconv.Itoa(r.Rank), r.Feature.String(),
			strconv.Itoa(r.LayersSignificant), strconv.Itoa(r.LayersTested),
			formatFloat(r.BestAdjustedP), formatFloat(r.MaxAbsEffect), formatFloat(r.MaxAbsCorrelation),
		}
		if r.Centrality != nil {
			row = append(row, strconv.Itoa(r.Centrality.Degree), formatFloat(r.Centrality.Betweenness), formatFloat(r.Centrality.Closeness))
		} else {
			row = append(row, "", "", "")
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
