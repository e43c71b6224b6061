package omics

import (
	"gobiomark/domain/core"
)

// EffectKind selects how the per-feature effect size is computed. The choice
// is a configuration input per layer, never inferred from the data.
type EffectKind string

const (
	// EffectLog2Ratio is log2(meanA/meanB), for count-like layers.
	EffectLog2Ratio EffectKind = "log2_ratio"
	// EffectMeanDiff is meanA-meanB, for layers already on a log scale.
	EffectMeanDiff EffectKind = "mean_diff"
)

// TestKind selects the per-feature two-group statistical test.
type TestKind string

const (
	TestWelch   TestKind = "welch_ttest"
	TestStudent TestKind = "student_ttest"
	TestRankSum TestKind = "rank_sum"
)

// TestResult is the immutable outcome of one feature's differential test.
// A NaN p-value marks a feature that could not be tested (too few usable
// values or zero variance in both groups); such features are reported, not
// dropped.
type TestResult struct {
	Feature     core.FeatureID `json:"feature"`
	Layer       string         `json:"layer"`
	EffectSize  float64        `json:"effect_size"`
	EffectKind  EffectKind     `json:"effect_kind"`
	Statistic   float64        `json:"statistic"`
	PValue      float64        `json:"p_value"`
	AdjustedP   float64        `json:"adjusted_p"`
	Significant bool           `json:"significant"`

	GroupAMean float64 `json:"group_a_mean"`
	GroupBMean float64 `json:"group_b_mean"`
	GroupAN    int     `json:"group_a_n"`
	GroupBN    int     `json:"group_b_n"`
}

// SignificanceThreshold is the caller-supplied (adjusted-p, effect-size)
// cutoff pair that derives the Significant flag.
type SignificanceThreshold struct {
	MaxAdjustedP float64
	MinAbsEffect float64
}

// DefaultCountThreshold matches the conventional padj<0.05, |log2FC|>1 cut
// for count layers.
func DefaultCountThreshold() SignificanceThreshold {
	return SignificanceThreshold{MaxAdjustedP: 0.05, MinAbsEffect: 1.0}
}

// DefaultIntensityThreshold matches the padj<0.05, |log2FC|>0.5 cut used for
// log-intensity layers.
func DefaultIntensityThreshold() SignificanceThreshold {
	return SignificanceThreshold{MaxAdjustedP: 0.05, MinAbsEffect: 0.5}
}

// CorrelationResult is the immutable outcome of one cross-layer feature pair.
type CorrelationResult struct {
	FeatureA  core.FeatureID `json:"feature_a"`
	FeatureB  core.FeatureID `json:"feature_b"`
	PearsonR  float64        `json:"pearson_r"`
	PearsonP  float64        `json:"pearson_p"`
	SpearmanR float64        `json:"spearman_r"`
	SpearmanP float64        `json:"spearman_p"`
	N         int            `json:"n"`
}

// CentralityScore holds the raw centralities for one graph node. Nodes absent
// from the graph get no score at all, so callers can tell "unconnected" from
// "no data".
type CentralityScore struct {
	Degree      int     `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
}

// FeatureImportance is one entry of a model's importance ranking.
type FeatureImportance struct {
	Feature core.FeatureID `json:"feature"`
	Score   float64        `json:"score"`
}

// ConfusionCell counts test predictions for one (actual, predicted) pair.
type ConfusionCell struct {
	Actual    core.Condition `json:"actual"`
	Predicted core.Condition `json:"predicted"`
	Count     int            `json:"count"`
}

// ModelReport is the immutable outcome of one model variant's evaluation
// over a fixed train/test split. AUC is NaN when undefined (non-binary
// labels or a one-class test partition).
type ModelReport struct {
	Model      string              `json:"model"`
	Accuracy   float64             `json:"accuracy"`
	AUC        float64             `json:"auc"`
	Confusion  []ConfusionCell     `json:"confusion"`
	Importance []FeatureImportance `json:"importance"` // descending by score
	TrainN     int                 `json:"train_n"`
	TestN      int                 `json:"test_n"`
	Folds      int                 `json:"folds,omitempty"`
}

// RankedBiomarker is one row of the terminal artifact: a feature with its
// evidence joined across layers, correlation, and network centrality.
type RankedBiomarker struct {
	Feature           core.FeatureID   `json:"feature"`
	Rank              int              `json:"rank"`
	LayersTested      int              `json:"layers_tested"`
	LayersSignificant int              `json:"layers_significant"`
	BestAdjustedP     float64          `json:"best_adjusted_p"`
	MaxAbsEffect      float64          `json:"max_abs_effect"`
	MaxAbsCorrelation float64          `json:"max_abs_correlation"`
	Centrality        *CentralityScore `json:"centrality,omitempty"`
}
