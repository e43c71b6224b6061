package app

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ReportWriter renders a run's results as a markdown document
type ReportWriter struct {
	// TopN caps the candidate table. Zero means all candidates.
	TopN int
}

// NewReportWriter creates a report writer showing the top 25 candidates
func NewReportWriter() *ReportWriter {
	return &ReportWriter{TopN: 25}
}

// Markdown renders the run summary as a markdown document
func (w *ReportWriter) Markdown(result *PipelineResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Biomarker Discovery Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Input fingerprint: `%s`\n", result.Fingerprint)
	if !result.Started.IsZero() {
		fmt.Fprintf(&b, "- Started: %s\n", result.Started)
	}
	fmt.Fprintf(&b, "- Elapsed: %s\n\n", result.Elapsed)

	w.writeTestSection(&b, result)
	w.writeCorrelationSection(&b, result)
	w.writeModelSection(&b, result)
	w.writeCandidateSection(&b, result)

	return b.String()
}

// HTML renders the run summary as a standalone HTML fragment
func (w *ReportWriter) HTML(result *PipelineResult) []byte {
	md := []byte(w.Markdown(result))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

func (w *ReportWriter) writeTestSection(b *strings.Builder, result *PipelineResult) {
	fmt.Fprintf(b, "## Differential Testing\n\n")
	fmt.Fprintf(b, "| Layer | Features | Significant |\n")
	fmt.Fprintf(b, "|---|---|---|\n")

	layers := make([]string, 0, len(result.Tests))
	for layer := range result.Tests {
		layers = append(layers, layer)
	}
	sort.Strings(layers)

	for _, layer := range layers {
		results := result.Tests[layer]
		sig := 0
		for _, r := range results {
			if r.Significant {
				sig++
			}
		}
		fmt.Fprintf(b, "| %s | %d | %d |\n", layer, len(results), sig)
	}
	fmt.Fprintf(b, "\n")
}

func (w *ReportWriter) writeCorrelationSection(b *strings.Builder, result *PipelineResult) {
	if len(result.Correlations) == 0 {
		return
	}
	strong := 0
	for _, c := range result.Correlations {
		if math.Abs(c.PearsonR) > 0.7 {
			strong++
		}
	}
	fmt.Fprintf(b, "## Cross-Layer Correlation\n\n")
	fmt.Fprintf(b, "%d feature pairs tested, %d with |r| > 0.7.\n\n", len(result.Correlations), strong)
}

func (w *ReportWriter) writeModelSection(b *strings.Builder, result *PipelineResult) {
	if len(result.Models) == 0 {
		return
	}
	fmt.Fprintf(b, "## Model Evaluation\n\n")
	fmt.Fprintf(b, "| Layer | Model | Accuracy | AUC |\n")
	fmt.Fprintf(b, "|---|---|---|---|\n")

	layers := make([]string, 0, len(result.Models))
	for layer := range result.Models {
		layers = append(layers, layer)
	}
	sort.Strings(layers)

	for _, layer := range layers {
		for _, report := range result.Models[layer] {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				layer, report.Model, formatMetric(report.Accuracy), formatMetric(report.AUC))
		}
	}
	fmt.Fprintf(b, "\n")
}

func (w *ReportWriter) writeCandidateSection(b *strings.Builder, result *PipelineResult) {
	fmt.Fprintf(b, "## Ranked Candidates\n\n")
	if len(result.Ranked) == 0 {
		fmt.Fprintf(b, "No candidates survived integration.\n")
		return
	}

	limit := len(result.Ranked)
	if w.TopN > 0 && w.TopN < limit {
		limit = w.TopN
	}

	fmt.Fprintf(b, "| Rank | Feature | Sig. Layers | Best padj | Max abs corr | Degree |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|\n")
	for _, r := range result.Ranked[:limit] {
		degree := "-"
		if r.Centrality != nil {
			degree = fmt.Sprintf("%d", r.Centrality.Degree)
		}
		fmt.Fprintf(b, "| %d | %s | %d/%d | %s | %s | %s |\n",
			r.Rank, r.Feature, r.LayersSignificant, r.LayersTested,
			formatMetric(r.BestAdjustedP), formatMetric(r.MaxAbsCorrelation), degree)
	}
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.4g", v)
}
