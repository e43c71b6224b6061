package main

import (
	"testing"

	"gobiomark/domain/omics"
	"gobiomark/internal/config"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestOptionsForLayer_ExplicitCountsOnly(t *testing.T) {
	cfg := baseConfig(t)

	// Only the listed layer gets count semantics, whatever its name says.
	opts := optionsForLayer("metabolomics", []string{"metabolomics"}, cfg)
	if opts.Effect != omics.EffectLog2Ratio {
		t.Errorf("listed layer effect = %v, want log2 ratio", opts.Effect)
	}
	if opts.Threshold.MinAbsEffect != 1.0 {
		t.Errorf("listed layer min effect = %g, want 1.0", opts.Threshold.MinAbsEffect)
	}

	// A count-sounding name stays on the default policy when not listed.
	opts = optionsForLayer("transcriptomics", nil, cfg)
	if opts.Effect == omics.EffectLog2Ratio {
		t.Error("unlisted layer got log2-ratio effect from its name")
	}
	if opts.Threshold.MinAbsEffect != cfg.Pipeline.MinAbsEffect {
		t.Errorf("unlisted layer min effect = %g, want config default %g",
			opts.Threshold.MinAbsEffect, cfg.Pipeline.MinAbsEffect)
	}
}

func TestLayerName(t *testing.T) {
	if got := layerName("/data/run1/proteomics.csv"); got != "proteomics" {
		t.Errorf("layerName = %s, want proteomics", got)
	}
}
