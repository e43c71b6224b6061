package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with empty environment: %v", err)
	}

	if cfg.Pipeline.Seed != 42 {
		t.Errorf("default seed = %d, want 42", cfg.Pipeline.Seed)
	}
	if cfg.Pipeline.TestFraction != 0.2 {
		t.Errorf("default test fraction = %g, want 0.2", cfg.Pipeline.TestFraction)
	}
	if cfg.Pipeline.MaxAdjustedP != 0.05 {
		t.Errorf("default padj cut = %g, want 0.05", cfg.Pipeline.MaxAdjustedP)
	}
	if cfg.Database.URL != "" {
		t.Errorf("database should default to disabled, got %q", cfg.Database.URL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PIPELINE_SEED", "7")
	t.Setenv("K_FOLD", "5")
	t.Setenv("WEIGHTED_HUBS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.Seed != 7 || cfg.Pipeline.KFold != 5 || !cfg.Pipeline.WeightedHubs {
		t.Errorf("overrides not applied: %+v", cfg.Pipeline)
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Setenv("TEST_FRACTION", "1.5")
	if _, err := Load(); err == nil {
		t.Error("test fraction above 1 should fail validation")
	}
}

func TestLoad_KFoldOfOneRejected(t *testing.T) {
	t.Setenv("K_FOLD", "1")
	if _, err := Load(); err == nil {
		t.Error("k-fold of 1 is meaningless and should fail validation")
	}
}
