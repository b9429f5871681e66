package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Population.Size != 20 {
		t.Fatalf("population size = %d, want 20", cfg.Population.Size)
	}
	if cfg.Population.ParentCount != 5 {
		t.Fatalf("parent count = %d, want 5", cfg.Population.ParentCount)
	}
	if cfg.Genetics.AlleleFrequency != 0.5 {
		t.Fatalf("allele frequency = %v, want 0.5", cfg.Genetics.AlleleFrequency)
	}
	if cfg.Genetics.LinkageFidelity != 0.85 {
		t.Fatalf("linkage fidelity = %v, want 0.85", cfg.Genetics.LinkageFidelity)
	}
	if cfg.Selection.Strategy != "top_yield" {
		t.Fatalf("selection strategy = %q, want top_yield", cfg.Selection.Strategy)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("storage backend = %q, want memory", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatal("empty path should return the embedded defaults")
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdane.yaml")
	overlay := "population:\n  size: 40\ngenetics:\n  linkage_fidelity: 0.9\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Population.Size != 40 {
		t.Fatalf("overlaid size = %d, want 40", cfg.Population.Size)
	}
	if cfg.Genetics.LinkageFidelity != 0.9 {
		t.Fatalf("overlaid fidelity = %v, want 0.9", cfg.Genetics.LinkageFidelity)
	}
	// Untouched settings keep their defaults.
	if cfg.Genetics.TradeOffCoeff != 0.5 {
		t.Fatalf("trade-off coefficient = %v, want default 0.5", cfg.Genetics.TradeOffCoeff)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdane.yaml")
	if err := os.WriteFile(path, []byte("population:\n  size: 1\n"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for population size 1")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Genetics.AlleleFrequency = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range allele frequency")
	}

	cfg = Default()
	cfg.Population.ParentCount = cfg.Population.Size + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for parent count above size")
	}

	cfg = Default()
	cfg.Storage.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Population.Size = 32

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Population.Size != 32 {
		t.Fatalf("round-tripped size = %d, want 32", got.Population.Size)
	}
}
