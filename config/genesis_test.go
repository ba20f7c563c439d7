package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test fixture: %v", err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeFile(t, "num_validators: 8\ngenesis_time: 1700000000\n")
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := g.ToConfig()
	if cfg.NumValidators != 8 {
		t.Fatalf("NumValidators = %d, want 8", cfg.NumValidators)
	}
	if cfg.IntervalsPerSlot != 4 {
		t.Fatalf("IntervalsPerSlot = %d, want default 4", cfg.IntervalsPerSlot)
	}
}

func TestLoadRejectsZeroValidators(t *testing.T) {
	path := writeFile(t, "genesis_time: 10\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing num_validators")
	}
}

func TestLoadHonorsExplicitOverrides(t *testing.T) {
	path := writeFile(t, "num_validators: 4\nintervals_per_slot: 8\nseconds_per_slot: 16\n")
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := g.ToConfig()
	if cfg.IntervalsPerSlot != 8 {
		t.Fatalf("IntervalsPerSlot = %d, want 8", cfg.IntervalsPerSlot)
	}
	if cfg.SecondsPerSlot != 16 {
		t.Fatalf("SecondsPerSlot = %d, want 16", cfg.SecondsPerSlot)
	}
}
