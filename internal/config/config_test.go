package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mesh.Nx <= 0 || cfg.Mesh.Ny <= 0 {
		t.Error("mesh dimensions should be positive")
	}
	if cfg.Optimize.Updater != "oc" {
		t.Errorf("expected updater oc, got %s", cfg.Optimize.Updater)
	}
	if cfg.Optimize.VolFrac <= 0 || cfg.Optimize.VolFrac > 1 {
		t.Errorf("volume fraction %f out of range", cfg.Optimize.VolFrac)
	}
	if cfg.Optimize.SoftKill <= 0 || cfg.Optimize.SoftKill >= 1 {
		t.Errorf("soft-kill floor %f out of range", cfg.Optimize.SoftKill)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Mesh.Nx = 48
	cfg.Optimize.Updater = "beso"
	cfg.Optimize.Penalty = 2.5

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Mesh.Nx != 48 {
		t.Errorf("expected nx 48, got %d", loaded.Mesh.Nx)
	}
	if loaded.Optimize.Updater != "beso" {
		t.Errorf("expected updater beso, got %s", loaded.Optimize.Updater)
	}
	if loaded.Optimize.Penalty != 2.5 {
		t.Errorf("expected penalty 2.5, got %f", loaded.Optimize.Penalty)
	}
	// untouched fields keep their defaults
	if loaded.Material.Poisson != DefaultPoisson {
		t.Errorf("expected poisson %f, got %f", DefaultPoisson, loaded.Material.Poisson)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("beso-classic")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Optimize.Updater != "beso" {
		t.Errorf("expected updater beso, got %s", cfg.Optimize.Updater)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["beam-coarse"] || !seen["beso-classic"] {
		t.Errorf("expected standard presets in %v", names)
	}
}
