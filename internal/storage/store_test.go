package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/mechlab/topopt/internal/config"
	"github.com/mechlab/topopt/internal/optimize"
)

func sampleRun() (*config.Config, *optimize.Result) {
	cfg := config.DefaultConfig()
	cfg.Mesh.Nx = 2
	cfg.Mesh.Ny = 2
	return cfg, &optimize.Result{
		Density:        []float64{1, 0.5, 0.25, 1},
		Best:           []float64{1, 0.5, 0.25, 1},
		Compliance:     []float64{10.5, 8.25, 7.125},
		Volume:         []float64{1.0, 0.75, 0.6875},
		Iterations:     3,
		BestCompliance: 7.125,
		Metrics: map[string]float64{
			"compliance":      7.125,
			"best_compliance": 7.125,
			"volume":          0.6875,
			"iterations":      3,
		},
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	cfg, res := sampleRun()
	runID, err := store.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "oc_") {
		t.Errorf("expected run ID prefixed with updater, got %s", runID)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Nx != 2 || meta.Ny != 2 {
		t.Errorf("unexpected mesh size %dx%d", meta.Nx, meta.Ny)
	}
	if meta.Metrics["best_compliance"] != 7.125 {
		t.Errorf("unexpected metric %f", meta.Metrics["best_compliance"])
	}

	compliance, volume, err := store.LoadHistory(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(compliance) != 3 || len(volume) != 3 {
		t.Fatalf("expected 3 history rows, got %d/%d", len(compliance), len(volume))
	}
	if math.Abs(compliance[2]-7.125) > 1e-9 {
		t.Errorf("expected compliance 7.125, got %f", compliance[2])
	}

	density, err := store.LoadDensity(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(density) != 4 {
		t.Fatalf("expected 4 densities, got %d", len(density))
	}
	if math.Abs(density[2]-0.25) > 1e-9 {
		t.Errorf("expected density 0.25, got %f", density[2])
	}
}

func TestListEmptyAndPopulated(t *testing.T) {
	store := New(t.TempDir())

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}

	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	cfg, res := sampleRun()
	if _, err := store.Save(cfg, res); err != nil {
		t.Fatal(err)
	}

	runs, err = store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Updater != "oc" {
		t.Errorf("unexpected updater %s", runs[0].Updater)
	}
}

// Back-to-back saves must land in distinct run directories.
func TestSaveUniqueRunIDs(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	cfg, res := sampleRun()
	first, err := store.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("consecutive saves produced the same run ID %s", first)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestLoadMissingRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("oc_0"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportJSON(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	cfg, res := sampleRun()
	runID, err := store.Save(cfg, res)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := store.ExportJSON(runID, &buf); err != nil {
		t.Fatal(err)
	}

	var out struct {
		Metadata   RunMetadata `json:"metadata"`
		Compliance []float64   `json:"compliance"`
		Density    []float64   `json:"density"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Metadata.ID != runID {
		t.Errorf("expected ID %s, got %s", runID, out.Metadata.ID)
	}
	if len(out.Compliance) != 3 || len(out.Density) != 4 {
		t.Errorf("unexpected export sizes %d/%d", len(out.Compliance), len(out.Density))
	}
}
