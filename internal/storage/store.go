package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mechlab/topopt/internal/config"
	"github.com/mechlab/topopt/internal/optimize"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Updater      string             `json:"updater"`
	Timestamp    time.Time          `json:"timestamp"`
	Nx           int                `json:"nx"`
	Ny           int                `json:"ny"`
	Height       float64            `json:"height"`
	Penalty      float64            `json:"penalty"`
	VolFrac      float64            `json:"vol_frac"`
	FilterRadius float64            `json:"filter_radius"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, the per-iteration
// history and the best density field, and returns the run ID.
func (s *Store) Save(cfg *config.Config, result *optimize.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Optimize.Updater, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Updater:      cfg.Optimize.Updater,
		Timestamp:    time.Now(),
		Nx:           cfg.Mesh.Nx,
		Ny:           cfg.Mesh.Ny,
		Height:       cfg.Mesh.Height,
		Penalty:      cfg.Optimize.Penalty,
		VolFrac:      cfg.Optimize.VolFrac,
		FilterRadius: cfg.Optimize.FilterRadius,
		Metrics:      result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeHistory(filepath.Join(runDir, "history.csv"), result); err != nil {
		return "", err
	}
	if err := writeDensity(filepath.Join(runDir, "density.csv"), result.Best); err != nil {
		return "", err
	}

	return runID, nil
}

func writeHistory(path string, result *optimize.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"iter", "compliance", "volume"}); err != nil {
		return err
	}
	for i := range result.Compliance {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(result.Compliance[i], 'g', 12, 64),
			strconv.FormatFloat(result.Volume[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeDensity(path string, x []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"element", "density"}); err != nil {
		return err
	}
	for e, v := range x {
		row := []string{strconv.Itoa(e), strconv.FormatFloat(v, 'f', 6, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadHistory returns the compliance and volume series of a run.
func (s *Store) LoadHistory(runID string) ([]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return nil, nil, err
	}

	compliance := make([]float64, 0, len(records))
	volume := make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		c, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		compliance = append(compliance, c)
		volume = append(volume, v)
	}
	return compliance, volume, nil
}

// LoadDensity returns the stored density field in element order.
func (s *Store) LoadDensity(runID string) ([]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "density.csv"))
	if err != nil {
		return nil, err
	}

	x := make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		x = append(x, v)
	}
	return x, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}
	return records[1:], nil // skip header
}

type runExport struct {
	Metadata   RunMetadata `json:"metadata"`
	Compliance []float64   `json:"compliance"`
	Volume     []float64   `json:"volume"`
	Density    []float64   `json:"density"`
}

// ExportJSON writes the whole run as a single JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	compliance, volume, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}
	density, err := s.LoadDensity(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runExport{
		Metadata:   *meta,
		Compliance: compliance,
		Volume:     volume,
		Density:    density,
	})
}
