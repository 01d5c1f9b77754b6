package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultNx           = 64
	DefaultNy           = 32
	DefaultHeight       = 1.0
	DefaultYoung        = 1.0
	DefaultPoisson      = 0.3
	DefaultPenalty      = 3.0
	DefaultFilterRadius = 0.125
	DefaultVolFrac      = 0.5
	DefaultMomentum     = 0.5
	DefaultPatience     = 20
	DefaultMaxIters     = 200
	DefaultMoveLimit    = 0.2
	DefaultVolChange    = 0.015625
	DefaultTopoChange   = 0.03125
	DefaultSoftKill     = 1e-6
	DefaultWorkers      = 4
)

type Config struct {
	Mesh     MeshConfig     `yaml:"mesh"`
	Material MaterialConfig `yaml:"material"`
	Supports SupportConfig  `yaml:"supports"`
	Optimize OptimizeConfig `yaml:"optimize"`
}

type MeshConfig struct {
	Nx     int     `yaml:"nx"`
	Ny     int     `yaml:"ny"`
	Height float64 `yaml:"height"`
}

type MaterialConfig struct {
	Young   float64 `yaml:"young"`
	Poisson float64 `yaml:"poisson"`
}

// SupportConfig places the clamp and the load on the left and right
// edges. Positions and radii are fractions of the beam height measured
// from the edge midline.
type SupportConfig struct {
	BCPos   float64 `yaml:"bc_pos"`
	BCRad   float64 `yaml:"bc_rad"`
	LoadPos float64 `yaml:"load_pos"`
	LoadRad float64 `yaml:"load_rad"`
}

type OptimizeConfig struct {
	Updater      string  `yaml:"updater"`
	Penalty      float64 `yaml:"penalty"`
	VolFrac      float64 `yaml:"vol_frac"`
	FilterRadius float64 `yaml:"filter_radius"`
	Momentum     float64 `yaml:"momentum"`
	Patience     int     `yaml:"patience"`
	MaxIters     int     `yaml:"max_iters"`
	MoveLimit    float64 `yaml:"move_limit"`
	VolChange    float64 `yaml:"vol_change"`
	TopoChange   float64 `yaml:"topo_change"`
	SoftKill     float64 `yaml:"soft_kill"`
	Workers      int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{
			Nx:     DefaultNx,
			Ny:     DefaultNy,
			Height: DefaultHeight,
		},
		Material: MaterialConfig{
			Young:   DefaultYoung,
			Poisson: DefaultPoisson,
		},
		Supports: SupportConfig{
			BCPos:   0,
			BCRad:   0.5,
			LoadPos: 0,
			LoadRad: 0.125,
		},
		Optimize: OptimizeConfig{
			Updater:      "oc",
			Penalty:      DefaultPenalty,
			VolFrac:      DefaultVolFrac,
			FilterRadius: DefaultFilterRadius,
			Momentum:     DefaultMomentum,
			Patience:     DefaultPatience,
			MaxIters:     DefaultMaxIters,
			MoveLimit:    DefaultMoveLimit,
			VolChange:    DefaultVolChange,
			TopoChange:   DefaultTopoChange,
			SoftKill:     DefaultSoftKill,
			Workers:      DefaultWorkers,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
