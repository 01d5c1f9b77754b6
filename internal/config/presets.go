package config

var Presets = map[string]*Config{
	"beam-coarse": {
		Mesh:     MeshConfig{Nx: 32, Ny: 16, Height: 1.0},
		Material: MaterialConfig{Young: 1.0, Poisson: 0.3},
		Supports: SupportConfig{BCPos: 0, BCRad: 0.5, LoadPos: 0, LoadRad: 0.125},
		Optimize: OptimizeConfig{
			Updater: "oc", Penalty: 3.0, VolFrac: 0.5, FilterRadius: 0.125,
			Momentum: 0.5, Patience: 20, MaxIters: 100, MoveLimit: 0.2,
			SoftKill: 1e-6, Workers: 4,
		},
	},
	"beam-fine": {
		Mesh:     MeshConfig{Nx: 128, Ny: 64, Height: 1.0},
		Material: MaterialConfig{Young: 1.0, Poisson: 0.3},
		Supports: SupportConfig{BCPos: 0, BCRad: 0.5, LoadPos: 0, LoadRad: 0.0625},
		Optimize: OptimizeConfig{
			Updater: "oc", Penalty: 3.0, VolFrac: 0.4, FilterRadius: 0.09,
			Momentum: 0.5, Patience: 30, MaxIters: 300, MoveLimit: 0.2,
			SoftKill: 1e-6, Workers: 8,
		},
	},
	"beso-classic": {
		Mesh:     MeshConfig{Nx: 64, Ny: 32, Height: 1.0},
		Material: MaterialConfig{Young: 1.0, Poisson: 0.3},
		Supports: SupportConfig{BCPos: 0, BCRad: 0.5, LoadPos: 0, LoadRad: 0.125},
		Optimize: OptimizeConfig{
			Updater: "beso", Penalty: 3.0, VolFrac: 0.5, FilterRadius: 0.125,
			Momentum: 0.5, Patience: 20, MaxIters: 200,
			VolChange: 0.015625, TopoChange: 0.03125,
			SoftKill: 1e-6, Workers: 4,
		},
	},
	"corner-load": {
		Mesh:     MeshConfig{Nx: 64, Ny: 32, Height: 1.0},
		Material: MaterialConfig{Young: 1.0, Poisson: 0.3},
		Supports: SupportConfig{BCPos: 0, BCRad: 0.5, LoadPos: -0.5, LoadRad: 0.02},
		Optimize: OptimizeConfig{
			Updater: "oc", Penalty: 3.0, VolFrac: 0.45, FilterRadius: 0.125,
			Momentum: 0.5, Patience: 20, MaxIters: 200, MoveLimit: 0.2,
			SoftKill: 1e-6, Workers: 4,
		},
	},
	"partial-clamp": {
		Mesh:     MeshConfig{Nx: 64, Ny: 32, Height: 1.0},
		Material: MaterialConfig{Young: 1.0, Poisson: 0.3},
		Supports: SupportConfig{BCPos: 0, BCRad: 0.25, LoadPos: 0, LoadRad: 0.125},
		Optimize: OptimizeConfig{
			Updater: "oc", Penalty: 3.0, VolFrac: 0.5, FilterRadius: 0.125,
			Momentum: 0.5, Patience: 20, MaxIters: 200, MoveLimit: 0.2,
			SoftKill: 1e-6, Workers: 4,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
