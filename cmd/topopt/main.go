package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mechlab/topopt/internal/config"
	"github.com/mechlab/topopt/internal/fem"
	"github.com/mechlab/topopt/internal/material"
	"github.com/mechlab/topopt/internal/mesh"
	"github.com/mechlab/topopt/internal/optimize"
	"github.com/mechlab/topopt/internal/storage"
	"github.com/mechlab/topopt/internal/viz"
)

var (
	dataDir    string
	nx         int
	ny         int
	height     float64
	young      float64
	poisson    float64
	bcPos      float64
	bcRad      float64
	loadPos    float64
	loadRad    float64
	updater    string
	penalty    float64
	volfrac    float64
	radius     float64
	momentum   float64
	patience   int
	maxIters   int
	move       float64
	volChange  float64
	topoChange float64
	softKill   float64
	workers    int
	// Config file and preset
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "topopt",
		Short: "compliance topology optimization lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".topopt", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an optimization",
		RunE:  runOptimization,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run history and final design",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and final design",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run an optimization with live visualization",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run history to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark solver across mesh sizes",
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&maxIters, "iters", 5, "iterations per mesh")
	benchCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "sensitivity workers")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			fmt.Println("presets:")
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, showCmd, liveCmd, exportJSONCmd, exportCSVCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&nx, "nx", config.DefaultNx, "elements along the beam")
	cmd.Flags().IntVar(&ny, "ny", config.DefaultNy, "elements through the height")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "beam height")
	cmd.Flags().Float64Var(&young, "young", config.DefaultYoung, "Young's modulus")
	cmd.Flags().Float64Var(&poisson, "poisson", config.DefaultPoisson, "Poisson ratio")
	cmd.Flags().Float64Var(&bcPos, "bc-pos", 0, "clamp center (fraction of height)")
	cmd.Flags().Float64Var(&bcRad, "bc-rad", 0.5, "clamp half-span (fraction of height)")
	cmd.Flags().Float64Var(&loadPos, "load-pos", 0, "load center (fraction of height)")
	cmd.Flags().Float64Var(&loadRad, "load-rad", 0.125, "load half-span (fraction of height)")
	cmd.Flags().StringVar(&updater, "updater", "oc", "density updater (oc, beso)")
	cmd.Flags().Float64Var(&penalty, "penalty", config.DefaultPenalty, "stiffness penalization exponent")
	cmd.Flags().Float64Var(&volfrac, "volfrac", config.DefaultVolFrac, "target volume fraction")
	cmd.Flags().Float64Var(&radius, "radius", config.DefaultFilterRadius, "sensitivity filter radius")
	cmd.Flags().Float64Var(&momentum, "momentum", config.DefaultMomentum, "sensitivity momentum")
	cmd.Flags().IntVar(&patience, "patience", config.DefaultPatience, "iterations without improvement before stopping")
	cmd.Flags().IntVar(&maxIters, "iters", config.DefaultMaxIters, "maximum iterations")
	cmd.Flags().Float64Var(&move, "move", config.DefaultMoveLimit, "density move limit (oc)")
	cmd.Flags().Float64Var(&volChange, "vol-change", config.DefaultVolChange, "volume removed per iteration (beso)")
	cmd.Flags().Float64Var(&topoChange, "topo-change", config.DefaultTopoChange, "fraction of elements toggled per iteration (beso)")
	cmd.Flags().Float64Var(&softKill, "soft-kill", config.DefaultSoftKill, "void stiffness floor")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "sensitivity workers")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig layers preset, config file and changed CLI flags, in
// that order of increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("nx") {
		cfg.Mesh.Nx = nx
	}
	if cmd.Flags().Changed("ny") {
		cfg.Mesh.Ny = ny
	}
	if cmd.Flags().Changed("height") {
		cfg.Mesh.Height = height
	}
	if cmd.Flags().Changed("young") {
		cfg.Material.Young = young
	}
	if cmd.Flags().Changed("poisson") {
		cfg.Material.Poisson = poisson
	}
	if cmd.Flags().Changed("bc-pos") {
		cfg.Supports.BCPos = bcPos
	}
	if cmd.Flags().Changed("bc-rad") {
		cfg.Supports.BCRad = bcRad
	}
	if cmd.Flags().Changed("load-pos") {
		cfg.Supports.LoadPos = loadPos
	}
	if cmd.Flags().Changed("load-rad") {
		cfg.Supports.LoadRad = loadRad
	}
	if cmd.Flags().Changed("updater") {
		cfg.Optimize.Updater = updater
	}
	if cmd.Flags().Changed("penalty") {
		cfg.Optimize.Penalty = penalty
	}
	if cmd.Flags().Changed("volfrac") {
		cfg.Optimize.VolFrac = volfrac
	}
	if cmd.Flags().Changed("radius") {
		cfg.Optimize.FilterRadius = radius
	}
	if cmd.Flags().Changed("momentum") {
		cfg.Optimize.Momentum = momentum
	}
	if cmd.Flags().Changed("patience") {
		cfg.Optimize.Patience = patience
	}
	if cmd.Flags().Changed("iters") {
		cfg.Optimize.MaxIters = maxIters
	}
	if cmd.Flags().Changed("move") {
		cfg.Optimize.MoveLimit = move
	}
	if cmd.Flags().Changed("vol-change") {
		cfg.Optimize.VolChange = volChange
	}
	if cmd.Flags().Changed("topo-change") {
		cfg.Optimize.TopoChange = topoChange
	}
	if cmd.Flags().Changed("soft-kill") {
		cfg.Optimize.SoftKill = softKill
	}
	if cmd.Flags().Changed("workers") {
		cfg.Optimize.Workers = workers
	}

	return cfg, nil
}

func optimizeConfig(cfg *config.Config) optimize.Config {
	return optimize.Config{
		Penalty:      cfg.Optimize.Penalty,
		VolFrac:      cfg.Optimize.VolFrac,
		FilterRadius: cfg.Optimize.FilterRadius,
		Momentum:     cfg.Optimize.Momentum,
		Patience:     cfg.Optimize.Patience,
		MaxIters:     cfg.Optimize.MaxIters,
		MoveLimit:    cfg.Optimize.MoveLimit,
		VolChange:    cfg.Optimize.VolChange,
		TopoChange:   cfg.Optimize.TopoChange,
		SoftKill:     cfg.Optimize.SoftKill,
		Workers:      cfg.Optimize.Workers,
	}
}

func setupOptimizer(cfg *config.Config) (*optimize.Optimizer, error) {
	g, err := mesh.New(cfg.Mesh.Nx, cfg.Mesh.Ny, cfg.Mesh.Height)
	if err != nil {
		return nil, err
	}
	model, err := fem.NewCantilever(g, cfg.Supports.BCPos, cfg.Supports.BCRad, cfg.Supports.LoadPos, cfg.Supports.LoadRad)
	if err != nil {
		return nil, err
	}
	ke := material.PlaneStress(cfg.Material.Young, cfg.Material.Poisson)
	up, err := optimize.NewUpdater(cfg.Optimize.Updater, optimizeConfig(cfg))
	if err != nil {
		return nil, err
	}
	return optimize.New(model, ke, up, optimizeConfig(cfg)), nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	opt, err := setupOptimizer(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s on %dx%d mesh...\n", cfg.Optimize.Updater, cfg.Mesh.Nx, cfg.Mesh.Ny)
	start := time.Now()

	result, err := opt.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	fmt.Println()
	fmt.Println(viz.DensityMap(result.Best, cfg.Mesh.Nx, cfg.Mesh.Ny))

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUPDATER\tTIME\tMESH\tVOLFRAC\tCOMPLIANCE\tITERS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%.2f\t%.6g\t%.0f\n",
			run.ID,
			run.Updater,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nx, run.Ny,
			run.VolFrac,
			run.Metrics["best_compliance"],
			run.Metrics["iterations"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	compliance, volume, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(compliance) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("updater: %s\n", meta.Updater)
	fmt.Printf("iterations: %d\n\n", len(compliance))

	graph := asciigraph.Plot(compliance,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("compliance"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(volume,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("volume fraction"),
	)
	fmt.Println(graph)
	fmt.Println()

	density, err := st.LoadDensity(runID)
	if err != nil {
		return err
	}
	if len(density) == meta.Nx*meta.Ny {
		fmt.Println(viz.DensityMap(density, meta.Nx, meta.Ny))
	}

	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	density, err := st.LoadDensity(args[0])
	if err != nil {
		return err
	}
	if len(density) == meta.Nx*meta.Ny {
		fmt.Println()
		fmt.Println(viz.DensityMap(density, meta.Nx, meta.Ny))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	opt, err := setupOptimizer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan viz.Progress, 1)
	opt.Observer = func(iter int, x []float64, compliance, volume float64) {
		snapshot := make([]float64, len(x))
		copy(snapshot, x)
		select {
		case updates <- viz.Progress{Iter: iter, Density: snapshot, Compliance: compliance, Volume: volume}:
		case <-ctx.Done():
		}
	}

	type runOutcome struct {
		result *optimize.Result
		err    error
	}
	done := make(chan runOutcome, 1)
	go func() {
		result, err := opt.Run(ctx)
		close(updates)
		done <- runOutcome{result, err}
	}()

	m := viz.NewModel(cfg.Mesh.Nx, cfg.Mesh.Ny, cfg.Optimize.Updater, updates, cancel)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()

	outcome := <-done
	if outcome.err != nil && outcome.err != context.Canceled {
		return outcome.err
	}
	if outcome.result == nil || len(outcome.result.Best) == 0 {
		return nil
	}

	runID, err := st.Save(cfg, outcome.result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(args[0], os.Stdout)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	compliance, volume, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(compliance) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"iter", "compliance", "volume"}); err != nil {
		return err
	}
	for i := range compliance {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(compliance[i], 'g', 12, 64),
			strconv.FormatFloat(volume[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func benchSolver(cmd *cobra.Command, args []string) error {
	meshes := []struct{ nx, ny int }{
		{16, 8},
		{32, 16},
		{64, 32},
	}

	fmt.Println("benchmarking optimization step")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MESH\tDOFS\tITERS\tTIME\tITERS/SEC")

	for _, m := range meshes {
		cfg := config.DefaultConfig()
		cfg.Mesh.Nx = m.nx
		cfg.Mesh.Ny = m.ny
		cfg.Optimize.MaxIters = maxIters
		cfg.Optimize.Patience = maxIters + 1
		cfg.Optimize.Workers = workers

		opt, err := setupOptimizer(cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := opt.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		dofs := 2 * (m.nx + 1) * (m.ny + 1)
		fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%.1f\n",
			m.nx, m.ny, dofs, result.Iterations, elapsed,
			float64(result.Iterations)/elapsed.Seconds())
	}

	return w.Flush()
}
