package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/relsim/internal/config"
	"github.com/san-kum/relsim/internal/experiment"
	"github.com/san-kum/relsim/internal/physics"
	"github.com/san-kum/relsim/internal/storage"
	"github.com/san-kum/relsim/internal/sweep"
	"github.com/san-kum/relsim/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	observable  string
	doppler     string
	laserRadius float64
	seed        int64
	workers     int
	body        int
	numPoints   int
	allObs      bool
	save        bool
	label       string
	// Rendering
	svgPath  string
	width    int
	height   int
	rotX     float64
	rotY     float64
	zoom     float64
	colormap string
	noBox    bool
	runID    string
	// Sweep
	sweepParams []string
	logScale    bool
	// Scene dump
	outPath string
)

var logger = log.New(io.Discard, "[relsim] ", log.LstdFlags)

// main exits with status 1 when the selected command returns an error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "relsim",
		Short:        "weak-field relativistic observables for massive bodies",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetOutput(os.Stderr)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".relsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log skipped bodies to stderr")

	runCmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "evaluate an observable for every body in a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&allObs, "all", false, "evaluate every observable")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under --data")
	runCmd.Flags().StringVar(&label, "label", "", "label for a saved run")
	// A saved run holds one observable and its frame.
	runCmd.MarkFlagsMutuallyExclusive("all", "save")

	cloudCmd := &cobra.Command{
		Use:   "cloud",
		Short: "render a point cloud colored by an observable",
		Args:  cobra.NoArgs,
		RunE:  renderCloud,
	}
	addSceneFlags(cloudCmd)
	cloudCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg file instead of drawing in the terminal")
	cloudCmd.Flags().IntVar(&width, "width", 60, "terminal width in cells")
	cloudCmd.Flags().IntVar(&height, "height", 24, "terminal height in cells")
	cloudCmd.Flags().Float64Var(&rotX, "rot-x", -0.5, "camera rotation about x (rad)")
	cloudCmd.Flags().Float64Var(&rotY, "rot-y", 0.6, "camera rotation about y (rad)")
	cloudCmd.Flags().Float64Var(&zoom, "zoom", 1.0, "camera zoom")
	cloudCmd.Flags().StringVar(&colormap, "colormap", "viridis", "colormap (viridis, inferno)")
	cloudCmd.Flags().BoolVar(&noBox, "no-box", false, "hide the bounding box outline")
	cloudCmd.Flags().StringVar(&runID, "run", "", "render a saved run instead of sampling")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate an observable over a grid of body parameters",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "swept parameter as name=lo:hi:n (mass, distance, speed); repeatable")
	sweepCmd.Flags().BoolVar(&logScale, "log", false, "space values geometrically")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tOBSERVABLE")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(cfg.Bodies), cfg.Experiment.Observable)
			}
			return w.Flush()
		},
	}

	sceneCmd := &cobra.Command{
		Use:   "scene [preset]",
		Short: "print a preset as an editable yaml scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpScene,
	}
	sceneCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")

	observablesCmd := &cobra.Command{
		Use:   "observables",
		Short: "list selectable observables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION\tUNIT")
			for _, o := range physics.Observables() {
				unit := o.Unit()
				if unit == "" {
					unit = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", o, o.Label(), unit)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, cloudCmd, sweepCmd, listCmd, showCmd, presetsCmd, sceneCmd, observablesCmd)
	return rootCmd
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in scene")
	cmd.Flags().StringVarP(&observable, "observable", "o", config.DefaultObservable, "observable to evaluate")
	cmd.Flags().StringVar(&doppler, "doppler", string(physics.DopplerStandard), "doppler convention (standard, verbatim)")
	cmd.Flags().Float64Var(&laserRadius, "laser-radius", physics.DefaultLaserRadius, "laser radius (m)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "point sampling seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")
	cmd.Flags().IntVar(&body, "body", 0, "body index for the point cloud")
	cmd.Flags().IntVar(&numPoints, "points", config.DefaultNumPoints, "number of sampled points")
}

// loadConfig resolves defaults, then the preset, then the config file,
// then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("observable") {
		cfg.Experiment.Observable = observable
	}
	if flags.Changed("doppler") {
		cfg.Engine.Doppler = doppler
	}
	if flags.Changed("laser-radius") {
		cfg.Engine.LaserRadius = laserRadius
	}
	if flags.Changed("seed") {
		cfg.Experiment.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Experiment.Workers = workers
	}
	if flags.Changed("body") {
		cfg.Experiment.Body = body
	}
	if flags.Changed("points") {
		cfg.Experiment.NumPoints = numPoints
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newExperiment(cmd *cobra.Command) (*physics.Engine, *experiment.Experiment, experiment.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, experiment.Config{}, err
	}
	eng, err := cfg.NewEngine()
	if err != nil {
		return nil, nil, experiment.Config{}, err
	}
	ec, err := cfg.ExperimentConfig()
	if err != nil {
		return nil, nil, experiment.Config{}, err
	}
	return eng, experiment.New(eng, ec, experiment.WithLogger(logger)), ec, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if cmd.Flags().Changed("config") && configFile != args[0] {
			return fmt.Errorf("scene file given twice: %s and --config %s", args[0], configFile)
		}
		configFile = args[0]
	}

	eng, exp, ec, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if allObs {
		all, err := exp.Runner().SimulateAll(ctx, ec.Scene)
		if err != nil {
			return err
		}
		return printAll(ec.Scene, all)
	}

	report, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s (doppler: %s)", ec.Observable.Label(), eng.Doppler())))
	if err := printResults(ec.Scene, ec.Observable, report.Results); err != nil {
		return err
	}
	plotValues(report.Results.Values(), string(ec.Observable)+" by body")

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(label, eng, report)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Printf("saved run: %s\n", id)
	}
	return nil
}

func printResults(scene physics.Scene, obs physics.Observable, res experiment.Results) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tBODY\tMASS (kg)\tVALUE")
	for i, o := range res {
		b := scene.Bodies[i]
		val := "error"
		if o.OK() {
			val = formatValue(o.Value, obs.Unit())
		}
		fmt.Fprintf(w, "%d\t%s\t%.4g\t%s\n", i, b.Name, b.Mass, val)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, o := range res {
		if o.Err != nil {
			fmt.Println(viz.ErrorText.Render(o.Err.Error()))
		}
	}
	return nil
}

func printAll(scene physics.Scene, all map[physics.Observable]experiment.Results) error {
	obs := physics.Observables()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "#\tBODY")
	for _, o := range obs {
		fmt.Fprintf(w, "\t%s", o)
	}
	fmt.Fprintln(w)
	for i, b := range scene.Bodies {
		fmt.Fprintf(w, "%d\t%s", i, b.Name)
		for _, o := range obs {
			out := all[o][i]
			if out.OK() {
				fmt.Fprintf(w, "\t%.6g", out.Value)
			} else {
				fmt.Fprint(w, "\terror")
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func plotValues(values []float64, caption string) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) < 2 {
		return
	}
	graph := asciigraph.Plot(finite,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	)
	fmt.Println()
	fmt.Println(graph)
}

func renderCloud(cmd *cobra.Command, args []string) error {
	var frame experiment.Frame
	if runID != "" {
		st := storage.New(dataDir)
		f, err := st.LoadFrame(runID)
		if err != nil {
			return fmt.Errorf("load run %s: %w", runID, err)
		}
		frame = f
	} else {
		_, exp, _, err := newExperiment(cmd)
		if err != nil {
			return err
		}
		report, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		frame = report.Frame
	}

	cm := viz.GetColormap(colormap)
	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		defer f.Close()

		sink := viz.NewSVG(f)
		sink.Colormap = cm
		if err := sink.Render(frame); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d points)\n", svgPath, len(frame.Points))
		return nil
	}

	sink := viz.NewTerminal(os.Stdout, width, height)
	sink.Colormap = cm
	sink.Box = !noBox
	sink.Camera.RotX, sink.Camera.RotY, sink.Camera.Zoom = rotX, rotY, zoom
	return sink.Render(frame)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	params := make([]sweep.Param, 0, len(sweepParams))
	for _, raw := range sweepParams {
		p, err := sweep.ParseParam(raw, logScale)
		if err != nil {
			return err
		}
		params = append(params, p)
	}

	eng, _, ec, err := newExperiment(cmd)
	if err != nil {
		return err
	}
	b := ec.Scene.Bodies[ec.Body]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, err := sweep.NewGrid(params...).Run(ctx, eng, b, ec.Observable)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s sweep of %s", ec.Observable.Label(), b.Name)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range params {
		fmt.Fprintf(w, "%s\t", p.Name)
	}
	fmt.Fprintln(w, "VALUE")
	failed := 0
	for _, pt := range points {
		for _, p := range params {
			fmt.Fprintf(w, "%.4g\t", pt.Params[p.Name])
		}
		if pt.OK() {
			fmt.Fprintln(w, formatValue(pt.Value, ec.Observable.Unit()))
		} else {
			failed++
			logger.Printf("sweep %v: %v", pt.Params, pt.Err)
			fmt.Fprintln(w, "error")
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// Plot along the innermost axis with the outer parameters at their first value.
	inner := len(params[len(params)-1].Values)
	values := make([]float64, 0, inner)
	for _, pt := range points[:inner] {
		values = append(values, pt.Value)
	}
	plotValues(values, string(ec.Observable)+" vs "+params[len(params)-1].Name)

	if failed > 0 {
		fmt.Println(viz.Muted.Render(fmt.Sprintf("%d of %d points outside the formula domain (-v for details)", failed, len(points))))
	}
	if best, ok := sweep.Best(points); ok {
		fmt.Printf("%s %v -> %s\n", viz.Label.Render("minimum:"), best.Params, formatValue(best.Value, ec.Observable.Unit()))
	}
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
	fmt.Fprintln(w, "ID\tLABEL\tOBSERVABLE\tBODIES\tTIMESTAMP")
	for _, r := range runs {
		ok := 0
		for _, b := range r.Bodies {
			if b.Value != nil {
				ok++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n", r.ID, r.Label, r.Observable, ok, len(r.Bodies), r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	obs := physics.Observable(meta.Observable)
	fmt.Println(viz.Title.Render(fmt.Sprintf("run %s", meta.ID)))
	fmt.Printf("%s %s\n", viz.Label.Render("observable:"), obs)
	fmt.Printf("%s %s, laser radius %.4g m\n", viz.Label.Render("doppler:"), meta.Doppler, meta.LaserRadius)
	fmt.Printf("%s %d (body %d, %d points)\n", viz.Label.Render("seed:"), meta.Seed, meta.Body, meta.NumPoints)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tBODY\tMASS (kg)\tVALUE")
	for i, b := range meta.Bodies {
		val := "error: " + b.Error
		if b.Value != nil {
			val = formatValue(*b.Value, obs.Unit())
		}
		fmt.Fprintf(w, "%d\t%s\t%.4g\t%s\n", i, b.Name, b.Mass, val)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	plotValues(meta.Values(), meta.Observable+" by body")
	return nil
}

func dumpScene(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if len(args) == 1 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if outPath != "" {
		if err := config.Save(outPath, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func formatValue(v float64, unit string) string {
	s := fmt.Sprintf("%.6g", v)
	if unit != "" {
		s += " " + unit
	}
	return s
}
