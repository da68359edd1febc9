package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ekarst/flowlab/internal/analysis"
	"github.com/ekarst/flowlab/internal/config"
	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/flow"
	"github.com/ekarst/flowlab/internal/router"
	"github.com/ekarst/flowlab/internal/store"
	"github.com/ekarst/flowlab/internal/tui"
	"github.com/ekarst/flowlab/internal/viz"
)

var (
	dataDir string
	verbose bool

	// grid parameters
	rows    int
	cols    int
	spacing float64
	seed    int64
	demFile string

	// router options
	metric       string
	exponent     float64
	handler      string
	epsilon      float64
	runoffRate   float64
	noAccum      bool
	separateHill bool
	hillMetric   string
	hillExponent float64

	// config file and preset
	configFile string
	preset     string

	// view options
	width        int
	height       int
	exaggeration float64
	minArea      float64
	logScale     bool
	rampName     string
	fieldName    string
	mapField     string
	mapCols      int
	rowIdx       int
	colIdx       int
	svgView      string
	svgOut       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowlab",
		Short: "flow routing over digital elevation models",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flowlab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	routeCmd := &cobra.Command{
		Use:   "route [terrain]",
		Short: "run the flow router once over a DEM and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRoute,
	}
	addGridFlags(routeCmd)
	addRouterFlags(routeCmd)
	routeCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	routeCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  runList,
	}

	surfaceCmd := &cobra.Command{
		Use:   "surface [run_id]",
		Short: "3D wireframe of a node field",
		Args:  cobra.ExactArgs(1),
		RunE:  runSurface,
	}
	surfaceCmd.Flags().StringVar(&fieldName, "field", dem.FieldElevation, "field to render")
	surfaceCmd.Flags().IntVar(&width, "width", 78, "canvas width")
	surfaceCmd.Flags().IntVar(&height, "height", 24, "canvas height")
	surfaceCmd.Flags().Float64Var(&exaggeration, "exaggeration", 0.6, "vertical exaggeration")

	networkCmd := &cobra.Command{
		Use:   "network [run_id]",
		Short: "plan-view drainage network",
		Args:  cobra.ExactArgs(1),
		RunE:  runNetwork,
	}
	networkCmd.Flags().Float64Var(&minArea, "min-area", 0, "hide links draining less area than this")
	networkCmd.Flags().IntVar(&width, "width", 78, "canvas width")
	networkCmd.Flags().IntVar(&height, "height", 24, "canvas height")

	dischargeCmd := &cobra.Command{
		Use:   "discharge [run_id]",
		Short: "colored discharge map",
		Args:  cobra.ExactArgs(1),
		RunE:  runDischarge,
	}
	dischargeCmd.Flags().StringVar(&mapField, "field", dem.FieldDischarge, "field to map")
	dischargeCmd.Flags().StringVar(&rampName, "ramp", "water", "color ramp (water, terrain, mono)")
	dischargeCmd.Flags().BoolVar(&logScale, "log", true, "log10 color scaling")
	dischargeCmd.Flags().IntVar(&mapCols, "width", 120, "maximum terminal columns")

	profileCmd := &cobra.Command{
		Use:   "profile [run_id]",
		Short: "field profile along a grid row or column",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile,
	}
	profileCmd.Flags().StringVar(&fieldName, "field", dem.FieldElevation, "field to plot")
	profileCmd.Flags().IntVar(&rowIdx, "row", -1, "grid row to follow")
	profileCmd.Flags().IntVar(&colIdx, "col", -1, "grid column to follow")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "hypsometry and slope-area statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [terrain] [metric...]",
		Short: "route the same DEM under several flow metrics",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompare,
	}
	addGridFlags(compareCmd)
	compareCmd.Flags().StringVar(&handler, "handler", router.HandlerFill, "depression handler")

	liveCmd := &cobra.Command{
		Use:   "live [terrain]",
		Short: "interactive viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addGridFlags(liveCmd)
	addRouterFlags(liveCmd)
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	presetsCmd := &cobra.Command{
		Use:   "presets [terrain]",
		Short: "list presets for a terrain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for terrain: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run fields to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCSV,
	}

	exportASCCmd := &cobra.Command{
		Use:   "export-asc [run_id] [field]",
		Short: "export one field as an ESRI ASCII raster",
		Args:  cobra.ExactArgs(2),
		RunE:  runExportASC,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a rendered view as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgView, "view", "surface", "view to render (surface or network)")
	exportSVGCmd.Flags().StringVar(&rampName, "ramp", "water", "color ramp (water, terrain, mono)")
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")
	exportSVGCmd.Flags().Float64Var(&minArea, "min-area", 0, "network link threshold")
	exportSVGCmd.Flags().Float64Var(&exaggeration, "exaggeration", 0.6, "vertical exaggeration")

	benchCmd := &cobra.Command{
		Use:   "bench [terrain]",
		Short: "routing timings across grid sizes and metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}

	rootCmd.AddCommand(routeCmd, listCmd, surfaceCmd, networkCmd, dischargeCmd,
		profileCmd, analyzeCmd, compareCmd, liveCmd, presetsCmd,
		exportCmd, exportCSVCmd, exportASCCmd, exportSVGCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "grid rows")
	cmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "grid columns")
	cmd.Flags().Float64Var(&spacing, "spacing", config.DefaultSpacing, "cell size")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "terrain seed")
	cmd.Flags().StringVar(&demFile, "dem", "", "route a real DEM (ESRI ASCII) instead of a synthetic one")
}

func addRouterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&metric, "metric", "d8", "flow metric (d8, d4, rho8, rho4, quinn, freeman, holmgren, dinf)")
	cmd.Flags().Float64Var(&exponent, "exponent", 1.1, "partition exponent (freeman, holmgren)")
	cmd.Flags().StringVar(&handler, "handler", router.HandlerFill, "depression handler (fill or breach)")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 1e-4, "fill gradient")
	cmd.Flags().Float64Var(&runoffRate, "runoff", 1.0, "uniform runoff rate")
	cmd.Flags().BoolVar(&noAccum, "no-accumulate", false, "skip drainage area and discharge")
	cmd.Flags().BoolVar(&separateHill, "separate-hill-flow", false, "second routing pass for hillslopes")
	cmd.Flags().StringVar(&hillMetric, "hill-metric", "quinn", "hillslope flow metric")
	cmd.Flags().Float64Var(&hillExponent, "hill-exponent", 1.0, "hillslope partition exponent")
}

// resolveConfig layers settings: preset, then config file, then any flag
// the user actually set.
func resolveConfig(cmd *cobra.Command, terrain string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(terrain, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(terrain))
		}
		*cfg = *p
	}

	if configFile != "" {
		// the file only overrides what it names, so preset values survive
		if err := config.Overlay(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if terrain != "" {
		cfg.Terrain = terrain
	}
	if cmd.Flags().Changed("rows") {
		cfg.Rows = rows
	}
	if cmd.Flags().Changed("cols") {
		cfg.Cols = cols
	}
	if cmd.Flags().Changed("spacing") {
		cfg.Spacing = spacing
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("metric") {
		cfg.Router.Metric = metric
	}
	if cmd.Flags().Changed("exponent") {
		cfg.Router.Exponent = exponent
	}
	if cmd.Flags().Changed("handler") {
		cfg.Router.DepressionHandler = handler
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Router.Epsilon = epsilon
	}
	if cmd.Flags().Changed("runoff") {
		cfg.Router.RunoffRate = runoffRate
	}
	if cmd.Flags().Changed("no-accumulate") {
		cfg.Router.AccumulateFlow = !noAccum
	}
	if cmd.Flags().Changed("separate-hill-flow") {
		cfg.Router.SeparateHillFlow = separateHill
	}
	if cmd.Flags().Changed("hill-metric") {
		cfg.Router.HillMetric = hillMetric
	}
	if cmd.Flags().Changed("hill-exponent") {
		cfg.Router.HillExponent = hillExponent
	}
	return cfg, nil
}

func buildGrid(cfg *config.Config) (*dem.Grid, error) {
	if demFile != "" {
		return dem.ReadASC(demFile)
	}
	return dem.Synthesize(cfg.Terrain, cfg.Rows, cfg.Cols, cfg.Spacing, cfg.Seed)
}

func runRoute(cmd *cobra.Command, args []string) error {
	terrain := ""
	if len(args) > 0 {
		terrain = args[0]
	}
	cfg, err := resolveConfig(cmd, terrain)
	if err != nil {
		return err
	}

	g, err := buildGrid(cfg)
	if err != nil {
		return err
	}

	r, err := router.New(g, cfg.Router)
	if err != nil {
		return err
	}

	fmt.Printf("routing %s (%dx%d, %s/%s)...\n",
		cfg.Terrain, g.Rows, g.Cols, cfg.Router.Metric, cfg.Router.DepressionHandler)
	start := time.Now()
	res, err := r.RunOneStep(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Terrain, g, cfg.Router, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("\nconditioned nodes: %d (%s)\n", res.Conditioned, res.Handler)
	fmt.Printf("unrouted nodes: %d\n", res.Unrouted)
	if cfg.Router.AccumulateFlow {
		fmt.Printf("outlets: %d\n", res.Outlets)
		fmt.Printf("max drainage area: %.4g at node %d\n", res.MaxArea, res.MaxAreaNode)
		fmt.Printf("boundary discharge: %.4g\n", res.SinkDischarge)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTERRAIN\tTIME\tGRID\tMETRIC\tHANDLER\tOUTLETS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%s\t%d\n",
			run.ID,
			run.Terrain,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows, run.Cols,
			run.Options.Metric,
			run.Options.DepressionHandler,
			run.Summary.Outlets,
		)
	}
	return w.Flush()
}

func runSurface(cmd *cobra.Command, args []string) error {
	label := args[0]
	st := store.New(dataDir)
	g, meta, err := st.LoadGrid(args[0])
	if err == nil {
		label = fmt.Sprintf("%s  %s", meta.ID, meta.Options.Metric)
	} else {
		// not a saved run, try it as a terrain name
		g, err = dem.Synthesize(args[0], config.DefaultRows, config.DefaultCols, config.DefaultSpacing, config.DefaultSeed)
		if err != nil {
			return fmt.Errorf("%s is neither a run id nor a terrain (%v)", args[0], dem.TerrainNames())
		}
	}

	out, err := viz.RenderSurface(g, fieldName, viz.NewCamera(), width, height, exaggeration)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", label, fieldName)
	fmt.Print(out)
	return nil
}

func runNetwork(cmd *cobra.Command, args []string) error {
	g, meta, rt, err := reroute(args[0])
	if err != nil {
		return err
	}

	out, err := viz.RenderNetwork(g, rt, width, height, minArea)
	if err != nil {
		return err
	}
	fmt.Printf("%s  drainage network  %s/%s\n", meta.ID, meta.Options.Metric, meta.Options.DepressionHandler)
	fmt.Print(out)
	return nil
}

func runDischarge(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	g, meta, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}

	ramp, err := viz.RampByName(rampName)
	if err != nil {
		return err
	}
	out, err := viz.RenderFieldMap(g, mapField, ramp, mapCols, logScale)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", meta.ID, meta.Options.Metric)
	fmt.Print(out)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	g, meta, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}
	v, err := g.Field(fieldName)
	if err != nil {
		return err
	}

	var data []float64
	var caption string
	switch {
	case rowIdx >= 0 && rowIdx < g.Rows:
		data = make([]float64, g.Cols)
		for c := 0; c < g.Cols; c++ {
			data[c] = v[g.NodeAt(rowIdx, c)]
		}
		caption = fmt.Sprintf("%s along row %d", fieldName, rowIdx)
	case colIdx >= 0 && colIdx < g.Cols:
		data = make([]float64, g.Rows)
		for r := 0; r < g.Rows; r++ {
			data[r] = v[g.NodeAt(r, colIdx)]
		}
		caption = fmt.Sprintf("%s along column %d", fieldName, colIdx)
	default:
		mid := g.Rows / 2
		data = make([]float64, g.Cols)
		for c := 0; c < g.Cols; c++ {
			data[c] = v[g.NodeAt(mid, c)]
		}
		caption = fmt.Sprintf("%s along row %d (middle)", fieldName, mid)
	}

	fmt.Printf("run: %s\n\n", meta.ID)
	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	g, meta, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("terrain analysis: %s\n", meta.ID)
	fmt.Printf("metric: %s/%s\n\n", meta.Options.Metric, meta.Options.DepressionHandler)

	relArea, _, err := analysis.Hypsometry(g, dem.FieldElevation, 40)
	if err != nil {
		return err
	}
	graph := asciigraph.Plot(relArea,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("hypsometric curve (area fraction above relative elevation)"),
	)
	fmt.Println(graph)
	fmt.Println()

	hi, err := analysis.HypsometricIntegral(g, dem.FieldElevation)
	if err != nil {
		return err
	}
	fmt.Printf("hypsometric integral: %.3f\n", hi)

	if intercept, theta, n, err := analysis.SlopeArea(g); err != nil {
		fmt.Printf("slope-area fit: %v\n", err)
	} else {
		fmt.Printf("slope-area fit: theta=%.3f intercept=%.3f (%d nodes)\n", theta, intercept, n)
	}

	for _, f := range []string{dem.FieldElevation, dem.FieldDrainageArea, dem.FieldDischarge} {
		if !g.HasField(f) {
			continue
		}
		s, err := analysis.Summarize(g, f)
		if err != nil {
			return err
		}
		fmt.Printf("%-28s min=%.4g max=%.4g mean=%.4g median=%.4g\n", f, s.Min, s.Max, s.Mean, s.Median)
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	terrain := args[0]
	metrics := args[1:]
	if len(metrics) == 0 {
		for _, m := range flow.Metrics() {
			metrics = append(metrics, string(m))
		}
	}

	fmt.Printf("comparing flow metrics on %s (%dx%d, handler=%s)\n\n", terrain, rows, cols, handler)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tCONDITIONED\tOUTLETS\tMAX AREA\tDISCHARGE\tTIME")

	for _, name := range metrics {
		g, err := dem.Synthesize(terrain, rows, cols, spacing, seed)
		if err != nil {
			return err
		}
		opts := router.DefaultOptions()
		opts.Metric = name
		opts.DepressionHandler = handler
		opts.Seed = seed
		if name == "holmgren" {
			opts.Exponent = 5.0
		}
		r, err := router.New(g, opts)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		res, err := r.RunOneStep(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4g\t%.4g\t%v\n",
			name, res.Conditioned, res.Outlets, res.MaxArea, res.SinkDischarge, elapsed)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	terrain := ""
	if len(args) > 0 {
		terrain = args[0]
	}
	cfg, err := resolveConfig(cmd, terrain)
	if err != nil {
		return err
	}
	g, err := buildGrid(cfg)
	if err != nil {
		return err
	}

	m := tui.NewModel(cfg.Terrain, g, cfg.Router)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	g, meta, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}
	return store.ExportJSON(os.Stdout, meta, g)
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	g, _, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}
	return store.ExportCSV(os.Stdout, g)
}

func runExportASC(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	g, _, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}
	return store.ExportASC(os.Stdout, g, args[1])
}

func runExportSVG(cmd *cobra.Command, args []string) error {
	var canvas *viz.Canvas

	switch svgView {
	case "surface":
		st := store.New(dataDir)
		g, _, err := st.LoadGrid(args[0])
		if err != nil {
			return err
		}
		wf, err := viz.SurfaceWireframe(g, dem.FieldElevation, 0, exaggeration)
		if err != nil {
			return err
		}
		canvas = viz.NewCanvas(100, 40)
		wf.Render(canvas, viz.NewCamera())
	case "network":
		g, _, rt, err := reroute(args[0])
		if err != nil {
			return err
		}
		canvas, err = viz.NetworkCanvas(g, rt, 100, 40, minArea)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown view: %s (surface or network)", svgView)
	}

	ramp, err := viz.RampByName(rampName)
	if err != nil {
		return err
	}
	svg := store.CanvasToSVG(canvas, ramp, 4)
	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	return os.WriteFile(svgOut, []byte(svg), 0644)
}

func runBench(cmd *cobra.Command, args []string) error {
	terrain := "tutorial"
	if len(args) > 0 {
		terrain = args[0]
	}

	sizes := []int{40, 80, 160}
	metrics := []flow.Metric{flow.D8, flow.Quinn, flow.Dinf}

	fmt.Printf("benchmarking %s\n\n", terrain)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tMETRIC\tNODES\tTIME\tNODES/SEC")

	for _, size := range sizes {
		for _, m := range metrics {
			g, err := dem.Synthesize(terrain, size, size, 10.0, 42)
			if err != nil {
				return err
			}
			opts := router.DefaultOptions()
			opts.Metric = string(m)
			r, err := router.New(g, opts)
			if err != nil {
				return err
			}

			start := time.Now()
			if _, err := r.RunOneStep(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			n := g.NumNodes()
			fmt.Fprintf(w, "%dx%d\t%s\t%d\t%v\t%.0f\n",
				size, size, m, n, elapsed, float64(n)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

// reroute reloads a saved run and replays its routing so receiver topology
// (which is not persisted) is available again.
func reroute(runID string) (*dem.Grid, *store.RunMetadata, *flow.Routing, error) {
	st := store.New(dataDir)
	g, meta, err := st.LoadGrid(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	r, err := router.New(g, meta.Options)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := r.RunOneStep(context.Background()); err != nil {
		return nil, nil, nil, err
	}
	return g, meta, r.Routing(), nil
}
