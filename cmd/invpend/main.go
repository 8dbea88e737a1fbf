package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/invpend/internal/analysis"
	"github.com/san-kum/invpend/internal/automation"
	"github.com/san-kum/invpend/internal/config"
	"github.com/san-kum/invpend/internal/experiment"
	"github.com/san-kum/invpend/internal/export"
	"github.com/san-kum/invpend/internal/logging"
	"github.com/san-kum/invpend/internal/optim"
	"github.com/san-kum/invpend/internal/sim"
	"github.com/san-kum/invpend/internal/viz"
)

const plantName = "pendulum"

var (
	configFile string
	preset     string
	verbose    bool

	dt         float64
	duration   float64
	integrator string
	kp         float64
	ki         float64
	kd         float64
	setpoint   float64
	maxOutput  float64
	pidOn      bool
	validate   bool

	csvOut    bool
	jsonOut   bool
	withTrace bool
	graph     bool
	plotOut   string
	theta0    float64
	theme     string
	metric    string
	workers   int
	kpGrid    string
	kiGrid    string
	kdGrid    string

	logger = zap.NewNop()
)

// main registers the commands; with no subcommand it opens the live view.
func main() {
	rootCmd := &cobra.Command{
		Use:   "invpend",
		Short: "inverted pendulum PID lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(verbose)
			if err != nil {
				return err
			}
			logger = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE:         runLive,
		SilenceUsage: true,
	}

	addConfigFlags(rootCmd.PersistentFlags())

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive balancing view",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless run with summary and metrics",
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	runCmd.Flags().BoolVar(&csvOut, "csv", false, "write the trace as CSV to stdout")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write a JSON summary to stdout")
	runCmd.Flags().BoolVar(&withTrace, "trace", false, "include every sample in the JSON summary")
	runCmd.Flags().BoolVar(&graph, "graph", false, "plot the angle in the terminal")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "run and render angle and torque to PNG",
		RunE:  plotRun,
	}
	plotCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "invpend.png", "output file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "linearized stability of the current gains",
		RunE:  analyzeGains,
	}
	analyzeCmd.Flags().Float64Var(&theta0, "theta0", 0, "equilibrium to linearize around (default: setpoint)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search over gains",
		RunE:  tuneGains,
	}
	tuneCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration per candidate (s)")
	tuneCmd.Flags().StringVar(&kpGrid, "kp-grid", "20,40,60,80", "comma-separated kp values")
	tuneCmd.Flags().StringVar(&kiGrid, "ki-grid", "0", "comma-separated ki values")
	tuneCmd.Flags().StringVar(&kdGrid, "kd-grid", "10,20,40", "comma-separated kd values")
	tuneCmd.Flags().StringVar(&metric, "metric", "tracking_rms", "metric to minimize")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel candidates (default GOMAXPROCS)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "unforced plant under each integrator",
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the control loop",
		RunE:  benchLoop,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted session",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(liveCmd, runCmd, plotCmd, analyzeCmd, tuneCmd, compareCmd, benchCmd, scenarioCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal belongs to the UI, so the loop does not log here
	exp, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp).WithTheme(theme)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, exp, result, runErr := runConfigured(cmd)
	if result == nil {
		return runErr
	}

	switch {
	case csvOut:
		if err := export.WriteCSV(os.Stdout, result); err != nil {
			return err
		}
	case jsonOut:
		if err := export.WriteJSON(os.Stdout, export.NewSummary(cfg, result, withTrace)); err != nil {
			return err
		}
	default:
		printSummary(exp, result)
		if graph {
			printGraph(result)
		}
	}
	return runErr
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, _, result, runErr := runConfigured(cmd)
	if result == nil {
		return runErr
	}
	if err := export.SavePNG(plotOut, result); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d samples)\n", plotOut, len(result.Samples))
	return runErr
}

// runConfigured builds the experiment from flags and runs it until done or
// interrupted. A partial result is returned alongside a run error.
func runConfigured(cmd *cobra.Command) (*config.Config, *experiment.Experiment, *sim.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	exp, err := experiment.Build(cfg, sim.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("run",
		zap.Float64("dt", cfg.Dt),
		zap.Float64("duration", cfg.Duration),
		zap.Bool("pid", cfg.Controller.Enabled))

	result, err := exp.Run(ctx)
	return cfg, exp, result, err
}

func printSummary(exp *experiment.Experiment, result *sim.Result) {
	final := result.Final()
	cfg := exp.Config()
	fmt.Printf("%d steps, dt=%.4fs, pid=%v\n", result.StepsTaken, cfg.Dt, cfg.Controller.Enabled)
	fmt.Printf("gains kp=%.3f ki=%.3f kd=%.3f setpoint=%.3f max=%.1f\n\n",
		cfg.Controller.Kp, cfg.Controller.Ki, cfg.Controller.Kd, cfg.Controller.Setpoint, cfg.Controller.MaxOutput)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "final angle\t%.4f rad\t(%.2f°)\n", final.Theta, final.Theta*180/math.Pi)
	fmt.Fprintf(w, "final velocity\t%.4f rad/s\t\n", final.Omega)
	fmt.Fprintf(w, "final torque\t%.4f N·m\t\n", final.Tau)

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.4f\t\n", name, result.Metrics[name])
	}
	w.Flush()
}

func printGraph(result *sim.Result) {
	const width = 70
	step := len(result.Samples)/width + 1
	data := make([]float64, 0, width+1)
	for i := 0; i < len(result.Samples); i += step {
		data = append(data, result.Samples[i].Theta*180/math.Pi)
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(data, asciigraph.Height(12), asciigraph.Width(width), asciigraph.Caption("angle (deg)")))
}

func analyzeGains(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	at := cfg.Controller.Setpoint
	if cmd.Flags().Changed("theta0") {
		at = theta0
	}

	r, err := analysis.Analyze(
		analysis.PlantParams{Gravity: cfg.Plant.Gravity, Length: cfg.Plant.Length, Mass: cfg.Plant.Mass},
		analysis.Gains{Kp: cfg.Controller.Kp, Ki: cfg.Controller.Ki, Kd: cfg.Controller.Kd},
		at, cfg.Dt, cfg.Controller.MaxOutput,
	)
	if err != nil {
		return err
	}

	fmt.Printf("setpoint theta=%.4f rad (%.2f°)\n", r.Theta0, r.Theta0*180/math.Pi)
	if math.IsNaN(r.Equilibrium) {
		fmt.Println("no rest point found for these gains")
		return nil
	}
	fmt.Printf("equilibrium theta=%.4f rad (%.2f°)\n", r.Equilibrium, r.Equilibrium*180/math.Pi)
	fmt.Printf("holding torque %.3f N·m (reachable: %v)\n\n", r.HoldingTorque, r.Reachable)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSTABLE\tEIGENVALUES")
	fmt.Fprintf(w, "continuous\t%v\t%s\n", r.ContinuousStable, formatEig(r.Continuous))
	fmt.Fprintf(w, "discrete\t%v\t%s (radius %.4f)\n", r.DiscreteStable, formatEig(r.Discrete), r.SpectralRadius)
	return w.Flush()
}

func formatEig(vals []complex128) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.4f%+.4fi", real(v), imag(v))
	}
	return strings.Join(parts, ", ")
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Controller.Enabled = true

	names := []string{"kp", "ki", "kd"}
	ranges := make([][]float64, len(names))
	for i, grid := range []string{kpGrid, kiGrid, kdGrid} {
		if ranges[i], err = parseGrid(grid); err != nil {
			return fmt.Errorf("--%s-grid: %w", names[i], err)
		}
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		c.Controller.Kp = params["kp"]
		c.Controller.Ki = params["ki"]
		c.Controller.Kd = params["kd"]
		return experiment.Build(c)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	gs := optim.NewGridSearch(names, ranges).WithWorkers(workers).WithLogger(logger)
	out, err := gs.Search(ctx, build, metric)
	if err != nil {
		return err
	}

	sort.SliceStable(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].Score < out.Candidates[j].Score
	})

	fmt.Printf("%d candidates in %v, minimizing %s\n\n", len(out.Candidates), time.Since(start).Round(time.Millisecond), metric)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tKD\tSCORE")
	for _, c := range out.Candidates {
		score := fmt.Sprintf("%.5f", c.Score)
		if c.Err != "" {
			score = "error: " + c.Err
		} else if math.IsInf(c.Score, 1) {
			score = "-"
		}
		fmt.Fprintf(w, "%g\t%g\t%g\t%s\n", c.Params["kp"], c.Params["ki"], c.Params["kd"], score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: kp=%g ki=%g kd=%g (%s=%.5f)\n", out.Best["kp"], out.Best["ki"], out.Best["kd"], metric, out.Score)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := experiment.CompareIntegrators(context.Background(), cfg, args)
	if err != nil {
		return err
	}

	fmt.Printf("unforced plant (dt=%.4f, duration=%.1fs) in %v\n\n", cfg.Dt, cfg.Duration, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL THETA\tFINAL OMEGA\tENERGY DRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.2e\n", r.Integrator, r.FinalTheta, r.FinalOmega, r.EnergyDrift)
	}
	return w.Flush()
}

func benchLoop(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	durations := []float64{1.0, 10.0, 60.0}
	dts := []float64{0.001, 0.005, 0.02}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := base.Clone()
			cfg.Dt = step
			cfg.Duration = dur
			exp, err := experiment.Build(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Preset != "" && !cmd.Flags().Changed("preset") {
		preset = sc.Preset
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.Build(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Name != "" {
		fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	}
	results, runErr := automation.RunScenario(ctx, exp, sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTION\tTIME\tANGLE\tTORQUE\tRMS")
	for _, r := range results {
		rms := "-"
		if v, ok := r.Metrics["tracking_rms"]; ok {
			rms = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(w, "%d\t%s\t%.2fs\t%.2f°\t%.2f\t%s\n",
			r.Index, r.Action, r.Final.Time, r.Final.Theta*180/math.Pi, r.Final.Tau, rms)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDT\tTIME\tKP\tKI\tKD\tMAX\tGRAVITY\tPID")
	for _, name := range config.ListPresets(plantName) {
		c := config.GetPreset(plantName, name)
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%g\t%g\t%v\n",
			name, c.Dt, c.Duration, c.Controller.Kp, c.Controller.Ki, c.Controller.Kd,
			c.Controller.MaxOutput, c.Plant.Gravity, c.Controller.Enabled)
	}
	return w.Flush()
}
