package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/san-kum/pinnviz/internal/automation"
	"github.com/san-kum/pinnviz/internal/colormap"
	"github.com/san-kum/pinnviz/internal/config"
	"github.com/san-kum/pinnviz/internal/dataset"
	"github.com/san-kum/pinnviz/internal/render"
	"github.com/san-kum/pinnviz/internal/storage"
	"github.com/san-kum/pinnviz/internal/tui"
	"github.com/san-kum/pinnviz/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	dataDir    string
	quiet      bool
	configFile string
	preset     string
	prefix     string
	format     string
	dpi        int
	html       bool
	animation  bool
	fps        int
	seconds    float64
	video      string
	workers    int
	clamp      bool
	saveConfig string
	// Trace size for inspect
	traceWidth  int
	traceHeight int
)

// main registers the pinnviz commands and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "pinnviz",
		Short:        "plot PINN cardiac voltage reconstructions",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				render.SetLogger(nil)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pinnviz", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress logging")

	renderCmd := &cobra.Command{
		Use:   "render [input]",
		Short: "write action potential, snapshot and animation figures",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	addConfigFlags(renderCmd)
	renderCmd.Flags().StringVar(&prefix, "prefix", "pinn", "output path prefix")
	renderCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this yaml file")
	addRenderFlags(renderCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "print a reconstruction summary, trace and snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRun,
	}
	addConfigFlags(inspectCmd)
	inspectCmd.Flags().IntVar(&traceWidth, "width", 80, "trace width")
	inspectCmd.Flags().IntVar(&traceHeight, "height", 12, "trace height")

	browseCmd := &cobra.Command{
		Use:   "browse [input]",
		Short: "step through time frames in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  browseRun,
	}
	addConfigFlags(browseCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list render runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [input] [output]",
		Short: "convert a dataset between a json bundle and a csv directory",
		Args:  cobra.ExactArgs(2),
		RunE:  exportDataset,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario]",
		Short: "render every dataset listed in a yaml scenario",
		Long:  "render every dataset listed in a yaml scenario. Each step layers its own preset and fields over --preset and --config; flags set explicitly on the command line win over both.",
		Args:  cobra.ExactArgs(1),
		RunE:  batchRun,
	}
	addConfigFlags(batchCmd)
	addRenderFlags(batchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list render presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				anim := "off"
				if cfg.Animation.Enabled {
					anim = cfg.Animation.Video
				}
				fmt.Printf("  %-12s %s @ %d dpi, animation %s\n", p, cfg.Format, cfg.DPI, anim)
			}
			return nil
		},
	}

	rootCmd.AddCommand(renderCmd, inspectCmd, browseCmd, listCmd, showCmd, exportCmd, batchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// addRenderFlags registers the figure and animation overrides shared by
// render and batch.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&format, "format", config.DefaultFormat, "figure format (tiff, png, jpg, svg, pdf)")
	cmd.Flags().IntVar(&dpi, "dpi", config.DefaultDPI, "raster resolution")
	cmd.Flags().BoolVar(&html, "html", false, "also write interactive html charts")
	cmd.Flags().BoolVar(&animation, "animation", false, "write the ground truth vs prediction animation")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "animation frame rate")
	cmd.Flags().Float64Var(&seconds, "duration", config.DefaultSeconds, "animation length in seconds")
	cmd.Flags().StringVar(&video, "video", config.DefaultVideo, "animation container (mp4, avi, gif)")
	cmd.Flags().IntVar(&workers, "workers", 1, "frames rasterized in parallel")
	cmd.Flags().BoolVar(&clamp, "clamp", false, "trim the animation to the available time steps")
}

// loadConfig layers defaults, the preset, the config file and finally any
// flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if !config.Apply(cfg, preset) {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	applyFlags(cmd.Flags(), cfg)
	return cfg, nil
}

// applyFlags copies the flags the user set explicitly into cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("prefix") {
		cfg.Prefix = prefix
	}
	if flags.Changed("format") {
		cfg.Format = strings.ToLower(format)
	}
	if flags.Changed("dpi") {
		cfg.DPI = dpi
	}
	if flags.Changed("html") {
		cfg.HTML = html
	}
	if flags.Changed("animation") {
		cfg.Animation.Enabled = animation
	}
	if flags.Changed("fps") {
		cfg.Animation.FPS = fps
	}
	if flags.Changed("duration") {
		cfg.Animation.Seconds = seconds
	}
	if flags.Changed("video") {
		cfg.Animation.Video = strings.ToLower(video)
	}
	if flags.Changed("workers") {
		cfg.Animation.Workers = workers
	}
	if flags.Changed("clamp") {
		cfg.Animation.Clamp = clamp
	}
}

func load(cmd *cobra.Command, input string) (*render.Renderer, *dataset.Dataset, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	r, err := render.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	d, err := dataset.Load(input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return r, d, nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	input := args[0]
	r, d, err := load(cmd, input)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, r.Config()); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("config saved to %s\n", saveConfig)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("rendering %s %s...\n", input, d.Vsav.Shape())
	start := time.Now()
	rep, err := r.PlotResults(ctx, d.Input())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.NewRunMetadata(input, r.Config(), rep))
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("cell: (%d, %d)  snapshot: t=%d  bounds: [%g, %g]\n", rep.CellX, rep.CellY, rep.SnapshotFrame, rep.PredMin, rep.PredMax)

	fmt.Println("\nartifacts:")
	for _, path := range rep.Artifacts {
		fmt.Printf("  %s\n", path)
	}
	fmt.Println("\nmetrics:")
	printMetrics(rep.Metrics)
	return nil
}

func batchRun(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running scenario %s (%d steps)...\n", scenario.Name, len(scenario.Steps))
	start := time.Now()
	explicit := func(cfg *config.Config) { applyFlags(cmd.Flags(), cfg) }
	_, err = automation.RunScenario(ctx, scenario, base, explicit, func(res automation.StepResult) error {
		runID, err := st.Save(storage.NewRunMetadata(res.Input, res.Config, res.Report))
		if err != nil {
			return err
		}
		fmt.Printf("  %s -> %s (%d artifacts)\n", res.Input, runID, len(res.Report.Artifacts))
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func inspectRun(cmd *cobra.Command, args []string) error {
	r, d, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	insp, err := r.Inspect(d.Input())
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(insp.Report))
	fmt.Println()
	fmt.Println(viz.Trace(insp.Series, traceWidth, traceHeight))
	fmt.Println()

	frame, err := insp.Rec.Pred.Frame(insp.Report.SnapshotFrame)
	if err != nil {
		return err
	}
	cm := colormap.NewJet(insp.Rec.PredMin, insp.Rec.PredMax)
	fmt.Println(viz.Title.Render(render.SnapshotTitle(insp.Report.SnapshotFrame)))
	fmt.Println(viz.Heat(frame, cm, 24, traceWidth/2))
	fmt.Println(viz.ColorBar(cm, 32))
	return nil
}

func browseRun(cmd *cobra.Command, args []string) error {
	r, d, err := load(cmd, args[0])
	if err != nil {
		return err
	}
	rec, err := r.Reconstruct(d.Input())
	if err != nil {
		return err
	}
	return tui.Browse(d.Vsav, rec)
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
	fmt.Fprintln(w, "ID\tINPUT\tTIME\tSHAPE\tFORMAT\tFRAMES\tRMSE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%d\t%.4g\n",
			run.ID,
			run.Input,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Shape,
			run.Format,
			run.Frames,
			run.Metrics["rmse"],
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportDataset(cmd *cobra.Command, args []string) error {
	d, err := dataset.Load(args[0])
	if err != nil {
		return err
	}
	out := args[1]
	if strings.EqualFold(filepath.Ext(out), ".json") {
		err = dataset.WriteJSON(out, d)
	} else {
		err = dataset.WriteCSVDir(out, d)
	}
	if err != nil {
		return err
	}
	fmt.Printf("exported %s %s to %s\n", args[0], d.Vsav.Shape(), out)
	return nil
}
