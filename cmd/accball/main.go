// Package main provides the CLI entrypoint for accball.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/accball/internal/config"
	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/source"
	"github.com/verte-zerg/accball/internal/stats"
	"github.com/verte-zerg/accball/internal/store"
	"github.com/verte-zerg/accball/internal/tracefile"
	"github.com/verte-zerg/accball/internal/traceui"
	"github.com/verte-zerg/accball/internal/tui"
)

const (
	defaultSource = source.KindTilt
	defaultRate   = 60
	defaultNoise  = 0.05
	maxRate       = 1000
	maxNoise      = 5.0
)

var (
	runSource string
	runRate   int
	runNoise  float64
	runRecord bool

	replayRate int

	tracesSource string
	tracesSince  string
	tracesLast   int
	tracesBrowse bool

	statsWidth  float64
	statsHeight float64
	statsCols   int

	importSource string

	exportFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "accball",
		Short:         "Tilt-driven bouncing ball for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runBallCmd,
	}

	rootCmd.Flags().StringVar(&runSource, "source", defaultSource, "sample source ("+strings.Join(source.Kinds(), ", ")+")")
	rootCmd.Flags().IntVar(&runRate, "rate", defaultRate, "samples per second")
	rootCmd.Flags().Float64Var(&runNoise, "noise", defaultNoise, "sensor noise amplitude in m/s²")
	rootCmd.Flags().BoolVar(&runRecord, "record", false, "save the sample trace on quit")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newTracesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newDeleteCmd())

	return rootCmd
}

func runBallCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "source", &runSource, fileCfg.Run.Source)
	applyIntConfig(cmd, "rate", &runRate, fileCfg.Run.RateHz)
	applyFloatConfig(cmd, "noise", &runNoise, fileCfg.Run.Noise)
	applyBoolConfig(cmd, "record", &runRecord, fileCfg.Run.Record)

	cfg := model.Config{
		Source: runSource,
		RateHz: runRate,
		Noise:  runNoise,
		Record: runRecord,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	src, err := source.New(cfg.Source, source.NewNoise(cfg.Noise))
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.Record {
		st, err = openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)
	}

	m, err := runProgram(tui.NewModel(cfg, src, st))
	if err != nil {
		return err
	}
	if id := m.SavedTraceID(); id != 0 {
		logErrf("Saved trace #%d\n", id)
	}
	return nil
}

func runProgram(m *tui.Model) (*tui.Model, error) {
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}
	if fm, ok := final.(*tui.Model); ok {
		return fm, nil
	}
	return m, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <id>",
		Short: "Replay a stored trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplayCmd,
	}
	cmd.Flags().IntVar(&replayRate, "rate", defaultRate, "samples per second")
	return cmd
}

func runReplayCmd(_ *cobra.Command, args []string) error {
	id, err := parseTraceID(args[0])
	if err != nil {
		return err
	}
	cfg := model.Config{Source: source.KindReplay, RateHz: replayRate}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	trace, err := st.GetTrace(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}
	samples, err := st.LoadSamples(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("trace %d has no samples", id)
	}
	_, err = runProgram(tui.NewModel(cfg, source.NewReplay(samples, trace.Resets), nil))
	return err
}

func newTracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces",
		Short: "List stored traces",
		Args:  cobra.NoArgs,
		RunE:  runTracesCmd,
	}
	cmd.Flags().StringVar(&tracesSource, "source", "", "source filter")
	cmd.Flags().StringVar(&tracesSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&tracesLast, "last", 0, "limit to last N traces")
	cmd.Flags().BoolVar(&tracesBrowse, "browse", false, "open the interactive trace browser")
	cmd.Flags().Float64Var(&statsWidth, "width", 0, "viewport width in units for reports (default: recorded)")
	cmd.Flags().Float64Var(&statsHeight, "height", 0, "viewport height in units for reports (default: recorded)")
	return cmd
}

func runTracesCmd(cmd *cobra.Command, _ []string) error {
	filter := model.TraceFilter{
		Source: tracesSource,
		Last:   tracesLast,
	}
	if tracesSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", tracesSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	if filter.Last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if tracesBrowse {
		vp, err := statsViewport(cmd)
		if err != nil {
			return err
		}
		program := tea.NewProgram(traceui.NewModel(st, filter, vp), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run trace browser: %w", err)
		}
		return nil
	}

	traces, err := st.ListTraces(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list traces: %w", err)
	}
	return stats.RenderTraceList(cmd.OutOrStdout(), traces)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <id>",
		Short: "Analyze a stored trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatsCmd,
	}
	cmd.Flags().Float64Var(&statsWidth, "width", 0, "viewport width in units (default: recorded)")
	cmd.Flags().Float64Var(&statsHeight, "height", 0, "viewport height in units (default: recorded)")
	cmd.Flags().IntVar(&statsCols, "cols", 0, "report width in columns (default: terminal width)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, args []string) error {
	id, err := parseTraceID(args[0])
	if err != nil {
		return err
	}
	vp, err := statsViewport(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(context.Background(), st, id, vp)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return stats.RenderReport(cmd.OutOrStdout(), report, statsCols)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or YAML sample file as a trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importSource, "source", "import", "source label stored with the trace")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	samples, err := tracefile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	now := time.Now()
	first := samples[0].TimestampNanos
	last := samples[len(samples)-1].TimestampNanos
	span := time.Duration(0)
	if last > first {
		span = time.Duration(last - first)
	}
	trace := model.Trace{
		StartedAt: now.Add(-span),
		EndedAt:   now,
		Source:    importSource,
		Width:     stats.DefaultViewport.Width,
		Height:    stats.DefaultViewport.Height,
	}
	id, err := st.InsertTrace(context.Background(), trace, samples)
	if err != nil {
		return fmt.Errorf("failed to store trace: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d samples as trace #%d\n", len(samples), id)
	return err
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id> <file>",
		Short: "Export a stored trace as CSV or YAML",
		Args:  cobra.ExactArgs(2),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "", "output format: csv or yaml (default: from file extension)")
	return cmd
}

func runExportCmd(_ *cobra.Command, args []string) error {
	id, err := parseTraceID(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format == "" {
		format = tracefile.FormatForPath(path)
	}
	if format != tracefile.FormatCSV && format != tracefile.FormatYAML {
		return fmt.Errorf("--format must be %s or %s", tracefile.FormatCSV, tracefile.FormatYAML)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	samples, err := st.LoadSamples(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}
	if err := tracefile.Write(path, samples, format); err != nil {
		return err
	}
	logErrf("Wrote %s\n", path)
	return nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(_ *cobra.Command, args []string) error {
	id, err := parseTraceID(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteTrace(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete trace: %w", err)
	}
	logErrf("Deleted trace #%d\n", id)
	return nil
}

// statsViewport returns the analysis surface from --width/--height, or the
// zero Viewport when neither is set so each trace uses its recorded size.
func statsViewport(cmd *cobra.Command) (motion.Viewport, error) {
	if !cmd.Flags().Changed("width") && !cmd.Flags().Changed("height") {
		return motion.Viewport{}, nil
	}
	vp := stats.DefaultViewport
	if cmd.Flags().Changed("width") {
		vp.Width = statsWidth
	}
	if cmd.Flags().Changed("height") {
		vp.Height = statsHeight
	}
	if !stats.Usable(vp) {
		return motion.Viewport{}, fmt.Errorf("--width and --height must be greater than %.0f", 2*motion.Radius)
	}
	return vp, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func parseTraceID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trace id %q", arg)
	}
	return id, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# accball configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# source = %q          # Sample source (%s)
# rate = %d              # Samples per second (1-%d)
# noise = %.2f           # Sensor noise amplitude in m/s² (0-%.0f)
# record = false         # Save the sample trace on quit
`,
		defaultSource,
		strings.Join(source.Kinds(), ", "),
		defaultRate,
		maxRate,
		defaultNoise,
		maxNoise,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.RateHz < 1 || cfg.RateHz > maxRate {
		return fmt.Errorf("--rate must be between 1 and %d", maxRate)
	}
	if cfg.Noise < 0 || cfg.Noise > maxNoise {
		return fmt.Errorf("--noise must be between 0 and %.0f", maxNoise)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
