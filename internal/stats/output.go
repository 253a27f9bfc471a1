package stats

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/accball/internal/model"
)

const (
	terminalWidthBackup = 80
	speedWindow         = 5
	sparkIndent         = "  "
	timeLayout          = "2006-01-02 15:04:05"
)

// TerminalWidth returns the width of w when it is a terminal, or a fallback.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderTraceList prints a table of stored traces.
func RenderTraceList(w io.Writer, traces []model.Trace) error {
	if len(traces) == 0 {
		_, err := fmt.Fprintln(w, "No traces found.")
		return err
	}
	headers := []string{"ID", "Started", "Source", "Samples", "Duration", "Viewport"}
	rows := make([][]string, 0, len(traces))
	for _, tr := range traces {
		rows = append(rows, []string{
			fmt.Sprintf("%d", tr.ID),
			tr.StartedAt.Local().Format(timeLayout),
			tr.Source,
			fmt.Sprintf("%d", tr.Samples),
			fmt.Sprintf("%.1fs", tr.Duration().Seconds()),
			fmt.Sprintf("%.0fx%.0f", tr.Width, tr.Height),
		})
	}
	rightAlign := map[int]bool{0: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderReport prints metrics and a speed sparkline for one trace. width is
// the total line width; values <= 0 use the terminal width of w.
func RenderReport(w io.Writer, report Report, width int) error {
	if width <= 0 {
		width = TerminalWidth(w)
	}
	tr := report.Trace
	m := report.Metrics
	lines := []string{
		fmt.Sprintf("Trace #%d (%s)", tr.ID, tr.Source),
		fmt.Sprintf("Recorded: %s", tr.StartedAt.Local().Format(timeLayout)),
		fmt.Sprintf("Viewport: %.0fx%.0f", report.Viewport.Width, report.Viewport.Height),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Samples", fmt.Sprintf("%d", m.Samples)},
		{"Frames", fmt.Sprintf("%d", m.Frames)},
		{"Duration", fmt.Sprintf("%.2fs", m.Duration.Seconds())},
		{"Rebounds", fmt.Sprintf("%d", m.Rebounds)},
		{"Peak speed", fmt.Sprintf("%.1f u/s", m.PeakSpeed)},
		{"Mean speed", fmt.Sprintf("%.1f u/s", m.MeanSpeed)},
		{"Distance", fmt.Sprintf("%.1f u", m.Distance)},
		{"Final position", fmt.Sprintf("%.1f, %.1f", m.Final.X, m.Final.Y)},
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	speeds := SpeedSeries(report.Frames)
	if len(speeds) == 0 {
		return nil
	}
	sparkWidth := width - len(sparkIndent)
	if sparkWidth < 1 {
		sparkWidth = 1
	}
	spark := Sparkline(Downsample(MovingAverage(speeds, speedWindow), sparkWidth))
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Speed"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, sparkIndent+spark); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return PlotSeries(w, "Trajectory", TrajectorySeries(report.Frames), PlotWidthFor(width), defaultPlotHeight)
}
