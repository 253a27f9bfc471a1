package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPlotWidthFor(t *testing.T) {
	axis := runewidth.StringWidth(axisTop) + runewidth.StringWidth(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axis {
		t.Fatalf("expected width %d, got %d", 80-axis, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(axis + 3); got != minPlotWidth {
		t.Fatalf("expected narrow terminals to clamp to %d, got %d", minPlotWidth, got)
	}
}

func TestPlotSeriesFitsWidth(t *testing.T) {
	frames := make([]Frame, 300)
	for i := range frames {
		frames[i] = Frame{X: float64(i), Y: float64(300 - i), Speed: float64(i % 40)}
	}
	for _, total := range []int{20, 42, 120} {
		var buf bytes.Buffer
		if err := PlotSeries(&buf, "Trajectory", TrajectorySeries(frames), PlotWidthFor(total), 6); err != nil {
			t.Fatalf("plot: %v", err)
		}
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		// Title, three min/max lines, six rows, legend.
		if len(lines) != 1+3+6+1 {
			t.Fatalf("width %d: expected 11 lines, got %d:\n%s", total, len(lines), buf.String())
		}
		for _, row := range lines[4:10] {
			if w := runewidth.StringWidth(row); w != total {
				t.Fatalf("width %d: plot row is %d columns: %q", total, w, row)
			}
		}
	}
}

func TestPlotSeriesShortAndFlatInput(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "", []Series{
		{Name: "flat", Values: []float64{5}},
		{Name: "empty"},
		{Name: "ramp", Values: []float64{1, 2, 3}},
	}, 12, 4)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "flat: min=5.0 max=5.0") || !strings.Contains(out, "ramp: min=1.0 max=3.0") {
		t.Fatalf("missing bounds:\n%s", out)
	}
	if strings.Contains(out, "empty") {
		t.Fatalf("empty series should be skipped:\n%s", out)
	}
	if !strings.Contains(out, "max │ ") || !strings.Contains(out, "min │ ") {
		t.Fatalf("missing axis labels:\n%s", out)
	}

	buf.Reset()
	if err := PlotSeries(&buf, "none", nil, 20, 4); err != nil || buf.Len() != 0 {
		t.Fatalf("expected no output for no series, got %q (%v)", buf.String(), err)
	}
}
