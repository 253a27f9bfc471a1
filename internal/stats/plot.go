package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named value sequence drawn by PlotSeries.
type Series struct {
	Name   string
	Values []float64
}

// dash controls which braille columns a series lights so overlapping
// series stay distinguishable without color.
type dash struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisTop           = "max"
	axisMid           = "mid"
	axisBottom        = "min"
	axisSeparator     = " │ "
	colorReset        = "\x1b[0m"
)

var dashes = []dash{
	{name: "solid", period: 1, on: 1},
	{name: "dash", period: 6, on: 3},
	{name: "dot", period: 4, on: 1},
}

var palette = []string{"\x1b[33m", "\x1b[36m", "\x1b[35m"}

// TrajectorySeries returns speed, x and y per redraw frame.
func TrajectorySeries(frames []Frame) []Series {
	if len(frames) == 0 {
		return nil
	}
	speed := make([]float64, len(frames))
	xs := make([]float64, len(frames))
	ys := make([]float64, len(frames))
	for i, f := range frames {
		speed[i] = f.Speed
		xs[i] = f.X
		ys[i] = f.Y
	}
	return []Series{
		{Name: "speed", Values: speed},
		{Name: "x", Values: xs},
		{Name: "y", Values: ys},
	}
}

// PlotWidthFor returns the plot area width that fits totalWidth columns
// once the axis is drawn.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	width := totalWidth - axisWidth()
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width
}

func axisWidth() int {
	return runewidth.StringWidth(axisTop) + runewidth.StringWidth(axisSeparator)
}

// PlotSeries draws every series as a braille line chart, each scaled to its
// own min/max. width is the plot area in cells; height is in rows.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	grids := make([][][]uint8, len(kept))
	bounds := make([][2]float64, len(kept))
	for i, s := range kept {
		values := resample(s.Values, width)
		lo, hi := minMax(values)
		bounds[i] = [2]float64{lo, hi}
		if hi-lo < 1e-9 {
			lo--
			hi++
		}
		grids[i] = newGrid(width, height)
		style := dashes[i%len(dashes)]
		dots := height * 4
		px, py := -1, -1
		for x, v := range values {
			y := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(dots-1)))
			y = clampInt(y, 0, dots-1)
			cx := x * 2
			if px < 0 {
				px, py = cx, y
			}
			line(px, py, cx, y, func(dx, dy int) {
				if style.lit(dx) {
					setDot(grids[i], dx, dy)
				}
			})
			px, py = cx, y
		}
	}

	color := useColor(w)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for i, s := range kept {
		if _, err := fmt.Fprintf(w, "%s: min=%.1f max=%.1f\n", s.Name, bounds[i][0], bounds[i][1]); err != nil {
			return err
		}
	}
	labels := make([]string, height)
	labels[0] = axisTop
	if height > 2 {
		labels[height/2] = axisMid
	}
	if height > 1 {
		labels[height-1] = axisBottom
	}
	labelWidth := runewidth.StringWidth(axisTop)
	for row := 0; row < height; row++ {
		var b strings.Builder
		b.WriteString(runewidth.FillLeft(labels[row], labelWidth))
		b.WriteString(axisSeparator)
		for col := 0; col < width; col++ {
			var mask uint8
			owner := -1
			for i, g := range grids {
				if g[row][col] != 0 && owner < 0 {
					owner = i
				}
				mask |= g[row][col]
			}
			ch := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				b.WriteString(palette[owner%len(palette)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	legend := make([]string, 0, len(kept))
	for i, s := range kept {
		label := fmt.Sprintf("%s (%s)", s.Name, dashes[i%len(dashes)].name)
		if color {
			label = palette[i%len(palette)] + label + colorReset
		}
		legend = append(legend, label)
	}
	_, err := fmt.Fprintln(w, "Legend: "+strings.Join(legend, "  "))
	return err
}

func (d dash) lit(x int) bool {
	if d.period <= 1 {
		return true
	}
	return x%d.period < d.on
}

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// resample fits values to width points: bucket means when shrinking,
// linear interpolation when stretching.
func resample(values []float64, width int) []float64 {
	if len(values) >= width {
		return Downsample(values, width)
	}
	out := make([]float64, width)
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(pos)
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func newGrid(width, height int) [][]uint8 {
	g := make([][]uint8, height)
	for i := range g {
		g[i] = make([]uint8, width)
	}
	return g
}

// line walks a Bresenham segment in braille dot coordinates.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// braille dot bits indexed by [row][column] inside a 2x4 cell.
var dotBits = [4][2]uint8{{0x01, 0x08}, {0x02, 0x10}, {0x04, 0x20}, {0x40, 0x80}}

func setDot(grid [][]uint8, x, y int) {
	row, col := y/4, x/2
	if y < 0 || x < 0 || row >= len(grid) || col >= len(grid[row]) {
		return
	}
	grid[row][col] |= dotBits[y%4][x%2]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
