// Package render draws the ball onto a terminal cell grid.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/accball/internal/motion"
)

// Each terminal cell covers CellWidth x CellHeight viewport units. Cells are
// roughly twice as tall as they are wide.
const (
	CellWidth  = 40.0
	CellHeight = 80.0
)

// shade maps coverage quarters (0..4) to glyphs.
var shade = []rune{' ', '░', '▒', '▓', '█'}

var (
	ballStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	rimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C6A28"))
)

// subsample offsets inside a cell, as fractions of the cell size.
var subsample = [4][2]float64{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}}

type disc struct {
	x, y, r float64
}

// Canvas is a motion.RenderSink backed by a cols x rows cell grid. Every
// Draw clears the surface before placing the disc.
type Canvas struct {
	cols int
	rows int
	ball *disc
}

// NewCanvas returns an empty canvas.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears the surface.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols = cols
	c.rows = rows
	c.ball = nil
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// Viewport returns the canvas size in viewport units.
func (c *Canvas) Viewport() motion.Viewport {
	return ViewportFor(c.cols, c.rows)
}

// ViewportFor converts a cell grid size to viewport units.
func ViewportFor(cols, rows int) motion.Viewport {
	return motion.Viewport{
		Width:  float64(cols) * CellWidth,
		Height: float64(rows) * CellHeight,
	}
}

// Draw implements motion.RenderSink.
func (c *Canvas) Draw(x, y, radius float64) {
	c.ball = &disc{x: x, y: y, r: radius}
}

// Clear removes the ball from the surface.
func (c *Canvas) Clear() {
	c.ball = nil
}

// Coverage returns how many of the four subsamples of a cell fall inside the
// ball.
func (c *Canvas) Coverage(col, row int) int {
	if c.ball == nil {
		return 0
	}
	n := 0
	for _, off := range subsample {
		px := (float64(col) + off[0]) * CellWidth
		py := (float64(row) + off[1]) * CellHeight
		dx := px - c.ball.x
		dy := py - c.ball.y
		if dx*dx+dy*dy <= c.ball.r*c.ball.r {
			n++
		}
	}
	return n
}

// Render returns the grid as newline-separated rows.
func (c *Canvas) Render() string {
	if c.cols == 0 || c.rows == 0 {
		return ""
	}
	lines := make([]string, c.rows)
	blank := strings.Repeat(" ", c.cols)
	for row := 0; row < c.rows; row++ {
		if !c.rowTouched(row) {
			lines[row] = blank
			continue
		}
		lines[row] = c.renderRow(row)
	}
	return strings.Join(lines, "\n")
}

func (c *Canvas) rowTouched(row int) bool {
	if c.ball == nil {
		return false
	}
	top := float64(row) * CellHeight
	bottom := top + CellHeight
	return c.ball.y+c.ball.r >= top && c.ball.y-c.ball.r <= bottom
}

// renderRow groups consecutive cells with the same style so each run is
// styled once.
func (c *Canvas) renderRow(row int) string {
	var b strings.Builder
	var run []rune
	runStyle := -1
	flush := func() {
		if len(run) == 0 {
			return
		}
		switch runStyle {
		case 2:
			b.WriteString(ballStyle.Render(string(run)))
		case 1:
			b.WriteString(rimStyle.Render(string(run)))
		default:
			b.WriteString(string(run))
		}
		run = run[:0]
	}
	for col := 0; col < c.cols; col++ {
		cov := c.Coverage(col, row)
		style := 0
		switch {
		case cov == len(subsample):
			style = 2
		case cov > 0:
			style = 1
		}
		if style != runStyle {
			flush()
			runStyle = style
		}
		run = append(run, shade[cov])
	}
	flush()
	return b.String()
}
