package render

import (
	"strings"
	"testing"

	"github.com/verte-zerg/accball/internal/motion"
)

func TestViewportForCells(t *testing.T) {
	vp := ViewportFor(80, 23)
	if vp.Width != 3200 || vp.Height != 1840 {
		t.Fatalf("unexpected viewport %+v", vp)
	}
	c := NewCanvas(-1, 5)
	if cols, rows := c.Size(); cols != 0 || rows != 5 {
		t.Fatalf("expected negative size to clamp, got %dx%d", cols, rows)
	}
}

func TestCoverage(t *testing.T) {
	c := NewCanvas(25, 25)
	c.Draw(500, 1000, motion.Radius)
	if got := c.Coverage(12, 12); got != 4 {
		t.Fatalf("expected full coverage at center, got %d", got)
	}
	if got := c.Coverage(0, 0); got != 0 {
		t.Fatalf("expected no coverage at corner, got %d", got)
	}
	// The ball spans 300 units: under 8 columns and 4 rows.
	full := 0
	for row := 0; row < 25; row++ {
		for col := 0; col < 25; col++ {
			if c.Coverage(col, row) > 0 {
				if col < 8 || col > 16 || row < 10 || row > 14 {
					t.Fatalf("unexpected coverage at %d,%d", col, row)
				}
				full++
			}
		}
	}
	if full == 0 {
		t.Fatalf("expected some covered cells")
	}
}

func TestRenderBlankAndDrawn(t *testing.T) {
	c := NewCanvas(10, 3)
	out := c.Render()
	if out != strings.Repeat(" ", 10)+"\n"+strings.Repeat(" ", 10)+"\n"+strings.Repeat(" ", 10) {
		t.Fatalf("unexpected blank render %q", out)
	}

	c.Draw(200, 120, motion.Radius)
	out = c.Render()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected 3 rows, got %q", out)
	}
	if !strings.Contains(out, "█") {
		t.Fatalf("expected a filled cell in %q", out)
	}

	c.Draw(10_000, 10_000, motion.Radius)
	if strings.ContainsAny(c.Render(), "░▒▓█") {
		t.Fatalf("each draw must clear the previous disc")
	}
}

func TestResizeClears(t *testing.T) {
	c := NewCanvas(10, 3)
	c.Draw(200, 120, motion.Radius)
	c.Resize(12, 4)
	if strings.ContainsAny(c.Render(), "░▒▓█") {
		t.Fatalf("resize should clear the surface")
	}
	if c.Render() == "" {
		t.Fatalf("expected blank rows after resize")
	}
	c.Resize(0, 0)
	if c.Render() != "" {
		t.Fatalf("expected empty render for empty canvas")
	}
}
