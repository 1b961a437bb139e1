package cli

import (
	"math"
	"strings"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewport"
)

// Terminal cells are mapped to screen units so the viewport keeps the same
// arithmetic as the SVG renderer.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

// canvas is a character grid in screen space.
type canvas struct {
	cols, rows int
	cells      [][]rune
}

func newCanvas(cols, rows int) *canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return &canvas{cols: cols, rows: rows, cells: cells}
}

// cell converts a screen point to a grid cell.
func cell(p layout.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

func (c *canvas) set(col, row int, r rune) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row][col] = r
}

// text writes s starting at col, clipped to the grid.
func (c *canvas) text(col, row int, s string) {
	for i, r := range []rune(s) {
		c.set(col+i, row, r)
	}
}

// line draws an axis-aligned or diagonal segment between screen points.
func (c *canvas) line(a, b layout.Point, r rune) {
	c0, r0 := cell(a)
	c1, r1 := cell(b)
	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		c.set(c0, r0, r)
		return
	}
	lo, hi := clipSteps(c0, c1, c.cols, steps, 0, steps)
	lo, hi = clipSteps(r0, r1, c.rows, steps, lo, hi)
	for i := lo; i <= hi; i++ {
		t := float64(i) / float64(steps)
		c.set(c0+int(math.Round(t*float64(c1-c0))), r0+int(math.Round(t*float64(r1-r0))), r)
	}
}

// box draws a framed rectangle with up to two centred label lines.
func (c *canvas) box(tl, br layout.Point, lines ...string) {
	c0, r0 := cell(tl)
	c1, r1 := cell(br)
	if c1-c0 < 2 || r1-r0 < 1 {
		c.set(c0, r0, '■')
		return
	}
	for col := c0 + 1; col < c1; col++ {
		c.set(col, r0, '─')
		c.set(col, r1, '─')
	}
	for row := r0 + 1; row < r1; row++ {
		c.set(c0, row, '│')
		c.set(c1, row, '│')
		for col := c0 + 1; col < c1; col++ {
			c.set(col, row, ' ')
		}
	}
	c.set(c0, r0, '╭')
	c.set(c1, r0, '╮')
	c.set(c0, r1, '╰')
	c.set(c1, r1, '╯')

	inner := c1 - c0 - 1
	for i, l := range lines {
		row := r0 + 1 + i
		if row >= r1 {
			break
		}
		rs := []rune(l)
		if len(rs) > inner {
			rs = append(rs[:max(inner-1, 0)], '…')
		}
		c.text(c0+1+(inner-len(rs))/2, row, string(rs))
	}
}

// clipSteps narrows [lo, hi] to the steps of a walk from..to whose
// coordinate can fall inside [0, n).
func clipSteps(from, to, n, steps, lo, hi int) (int, int) {
	d := to - from
	if d == 0 {
		if from < 0 || from >= n {
			return 1, 0
		}
		return lo, hi
	}
	t0 := float64(-from) * float64(steps) / float64(d)
	t1 := float64(n-1-from) * float64(steps) / float64(d)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return max(lo, int(math.Floor(t0))-1), min(hi, int(math.Ceil(t1))+1)
}

func (c *canvas) String() string {
	lines := make([]string, c.rows)
	for i, row := range c.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawTree rasterises connectors, member boxes and the title block.
func drawTree(c *canvas, vp viewport.Viewport, boxes []layout.Box, conns []layout.Connector, label func(layout.Box) []string, title []string) {
	for _, conn := range conns {
		r := '·'
		if conn.Kind == layout.KindSpousal {
			r = '┄'
		}
		for i := 1; i < len(conn.Points); i++ {
			c.line(vp.TreeToScreen(conn.Points[i-1]), vp.TreeToScreen(conn.Points[i]), r)
		}
	}
	for _, b := range boxes {
		tl := vp.TreeToScreen(layout.Point{X: b.Left, Y: b.Top})
		br := vp.TreeToScreen(layout.Point{X: b.Right, Y: b.Bottom})
		c.box(tl, br, label(b)...)
	}
	col, row := cell(vp.Title.Apply(layout.Point{X: cellWidth * 2, Y: cellHeight}))
	for i, l := range title {
		c.text(col, row+i, l)
	}
}
