package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille grid that also accumulates a scalar per cell so the
// cell can be tinted by the mean of the values plotted into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	sum           [][]float64
	count         [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		sum:    make([][]float64, h),
		count:  make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.sum[i] = make([]float64, w)
		c.count[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight give the canvas size in sub-pixel coordinates.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set lights the sub-pixel (x, y) without attaching a value.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Plot lights the sub-pixel and folds v into the cell mean. NaN values
// light the dot but do not contribute to the mean.
func (c *Canvas) Plot(x, y int, v float64) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		c.sum[row][col] += v
		c.count[row][col]++
	}
}

// Value returns the mean value plotted into a cell.
func (c *Canvas) Value(row, col int) (float64, bool) {
	if c.count[row][col] == 0 {
		return 0, false
	}
	return c.sum[row][col] / float64(c.count[row][col]), true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.sum[i][j] = 0
			c.count[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Colorize renders the grid with each valued cell tinted through cm.
// Cells with dots but no value use the muted style.
func (c *Canvas) Colorize(cm Colormap, lo, hi float64) string {
	var b strings.Builder
	for r, row := range c.Grid {
		for col, ch := range row {
			if ch == blank {
				b.WriteRune(ch)
				continue
			}
			if v, ok := c.Value(r, col); ok {
				b.WriteString(lipgloss.NewStyle().Foreground(hexColor(cm.Map(v, lo, hi))).Render(string(ch)))
			} else {
				b.WriteString(Muted.Render(string(ch)))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
