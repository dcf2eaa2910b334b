package render

import (
	"math"

	"starfinder/internal/projection"
)

// chevronLen is the length in cells of each chevron stroke at the arrow tip.
const chevronLen = 3

// Grid is one rendered on/off frame, indexed Cells[row][col].
type Grid struct {
	Rows  int
	Cols  int
	Cells [][]bool
}

func NewGrid(cols, rows int) Grid {
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, cols)
	}
	return Grid{Rows: rows, Cols: cols, Cells: cells}
}

// Set lights a cell if it lies within bounds; out-of-bounds writes are
// silently ignored so rasterized strokes can run off the edge.
func (g Grid) Set(col, row int) {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return
	}
	g.Cells[row][col] = true
}

// On reports whether a cell is lit; out-of-bounds cells are off.
func (g Grid) On(col, row int) bool {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return false
	}
	return g.Cells[row][col]
}

// Count returns the number of lit cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g.Cells {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

// StarField lights one cell per visible in-bounds pixel. Multiple stars on
// the same cell still yield a single lit cell.
func StarField(pixels []projection.Pixel, cols, rows int) Grid {
	g := NewGrid(cols, rows)
	for _, p := range pixels {
		if p.Col < 0 || p.Row < 0 {
			continue
		}
		g.Set(p.Col, p.Row)
	}
	return g
}

// DirectionArrow draws an indicator from the grid center toward the edge
// along bearingDeg (math convention: 0 = right, 90 = up), with a two-stroke
// chevron at the tip angled 135 degrees back from the arrow direction.
func DirectionArrow(bearingDeg float64, cols, rows int) Grid {
	g := NewGrid(cols, rows)
	if cols <= 0 || rows <= 0 {
		return g
	}

	cx := cols / 2
	cy := rows / 2
	tipCol, tipRow := rayToEdge(cx, cy, bearingDeg, cols, rows)

	g.line(cx, cy, tipCol, tipRow)

	for _, back := range [2]float64{bearingDeg + 135, bearingDeg - 135} {
		rad := back * math.Pi / 180
		ex := tipCol + int(math.Round(float64(chevronLen)*math.Cos(rad)))
		ey := tipRow - int(math.Round(float64(chevronLen)*math.Sin(rad)))
		g.line(tipCol, tipRow, ex, ey)
	}
	return g
}

// rayToEdge casts a ray from (cx,cy) along bearingDeg and returns the cell
// where it first crosses a grid boundary. Screen rows grow downward, so the
// y direction component is negated.
func rayToEdge(cx, cy int, bearingDeg float64, cols, rows int) (int, int) {
	rad := bearingDeg * math.Pi / 180
	dx := math.Cos(rad)
	dy := -math.Sin(rad)

	// Distance to whichever of the four edges the ray hits first, checking
	// the positive and negative direction component per axis.
	t := math.Inf(1)
	if dx > 0 {
		t = math.Min(t, float64(cols-1-cx)/dx)
	} else if dx < 0 {
		t = math.Min(t, float64(-cx)/dx)
	}
	if dy > 0 {
		t = math.Min(t, float64(rows-1-cy)/dy)
	} else if dy < 0 {
		t = math.Min(t, float64(-cy)/dy)
	}
	if math.IsInf(t, 1) {
		// Degenerate direction; stay at center.
		return cx, cy
	}
	return cx + int(math.Round(t*dx)), cy + int(math.Round(t*dy))
}

// line rasterizes a segment with Bresenham's algorithm: exactly one cell per
// unit step, no gaps, endpoints included once.
func (g Grid) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		g.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
