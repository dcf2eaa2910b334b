package render

import (
	"testing"

	"starfinder/internal/projection"
)

func TestStarField_IdempotentOR(t *testing.T) {
	pixels := []projection.Pixel{
		{Col: 3, Row: 2},
		{Col: 3, Row: 2}, // duplicate lands on one cell
		{Col: 0, Row: 0},
		{Col: -1, Row: -1}, // sentinel skipped
	}
	g := StarField(pixels, 12, 8)
	if !g.On(3, 2) || !g.On(0, 0) {
		t.Fatalf("expected cells (3,2) and (0,0) lit")
	}
	if got := g.Count(); got != 2 {
		t.Fatalf("count=%d want 2", got)
	}
}

func TestStarField_OutOfBoundsNeverSet(t *testing.T) {
	pixels := []projection.Pixel{{Col: 12, Row: 8}, {Col: 100, Row: 3}}
	g := StarField(pixels, 12, 8)
	if got := g.Count(); got != 0 {
		t.Fatalf("count=%d want 0", got)
	}
}

func TestDirectionArrow_RightBearing(t *testing.T) {
	g := DirectionArrow(0, 13, 8)
	// Shaft runs from center (6,4) to the right edge along row 4.
	for col := 6; col <= 12; col++ {
		if !g.On(col, 4) {
			t.Fatalf("shaft cell (%d,4) not lit", col)
		}
	}
	if !g.On(12, 4) {
		t.Fatalf("rightmost shaft column must be lit")
	}
	// Chevron strokes fold back up-left and down-left from the tip.
	if !g.On(11, 3) || !g.On(11, 5) {
		t.Fatalf("chevron cells next to tip not lit")
	}
	// Nothing left of center on the shaft row.
	for col := 0; col < 6; col++ {
		if g.On(col, 4) {
			t.Fatalf("cell (%d,4) lit left of center", col)
		}
	}
}

func TestDirectionArrow_UpBearing(t *testing.T) {
	g := DirectionArrow(90, 13, 8)
	// Shaft runs from center (6,4) straight up to row 0.
	for row := 0; row <= 4; row++ {
		if !g.On(6, row) {
			t.Fatalf("shaft cell (6,%d) not lit", row)
		}
	}
}

func TestDirectionArrow_DiagonalStaysInBounds(t *testing.T) {
	for _, bearing := range []float64{17, 45, 133, 180, 225, 270, 301.5} {
		g := DirectionArrow(bearing, 13, 8)
		if g.Count() == 0 {
			t.Fatalf("bearing=%v: empty frame", bearing)
		}
		if !g.On(6, 4) {
			t.Fatalf("bearing=%v: center not lit", bearing)
		}
	}
}

func TestLine_ContinuousNoGaps(t *testing.T) {
	g := NewGrid(16, 16)
	g.line(1, 1, 13, 6)
	// A Bresenham line over dx=12 must light exactly dx+1 cells, one per
	// column step.
	if got := g.Count(); got != 13 {
		t.Fatalf("count=%d want 13", got)
	}
	for col := 1; col <= 13; col++ {
		found := false
		for row := 0; row < 16; row++ {
			if g.On(col, row) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("column %d has no lit cell (gap)", col)
		}
	}
}

func TestPack_MSBFirstRowGroups(t *testing.T) {
	g := NewGrid(12, 8)
	g.Set(0, 0)  // leftmost column, top row -> bit 11
	g.Set(11, 0) // rightmost column -> bit 0
	g.Set(5, 6)  // bottom half
	p := Pack(g)

	if len(p.Top) != 4 || len(p.Bottom) != 4 {
		t.Fatalf("groups=%d/%d want 4/4", len(p.Top), len(p.Bottom))
	}
	if p.Top[0] != 1<<11|1 {
		t.Fatalf("top[0]=%#x want %#x", p.Top[0], 1<<11|1)
	}
	if p.Bottom[2] != 1<<6 {
		t.Fatalf("bottom[2]=%#x want %#x", p.Bottom[2], 1<<6)
	}
	for _, v := range []uint16{p.Top[1], p.Top[2], p.Top[3], p.Bottom[0], p.Bottom[1], p.Bottom[3]} {
		if v != 0 {
			t.Fatalf("expected empty row, got %#x", v)
		}
	}
}
