package render

// Packet is a grid packed for the LED matrix transport: each row bit-packed
// MSB-first into one integer, rows split into a top and a bottom half so the
// hardware side can latch each group in a single write.
type Packet struct {
	Top    []uint16 `json:"top"`
	Bottom []uint16 `json:"bottom"`
}

// Pack bit-packs a grid into the two-row-group transport format. The leftmost
// column lands in the most significant used bit of each row word. Grids wider
// than 16 columns are truncated on the right.
func Pack(g Grid) Packet {
	rows := make([]uint16, g.Rows)
	for r := 0; r < g.Rows; r++ {
		var v uint16
		cols := g.Cols
		if cols > 16 {
			cols = 16
		}
		for c := 0; c < cols; c++ {
			v <<= 1
			if g.Cells[r][c] {
				v |= 1
			}
		}
		rows[r] = v
	}
	half := g.Rows / 2
	return Packet{Top: rows[:half], Bottom: rows[half:]}
}
