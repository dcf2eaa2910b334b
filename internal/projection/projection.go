package projection

import "math"

// epsilonZ stands in for a camera-space depth of exactly zero so the
// perspective divide never faults. Such points are still not in front of the
// camera and end up excluded from view.
const epsilonZ = 1e-9

// Point is a perspective-projected star in normalized view coordinates.
// X and Y lie in [-1,1] only for visible points; non-visible points carry a
// defined but meaningless coordinate, so consumers must filter on Visible and
// never rely on coordinate range alone.
type Point struct {
	X       float64
	Y       float64
	Visible bool
}

// Pixel is a quantized grid position. (-1,-1) marks a star that is not
// visible on the grid.
type Pixel struct {
	Col int
	Row int
}

// Project perspective-projects camera-space unit vectors onto the normalized
// [-1,1]x[-1,1] view plane for the given full field of view in degrees.
//
// A star is visible iff it is strictly in front of the camera (z > 0) and
// both |x/z| and |y/z| are within tan(fov/2), boundary inclusive. All
// coordinates, visible or not, are normalized by tan(fov/2) so the FOV cone
// maps onto the unit square.
func Project(camera [][3]float64, fovDeg float64) []Point {
	halfFov := math.Tan(fovDeg / 2 * math.Pi / 180)
	out := make([]Point, len(camera))
	for i, c := range camera {
		z := c[2]
		inFront := z > 0
		if z == 0 {
			z = epsilonZ
		}
		x := c[0] / z
		y := c[1] / z
		out[i] = Point{
			X:       x / halfFov,
			Y:       y / halfFov,
			Visible: inFront && math.Abs(x) <= halfFov && math.Abs(y) <= halfFov,
		}
	}
	return out
}

// ToPixels quantizes normalized view coordinates onto a cols x rows grid.
// Only visible points are mapped; everything else gets the (-1,-1) sentinel.
// Normalized +Y is up while row 0 is the top of the grid, hence the Y flip.
func ToPixels(points []Point, cols, rows int) []Pixel {
	out := make([]Pixel, len(points))
	for i, p := range points {
		if !p.Visible {
			out[i] = Pixel{Col: -1, Row: -1}
			continue
		}
		col := clamp(int(math.Floor((p.X+1)/2*float64(cols))), 0, cols-1)
		row := clamp(int(math.Floor((1-(p.Y+1)/2)*float64(rows))), 0, rows-1)
		out[i] = Pixel{Col: col, Row: row}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
