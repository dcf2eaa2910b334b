package pipeline

import (
	"fmt"
	"math"

	"starfinder/internal/catalog"
	"starfinder/internal/projection"
)

// StarPoint is a frontend-ready visible star: normalized position plus
// display attributes derived from the catalog metadata.
type StarPoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Name   *string `json:"name"`
	HIP    int     `json:"hip"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// frontendStars filters projected points down to the visible set and joins
// them with row-aligned catalog metadata.
func frontendStars(points []projection.Point, cat *catalog.Catalog) []StarPoint {
	out := make([]StarPoint, 0, 32)
	for i, p := range points {
		if !p.Visible {
			continue
		}
		s := cat.Star(i)
		var name *string
		if s.Name != "" {
			n := s.Name
			name = &n
		}
		out = append(out, StarPoint{
			X:      p.X,
			Y:      p.Y,
			Name:   name,
			HIP:    s.HIP,
			Radius: magnitudeToRadius(s.Mag),
			Color:  colorIndexToHex(s.CI),
		})
	}
	return out
}

// magnitudeToRadius maps apparent magnitude onto a display radius of 1..6:
// brighter stars (lower magnitude) draw larger.
func magnitudeToRadius(mag float64) float64 {
	const brightest, faintest = -1.5, 6.5
	m := math.Max(brightest, math.Min(faintest, mag))
	return 1 + (faintest-m)/(faintest-brightest)*5
}

// colorIndexToHex maps a B-V color index onto a hex color via a small
// blackbody-ish gradient: blue-white through white to orange. Missing color
// indexes render white.
func colorIndexToHex(ci float64) string {
	if math.IsNaN(ci) {
		return "#ffffff"
	}
	const ciMin, ciMax = -0.4, 2.0
	c := math.Max(ciMin, math.Min(ciMax, ci))
	t := (c - ciMin) / (ciMax - ciMin)

	stops := []struct {
		t       float64
		r, g, b int
	}{
		{0.00, 155, 176, 255},
		{0.17, 255, 255, 255},
		{0.44, 255, 244, 232},
		{0.79, 255, 210, 161},
		{1.00, 255, 112, 16},
	}
	for i := 0; i < len(stops)-1; i++ {
		s0, s1 := stops[i], stops[i+1]
		if t > s1.t {
			continue
		}
		f := (t - s0.t) / (s1.t - s0.t)
		r := s0.r + int(f*float64(s1.r-s0.r))
		g := s0.g + int(f*float64(s1.g-s0.g))
		b := s0.b + int(f*float64(s1.b-s0.b))
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return "#ffffff"
}
