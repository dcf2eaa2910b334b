package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
)

// ErrNotFound is returned by lookups for ids the catalog does not carry.
var ErrNotFound = errors.New("catalog: star not found")

// Star is one catalog entry: a world-space direction plus display metadata.
// Directions follow the HYG frame: +X toward the vernal equinox, +Y toward
// RA 6h on the equator, +Z toward the north celestial pole.
type Star struct {
	HIP  int
	Name string
	Mag  float64
	// CI is the B-V color index; NaN when the source has none.
	CI  float64
	Dir [3]float64
}

// Catalog is an ordered, fixed-length star list loaded once at startup and
// immutable for the process lifetime.
type Catalog struct {
	stars []Star
	dirs  [][3]float64
	byHIP map[int]int
}

// New builds a catalog from a star list. The per-star directions are kept in
// a parallel slice so the per-sample rotation can run over a contiguous
// block without touching metadata.
func New(stars []Star) *Catalog {
	c := &Catalog{
		stars: stars,
		dirs:  make([][3]float64, len(stars)),
		byHIP: make(map[int]int, len(stars)),
	}
	for i, s := range stars {
		c.dirs[i] = s.Dir
		c.byHIP[s.HIP] = i
	}
	return c
}

func (c *Catalog) Len() int { return len(c.stars) }

// Star returns the i-th entry.
func (c *Catalog) Star(i int) Star { return c.stars[i] }

// Directions returns the row-aligned world-space direction block. Callers
// must treat it as read-only.
func (c *Catalog) Directions() [][3]float64 { return c.dirs }

// ByHIP resolves a Hipparcos id to its catalog entry.
func (c *Catalog) ByHIP(hip int) (Star, error) {
	i, ok := c.byHIP[hip]
	if !ok {
		return Star{}, fmt.Errorf("%w: hip %d", ErrNotFound, hip)
	}
	return c.stars[i], nil
}

// NamedStar is a catalog picker entry.
type NamedStar struct {
	Name string `json:"name"`
	HIP  int    `json:"hip"`
}

// Names returns every star with a proper name, in catalog order.
func (c *Catalog) Names() []NamedStar {
	out := make([]NamedStar, 0, len(c.stars))
	for _, s := range c.stars {
		if s.Name == "" {
			continue
		}
		out = append(out, NamedStar{Name: s.Name, HIP: s.HIP})
	}
	return out
}

// LoadCSV reads a HYG-style extract with a header row. Required columns:
// hip (or id), proper, mag, x, y, z; ci is optional. Rows with malformed
// numbers are rejected rather than skipped: the catalog is a startup input
// and a broken file should be fixed, not half-loaded.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("catalog: %s has no data rows", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	hipCol, ok := col["hip"]
	if !ok {
		hipCol, ok = col["id"]
	}
	if !ok {
		return nil, fmt.Errorf("catalog: %s missing hip/id column", path)
	}
	for _, required := range []string{"proper", "mag", "x", "y", "z"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog: %s missing %s column", path, required)
		}
	}
	ciCol, hasCI := col["ci"]

	stars := make([]Star, 0, len(records)-1)
	for n, rec := range records[1:] {
		num := func(i int) (float64, error) {
			if rec[i] == "" {
				return math.NaN(), nil
			}
			return strconv.ParseFloat(rec[i], 64)
		}
		hip, err := strconv.Atoi(rec[hipCol])
		if err != nil {
			return nil, fmt.Errorf("catalog: %s row %d: bad hip %q", path, n+2, rec[hipCol])
		}
		mag, err := num(col["mag"])
		if err != nil {
			return nil, fmt.Errorf("catalog: %s row %d: bad mag: %w", path, n+2, err)
		}
		var dir [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			v, err := num(col[axis])
			if err != nil || math.IsNaN(v) {
				return nil, fmt.Errorf("catalog: %s row %d: bad %s", path, n+2, axis)
			}
			dir[i] = v
		}
		ci := math.NaN()
		if hasCI {
			if ci, err = num(ciCol); err != nil {
				return nil, fmt.Errorf("catalog: %s row %d: bad ci: %w", path, n+2, err)
			}
		}
		stars = append(stars, Star{
			HIP:  hip,
			Name: rec[col["proper"]],
			Mag:  mag,
			CI:   ci,
			Dir:  dir,
		})
	}
	return New(stars), nil
}

// dirFromRADec converts J2000 RA/Dec in degrees to a unit HYG direction.
func dirFromRADec(raDeg, decDeg float64) [3]float64 {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	return [3]float64{
		math.Cos(dec) * math.Cos(ra),
		math.Cos(dec) * math.Sin(ra),
		math.Sin(dec),
	}
}
