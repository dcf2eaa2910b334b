package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// Constellation groups catalog stars by Hipparcos id.
type Constellation struct {
	ID     string `json:"constellation_id"`
	Name   string `json:"name"`
	HIPIDs []int  `json:"hip_ids"`
}

// LoadConstellationsCSV reads a CSV with columns constellation_id,
// constellation_name and hip_ids, where hip_ids is a JSON integer array.
func LoadConstellationsCSV(path string) ([]Constellation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("constellations: read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("constellations: %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{"constellation_id", "constellation_name", "hip_ids"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("constellations: %s missing %s column", path, required)
		}
	}

	out := make([]Constellation, 0, len(records)-1)
	for n, rec := range records[1:] {
		var ids []int
		if err := json.Unmarshal([]byte(rec[col["hip_ids"]]), &ids); err != nil {
			return nil, fmt.Errorf("constellations: %s row %d: bad hip_ids: %w", path, n+2, err)
		}
		out = append(out, Constellation{
			ID:     rec[col["constellation_id"]],
			Name:   rec[col["constellation_name"]],
			HIPIDs: ids,
		})
	}
	return out, nil
}

// Visible filters to constellations with at least one star in visibleHIPs.
func Visible(all []Constellation, visibleHIPs map[int]bool) []Constellation {
	out := make([]Constellation, 0, len(all))
	for _, c := range all {
		for _, hip := range c.HIPIDs {
			if visibleHIPs[hip] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
