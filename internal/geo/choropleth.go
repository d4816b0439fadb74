package geo

import "sheetdash/internal/stats"

// Cell is one province value placed on the map.
type Cell struct {
	Province string  `json:"province"`
	Raw      string  `json:"raw"`
	Value    float64 `json:"value"`
	Matched  bool    `json:"matched"`
}

// Choropleth is the join of aggregated province values with boundary names.
type Choropleth struct {
	Cells     []Cell   `json:"cells"`
	Unmatched []string `json:"unmatched"`
}

// Join normalizes every aggregated key and matches it exactly against the
// feature names. Keys that normalize to the same province are merged.
func (n *Normalizer) Join(values []stats.CategoryValue, featureNames []string) Choropleth {
	known := make(map[string]bool, len(featureNames))
	for _, name := range featureNames {
		known[name] = true
	}

	pos := make(map[string]int)
	out := Choropleth{Cells: []Cell{}, Unmatched: []string{}}
	for _, v := range values {
		province := n.Normalize(v.Key)
		if i, ok := pos[province]; ok {
			out.Cells[i].Value += v.Value
			continue
		}
		pos[province] = len(out.Cells)
		matched := known[province]
		out.Cells = append(out.Cells, Cell{Province: province, Raw: v.Key, Value: v.Value, Matched: matched})
		if !matched {
			out.Unmatched = append(out.Unmatched, province)
		}
	}
	return out
}
