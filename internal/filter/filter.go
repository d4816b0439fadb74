package filter

import (
	"sheetdash/internal/classify"
	"sheetdash/internal/dataset"
)

// Selection maps a column name to its permitted values. A column present in
// the map is actively filtered; an empty set admits nothing.
type Selection map[string]map[string]bool

// Set adds an inclusion set for column, replacing any previous one.
func (s Selection) Set(column string, values ...string) {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	s[column] = set
}

// Range is an inclusive numeric bound on a column. Nil ends are open.
type Range struct {
	Column string
	Min    *float64
	Max    *float64
}

func (r Range) active() bool {
	return r.Column != "" && (r.Min != nil || r.Max != nil)
}

func (r Range) admits(v dataset.Value) bool {
	f, ok := v.AsFloat()
	if !ok {
		return false
	}
	if r.Min != nil && f < *r.Min {
		return false
	}
	if r.Max != nil && f > *r.Max {
		return false
	}
	return true
}

// Criteria combines inclusion sets with numeric ranges.
type Criteria struct {
	Selection Selection
	Ranges    []Range
}

// Apply keeps the rows that satisfy every active filter in sel. Row order is
// preserved. Filters on columns the dataset does not have are ignored.
func Apply(ds dataset.Dataset, sel Selection) dataset.Dataset {
	return ApplyCriteria(ds, Criteria{Selection: sel})
}

// ApplyCriteria is Apply with numeric ranges.
func ApplyCriteria(ds dataset.Dataset, c Criteria) dataset.Dataset {
	type setFilter struct {
		idx     int
		allowed map[string]bool
	}
	type rangeFilter struct {
		idx int
		r   Range
	}

	var sets []setFilter
	for column, allowed := range c.Selection {
		if idx := ds.Index(column); idx >= 0 {
			sets = append(sets, setFilter{idx: idx, allowed: allowed})
		}
	}
	var ranges []rangeFilter
	for _, r := range c.Ranges {
		if !r.active() {
			continue
		}
		if idx := ds.Index(r.Column); idx >= 0 {
			ranges = append(ranges, rangeFilter{idx: idx, r: r})
		}
	}

	if len(sets) == 0 && len(ranges) == 0 {
		return ds
	}

	rows := make([]dataset.Row, 0, len(ds.Rows))
rowLoop:
	for _, row := range ds.Rows {
		for _, f := range sets {
			v := row.Get(f.idx)
			if v.IsMissing() || !f.allowed[v.String()] {
				continue rowLoop
			}
		}
		for _, f := range ranges {
			if !f.r.admits(row.Get(f.idx)) {
				continue rowLoop
			}
		}
		rows = append(rows, row)
	}
	return ds.WithRows(rows)
}

// ForRoles binds role selections to the columns assigned by roles. Roles
// without a column are dropped.
func ForRoles(roles classify.Roles, values map[classify.Role][]string) Selection {
	sel := make(Selection)
	for role, vs := range values {
		col, ok := roles.Column(role)
		if !ok {
			continue
		}
		sel.Set(col, vs...)
	}
	return sel
}

// Defaults returns the wide-open selection: every distinct value of the
// zone, province and category columns. Applying it only drops rows whose
// value in one of those columns is missing.
func Defaults(ds dataset.Dataset, roles classify.Roles) Selection {
	sel := make(Selection)
	for _, role := range []classify.Role{classify.RoleZone, classify.RoleProvince, classify.RoleCategory} {
		col, ok := roles.Column(role)
		if !ok {
			continue
		}
		sel.Set(col, Distinct(ds, col)...)
	}
	return sel
}

// Distinct lists the non-missing values of column in first-seen order.
func Distinct(ds dataset.Dataset, column string) []string {
	idx := ds.Index(column)
	if idx < 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range ds.Rows {
		v := row.Get(idx)
		if v.IsMissing() || seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		out = append(out, v.String())
	}
	return out
}
