package dataset

import "strings"

// Column describes one header of a dataset and the kind inferred from its cells.
type Column struct {
	Name string `json:"name"`
	Type Kind   `json:"-"`
}

// Row is one record. Values are aligned with the dataset's Columns.
type Row struct {
	// Source is the provenance tag: the sheet the row came from when the
	// dataset was built by concatenating several sheets.
	Source string
	Values []Value
}

// Get returns the value at column index i, or missing when out of range.
func (r Row) Get(i int) Value {
	if i < 0 || i >= len(r.Values) {
		return MissingValue()
	}
	return r.Values[i]
}

// Dataset is an in-memory table with a uniform column set.
type Dataset struct {
	Columns []Column
	Rows    []Row
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// Index returns the position of the named column, or -1. Duplicate header
// names resolve to their first occurrence.
func (d Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column descriptor.
func (d Dataset) Column(name string) (Column, bool) {
	idx := d.Index(name)
	if idx < 0 {
		return Column{}, false
	}
	return d.Columns[idx], true
}

// ColumnNames lists header names in order.
func (d Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// WithRows returns a dataset sharing this dataset's columns.
func (d Dataset) WithRows(rows []Row) Dataset {
	return Dataset{Columns: d.Columns, Rows: rows}
}

// Head returns at most the first n rows.
func (d Dataset) Head(n int) Dataset {
	if n < 0 || n >= len(d.Rows) {
		return d
	}
	return d.WithRows(d.Rows[:n])
}

// Records renders the header and every row as raw text, missing cells as "".
func (d Dataset) Records() (header []string, records [][]string) {
	header = d.ColumnNames()
	records = make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		rec := make([]string, len(d.Columns))
		for i := range d.Columns {
			rec[i] = row.Get(i).String()
		}
		records = append(records, rec)
	}
	return header, records
}

// Sources lists distinct provenance tags in first-seen order.
func (d Dataset) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Rows {
		if r.Source == "" || seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		out = append(out, r.Source)
	}
	return out
}

// FromRecords builds a typed dataset from raw text. Header names are trimmed
// of surrounding whitespace; nothing else about them is normalized. Short
// records are padded with missing cells and extra cells are dropped. sources
// may be nil; otherwise it carries one provenance tag per record.
func FromRecords(header []string, records [][]string, sources []string) Dataset {
	cols := make([]Column, len(header))
	for i, h := range header {
		cols[i] = Column{Name: strings.TrimSpace(h)}
	}

	for i := range cols {
		cols[i].Type = inferKind(records, i)
	}

	rows := make([]Row, 0, len(records))
	for r, rec := range records {
		values := make([]Value, len(cols))
		for i := range cols {
			raw := ""
			if i < len(rec) {
				raw = rec[i]
			}
			values[i] = coerce(raw, cols[i].Type)
		}
		row := Row{Values: values}
		if r < len(sources) {
			row.Source = sources[r]
		}
		rows = append(rows, row)
	}

	return Dataset{Columns: cols, Rows: rows}
}

// inferKind picks Number when every non-blank cell parses as a number, Date
// when every one parses as a date, and String otherwise. A column with no
// data is String.
func inferKind(records [][]string, col int) Kind {
	allNum, allDate, seen := true, true, false
	for _, rec := range records {
		if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
			continue
		}
		seen = true
		if allNum {
			if _, ok := ParseNumber(rec[col]); !ok {
				allNum = false
			}
		}
		if allDate {
			if _, ok := ParseDate(rec[col]); !ok {
				allDate = false
			}
		}
		if !allNum && !allDate {
			return String
		}
	}
	switch {
	case !seen:
		return String
	case allNum:
		return Number
	case allDate:
		return Date
	default:
		return String
	}
}
