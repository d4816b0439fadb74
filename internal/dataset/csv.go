package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrNoHeader is returned when a CSV payload has no header row.
var ErrNoHeader = errors.New("csv has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a comma-separated payload whose first row is the header.
// Ragged rows are tolerated.
func ParseCSV(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(all) == 0 {
		return Dataset{}, ErrNoHeader
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), utf8BOM))
	}
	return FromRecords(header, all[1:], nil), nil
}

// ParseCSVBytes is ParseCSV over an in-memory payload.
func ParseCSVBytes(b []byte) (Dataset, error) {
	return ParseCSV(bytes.NewReader(b))
}

// Part is one named dataset taking part in a concatenation.
type Part struct {
	Name string
	Data Dataset
}

// Concat stacks several datasets. The result carries the union of columns in
// first-seen order; cells a part does not have are missing. Column kinds are
// re-inferred over the combined data and every row is tagged with its part's
// name.
func Concat(parts ...Part) Dataset {
	var header []string
	pos := make(map[string]int)
	for _, p := range parts {
		for _, c := range p.Data.Columns {
			if _, ok := pos[c.Name]; ok {
				continue
			}
			pos[c.Name] = len(header)
			header = append(header, c.Name)
		}
	}

	var records [][]string
	var sources []string
	for _, p := range parts {
		for _, row := range p.Data.Rows {
			rec := make([]string, len(header))
			for i, c := range p.Data.Columns {
				rec[pos[c.Name]] = row.Get(i).String()
			}
			records = append(records, rec)
			sources = append(sources, p.Name)
		}
	}

	return FromRecords(header, records, sources)
}
