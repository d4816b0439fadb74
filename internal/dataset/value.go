package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the inferred type of a cell or column.
type Kind int

const (
	// Missing marks a cell with no usable value (empty, absent or unparseable).
	Missing Kind = iota
	// String is free text.
	String
	// Number is a float64-coercible value.
	Number
	// Date is a calendar date or timestamp.
	Date
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "missing"
	}
}

// Value is a single typed cell. Raw always holds the source text so that
// exporting a dataset reproduces what was fetched.
type Value struct {
	Kind Kind
	Raw  string
	Num  float64
	Time time.Time
}

// IsMissing reports whether the cell carries no data.
func (v Value) IsMissing() bool {
	return v.Kind == Missing
}

// String returns the source text of the cell, or "" for missing cells.
func (v Value) String() string {
	if v.Kind == Missing {
		return ""
	}
	return v.Raw
}

// AsFloat coerces the cell to a number. Date and missing cells never coerce.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, true
	case String:
		return ParseNumber(v.Raw)
	default:
		return 0, false
	}
}

// AsTime coerces the cell to a timestamp. Number and missing cells never coerce.
func (v Value) AsTime() (time.Time, bool) {
	switch v.Kind {
	case Date:
		return v.Time, true
	case String:
		return ParseDate(v.Raw)
	default:
		return time.Time{}, false
	}
}

// MissingValue returns the explicit missing marker.
func MissingValue() Value {
	return Value{Kind: Missing}
}

// StringValue wraps text; blank text becomes missing.
func StringValue(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{Kind: Missing, Raw: s}
	}
	return Value{Kind: String, Raw: s}
}

// NumberValue wraps a float with its canonical text form.
func NumberValue(f float64) Value {
	return Value{Kind: Number, Raw: strconv.FormatFloat(f, 'f', -1, 64), Num: f}
}

// coerce builds a cell of the requested column kind from raw text. Cells that
// do not parse as the column kind become missing.
func coerce(raw string, kind Kind) Value {
	if strings.TrimSpace(raw) == "" {
		return Value{Kind: Missing, Raw: raw}
	}
	switch kind {
	case Number:
		if f, ok := ParseNumber(raw); ok {
			return Value{Kind: Number, Raw: raw, Num: f}
		}
		return Value{Kind: Missing, Raw: raw}
	case Date:
		if t, ok := ParseDate(raw); ok {
			return Value{Kind: Date, Raw: raw, Time: t}
		}
		return Value{Kind: Missing, Raw: raw}
	default:
		return Value{Kind: String, Raw: raw}
	}
}

// ParseNumber parses a numeric cell, tolerating surrounding spaces and
// thousands separators ("1,024"). NaN and infinities are not numbers here.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// dateLayouts are tried in order. Day-first layouts precede month-first ones,
// so "03/04/2024" is 3 April; "1/15/2024" still parses as 15 January.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"02 Jan 2006 15:04",
	"02 Jan 2006",
	"2 January 2006",
}

// ParseDate parses a date cell against the known layouts. Values without a
// zone are interpreted as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
