package stats

import (
	"slices"
	"time"

	"sheetdash/internal/dataset"
)

// PeriodValue is one bucket of a period aggregation.
type PeriodValue struct {
	Day   time.Time `json:"day"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

// CategoryValue is one group of a categorical aggregation.
type CategoryValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GroupSeries is the period series of a single group.
type GroupSeries struct {
	Group  string        `json:"group"`
	Points []PeriodValue `json:"points"`
}

// KeyFunc extracts a grouping key from a row. ok is false when the row has no
// key and must be skipped.
type KeyFunc func(row dataset.Row) (key string, ok bool)

// ByColumn groups rows by the text of a column; missing cells are skipped.
func ByColumn(ds dataset.Dataset, column string) KeyFunc {
	idx := ds.Index(column)
	return func(row dataset.Row) (string, bool) {
		if idx < 0 {
			return "", false
		}
		v := row.Get(idx)
		if v.IsMissing() {
			return "", false
		}
		return v.String(), true
	}
}

// BySource groups rows by their provenance tag.
func BySource() KeyFunc {
	return func(row dataset.Row) (string, bool) {
		return row.Source, row.Source != ""
	}
}

// CountByPeriod counts rows per calendar day, ascending. Rows whose date is
// missing or unparseable are left out.
func CountByPeriod(ds dataset.Dataset, dateCol string) []PeriodValue {
	return AggregateByPeriod(ds, dateCol, "", BucketDay)
}

// SumByPeriod sums numCol per calendar day. Non-numeric entries add zero.
func SumByPeriod(ds dataset.Dataset, dateCol, numCol string) []PeriodValue {
	return AggregateByPeriod(ds, dateCol, numCol, BucketDay)
}

// AggregateByPeriod counts rows per bucket, or sums numCol when it is set.
func AggregateByPeriod(ds dataset.Dataset, dateCol, numCol string, bucket Bucket) []PeriodValue {
	dateIdx := ds.Index(dateCol)
	if dateIdx < 0 {
		return nil
	}
	numIdx := ds.Index(numCol)

	buckets := make(map[calendarDate]float64)
	for _, row := range ds.Rows {
		t, ok := row.Get(dateIdx).AsTime()
		if !ok {
			continue
		}
		buckets[dateOf(SnapToStart(t, bucket))] += weight(row, numCol, numIdx)
	}
	return sortedPeriods(buckets, bucket)
}

// CountByCategory counts rows per distinct value of column in first-seen
// order. Rows with a missing value are skipped.
func CountByCategory(ds dataset.Dataset, column string) []CategoryValue {
	return AggregateByKey(ds, ByColumn(ds, column), "")
}

// SumByCategory sums numCol per distinct value of column.
func SumByCategory(ds dataset.Dataset, column, numCol string) []CategoryValue {
	return AggregateByKey(ds, ByColumn(ds, column), numCol)
}

// AggregateByKey counts rows per key, or sums numCol when it is set. Groups
// keep first-seen order.
func AggregateByKey(ds dataset.Dataset, key KeyFunc, numCol string) []CategoryValue {
	numIdx := ds.Index(numCol)
	pos := make(map[string]int)
	var out []CategoryValue
	for _, row := range ds.Rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		i, seen := pos[k]
		if !seen {
			i = len(out)
			pos[k] = i
			out = append(out, CategoryValue{Key: k})
		}
		out[i].Value += weight(row, numCol, numIdx)
	}
	return out
}

// CountByGroupAndPeriod builds one day series per group. Groups keep
// first-seen order and each series is ascending by day.
func CountByGroupAndPeriod(ds dataset.Dataset, key KeyFunc, dateCol string) []GroupSeries {
	return AggregateByGroupAndPeriod(ds, key, dateCol, "", BucketDay)
}

// AggregateByGroupAndPeriod is CountByGroupAndPeriod with a bucket width and
// an optional sum column.
func AggregateByGroupAndPeriod(ds dataset.Dataset, key KeyFunc, dateCol, numCol string, bucket Bucket) []GroupSeries {
	dateIdx := ds.Index(dateCol)
	if dateIdx < 0 {
		return nil
	}
	numIdx := ds.Index(numCol)

	var order []string
	groups := make(map[string]map[calendarDate]float64)
	for _, row := range ds.Rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		t, ok := row.Get(dateIdx).AsTime()
		if !ok {
			continue
		}
		g, seen := groups[k]
		if !seen {
			g = make(map[calendarDate]float64)
			groups[k] = g
			order = append(order, k)
		}
		g[dateOf(SnapToStart(t, bucket))] += weight(row, numCol, numIdx)
	}

	out := make([]GroupSeries, 0, len(order))
	for _, k := range order {
		out = append(out, GroupSeries{Group: k, Points: sortedPeriods(groups[k], bucket)})
	}
	return out
}

// SortDescending returns a copy ordered by value, largest first. Ties keep
// their original relative order.
func SortDescending(values []CategoryValue) []CategoryValue {
	out := slices.Clone(values)
	slices.SortStableFunc(out, func(a, b CategoryValue) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Total sums the values of a series.
func Total(series []PeriodValue) float64 {
	var sum float64
	for _, p := range series {
		sum += p.Value
	}
	return sum
}

func weight(row dataset.Row, numCol string, numIdx int) float64 {
	if numCol == "" {
		return 1
	}
	f, ok := row.Get(numIdx).AsFloat()
	if !ok {
		return 0
	}
	return f
}

// calendarDate keys period buckets. time.Time map keys compare the location
// pointer too, so two offsets on the same wall-clock day would split.
type calendarDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) calendarDate {
	y, m, d := t.Date()
	return calendarDate{year: y, month: m, day: d}
}

// Time is midnight UTC of the calendar date.
func (c calendarDate) Time() time.Time {
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, time.UTC)
}

func sortedPeriods(buckets map[calendarDate]float64, bucket Bucket) []PeriodValue {
	out := make([]PeriodValue, 0, len(buckets))
	for key, v := range buckets {
		day := key.Time()
		out = append(out, PeriodValue{Day: day, Label: GenerateLabel(day, bucket), Value: v})
	}
	slices.SortFunc(out, func(a, b PeriodValue) int {
		return a.Day.Compare(b.Day)
	})
	return out
}
