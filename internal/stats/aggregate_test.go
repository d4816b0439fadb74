package stats

import (
	"reflect"
	"testing"
	"time"

	"sheetdash/internal/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sales() dataset.Dataset {
	return dataset.Concat(
		dataset.Part{Name: "North", Data: dataset.FromRecords(
			[]string{"date", "province", "amount"},
			[][]string{
				{"2024-01-02 09:00", "B", "5"},
				{"2024-01-01 17:30", "A", "10"},
				{"2024-01-02 12:00", "A", "x"},
				{"", "C", "3"},
			}, nil)},
		dataset.Part{Name: "South", Data: dataset.FromRecords(
			[]string{"date", "province", "amount"},
			[][]string{
				{"2024-01-01", "C", "2"},
				{"not a date", "", "4"},
			}, nil)},
	)
}

func TestCountByPeriod(t *testing.T) {
	ds := sales()
	got := CountByPeriod(ds, "date")
	want := []PeriodValue{
		{Day: day(2024, 1, 1), Label: "2024-01-01", Value: 2},
		{Day: day(2024, 1, 2), Label: "2024-01-02", Value: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CountByPeriod() = %+v, want %+v", got, want)
	}

	// Summed counts equal the rows minus those without a usable date.
	if total := Total(got); total != float64(ds.Len()-2) {
		t.Errorf("Total() = %v, want %d", total, ds.Len()-2)
	}
}

func TestCountByPeriod_UnknownColumn(t *testing.T) {
	if got := CountByPeriod(sales(), "nope"); got != nil {
		t.Errorf("CountByPeriod() = %v, want nil", got)
	}
}

func TestSumByPeriod_NonNumericCountsAsZero(t *testing.T) {
	got := SumByPeriod(sales(), "date", "amount")
	want := []float64{12, 5}
	if !reflect.DeepEqual(SeriesValues(got), want) {
		t.Errorf("SumByPeriod() = %v, want %v", SeriesValues(got), want)
	}
}

func TestAggregateByPeriod_Buckets(t *testing.T) {
	ds := dataset.FromRecords([]string{"d"}, [][]string{
		{"2024-01-01"}, // Monday
		{"2024-01-07"}, // Sunday, same ISO week
		{"2024-01-08"},
		{"2024-02-15"},
	}, nil)

	tests := []struct {
		bucket Bucket
		want   []string
	}{
		{BucketDay, []string{"2024-01-01", "2024-01-07", "2024-01-08", "2024-02-15"}},
		{BucketWeek, []string{"2024-W01", "2024-W02", "2024-W07"}},
		{BucketMonth, []string{"Jan 2024", "Feb 2024"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			var labels []string
			for _, p := range AggregateByPeriod(ds, "d", "", tt.bucket) {
				labels = append(labels, p.Label)
			}
			if !reflect.DeepEqual(labels, tt.want) {
				t.Errorf("labels = %v, want %v", labels, tt.want)
			}
		})
	}
}

func TestCountByCategory_FirstSeenOrder(t *testing.T) {
	got := CountByCategory(sales(), "province")
	want := []CategoryValue{{"B", 1}, {"A", 2}, {"C", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountByCategory() = %v, want %v", got, want)
	}
}

func TestSumByCategory(t *testing.T) {
	got := SumByCategory(sales(), "province", "amount")
	want := []CategoryValue{{"B", 5}, {"A", 10}, {"C", 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SumByCategory() = %v, want %v", got, want)
	}
}

func TestAggregateByKey_BySource(t *testing.T) {
	got := AggregateByKey(sales(), BySource(), "")
	want := []CategoryValue{{"North", 4}, {"South", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AggregateByKey(BySource) = %v, want %v", got, want)
	}
}

func TestSortDescending_StableAndNonMutating(t *testing.T) {
	in := []CategoryValue{{"B", 1}, {"A", 2}, {"C", 2}, {"D", 0}}
	got := SortDescending(in)
	want := []CategoryValue{{"A", 2}, {"C", 2}, {"B", 1}, {"D", 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortDescending() = %v, want %v", got, want)
	}
	if in[0].Key != "B" {
		t.Errorf("input was reordered: %v", in)
	}
}

func TestCountByGroupAndPeriod(t *testing.T) {
	ds := sales()
	got := CountByGroupAndPeriod(ds, BySource(), "date")
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Group != "North" || got[1].Group != "South" {
		t.Errorf("group order = %s,%s", got[0].Group, got[1].Group)
	}
	if !reflect.DeepEqual(SeriesValues(got[0].Points), []float64{1, 2}) {
		t.Errorf("North = %v, want [1 2]", SeriesValues(got[0].Points))
	}
	if !reflect.DeepEqual(SeriesValues(got[1].Points), []float64{1}) {
		t.Errorf("South = %v, want [1]", SeriesValues(got[1].Points))
	}

	byProvince := CountByGroupAndPeriod(ds, ByColumn(ds, "province"), "date")
	if len(byProvince) != 3 {
		t.Errorf("got %d province groups, want 3", len(byProvince))
	}
}

func TestAggregations_EmptyDataset(t *testing.T) {
	ds := dataset.FromRecords([]string{"date", "zone"}, nil, nil)
	if got := CountByPeriod(ds, "date"); len(got) != 0 {
		t.Errorf("CountByPeriod() = %v", got)
	}
	if got := CountByCategory(ds, "zone"); len(got) != 0 {
		t.Errorf("CountByCategory() = %v", got)
	}
	if got := CountByGroupAndPeriod(ds, BySource(), "date"); len(got) != 0 {
		t.Errorf("CountByGroupAndPeriod() = %v", got)
	}
}

func TestCountByPeriod_MixedOffsetsShareADay(t *testing.T) {
	ds := dataset.FromRecords([]string{"date"}, [][]string{
		{"2024-01-01T10:00:00+05:30"},
		{"2024-01-01T12:00:00+05:30"},
		{"2024-01-01"},
		{"2024-01-01T12:00:00+07:00"},
		{"2024-01-02T08:00:00+05:30"},
	}, nil)

	got := CountByPeriod(ds, "date")
	want := []PeriodValue{
		{Day: day(2024, 1, 1), Label: "2024-01-01", Value: 4},
		{Day: day(2024, 1, 2), Label: "2024-01-02", Value: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CountByPeriod() = %+v, want %+v", got, want)
	}

	series := CountByGroupAndPeriod(ds, func(dataset.Row) (string, bool) { return "all", true }, "date")
	if len(series) != 1 || !reflect.DeepEqual(series[0].Points, want) {
		t.Errorf("CountByGroupAndPeriod() = %+v, want one series %+v", series, want)
	}
}

func TestSnapToStart_KeepsLocation(t *testing.T) {
	bkk := time.FixedZone("ICT", 7*3600)
	ts := time.Date(2024, 3, 5, 23, 30, 0, 0, bkk)
	got := SnapToStart(ts, BucketDay)
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, bkk)
	if !got.Equal(want) || got.Location() != bkk {
		t.Errorf("SnapToStart() = %v, want %v", got, want)
	}
}

func TestParseBucket(t *testing.T) {
	if ParseBucket("week") != BucketWeek || ParseBucket("") != BucketDay || ParseBucket("year") != BucketDay {
		t.Error("ParseBucket() mapped unexpectedly")
	}
}
