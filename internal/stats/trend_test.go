package stats

import (
	"testing"
)

func series(values ...float64) []PeriodValue {
	out := make([]PeriodValue, len(values))
	for i, v := range values {
		out[i] = PeriodValue{Day: day(2024, 1, i+1), Value: v}
	}
	return out
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name      string
		series    []PeriodValue
		wantOK    bool
		delta     float64
		percent   float64
		direction Direction
	}{
		{"increase", series(10, 15), true, 5, 50, Increasing},
		{"flat", series(10, 10), true, 0, 0, Flat},
		{"from zero", series(0, 5), true, 5, 0, Increasing},
		{"decrease", series(20, 5), true, -15, -75, Decreasing},
		{"uses last two points only", series(100, 1, 2), true, 1, 100, Increasing},
		{"single point", series(7), false, 0, 0, ""},
		{"empty", nil, false, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Delta(tt.series)
			if ok != tt.wantOK {
				t.Fatalf("Delta() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Delta != tt.delta {
				t.Errorf("Delta = %v, want %v", got.Delta, tt.delta)
			}
			if got.Percent != tt.percent {
				t.Errorf("Percent = %v, want %v", got.Percent, tt.percent)
			}
			if got.Direction != tt.direction {
				t.Errorf("Direction = %v, want %v", got.Direction, tt.direction)
			}
		})
	}
}

func TestDelta_CarriesDays(t *testing.T) {
	got, _ := Delta(series(1, 2, 3))
	if !got.PreviousDay.Equal(day(2024, 1, 2)) || !got.CurrentDay.Equal(day(2024, 1, 3)) {
		t.Errorf("days = %v -> %v", got.PreviousDay, got.CurrentDay)
	}
}

func TestDeltaByGroup_Independent(t *testing.T) {
	groups := []GroupSeries{
		{Group: "North", Points: series(10, 4)},
		{Group: "South", Points: series(1, 3)},
		{Group: "East", Points: series(9)},
	}
	got := DeltaByGroup(groups)
	if len(got) != 2 {
		t.Fatalf("DeltaByGroup() returned %d trends, want 2", len(got))
	}
	if got[0].Group != "North" || got[0].Trend.Direction != Decreasing {
		t.Errorf("North = %+v", got[0])
	}
	if got[1].Group != "South" || got[1].Trend.Direction != Increasing {
		t.Errorf("South = %+v", got[1])
	}
}

func TestScenario_SinglePointHasNoTrend(t *testing.T) {
	if _, ok := Delta(series(1)); ok {
		t.Error("Delta() on one point should report no trend")
	}
}
