package stats

import "time"

// Direction is the qualitative label of a trend.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Flat       Direction = "flat"
)

// TrendPoint compares the last two points of a series.
type TrendPoint struct {
	PreviousDay time.Time `json:"previousDay"`
	CurrentDay  time.Time `json:"currentDay"`
	Previous    float64   `json:"previous"`
	Current     float64   `json:"current"`
	Delta       float64   `json:"delta"`
	Percent     float64   `json:"percent"`
	Direction   Direction `json:"direction"`
}

// GroupTrend is the trend of one group's own series.
type GroupTrend struct {
	Group string     `json:"group"`
	Trend TrendPoint `json:"trend"`
}

// Delta compares the last point of series with the one before it. It reports
// false when the series has fewer than two points. A zero previous value
// yields a zero percentage.
func Delta(series []PeriodValue) (TrendPoint, bool) {
	if len(series) < 2 {
		return TrendPoint{}, false
	}
	prev, curr := series[len(series)-2], series[len(series)-1]

	tp := TrendPoint{
		PreviousDay: prev.Day,
		CurrentDay:  curr.Day,
		Previous:    prev.Value,
		Current:     curr.Value,
		Delta:       curr.Value - prev.Value,
	}
	if prev.Value != 0 {
		tp.Percent = tp.Delta / prev.Value * 100
	}
	switch {
	case tp.Delta > 0:
		tp.Direction = Increasing
	case tp.Delta < 0:
		tp.Direction = Decreasing
	default:
		tp.Direction = Flat
	}
	return tp, true
}

// DeltaByGroup evaluates every group on its own series. Groups with fewer
// than two points are omitted.
func DeltaByGroup(groups []GroupSeries) []GroupTrend {
	var out []GroupTrend
	for _, g := range groups {
		if tp, ok := Delta(g.Points); ok {
			out = append(out, GroupTrend{Group: g.Group, Trend: tp})
		}
	}
	return out
}
