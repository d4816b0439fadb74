package stats

import "math"

// xmrScale is Wheeler's scaling constant for an Individuals chart.
const xmrScale = 2.66

// shiftRun is the number of consecutive points on one side of the average
// that signals a shift.
const shiftRun = 8

// XmRResult is a process behaviour chart over a period series. Limits are
// natural process limits; the lower one never drops below zero because
// counts and sums of sales cannot be negative.
type XmRResult struct {
	Average     float64   `json:"average"`
	AmR         float64   `json:"averageMovingRange"`
	UNPL        float64   `json:"upperLimit"`
	LNPL        float64   `json:"lowerLimit"`
	MovingRange []float64 `json:"movingRanges"`
	Signals     []Signal  `json:"signals"`
}

// Signal is a period that stands out from routine variation.
type Signal struct {
	Index       int    `json:"index"`
	Label       string `json:"label"`
	Type        string `json:"type"` // "outlier", "shift"
	Description string `json:"description"`
}

// SeriesStability runs the XmR analysis over series values, labelling
// signals with period labels. It reports false for fewer than two periods.
func SeriesStability(series []PeriodValue) (XmRResult, bool) {
	if len(series) < 2 {
		return XmRResult{}, false
	}
	labels := make([]string, len(series))
	for i, p := range series {
		labels[i] = p.Label
	}
	return CalculateXmR(SeriesValues(series), labels), true
}

// CalculateXmR computes average, moving ranges and limits for values and
// detects outliers and shifts. labels may be shorter than values.
func CalculateXmR(values []float64, labels []string) XmRResult {
	if len(values) == 0 {
		return XmRResult{Signals: []Signal{}}
	}

	var res XmRResult
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	res.Average = sum / float64(len(values))

	res.MovingRange = make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		res.MovingRange = append(res.MovingRange, math.Abs(values[i]-values[i-1]))
	}
	if len(res.MovingRange) > 0 {
		mr := 0.0
		for _, r := range res.MovingRange {
			mr += r
		}
		res.AmR = mr / float64(len(res.MovingRange))
	}

	res.UNPL = res.Average + xmrScale*res.AmR
	res.LNPL = math.Max(0, res.Average-xmrScale*res.AmR)
	res.Signals = detectSignals(values, labels, res)
	return res
}

func detectSignals(values []float64, labels []string, res XmRResult) []Signal {
	label := func(i int) string {
		if i < len(labels) {
			return labels[i]
		}
		return ""
	}

	signals := []Signal{}
	for i, v := range values {
		switch {
		case v > res.UNPL:
			signals = append(signals, Signal{Index: i, Label: label(i), Type: "outlier", Description: "Above the upper natural process limit"})
		case v < res.LNPL:
			signals = append(signals, Signal{Index: i, Label: label(i), Type: "outlier", Description: "Below the lower natural process limit"})
		}
	}

	side, run := 0, 0
	for i, v := range values {
		current := 0
		if v > res.Average {
			current = 1
		} else if v < res.Average {
			current = -1
		}
		if current != 0 && current == side {
			run++
		} else {
			side, run = current, 1
		}
		if current != 0 && run == shiftRun {
			signals = append(signals, Signal{Index: i, Label: label(i), Type: "shift", Description: "Eight consecutive periods on one side of the average"})
		}
	}
	return signals
}
