package visuals

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"sheetdash/internal/stats"
)

// maxBars caps category charts so the text chart stays readable.
const maxBars = 20

// GenerateDailyChart creates a Mermaid xychart-beta line chart of a period series.
func GenerateDailyChart(title, yLabel string, series []stats.PeriodValue) string {
	if len(series) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0
	for _, p := range series {
		labels = append(labels, quote(p.Label))
		values = append(values, formatValue(p.Value))
		maxVal = math.Max(maxVal, p.Value)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", quote(title)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis %s 0 --> %d\n", quote(yLabel), ceiling(maxVal)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateGroupChart overlays one line per group on a shared day axis. Days a
// group has no data for are drawn as zero.
func GenerateGroupChart(title, yLabel string, groups []stats.GroupSeries) string {
	if len(groups) == 0 {
		return ""
	}

	// Shared axis: union of labels, kept in chronological order.
	var axis []stats.PeriodValue
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, p := range g.Points {
			if !seen[p.Label] {
				seen[p.Label] = true
				axis = append(axis, p)
			}
		}
	}
	if len(axis) == 0 {
		return ""
	}
	slices.SortFunc(axis, func(a, b stats.PeriodValue) int {
		return a.Day.Compare(b.Day)
	})

	var labels []string
	for _, p := range axis {
		labels = append(labels, quote(p.Label))
	}

	maxVal := 0.0
	var lines []string
	for _, g := range groups {
		byLabel := make(map[string]float64, len(g.Points))
		for _, p := range g.Points {
			byLabel[p.Label] = p.Value
			maxVal = math.Max(maxVal, p.Value)
		}
		values := make([]string, len(axis))
		for i, p := range axis {
			values[i] = formatValue(byLabel[p.Label])
		}
		lines = append(lines, fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", quote(title)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis %s 0 --> %d\n", quote(yLabel), ceiling(maxVal)))
	for _, l := range lines {
		sb.WriteString(l)
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateCategoryChart creates a Mermaid bar chart of category values.
func GenerateCategoryChart(title, yLabel string, values []stats.CategoryValue) string {
	if len(values) == 0 {
		return ""
	}

	// Limit to 20 bars to avoid overwhelming the text chart context
	limit := min(len(values), maxBars)

	var labels []string
	var bars []string
	maxVal := 0.0
	for _, v := range values[:limit] {
		labels = append(labels, quote(v.Key))
		bars = append(bars, formatValue(v.Value))
		maxVal = math.Max(maxVal, v.Value)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", quote(title)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis %s 0 --> %d\n", quote(yLabel), ceiling(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(bars, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// quote renders a Mermaid string literal. Mermaid has no escape for double
// quotes, so they are replaced.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "'") + `"`
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ceiling leaves 20% headroom above the tallest point.
func ceiling(maxVal float64) int {
	return int(math.Ceil(maxVal + math.Max(1, maxVal*0.2)))
}

