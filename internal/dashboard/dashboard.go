package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"sheetdash/internal/classify"
	"sheetdash/internal/dataset"
	"sheetdash/internal/filter"
	"sheetdash/internal/resolver"
	"sheetdash/internal/stats"
	"sheetdash/internal/visuals"
)

// DefaultTableLimit is the number of filtered rows included in a view.
const DefaultTableLimit = 100

// Options are the caller's choices for one render pass.
type Options struct {
	// Rules overrides the classifier rules; nil uses classify.DefaultRules.
	Rules []classify.Rule
	// Selections narrows rows per role. A role present with no values shows nothing.
	Selections map[classify.Role][]string
	// Min and Max bound the numeric role, inclusive.
	Min *float64
	Max *float64
	// Sum aggregates the numeric role instead of counting rows.
	Sum    bool
	Bucket stats.Bucket
	// TableLimit caps View.Table; 0 means DefaultTableLimit, negative means all.
	TableLimit int
}

// KPIs are the headline counters.
type KPIs struct {
	TotalRows      int        `json:"totalRows"`
	FilteredRows   int        `json:"filteredRows"`
	Provinces      int        `json:"provinces"`
	Zones          int        `json:"zones"`
	NumericSum     *float64   `json:"numericSum,omitempty"`
	LatestDay      *time.Time `json:"latestDay,omitempty"`
	LatestDayValue float64    `json:"latestDayValue"`
	MedianPerDay   float64    `json:"medianPerDay"`
}

// Charts holds Mermaid renderings of the aggregations.
type Charts struct {
	Daily      string `json:"daily,omitempty"`
	BySource   string `json:"bySource,omitempty"`
	Categories string `json:"categories,omitempty"`
	Provinces  string `json:"provinces,omitempty"`
}

// FailedSheet is a sheet that could not be loaded in a multi-sheet view.
type FailedSheet struct {
	Sheet string `json:"sheet"`
	Error string `json:"error"`
}

// View is everything a presentation layer needs to render a dashboard.
type View struct {
	Status  Status `json:"status"`
	Message string `json:"message"`

	Roles     classify.Roles      `json:"roles"`
	Selection map[string][]string `json:"selection"`

	Columns        []string   `json:"columns"`
	Table          [][]string `json:"table"`
	TableTruncated bool       `json:"tableTruncated"`

	KPIs         KPIs                  `json:"kpis"`
	Daily        []stats.PeriodValue   `json:"daily"`
	Trend        *stats.TrendPoint     `json:"trend,omitempty"`
	Stability    *stats.XmRResult      `json:"stability,omitempty"`
	BySource     []stats.GroupSeries   `json:"bySource,omitempty"`
	SourceTrends []stats.GroupTrend    `json:"sourceTrends,omitempty"`
	Categories   []stats.CategoryValue `json:"categories,omitempty"`
	Provinces    []stats.CategoryValue `json:"provinces,omitempty"`
	Zones        []stats.CategoryValue `json:"zones,omitempty"`
	Charts       Charts                `json:"charts"`
	Notes        []string              `json:"notes,omitempty"`

	Loaded []string      `json:"loaded,omitempty"`
	Failed []FailedSheet `json:"failed,omitempty"`

	// Filtered is the filtered dataset, kept for exports.
	Filtered dataset.Dataset `json:"-"`
}

// FromMulti builds a view over a multi-sheet load, carrying both the loaded
// and the failed sheet lists.
func FromMulti(res resolver.MultiResult, opts Options) View {
	if len(res.Loaded) == 0 && len(res.Failed) == 0 {
		return NoSheets()
	}
	v := Build(res.Dataset, opts)
	v.Loaded = res.Loaded
	for _, f := range res.Failed {
		v.Failed = append(v.Failed, FailedSheet{Sheet: f.Sheet, Error: f.Err.Error()})
	}
	if len(res.Failed) > 0 {
		v.Notes = append(v.Notes, fmt.Sprintf("%d of %d sheets failed to load", len(res.Failed), len(res.Failed)+len(res.Loaded)))
	}
	return v
}

// NoSheets is the view for a spreadsheet with nothing to load.
func NoSheets() View {
	return empty(StatusNoSheets)
}

func empty(status Status) View {
	return View{
		Status:    status,
		Message:   status.Message(),
		Roles:     classify.NewRoles(nil),
		Selection: map[string][]string{},
		Columns:   []string{},
		Table:     [][]string{},
		Daily:     []stats.PeriodValue{},
	}
}

// Build runs classification, filtering, aggregation and trend analysis over
// ds. It never fails; empty input degrades to an empty view with a status.
func Build(ds dataset.Dataset, opts Options) View {
	rules := opts.Rules
	if rules == nil {
		rules = classify.DefaultRules()
	}
	roles := classify.Classify(ds.Columns, rules)

	v := empty(StatusOK)
	v.Roles = roles
	v.Columns = ds.ColumnNames()
	v.KPIs.TotalRows = ds.Len()

	if ds.Len() == 0 {
		v.Status = StatusNoRows
		v.Message = v.Status.Message()
		v.Filtered = ds
		return v
	}

	criteria, notes := criteriaFor(roles, opts)
	v.Notes = append(v.Notes, notes...)
	filtered := filter.ApplyCriteria(ds, criteria)
	v.Filtered = filtered
	v.Selection = render(criteria.Selection)
	v.KPIs.FilteredRows = filtered.Len()

	if filtered.Len() == 0 {
		v.Status = StatusNoMatches
		v.Message = v.Status.Message()
		return v
	}

	v.Table, v.TableTruncated = table(filtered, opts.TableLimit)

	numCol := ""
	if col, ok := roles.Column(classify.RoleNumeric); ok {
		sum := 0.0
		idx := filtered.Index(col)
		for _, row := range filtered.Rows {
			if f, ok := row.Get(idx).AsFloat(); ok {
				sum += f
			}
		}
		v.KPIs.NumericSum = &sum
		if opts.Sum {
			numCol = col
		}
	} else {
		v.Notes = append(v.Notes, "No numeric column detected; sums are unavailable.")
		if opts.Sum {
			v.Notes = append(v.Notes, "Sum requested without a numeric column; counting rows instead.")
		}
	}
	measure := "Rows"
	if numCol != "" {
		measure = numCol
	}

	if col, ok := roles.Column(classify.RoleDate); ok {
		bucket := opts.Bucket
		if bucket == "" {
			bucket = stats.BucketDay
		}
		v.Daily = stats.AggregateByPeriod(filtered, col, numCol, bucket)
		if n := len(v.Daily); n > 0 {
			last := v.Daily[n-1]
			v.KPIs.LatestDay = &last.Day
			v.KPIs.LatestDayValue = last.Value
			v.KPIs.MedianPerDay = stats.CalculateMedianContinuous(stats.SeriesValues(v.Daily))
		}
		if tp, ok := stats.Delta(v.Daily); ok {
			v.Trend = &tp
		} else {
			v.Notes = append(v.Notes, "Fewer than two periods with data; trend unavailable.")
		}
		if xmr, ok := stats.SeriesStability(v.Daily); ok {
			v.Stability = &xmr
		}
		v.Charts.Daily = visuals.GenerateDailyChart(fmt.Sprintf("%s per %s", measure, bucket), measure, v.Daily)

		if len(filtered.Sources()) > 1 {
			v.BySource = stats.AggregateByGroupAndPeriod(filtered, stats.BySource(), col, numCol, bucket)
			v.SourceTrends = stats.DeltaByGroup(v.BySource)
			v.Charts.BySource = visuals.GenerateGroupChart(fmt.Sprintf("%s per %s by sheet", measure, bucket), measure, v.BySource)
		}
	} else {
		v.Notes = append(v.Notes, "No date column detected; daily series and trend skipped.")
	}

	if col, ok := roles.Column(classify.RoleProvince); ok {
		v.Provinces = stats.SortDescending(stats.AggregateByKey(filtered, stats.ByColumn(filtered, col), numCol))
		v.KPIs.Provinces = len(v.Provinces)
		v.Charts.Provinces = visuals.GenerateCategoryChart(fmt.Sprintf("%s by %s", measure, col), measure, v.Provinces)
	} else {
		v.Notes = append(v.Notes, "No province column detected; map skipped.")
	}

	if col, ok := roles.Column(classify.RoleZone); ok {
		v.Zones = stats.SortDescending(stats.AggregateByKey(filtered, stats.ByColumn(filtered, col), numCol))
		v.KPIs.Zones = len(v.Zones)
	} else {
		v.Notes = append(v.Notes, "No zone column detected; zone breakdown skipped.")
	}

	if col, ok := roles.Column(classify.RoleCategory); ok {
		v.Categories = stats.SortDescending(stats.AggregateByKey(filtered, stats.ByColumn(filtered, col), numCol))
		v.Charts.Categories = visuals.GenerateCategoryChart(fmt.Sprintf("%s by %s", measure, col), measure, v.Categories)
	}

	log.Debug().
		Int("rows", ds.Len()).
		Int("filtered", filtered.Len()).
		Int("roles", roles.Len()).
		Msg("Built dashboard")
	return v
}

func criteriaFor(roles classify.Roles, opts Options) (filter.Criteria, []string) {
	var notes []string
	for role := range opts.Selections {
		if !roles.Has(role) {
			notes = append(notes, fmt.Sprintf("Filter on %s ignored; no %s column detected.", role, role))
		}
	}
	slices.Sort(notes)

	c := filter.Criteria{Selection: filter.ForRoles(roles, opts.Selections)}
	if opts.Min != nil || opts.Max != nil {
		if col, ok := roles.Column(classify.RoleNumeric); ok {
			c.Ranges = append(c.Ranges, filter.Range{Column: col, Min: opts.Min, Max: opts.Max})
		} else {
			notes = append(notes, "Numeric range ignored; no numeric column detected.")
		}
	}
	return c, notes
}

func render(sel filter.Selection) map[string][]string {
	out := make(map[string][]string, len(sel))
	for col, set := range sel {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		slices.Sort(values)
		out[col] = values
	}
	return out
}

func table(ds dataset.Dataset, limit int) ([][]string, bool) {
	if limit == 0 {
		limit = DefaultTableLimit
	}
	head := ds
	if limit > 0 {
		head = ds.Head(limit)
	}
	_, records := head.Records()
	return records, head.Len() < ds.Len()
}
