package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sheetdash/internal/cache"
	"sheetdash/internal/dataset"
	"sheetdash/internal/metrics"
	"sheetdash/internal/sheets"
)

// Config binds a resolver to one spreadsheet.
type Config struct {
	SpreadsheetID string
	// GID is the default grid loaded by Load when the ref names no sheet.
	GID         string
	Concurrency int
	CacheTTL    time.Duration
	CacheSize   int
	Metrics     *metrics.Metrics
	// Clock overrides the cache time source.
	Clock cache.Clock
}

// Resolver turns sheet references into datasets, memoizing fetches.
type Resolver struct {
	client        sheets.Client
	spreadsheetID string
	gid           string
	concurrency   int

	datasets *cache.Cache[string, dataset.Dataset]
	listings *cache.Cache[string, []string]
}

// Failure records one sheet that could not be loaded.
type Failure struct {
	Sheet string `json:"sheet"`
	Err   error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Sheet, f.Err)
}

// MultiResult is the outcome of a multi-sheet load. Dataset holds the
// concatenation of every loaded sheet in the requested order.
type MultiResult struct {
	Dataset dataset.Dataset
	Loaded  []string
	Failed  []Failure
}

// New creates a resolver over client.
func New(client sheets.Client, cfg Config) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	r := &Resolver{
		client:        client,
		spreadsheetID: cfg.SpreadsheetID,
		gid:           cfg.GID,
		concurrency:   cfg.Concurrency,
		datasets:      cache.New[string, dataset.Dataset](cfg.CacheTTL, cfg.CacheSize),
		listings:      cache.New[string, []string](cfg.CacheTTL, cfg.CacheSize),
	}
	if cfg.Clock != nil {
		r.datasets.WithClock(cfg.Clock)
		r.listings.WithClock(cfg.Clock)
	}
	if cfg.Metrics != nil {
		r.datasets.OnHit = cfg.Metrics.CacheHit
		r.datasets.OnMiss = cfg.Metrics.CacheMiss
	}
	return r
}

// SpreadsheetID returns the configured spreadsheet.
func (r *Resolver) SpreadsheetID() string {
	return r.spreadsheetID
}

// CacheStats reports dataset cache effectiveness.
func (r *Resolver) CacheStats() cache.Stats {
	return r.datasets.Stats()
}

func (r *Resolver) complete(ref sheets.Ref) sheets.Ref {
	if ref.SpreadsheetID == "" {
		ref.SpreadsheetID = r.spreadsheetID
	}
	if ref.GID == "" && ref.Sheet == "" && ref.SpreadsheetID == r.spreadsheetID {
		ref.GID = r.gid
	}
	return ref
}

// Load fetches and parses a single sheet. Any failure is returned.
func (r *Resolver) Load(ctx context.Context, ref sheets.Ref) (dataset.Dataset, error) {
	ref = r.complete(ref)
	if ref.SpreadsheetID == "" {
		return dataset.Dataset{}, sheets.ErrInvalidSpreadsheetID
	}
	return r.datasets.GetOrLoad(ref.Key(), func() (dataset.Dataset, error) {
		body, err := r.client.FetchCSV(ctx, ref)
		if err != nil {
			return dataset.Dataset{}, err
		}
		ds, err := dataset.ParseCSVBytes(body)
		if err != nil {
			return dataset.Dataset{}, fmt.Errorf("failed to parse %s: %w", ref, err)
		}
		log.Info().Str("sheet", ref.String()).Int("rows", ds.Len()).Int("columns", len(ds.Columns)).Msg("Loaded sheet")
		return ds, nil
	})
}

// LoadAll fetches the named sheets concurrently and concatenates those that
// loaded, in the requested order, tagging rows with their sheet name. A
// failing sheet never fails the call; it is reported in Failed.
func (r *Resolver) LoadAll(ctx context.Context, names []string) MultiResult {
	names = dedupe(names)
	type outcome struct {
		ds  dataset.Dataset
		err error
	}
	outcomes := make([]outcome, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, name := range names {
		g.Go(func() error {
			ds, err := r.Load(gctx, sheets.Ref{SpreadsheetID: r.spreadsheetID, Sheet: name})
			outcomes[i] = outcome{ds: ds, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var res MultiResult
	var parts []dataset.Part
	for i, name := range names {
		if err := outcomes[i].err; err != nil {
			log.Warn().Err(err).Str("sheet", name).Msg("Skipping sheet that failed to load")
			res.Failed = append(res.Failed, Failure{Sheet: name, Err: err})
			continue
		}
		res.Loaded = append(res.Loaded, name)
		parts = append(parts, dataset.Part{Name: name, Data: outcomes[i].ds})
	}
	res.Dataset = dataset.Concat(parts...)
	return res
}

// Discover lists the sheet names of the configured spreadsheet. An empty
// list is a valid answer.
func (r *Resolver) Discover(ctx context.Context) ([]string, error) {
	if r.spreadsheetID == "" {
		return nil, sheets.ErrInvalidSpreadsheetID
	}
	return r.listings.GetOrLoad(r.spreadsheetID, func() ([]string, error) {
		return r.client.ListSheets(ctx, r.spreadsheetID)
	})
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
