// Package service wires the resolver, the dashboard builder and the boundary
// fetcher into the operations shared by the HTTP API, the MCP server and the
// CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sheetdash/internal/cache"
	"sheetdash/internal/classify"
	"sheetdash/internal/dashboard"
	"sheetdash/internal/geo"
	"sheetdash/internal/metrics"
	"sheetdash/internal/resolver"
	"sheetdash/internal/sheets"
)

// ErrNoGeoJSON is returned by Choropleth when no boundary URL is configured.
var ErrNoGeoJSON = errors.New("no geojson url configured")

// BoundaryFetcher returns the feature names of a GeoJSON document.
type BoundaryFetcher interface {
	FetchFeatureNames(ctx context.Context, url string) ([]string, error)
}

type Config struct {
	Resolver   *resolver.Resolver
	Boundaries BoundaryFetcher
	Normalizer *geo.Normalizer
	GeoJSONURL string
	// Rules is the classifier rule list used when a request carries none.
	Rules []classify.Rule
	// DefaultSheets are loaded when a request names neither sheets nor a gid.
	DefaultSheets []string
	// Mermaid enables chart rendering in views.
	Mermaid  bool
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
}

type Service struct {
	resolver      *resolver.Resolver
	boundaries    BoundaryFetcher
	normalizer    *geo.Normalizer
	geoJSONURL    string
	rules         []classify.Rule
	defaultSheets []string
	mermaid       bool
	metrics       *metrics.Metrics
	features      *cache.Cache[string, []string]
}

// Request selects the sheets for one dashboard render.
type Request struct {
	// Sheets names the sheets to load; more than one selects the multi-sheet flow.
	Sheets []string
	// AllSheets enumerates the spreadsheet and loads every sheet.
	AllSheets bool
	GID       string
	Options   dashboard.Options
}

func New(cfg Config) *Service {
	if cfg.Normalizer == nil {
		cfg.Normalizer = geo.NewNormalizer(nil)
	}
	if cfg.Rules == nil {
		cfg.Rules = classify.DefaultRules()
	}
	return &Service{
		resolver:      cfg.Resolver,
		boundaries:    cfg.Boundaries,
		normalizer:    cfg.Normalizer,
		geoJSONURL:    cfg.GeoJSONURL,
		rules:         cfg.Rules,
		defaultSheets: cfg.DefaultSheets,
		mermaid:       cfg.Mermaid,
		metrics:       cfg.Metrics,
		features:      cache.New[string, []string](cfg.CacheTTL, 8),
	}
}

// Sheets lists the sheet names of the configured spreadsheet.
func (s *Service) Sheets(ctx context.Context) ([]string, error) {
	names, err := s.resolver.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return names, nil
}

// Dashboard loads the requested sheets and builds a view. A single-sheet
// load failure is returned; in the multi-sheet flow failures are reported in
// the view instead.
func (s *Service) Dashboard(ctx context.Context, req Request) (dashboard.View, error) {
	opts := req.Options
	if opts.Rules == nil {
		opts.Rules = s.rules
	}

	names := req.Sheets
	multi := len(names) > 1
	if req.AllSheets {
		all, err := s.Sheets(ctx)
		if err != nil {
			return dashboard.View{}, err
		}
		if len(all) == 0 {
			return s.finish(dashboard.NoSheets()), nil
		}
		names, multi = all, true
	} else if len(names) == 0 && req.GID == "" && len(s.defaultSheets) > 0 {
		names = s.defaultSheets
		multi = len(names) > 1
	}

	if multi {
		res := s.resolver.LoadAll(ctx, names)
		return s.finish(dashboard.FromMulti(res, opts)), nil
	}

	ref := sheets.Ref{GID: req.GID}
	if len(names) == 1 {
		ref.Sheet = names[0]
	}
	ds, err := s.resolver.Load(ctx, ref)
	if err != nil {
		return dashboard.View{}, fmt.Errorf("failed to load sheet: %w", err)
	}
	return s.finish(dashboard.Build(ds, opts)), nil
}

func (s *Service) finish(v dashboard.View) dashboard.View {
	if !s.mermaid {
		v.Charts = dashboard.Charts{}
	}
	s.metrics.DashboardBuilt(string(v.Status))
	log.Info().
		Str("status", string(v.Status)).
		Int("rows", v.KPIs.TotalRows).
		Int("filtered", v.KPIs.FilteredRows).
		Int("failed", len(v.Failed)).
		Msg("Dashboard rendered")
	return v
}

// Choropleth builds the dashboard for req and joins its province values with
// the configured boundary features.
func (s *Service) Choropleth(ctx context.Context, req Request) (geo.Choropleth, dashboard.View, error) {
	if s.geoJSONURL == "" || s.boundaries == nil {
		return geo.Choropleth{}, dashboard.View{}, ErrNoGeoJSON
	}
	v, err := s.Dashboard(ctx, req)
	if err != nil {
		return geo.Choropleth{}, v, err
	}
	names, err := s.features.GetOrLoad(s.geoJSONURL, func() ([]string, error) {
		return s.boundaries.FetchFeatureNames(ctx, s.geoJSONURL)
	})
	if err != nil {
		return geo.Choropleth{}, v, fmt.Errorf("failed to load boundaries: %w", err)
	}
	c := s.normalizer.Join(v.Provinces, names)
	if len(c.Unmatched) > 0 {
		log.Debug().Strs("unmatched", c.Unmatched).Msg("Provinces without a boundary")
	}
	return c, v, nil
}

// IsUpstream reports whether err came from fetching remote data rather than
// from local configuration.
func IsUpstream(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrNoGeoJSON) &&
		!errors.Is(err, sheets.ErrInvalidSpreadsheetID)
}
