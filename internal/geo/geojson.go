package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"sheetdash/internal/metrics"
)

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// ParseFeatureNames reads the properties.name of every feature of a GeoJSON
// FeatureCollection, in document order. Features without a string name are
// skipped.
func ParseFeatureNames(r io.Reader) ([]string, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected geojson type %q", fc.Type)
	}
	names := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if name, ok := f.Properties["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Fetcher downloads GeoJSON boundary documents.
type Fetcher struct {
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, m *metrics.Metrics) *Fetcher {
	return &Fetcher{HTTPClient: &http.Client{Timeout: timeout}, Metrics: m}
}

// FetchFeatureNames downloads url and returns its feature names.
func (f *Fetcher) FetchFeatureNames(ctx context.Context, url string) ([]string, error) {
	start := time.Now()
	names, err := f.fetch(ctx, url)
	f.Metrics.ObserveFetch("geojson", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("url", url).Int("features", len(names)).Msg("Fetched boundary features")
	return names, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch geojson: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geojson endpoint returned status %d", resp.StatusCode)
	}
	return ParseFeatureNames(resp.Body)
}
