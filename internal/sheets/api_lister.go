package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"sheetdash/internal/metrics"
)

// APILister enumerates sheets through the Google Sheets API v4.
type APILister struct {
	svc     *gsheets.Service
	metrics *metrics.Metrics
}

// NewAPILister creates a lister authenticated with an API key. endpoint may
// be empty.
func NewAPILister(ctx context.Context, apiKey, endpoint string, m *metrics.Metrics) (*APILister, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &APILister{svc: svc, metrics: m}, nil
}

// ListSheets returns sheet titles in tab order.
func (l *APILister) ListSheets(ctx context.Context, spreadsheetID string) ([]string, error) {
	start := time.Now()
	resp, err := l.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	l.metrics.ObserveFetch("sheets", time.Since(start), err)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			if gerr.Code == http.StatusNotFound {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, spreadsheetID)
			}
			return nil, &StatusError{Code: gerr.Code, Snippet: gerr.Message}
		}
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, s := range resp.Sheets {
		if s == nil || s.Properties == nil || s.Properties.Title == "" || seen[s.Properties.Title] {
			continue
		}
		seen[s.Properties.Title] = true
		names = append(names, s.Properties.Title)
	}
	log.Debug().Str("spreadsheet", spreadsheetID).Int("sheets", len(names)).Msg("Listed sheets via API")
	return names, nil
}
