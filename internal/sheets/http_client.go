package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the public docs endpoints. Sheet enumeration goes
// through the Sheets API when an API key is configured and falls back to
// scraping the htmlview page.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	api        Lister
}

// NewClient creates a client. It fails only when the Sheets API service
// cannot be constructed.
func NewClient(ctx context.Context, cfg Config) (*HTTPClient, error) {
	cfg = cfg.withDefaults()
	c := &HTTPClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
	if cfg.APIKey != "" {
		api, err := NewAPILister(ctx, cfg.APIKey, cfg.APIEndpoint, cfg.Metrics)
		if err != nil {
			return nil, err
		}
		c.api = api
	}
	return c, nil
}

// FetchCSV downloads one sheet as CSV.
func (c *HTTPClient) FetchCSV(ctx context.Context, ref Ref) ([]byte, error) {
	if ref.SpreadsheetID == "" {
		return nil, ErrInvalidSpreadsheetID
	}
	csvURL := CSVURL(c.cfg.BaseURL, ref)
	log.Info().Str("sheet", ref.String()).Msg("Requesting sheet CSV")
	log.Debug().Str("url", csvURL).Msg("Sheet CSV request details")

	start := time.Now()
	body, resp, err := c.get(ctx, csvURL)
	c.cfg.Metrics.ObserveFetch("csv", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}

	if looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		return nil, fmt.Errorf("failed to fetch %s: %w (snippet %q)", ref, ErrNotCSV, snippet(body))
	}
	log.Debug().Str("sheet", ref.String()).Int("bytes", len(body)).Msg("Fetched sheet CSV")
	return body, nil
}

// ListSheets returns the sheet names of a spreadsheet, deduplicated in
// first-seen order. An empty list is a valid result.
func (c *HTTPClient) ListSheets(ctx context.Context, spreadsheetID string) ([]string, error) {
	if spreadsheetID == "" {
		return nil, ErrInvalidSpreadsheetID
	}
	if c.api != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		names, err := c.api.ListSheets(ctx, spreadsheetID)
		if err == nil {
			return names, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		log.Warn().Err(err).Str("spreadsheet", spreadsheetID).Msg("Sheets API listing failed, falling back to htmlview")
	}
	return c.scrapeSheets(ctx, spreadsheetID)
}

func (c *HTTPClient) scrapeSheets(ctx context.Context, spreadsheetID string) ([]string, error) {
	pageURL := HTMLViewURL(c.cfg.BaseURL, spreadsheetID)
	log.Debug().Str("url", pageURL).Msg("Scraping sheet names")

	start := time.Now()
	body, _, err := c.get(ctx, pageURL)
	c.cfg.Metrics.ObserveFetch("htmlview", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets of %s: %w", spreadsheetID, err)
	}

	names := ScrapeSheetNames(body)
	if len(names) == 0 {
		log.Warn().Str("spreadsheet", spreadsheetID).Msg("No sheet names found in htmlview page")
	}
	return names, nil
}

func (c *HTTPClient) get(ctx context.Context, target string) ([]byte, *http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/csv, text/plain, text/html;q=0.8, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, resp, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.cfg.MaxBodyBytes)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				log.Warn().Str("retryAfter", retryAfter).Msg("Google Sheets rate limit exceeded")
			}
		case http.StatusUnauthorized, http.StatusForbidden:
			log.Warn().Int("status", resp.StatusCode).Msg("Spreadsheet is not shared publicly")
		}
		return nil, resp, &StatusError{Code: resp.StatusCode, Snippet: snippet(body)}
	}
	return body, resp, nil
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(trimmed, []byte("<!")) || bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<html"))
}

const snippetBytes = 256

// snippet trims b to at most snippetBytes without splitting a rune.
func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= snippetBytes {
		return s
	}
	cut := snippetBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
