package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"sheetdash/internal/metrics"
)

var (
	// ErrNotFound is returned when the spreadsheet or sheet does not exist or
	// is not shared publicly.
	ErrNotFound = errors.New("spreadsheet not found")
	// ErrNotCSV is returned when the export endpoint answers with something
	// other than CSV, typically a Google sign-in page.
	ErrNotCSV = errors.New("response is not csv")
	// ErrInvalidSpreadsheetID is returned for input that is neither a sheet
	// URL nor a bare spreadsheet id.
	ErrInvalidSpreadsheetID = errors.New("invalid spreadsheet id")
	// ErrTooLarge is returned when a response body exceeds MaxBodyBytes.
	ErrTooLarge = errors.New("response body too large")
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("google sheets returned status %d", e.Code)
	}
	return fmt.Sprintf("google sheets returned status %d: %q", e.Code, e.Snippet)
}

// Unwrap maps 404 to ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.Code == 404 {
		return ErrNotFound
	}
	return nil
}

// Ref addresses one sheet of a spreadsheet. GID takes precedence over Sheet;
// with neither set the first sheet is exported.
type Ref struct {
	SpreadsheetID string `json:"spreadsheetId"`
	GID           string `json:"gid,omitempty"`
	Sheet         string `json:"sheet,omitempty"`
}

// Key identifies the ref for caching.
func (r Ref) Key() string {
	return fmt.Sprintf("%s|gid=%s|sheet=%s", r.SpreadsheetID, r.GID, r.Sheet)
}

func (r Ref) String() string {
	switch {
	case r.GID != "":
		return fmt.Sprintf("%s#gid=%s", r.SpreadsheetID, r.GID)
	case r.Sheet != "":
		return fmt.Sprintf("%s/%s", r.SpreadsheetID, r.Sheet)
	default:
		return r.SpreadsheetID
	}
}

// Label is the provenance tag used for rows loaded from this ref.
func (r Ref) Label() string {
	switch {
	case r.Sheet != "":
		return r.Sheet
	case r.GID != "":
		return "gid " + r.GID
	default:
		return r.SpreadsheetID
	}
}

// Client fetches sheet data.
type Client interface {
	FetchCSV(ctx context.Context, ref Ref) ([]byte, error)
	ListSheets(ctx context.Context, spreadsheetID string) ([]string, error)
}

// Lister enumerates the sheet names of a spreadsheet.
type Lister interface {
	ListSheets(ctx context.Context, spreadsheetID string) ([]string, error)
}

// Config holds the connection settings for Google Sheets.
type Config struct {
	// BaseURL is the docs host, overridable for tests.
	BaseURL string
	// APIKey enables the Sheets API v4 lister.
	APIKey string
	// APIEndpoint overrides the Sheets API root, for tests.
	APIEndpoint string

	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxBodyBytes      int64
	UserAgent         string

	Metrics *metrics.Metrics
}

const DefaultBaseURL = "https://docs.google.com"

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 32 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = "sheetdash/1.0"
	}
	return c
}

var (
	idInURL = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)
	bareID  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	gidPart = regexp.MustCompile(`[#?&]gid=([0-9]+)`)
)

// ParseSpreadsheetID accepts a bare spreadsheet id or any Google Sheets URL
// containing /spreadsheets/d/<id>.
func ParseSpreadsheetID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)
	if m := idInURL.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if s != "" && !strings.Contains(s, "/") && bareID.MatchString(s) {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSpreadsheetID, urlOrID)
}

// ParseRef is ParseSpreadsheetID that also picks up a gid from the URL
// fragment or query.
func ParseRef(urlOrID string) (Ref, error) {
	id, err := ParseSpreadsheetID(urlOrID)
	if err != nil {
		return Ref{}, err
	}
	ref := Ref{SpreadsheetID: id}
	if m := gidPart.FindStringSubmatch(urlOrID); m != nil {
		ref.GID = m[1]
	}
	return ref, nil
}

// CSVURL builds the export endpoint for ref.
func CSVURL(baseURL string, ref Ref) string {
	base := fmt.Sprintf("%s/spreadsheets/d/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(ref.SpreadsheetID))
	if ref.GID == "" && ref.Sheet != "" {
		params := url.Values{}
		params.Set("tqx", "out:csv")
		params.Set("sheet", ref.Sheet)
		return base + "/gviz/tq?" + params.Encode()
	}
	params := url.Values{}
	params.Set("format", "csv")
	if ref.GID != "" {
		params.Set("gid", ref.GID)
	}
	return base + "/export?" + params.Encode()
}

// HTMLViewURL is the page scraped for sheet names.
func HTMLViewURL(baseURL, spreadsheetID string) string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/htmlview", strings.TrimRight(baseURL, "/"), url.PathEscape(spreadsheetID))
}
