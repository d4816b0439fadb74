package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"sheetdash/internal/classify"
	"sheetdash/internal/geo"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `SHEETDASH_SHEET_URL='https://docs.google.com/spreadsheets/d/abc123/edit#gid=7'`
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := "https://docs.google.com/spreadsheets/d/abc123/edit#gid=7"
	if env["SHEETDASH_SHEET_URL"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["SHEETDASH_SHEET_URL"])
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHEETDASH_SPREADSHEET_ID", "abc123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout)
	}
	if cfg.RequestsPerSecond != 2 || cfg.Concurrency != 4 {
		t.Errorf("rps=%v concurrency=%d", cfg.RequestsPerSecond, cfg.Concurrency)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if !cfg.EnableMermaidCharts {
		t.Error("mermaid charts should default on")
	}
}

func TestLoad_SheetURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHEETDASH_SHEET_URL", "https://docs.google.com/spreadsheets/d/abc123/edit#gid=42")
	t.Setenv("SHEETDASH_SHEETS", "Jan,Feb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpreadsheetID != "abc123" || cfg.GID != "42" {
		t.Errorf("id=%q gid=%q", cfg.SpreadsheetID, cfg.GID)
	}
	if len(cfg.Sheets) != 2 || cfg.Sheets[1] != "Feb" {
		t.Errorf("Sheets = %v", cfg.Sheets)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"concurrency", "SHEETDASH_CONCURRENCY", "0", "Concurrency"},
		{"timeout", "SHEETDASH_FETCH_TIMEOUT", "0s", "FetchTimeout"},
		{"gid", "SHEETDASH_GID", "abc", "GID"},
		{"geojson", "SHEETDASH_GEOJSON_URL", "not a url", "GeoJSONURL"},
		{"parse", "SHEETDASH_CACHE_TTL", "soon", "CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_RulesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	rules := "tokens:\n  date: [\"when\"]\naliases:\n  \"BKK\": \"กรุงเทพมหานคร\"\n"
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(rules), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHEETDASH_RULES_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tokens := cfg.Tokens()
	if len(tokens.Date) != 1 || tokens.Date[0] != "when" {
		t.Errorf("Date tokens = %v", tokens.Date)
	}
	if len(tokens.Province) != len(classify.DefaultTokens().Province) {
		t.Errorf("Province tokens should keep defaults, got %v", tokens.Province)
	}

	n := cfg.Normalizer()
	if got := n.Normalize("BKK"); got != geo.Bangkok {
		t.Errorf("Normalize(BKK) = %q", got)
	}
	if got := n.Normalize("กทม"); got != geo.Bangkok {
		t.Errorf("built-in alias lost: %q", got)
	}
}

func TestLoad_MissingRulesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHEETDASH_RULES_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}

func TestSubConfigs(t *testing.T) {
	cfg := &AppConfig{
		SpreadsheetID:     "abc",
		GID:               "3",
		APIKey:            "key",
		FetchTimeout:      time.Second,
		RequestsPerSecond: 5,
		Burst:             2,
		Concurrency:       3,
		CacheTTL:          time.Minute,
		CacheSize:         8,
	}
	sc := cfg.SheetsConfig(nil)
	if sc.APIKey != "key" || sc.Timeout != time.Second || sc.RequestsPerSecond != 5 {
		t.Errorf("SheetsConfig = %+v", sc)
	}
	rc := cfg.ResolverConfig(nil)
	if rc.SpreadsheetID != "abc" || rc.GID != "3" || rc.Concurrency != 3 || rc.CacheSize != 8 {
		t.Errorf("ResolverConfig = %+v", rc)
	}
}
