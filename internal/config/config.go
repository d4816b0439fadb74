package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"sheetdash/internal/classify"
	"sheetdash/internal/geo"
	"sheetdash/internal/metrics"
	"sheetdash/internal/resolver"
	"sheetdash/internal/sheets"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SHEETDASH"

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// SheetURL is a full Google Sheets link; its id and gid fill
	// SpreadsheetID and GID when those are unset.
	SheetURL      string   `envconfig:"SHEET_URL"`
	SpreadsheetID string   `envconfig:"SPREADSHEET_ID" validate:"omitempty,spreadsheet_id"`
	GID           string   `envconfig:"GID" validate:"omitempty,numeric"`
	Sheets        []string `envconfig:"SHEETS"`
	APIKey        string   `envconfig:"API_KEY"`

	GeoJSONURL string `envconfig:"GEOJSON_URL" validate:"omitempty,url"`

	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gte=0"`
	CacheSize         int           `envconfig:"CACHE_SIZE" default:"64" validate:"gte=0"`
	FetchTimeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s" validate:"gt=0"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"2" validate:"gt=0"`
	Burst             int           `envconfig:"BURST" default:"2" validate:"gte=1"`
	Concurrency       int           `envconfig:"CONCURRENCY" default:"4" validate:"min=1,max=32"`

	Addr                string `envconfig:"ADDR" default:":8080" validate:"required"`
	LogsFolder          string `envconfig:"LOGS_FOLDER"`
	RulesFile           string `envconfig:"RULES_FILE"`
	EnableMermaidCharts bool   `envconfig:"ENABLE_MERMAID_CHARTS" default:"true"`

	Rules Rules `ignored:"true"`
}

// Rules is the optional YAML rules file. Empty token lists keep the defaults;
// aliases are added on top of the built-in province aliases.
type Rules struct {
	Tokens  classify.Tokens   `yaml:"tokens"`
	Aliases map[string]string `yaml:"aliases"`
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Binary directory first, so an installed server finds its own .env
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	var cfg AppConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolveSheet(); err != nil {
		return nil, err
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
		log.Debug().Str("path", cfg.RulesFile).Msg("Loaded classification rules")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) resolveSheet() error {
	if c.SheetURL == "" {
		return nil
	}
	ref, err := sheets.ParseRef(c.SheetURL)
	if err != nil {
		return fmt.Errorf("failed to parse %s_SHEET_URL: %w", EnvPrefix, err)
	}
	if c.SpreadsheetID == "" {
		c.SpreadsheetID = ref.SpreadsheetID
	}
	if c.GID == "" {
		c.GID = ref.GID
	}
	return nil
}

// LoadRules reads a YAML rules file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("spreadsheet_id", func(fl validator.FieldLevel) bool {
		_, err := sheets.ParseSpreadsheetID(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints and reports every violation at once.
func (c *AppConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Tokens returns the classifier tokens, falling back to the defaults for
// every role the rules file leaves empty.
func (c *AppConfig) Tokens() classify.Tokens {
	t := classify.DefaultTokens()
	if len(c.Rules.Tokens.Date) > 0 {
		t.Date = c.Rules.Tokens.Date
	}
	if len(c.Rules.Tokens.Zone) > 0 {
		t.Zone = c.Rules.Tokens.Zone
	}
	if len(c.Rules.Tokens.Province) > 0 {
		t.Province = c.Rules.Tokens.Province
	}
	return t
}

// ClassifierRules builds the classifier rule list from Tokens.
func (c *AppConfig) ClassifierRules() []classify.Rule {
	return classify.RulesFor(c.Tokens())
}

// Normalizer returns a province normalizer with the built-in aliases plus
// any from the rules file.
func (c *AppConfig) Normalizer() *geo.Normalizer {
	aliases := geo.DefaultAliases()
	for k, v := range c.Rules.Aliases {
		aliases[k] = v
	}
	return geo.NewNormalizer(aliases)
}

// SheetsConfig maps the settings onto the Google Sheets client.
func (c *AppConfig) SheetsConfig(m *metrics.Metrics) sheets.Config {
	return sheets.Config{
		APIKey:            c.APIKey,
		Timeout:           c.FetchTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		Metrics:           m,
	}
}

// ResolverConfig maps the settings onto the source resolver.
func (c *AppConfig) ResolverConfig(m *metrics.Metrics) resolver.Config {
	return resolver.Config{
		SpreadsheetID: c.SpreadsheetID,
		GID:           c.GID,
		Concurrency:   c.Concurrency,
		CacheTTL:      c.CacheTTL,
		CacheSize:     c.CacheSize,
		Metrics:       m,
	}
}
