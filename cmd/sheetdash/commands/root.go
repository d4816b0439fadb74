package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sheetdash/internal/config"
	"sheetdash/internal/geo"
	"sheetdash/internal/logging"
	"sheetdash/internal/metrics"
	"sheetdash/internal/resolver"
	"sheetdash/internal/service"
	"sheetdash/internal/sheets"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	sheetURL string
	cfg      *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "sheetdash",
	Short: "sheetdash turns a public Google Sheet into a filterable dashboard",
	Long: `sheetdash reads a published Google Sheet as CSV, detects which columns hold dates,
zones, provinces, categories and amounts, and serves filtered aggregations, daily trends
and a province map over HTTP, MCP or the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if sheetURL != "" {
			ref, err := sheets.ParseRef(sheetURL)
			if err != nil {
				return err
			}
			cfg.SpreadsheetID, cfg.GID = ref.SpreadsheetID, ref.GID
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("spreadsheet", cfg.SpreadsheetID).
			Msg("sheetdash starting")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&sheetURL, "sheet-url", "", "Google Sheets URL or spreadsheet id (overrides SHEETDASH_SHEET_URL)")
	rootCmd.AddCommand(serveCmd, mcpCmd, sheetsCmd, dashboardCmd, exportCmd)
}

// app is the wired object graph shared by the subcommands.
type app struct {
	metrics  *metrics.Metrics
	resolver *resolver.Resolver
	service  *service.Service
}

func newApp(cmd *cobra.Command) (*app, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet configured: set SHEETDASH_SHEET_URL or pass --sheet-url")
	}
	m := metrics.New()

	client, err := sheets.NewClient(cmd.Context(), cfg.SheetsConfig(m))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	res := resolver.New(client, cfg.ResolverConfig(m))

	svc := service.New(service.Config{
		Resolver:      res,
		Boundaries:    geo.NewFetcher(cfg.FetchTimeout, m),
		Normalizer:    cfg.Normalizer(),
		GeoJSONURL:    cfg.GeoJSONURL,
		Rules:         cfg.ClassifierRules(),
		DefaultSheets: cfg.Sheets,
		Mermaid:       cfg.EnableMermaidCharts,
		CacheTTL:      max(cfg.CacheTTL, time.Hour),
		Metrics:       m,
	})
	return &app{metrics: m, resolver: res, service: svc}, nil
}
