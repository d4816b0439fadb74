package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"sheetdash/cmd/sheetgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Amount distribution: uniform, weibull")
	outDir := flag.String("out", "./.cache", "Output directory for mock sheets")
	sheets := flag.String("sheets", "Sheet1", "Comma-separated sheet names; one CSV per sheet")
	days := flag.Int("days", 30, "Number of days per sheet")
	perDay := flag.Int("per-day", 5, "Average rows per day")
	seed := flag.Int64("seed", 1, "Random seed")
	start := flag.String("start", "2024-01-01", "First day (YYYY-MM-DD)")
	english := flag.Bool("english", false, "Use English column headers")
	flag.Parse()

	startDay, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Printf("Invalid start date: %v\n", err)
		os.Exit(1)
	}

	for i, sheet := range strings.Split(*sheets, ",") {
		sheet = strings.TrimSpace(sheet)
		if sheet == "" {
			continue
		}
		cfg := engine.GeneratorConfig{
			Scenario:     *scenario,
			Distribution: *distribution,
			Days:         *days,
			PerDay:       *perDay,
			Seed:         *seed + int64(i),
			Start:        startDay.AddDate(0, 0, i*(*days)),
			English:      *english,
		}

		fmt.Printf("Generating sheet '%s' (Scenario: %s, Distribution: %s, Days: %d)...\n", sheet, cfg.Scenario, cfg.Distribution, cfg.Days)

		header, rows := engine.Generate(cfg)
		path, err := engine.Save(*outDir, sheet, header, rows)
		if err != nil {
			fmt.Printf("Failed to save mock data: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(rows), path)
	}

	fmt.Println("Done.")
}
