package engine

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sheetdash/internal/dataset"
	"sheetdash/internal/export"
)

type GeneratorConfig struct {
	Scenario     string // "mild", "chaos" or "drift"
	Distribution string // "uniform" or "weibull"
	Days         int
	PerDay       int // average rows per day
	Seed         int64
	Start        time.Time
	English      bool // English headers instead of Thai
}

var (
	thaiHeader    = []string{"วันที่", "โซน", "จังหวัด", "สินค้า", "ยอดขาย"}
	englishHeader = []string{"date", "zone", "province", "product", "amount"}

	zones    = []string{"เหนือ", "กลาง", "อีสาน", "ใต้"}
	products = []string{"ข้าว", "น้ำตาล", "ยางพารา", "มันสำปะหลัง"}

	// provincesByZone lists canonical names; chaos writes some of them the way
	// people type them (abbreviations, a leading province word).
	provincesByZone = map[string][]string{
		"เหนือ": {"เชียงใหม่", "เชียงราย", "ลำปาง"},
		"กลาง":  {"กรุงเทพมหานคร", "นนทบุรี", "อยุธยา"},
		"อีสาน": {"ขอนแก่น", "อุดรธานี", "นครราชสีมา"},
		"ใต้":   {"สงขลา", "ภูเก็ต", "สุราษฎร์ธานี"},
	}
)

// Generate returns a header and rows of mock sales data. The same config
// always yields the same output.
func Generate(cfg GeneratorConfig) ([]string, [][]string) {
	if cfg.Days <= 0 {
		cfg.Days = 30
	}
	if cfg.PerDay <= 0 {
		cfg.PerDay = 5
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	header := thaiHeader
	if cfg.English {
		header = englishHeader
	}

	var rows [][]string
	for d := 0; d < cfg.Days; d++ {
		day := cfg.Start.AddDate(0, 0, d)

		n := cfg.PerDay + rng.Intn(3) - 1
		if cfg.Scenario == "drift" {
			// Volume ramps up to double over the window.
			n = int(float64(n) * (1 + float64(d)/float64(cfg.Days)))
		}

		for i := 0; i < n; i++ {
			zone := zones[rng.Intn(len(zones))]
			provinces := provincesByZone[zone]
			province := provinces[rng.Intn(len(provinces))]
			product := products[rng.Intn(len(products))]

			amount := sampleAmount(rng, cfg)
			amountCell := formatAmount(amount)
			dateCell := day.Format("2006-01-02")

			if cfg.Scenario == "chaos" {
				province = messyProvince(rng, province)
				switch r := rng.Float64(); {
				case r < 0.05:
					amountCell = ""
				case r < 0.08:
					amountCell = "n/a"
				case r < 0.10:
					dateCell = day.Format("02/01/2006")
				}
			}
			rows = append(rows, []string{dateCell, zone, province, product, amountCell})
		}
	}
	return header, rows
}

func sampleAmount(rng *rand.Rand, cfg GeneratorConfig) float64 {
	base := 500 + rng.Float64()*1500
	if cfg.Distribution == "weibull" {
		base = 1000 * weibullSample(rng, 1.5, 1.0)
	}
	if cfg.Scenario == "chaos" && rng.Float64() < 0.05 {
		base *= 10 // Controlled Black Swans
	}
	return math.Round(base*100) / 100
}

func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if v >= 1000 {
		// Sheets users type thousands separators.
		whole, frac := s[:len(s)-3], s[len(s)-3:]
		for i := len(whole) - 3; i > 0; i -= 3 {
			whole = whole[:i] + "," + whole[i:]
		}
		s = whole + frac
	}
	return s
}

func messyProvince(rng *rand.Rand, province string) string {
	if province == "กรุงเทพมหานคร" {
		return []string{"กทม", "กทม.", "กรุงเทพฯ", province}[rng.Intn(4)]
	}
	if rng.Float64() < 0.3 {
		return "จังหวัด" + province
	}
	return province
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes rows to outDir/<sheet>.csv and returns the path.
func Save(outDir, sheet string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outDir, fmt.Sprintf("%s.csv", sheet))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ds := dataset.FromRecords(header, rows, nil)
	if err := export.WriteCSV(f, ds, export.CSVOptions{}); err != nil {
		return "", err
	}
	return path, f.Close()
}
