package engine

import (
	"os"
	"reflect"
	"testing"
	"time"

	"sheetdash/internal/classify"
	"sheetdash/internal/dataset"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Scenario: "chaos", Days: 10, PerDay: 4, Seed: 42}
	h1, r1 := Generate(cfg)
	h2, r2 := Generate(cfg)
	if !reflect.DeepEqual(h1, h2) || !reflect.DeepEqual(r1, r2) {
		t.Fatal("same seed produced different output")
	}

	_, r3 := Generate(GeneratorConfig{Scenario: "chaos", Days: 10, PerDay: 4, Seed: 7})
	if reflect.DeepEqual(r1, r3) {
		t.Error("different seeds produced identical output")
	}
}

func TestGenerate_ClassifiesAllRoles(t *testing.T) {
	for _, english := range []bool{false, true} {
		header, rows := Generate(GeneratorConfig{Scenario: "mild", Days: 5, Seed: 1, English: english})
		ds := dataset.FromRecords(header, rows, nil)
		roles := classify.Classify(ds.Columns, classify.DefaultRules())
		for _, role := range classify.AllRoles {
			if !roles.Has(role) {
				t.Errorf("english=%v: role %s unassigned", english, role)
			}
		}
	}
}

func TestGenerate_Drift(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, rows := Generate(GeneratorConfig{Scenario: "drift", Days: 20, PerDay: 10, Seed: 3, Start: start})

	perDay := map[string]int{}
	for _, r := range rows {
		perDay[r[0]]++
	}
	first := perDay[start.Format("2006-01-02")]
	last := perDay[start.AddDate(0, 0, 19).Format("2006-01-02")]
	if last <= first {
		t.Errorf("drift should ramp volume: first=%d last=%d", first, last)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "12.50"},
		{999.99, "999.99"},
		{1000, "1,000.00"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
		if f, ok := dataset.ParseNumber(tt.want); !ok || f <= 0 {
			t.Errorf("%q does not parse back", tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	header, rows := Generate(GeneratorConfig{Days: 3, Seed: 9})
	path, err := Save(t.TempDir(), "Jan", header, rows)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ds, err := dataset.ParseCSV(f)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != len(rows) {
		t.Errorf("read back %d rows, want %d", ds.Len(), len(rows))
	}
	if !reflect.DeepEqual(ds.ColumnNames(), header) {
		t.Errorf("header = %v", ds.ColumnNames())
	}
}
