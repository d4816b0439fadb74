package dataset

import (
	"strings"
	"testing"
	"time"
)

func TestParseCSV_TrimsHeadersAndInfersKinds(t *testing.T) {
	payload := "\uFEFF  วันที่ ,Zone , amount,note\n" +
		"2024-01-01,X,10,a\n" +
		"2024-01-02,Y,\"1,024\",\n" +
		"not a date,X,,c\n"

	ds, err := ParseCSV(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	wantNames := []string{"วันที่", "Zone", "amount", "note"}
	for i, name := range ds.ColumnNames() {
		if name != wantNames[i] {
			t.Errorf("column %d = %q, want %q", i, name, wantNames[i])
		}
	}

	tests := []struct {
		column string
		want   Kind
	}{
		{"วันที่", String}, // one unparseable cell demotes the column
		{"Zone", String},
		{"amount", Number},
		{"note", String},
	}
	for _, tt := range tests {
		col, ok := ds.Column(tt.column)
		if !ok {
			t.Fatalf("column %q not found", tt.column)
		}
		if col.Type != tt.want {
			t.Errorf("Column(%q).Type = %v, want %v", tt.column, col.Type, tt.want)
		}
	}

	amount := ds.Index("amount")
	if got, _ := ds.Rows[1].Get(amount).AsFloat(); got != 1024 {
		t.Errorf("amount row 1 = %v, want 1024", got)
	}
	if !ds.Rows[2].Get(amount).IsMissing() {
		t.Errorf("blank amount should be missing")
	}
	if !ds.Rows[1].Get(ds.Index("note")).IsMissing() {
		t.Errorf("blank note should be missing, not empty string")
	}
}

func TestParseCSV_Empty(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err != ErrNoHeader {
		t.Errorf("ParseCSV(\"\") error = %v, want ErrNoHeader", err)
	}
}

func TestParseCSV_RaggedRows(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader("a,b,c\n1,2\n3,4,5,6\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}
	if !ds.Rows[0].Get(2).IsMissing() {
		t.Errorf("short row should be padded with missing")
	}
	if len(ds.Rows[1].Values) != 3 {
		t.Errorf("long row should be truncated to 3 values, got %d", len(ds.Rows[1].Values))
	}
}

func TestInferKind_Date(t *testing.T) {
	ds := FromRecords([]string{"d"}, [][]string{{"2024-01-01"}, {"15/01/2024"}, {""}}, nil)
	if ds.Columns[0].Type != Date {
		t.Fatalf("Type = %v, want date", ds.Columns[0].Type)
	}
	got, ok := ds.Rows[1].Get(0).AsTime()
	if !ok {
		t.Fatal("AsTime() not ok")
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AsTime() = %v, want %v", got, want)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-04", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"03/04/2024", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), true},
		{"1/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-04 13:45:00", time.Date(2024, 3, 4, 13, 45, 0, 0, time.UTC), true},
		{"02 Jan 2025", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"n/a", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValue_Coercion(t *testing.T) {
	if _, ok := StringValue("abc").AsFloat(); ok {
		t.Error("text should not coerce to number")
	}
	if f, ok := StringValue(" 12.5 ").AsFloat(); !ok || f != 12.5 {
		t.Errorf("AsFloat() = %v, %v, want 12.5, true", f, ok)
	}
	if !StringValue("   ").IsMissing() {
		t.Error("blank string should be missing")
	}
	if NumberValue(3).String() != "3" {
		t.Errorf("NumberValue(3).String() = %q", NumberValue(3).String())
	}
}

func TestParseNumber_RejectsNonFinite(t *testing.T) {
	for _, in := range []string{"NaN", "nan", "Inf", "-inf", "+Infinity", "infinity"} {
		if f, ok := ParseNumber(in); ok {
			t.Errorf("ParseNumber(%q) = %v, true, want false", in, f)
		}
	}
	if f, ok := ParseNumber("1e3"); !ok || f != 1000 {
		t.Errorf("ParseNumber(\"1e3\") = %v, %v, want 1000, true", f, ok)
	}

	ds := FromRecords([]string{"amount"}, [][]string{{"10"}, {"NaN"}, {"inf"}}, nil)
	col, _ := ds.Column("amount")
	if col.Type != String {
		t.Errorf("amount Type = %v, want String", col.Type)
	}
	if _, ok := ds.Rows[1].Get(0).AsFloat(); ok {
		t.Error("NaN cell should not coerce to a number")
	}
}

func TestConcat_UnionAndProvenance(t *testing.T) {
	a := FromRecords([]string{"date", "zone"}, [][]string{{"2024-01-01", "X"}}, nil)
	b := FromRecords([]string{"date", "amount"}, [][]string{{"2024-01-02", "5"}, {"2024-01-03", "7"}}, nil)

	ds := Concat(Part{Name: "Jan", Data: a}, Part{Name: "Feb", Data: b})

	if got := strings.Join(ds.ColumnNames(), ","); got != "date,zone,amount" {
		t.Fatalf("columns = %s, want date,zone,amount", got)
	}
	if ds.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ds.Len())
	}
	if ds.Rows[0].Source != "Jan" || ds.Rows[2].Source != "Feb" {
		t.Errorf("sources = %q,%q", ds.Rows[0].Source, ds.Rows[2].Source)
	}
	if !ds.Rows[0].Get(ds.Index("amount")).IsMissing() {
		t.Error("absent column should be missing")
	}
	if !ds.Rows[1].Get(ds.Index("zone")).IsMissing() {
		t.Error("absent column should be missing")
	}
	if col, _ := ds.Column("date"); col.Type != Date {
		t.Errorf("date column type = %v, want date", col.Type)
	}
	if got := strings.Join(ds.Sources(), ","); got != "Jan,Feb" {
		t.Errorf("Sources() = %s", got)
	}
}

func TestConcat_Empty(t *testing.T) {
	ds := Concat()
	if ds.Len() != 0 || len(ds.Columns) != 0 {
		t.Errorf("Concat() = %d rows, %d cols, want empty", ds.Len(), len(ds.Columns))
	}
}

func TestIndex_DuplicateHeaderFirstWins(t *testing.T) {
	ds := FromRecords([]string{"a", " a "}, [][]string{{"1", "2"}}, nil)
	if ds.Index("a") != 0 {
		t.Errorf("Index(a) = %d, want 0", ds.Index("a"))
	}
}
