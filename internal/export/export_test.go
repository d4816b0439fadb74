package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetdash/internal/dataset"
	"sheetdash/internal/filter"
)

func sample() dataset.Dataset {
	return dataset.FromRecords(
		[]string{"date", "zone", "note", "amount"},
		[][]string{
			{"2024-01-01", "X", `says "hi", twice`, "1,024"},
			{"2024-01-02", "Y", "", "5"},
			{"2024-01-03", "X", "line\nbreak", ""},
		},
		nil,
	)
}

func multiset(ds dataset.Dataset) []string {
	_, records := ds.Records()
	var out []string
	for _, r := range records {
		out = append(out, strings.Join(r, "\x1f"))
	}
	sort.Strings(out)
	return out
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), CSVOptions{}))

	want := "date,zone,note,amount\n" +
		"2024-01-01,X,\"says \"\"hi\"\", twice\",\"1,024\"\n" +
		"2024-01-02,Y,,5\n" +
		"2024-01-03,X,\"line\nbreak\",\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_BOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), CSVOptions{BOMPrefix: true}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	parsed, err := dataset.ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, "date", parsed.Columns[0].Name)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	filtered := filter.Apply(sample(), filter.Selection{"zone": {"X": true}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, filtered, CSVOptions{}))
	parsed, err := dataset.ParseCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, filtered.ColumnNames(), parsed.ColumnNames())
	assert.Equal(t, multiset(filtered), multiset(parsed))
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	ds := dataset.FromRecords([]string{"a", "b"}, nil, nil)
	require.NoError(t, WriteCSV(&buf, ds, CSVOptions{}))
	assert.Equal(t, "a,b\n", buf.String())
}

func TestWriteReport(t *testing.T) {
	var records [][]string
	for i := 0; i < 30; i++ {
		records = append(records, []string{fmt.Sprintf("2024-01-%02d", i+1), "X", fmt.Sprint(i)})
	}
	ds := dataset.FromRecords([]string{"date", "zone", "amount"}, records, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, Report{Title: "Sales", Subtitle: "30 rows"}, ds))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2+1+ReportRows)
	assert.Equal(t, "Sales", rows[0][0])
	assert.Equal(t, "30 rows", rows[1][0])
	assert.Equal(t, []string{"date", "zone", "amount"}, rows[2])
	assert.Equal(t, []string{"2024-01-01", "X", "0"}, rows[3])
	assert.Equal(t, []string{"2024-01-20", "X", "19"}, rows[len(rows)-1])
}

func TestWriteReport_FewRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, Report{Title: "Small"}, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	// title, blank subtitle row, header, three rows
	assert.Len(t, rows, 6)
	assert.Equal(t, "1024", rows[3][3])
}
