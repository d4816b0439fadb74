package export

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"sheetdash/internal/dataset"
)

// ReportRows is the fixed number of data rows in a report.
const ReportRows = 20

const reportSheet = "Report"

// Report describes the fixed one-page report layout: a title row, an
// optional subtitle, the header and the first ReportRows data rows.
type Report struct {
	Title    string
	Subtitle string
}

const (
	titleRow  = 1
	headerRow = 3
)

// WriteReport renders ds into an XLSX workbook and writes it to w.
func WriteReport(w io.Writer, rpt Report, ds dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeTitle(f, rpt, len(ds.Columns)); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, c := range ds.Columns {
		if err := setCell(f, col, headerRow, c.Name); err != nil {
			return err
		}
	}
	if len(ds.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(ds.Columns), headerRow)
		if err := f.SetCellStyle(reportSheet, first, last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	head := ds.Head(ReportRows)
	for i, row := range head.Rows {
		for col := range ds.Columns {
			v := row.Get(col)
			var cell any = v.String()
			if v.Kind == dataset.Number {
				cell = v.Num
			}
			if err := setCell(f, col, headerRow+1+i, cell); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Debug().Int("rows", head.Len()).Str("title", rpt.Title).Msg("Wrote XLSX report")
	return nil
}

func writeTitle(f *excelize.File, rpt Report, width int) error {
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	if err := setCell(f, 0, titleRow, rpt.Title); err != nil {
		return err
	}
	cell, _ := excelize.CoordinatesToCellName(1, titleRow)
	if err := f.SetCellStyle(reportSheet, cell, cell, titleStyle); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}
	if width > 1 {
		last, _ := excelize.CoordinatesToCellName(width, titleRow)
		if err := f.MergeCell(reportSheet, cell, last); err != nil {
			return fmt.Errorf("failed to merge title: %w", err)
		}
	}
	if rpt.Subtitle != "" {
		if err := setCell(f, 0, titleRow+1, rpt.Subtitle); err != nil {
			return err
		}
	}
	return nil
}

// setCell writes value at a zero-based column and one-based row.
func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("invalid cell (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(reportSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", cell, err)
	}
	return nil
}
