package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"sheetdash/internal/dataset"
)

// CSVOptions configures CSV writing behavior.
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so spreadsheet tools detect the encoding.
	BOMPrefix bool
}

// WriteCSV writes the header row followed by every row as standard CSV.
// Missing cells are written as empty fields.
func WriteCSV(w io.Writer, ds dataset.Dataset, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	header, records := ds.Records()
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	log.Debug().Int("rows", len(records)).Int("columns", len(header)).Msg("Wrote CSV export")
	return nil
}
