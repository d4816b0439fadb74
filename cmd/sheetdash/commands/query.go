package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sheetdash/internal/export"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List the sheet names of the spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		names, err := a.service.Sheets(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var dashFlags = &viewFlags{withLimit: true}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard view as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := dashFlags.request(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		v, err := a.service.Dashboard(cmd.Context(), req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	},
}

var (
	exportFlags  = &viewFlags{}
	exportFormat string
	exportOut    string
	exportTitle  string
	exportBOM    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered rows as CSV or an XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "csv" && exportFormat != "xlsx" {
			return fmt.Errorf("invalid --format %q: want csv or xlsx", exportFormat)
		}
		req, err := exportFlags.request(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		v, err := a.service.Dashboard(cmd.Context(), req)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		if exportFormat == "xlsx" {
			rpt := export.Report{
				Title:    exportTitle,
				Subtitle: fmt.Sprintf("%d of %d rows", v.KPIs.FilteredRows, v.KPIs.TotalRows),
			}
			return export.WriteReport(w, rpt, v.Filtered)
		}
		return export.WriteCSV(w, v.Filtered, export.CSVOptions{BOMPrefix: exportBOM})
	},
}

func init() {
	dashFlags.register(dashboardCmd)
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportTitle, "title", "Sheet dashboard", "report title (xlsx only)")
	exportCmd.Flags().BoolVar(&exportBOM, "bom", false, "prefix CSV output with a UTF-8 BOM")
}
