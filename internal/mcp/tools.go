package mcp

import (
	"bytes"
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"sheetdash/internal/classify"
	"sheetdash/internal/dashboard"
	"sheetdash/internal/export"
	"sheetdash/internal/service"
	"sheetdash/internal/stats"
)

// toolTableLimit keeps dashboard payloads small enough for a model context.
const toolTableLimit = 20

type listSheetsInput struct{}

// dashboardInput selects sheets and narrows rows. A role list that is present
// (even empty) filters on that role; an absent one does not.
type dashboardInput struct {
	Sheets   []string `json:"sheets,omitempty" jsonschema:"Sheet names to load; more than one combines them and tags rows by sheet"`
	All      bool     `json:"all,omitempty" jsonschema:"Load every sheet of the spreadsheet"`
	GID      string   `json:"gid,omitempty" jsonschema:"Numeric grid id of a single sheet"`
	Zone     []string `json:"zone,omitempty" jsonschema:"Keep rows whose zone column is one of these values"`
	Province []string `json:"province,omitempty" jsonschema:"Keep rows whose province column is one of these values"`
	Category []string `json:"category,omitempty" jsonschema:"Keep rows whose category column is one of these values"`
	Date     []string `json:"date,omitempty" jsonschema:"Keep rows whose raw date text is one of these values"`
	Min      *float64 `json:"min,omitempty" jsonschema:"Inclusive lower bound on the numeric column"`
	Max      *float64 `json:"max,omitempty" jsonschema:"Inclusive upper bound on the numeric column"`
	Sum      bool     `json:"sum,omitempty" jsonschema:"Sum the numeric column instead of counting rows"`
	Bucket   string   `json:"bucket,omitempty" jsonschema:"Period width: day (default), week or month"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.inner, &sdk.Tool{
		Name:        "list_sheets",
		Description: "List the sheet names of the configured Google spreadsheet. Guidance: pass names from this list to 'get_dashboard' to combine several sheets.",
	}, s.handleListSheets)

	sdk.AddTool(s.inner, &sdk.Tool{
		Name: "get_dashboard",
		Description: "Build the dashboard for one or more sheets: detected column roles, KPIs, the per-day series with its latest trend, " +
			"per-sheet trends and category/province/zone breakdowns. The status field tells apart empty states (no_sheets, no_rows, no_matches). " +
			"Only the first rows of the filtered table are included; use 'export_csv' for all of them.",
	}, s.handleGetDashboard)

	sdk.AddTool(s.inner, &sdk.Tool{
		Name:        "export_csv",
		Description: "Return the filtered rows as CSV text with a header row. Accepts the same arguments as 'get_dashboard'.",
	}, s.handleExportCSV)
}

func (s *Server) handleListSheets(ctx context.Context, _ *sdk.CallToolRequest, _ listSheetsInput) (*sdk.CallToolResult, any, error) {
	names, err := s.svc.Sheets(ctx)
	if err != nil {
		return nil, nil, err
	}
	if names == nil {
		names = []string{}
	}
	return textResult(formatResult(map[string]any{"sheets": names})), nil, nil
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *sdk.CallToolRequest, in dashboardInput) (*sdk.CallToolResult, any, error) {
	req, err := in.request()
	if err != nil {
		return nil, nil, err
	}
	req.Options.TableLimit = toolTableLimit
	v, err := s.svc.Dashboard(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	charts := v.Charts
	v.Charts = dashboard.Charts{}
	texts := []string{formatResult(v)}
	if s.mermaid {
		for _, c := range []string{charts.Daily, charts.BySource, charts.Categories, charts.Provinces} {
			if c != "" {
				texts = append(texts, c)
			}
		}
	}
	log.Debug().Str("status", string(v.Status)).Int("blocks", len(texts)).Msg("get_dashboard")
	return textResult(texts...), nil, nil
}

func (s *Server) handleExportCSV(ctx context.Context, _ *sdk.CallToolRequest, in dashboardInput) (*sdk.CallToolResult, any, error) {
	req, err := in.request()
	if err != nil {
		return nil, nil, err
	}
	v, err := s.svc.Dashboard(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, v.Filtered, export.CSVOptions{}); err != nil {
		return nil, nil, err
	}
	return textResult(buf.String()), nil, nil
}

func (in dashboardInput) request() (service.Request, error) {
	req := service.Request{Sheets: in.Sheets, AllSheets: in.All, GID: in.GID}
	opts := dashboard.Options{Min: in.Min, Max: in.Max, Sum: in.Sum}

	for role, values := range map[classify.Role][]string{
		classify.RoleZone:     in.Zone,
		classify.RoleProvince: in.Province,
		classify.RoleCategory: in.Category,
		classify.RoleDate:     in.Date,
	} {
		if values == nil {
			continue
		}
		if opts.Selections == nil {
			opts.Selections = make(map[classify.Role][]string)
		}
		opts.Selections[role] = values
	}

	if in.Bucket != "" {
		opts.Bucket = stats.ParseBucket(in.Bucket)
		if string(opts.Bucket) != in.Bucket {
			return req, fmt.Errorf("invalid bucket %q: want day, week or month", in.Bucket)
		}
	}
	req.Options = opts
	return req, nil
}
