package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"sheetdash/internal/dashboard"
	"sheetdash/internal/export"
	"sheetdash/internal/geo"
)

type sheetsResponse struct {
	SpreadsheetID string   `json:"spreadsheetId"`
	Sheets        []string `json:"sheets"`
}

type choroplethResponse struct {
	Status     dashboard.Status `json:"status"`
	Message    string           `json:"message"`
	Choropleth geo.Choropleth   `json:"choropleth"`
	Notes      []string         `json:"notes,omitempty"`
}

func (s *Server) listSheets(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.Sheets(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	render.JSON(w, r, sheetsResponse{SpreadsheetID: s.resolver.SpreadsheetID(), Sheets: names})
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, v)
}

func (s *Server) getChoropleth(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	c, v, err := s.svc.Choropleth(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	render.JSON(w, r, choroplethResponse{Status: v.Status, Message: v.Message, Choropleth: c, Notes: v.Notes})
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("csv"))
	bom := r.URL.Query().Get("bom") == "1"
	if err := export.WriteCSV(w, v.Filtered, export.CSVOptions{BOMPrefix: bom}); err != nil {
		// Headers are already sent; the client sees a truncated body.
		fail(w, r, err)
	}
}

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		title = "Sheet dashboard"
	}
	rpt := export.Report{
		Title:    title,
		Subtitle: fmt.Sprintf("%d of %d rows", v.KPIs.FilteredRows, v.KPIs.TotalRows),
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment("xlsx"))
	if err := export.WriteReport(w, rpt, v.Filtered); err != nil {
		fail(w, r, err)
	}
}

// view parses the request and builds the dashboard, writing a problem
// response on failure.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	req, err := parseRequest(r)
	if err != nil {
		badRequest(w, r, err)
		return dashboard.View{}, false
	}
	v, err := s.svc.Dashboard(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return dashboard.View{}, false
	}
	return v, true
}

func attachment(ext string) string {
	return fmt.Sprintf(`attachment; filename="sheetdash-%s.%s"`, time.Now().Format("20060102-150405"), ext)
}
