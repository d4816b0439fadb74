package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"sheetdash/internal/service"
	"sheetdash/internal/sheets"
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Render implements render.Renderer.
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

func problem(r *http.Request, status int, detail string) *Problem {
	var title, kind string
	switch status {
	case http.StatusBadRequest:
		title, kind = "Bad Request", "/errors/bad-request"
	case http.StatusNotFound:
		title, kind = "Not Found", "/errors/not-found"
	case http.StatusNotImplemented:
		title, kind = "Not Implemented", "/errors/not-implemented"
	case http.StatusBadGateway:
		title, kind = "Bad Gateway", "/errors/upstream"
	default:
		title, kind = http.StatusText(status), "/errors/internal"
	}
	return &Problem{
		Type:      kind,
		Title:     title,
		Status:    status,
		Detail:    detail,
		RequestID: middleware.GetReqID(r.Context()),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoGeoJSON):
		return http.StatusNotImplemented
	case errors.Is(err, sheets.ErrInvalidSpreadsheetID):
		return http.StatusInternalServerError
	case service.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	_ = render.Render(w, r, problem(r, http.StatusBadRequest, err.Error()))
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log.Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request failed")
	_ = render.Render(w, r, problem(r, status, err.Error()))
}
