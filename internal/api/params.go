package api

import (
	"fmt"
	"net/http"
	"strconv"

	"sheetdash/internal/classify"
	"sheetdash/internal/dashboard"
	"sheetdash/internal/service"
	"sheetdash/internal/stats"
)

// filterRoles are the roles accepted as query parameters. A parameter that is
// present narrows its role to the listed values; present with no non-empty
// value it selects nothing.
var filterRoles = []classify.Role{
	classify.RoleZone,
	classify.RoleProvince,
	classify.RoleCategory,
	classify.RoleDate,
}

func parseRequest(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{
		Sheets: nonEmpty(q["sheet"]),
		GID:    q.Get("gid"),
	}

	var err error
	if req.AllSheets, err = parseBool(q.Get("all")); err != nil {
		return req, fmt.Errorf("invalid all: %w", err)
	}

	opts := dashboard.Options{}
	for _, role := range filterRoles {
		if values, ok := q[string(role)]; ok {
			if opts.Selections == nil {
				opts.Selections = make(map[classify.Role][]string)
			}
			opts.Selections[role] = nonEmpty(values)
		}
	}
	if opts.Min, err = parseFloat(q.Get("min")); err != nil {
		return req, fmt.Errorf("invalid min: %w", err)
	}
	if opts.Max, err = parseFloat(q.Get("max")); err != nil {
		return req, fmt.Errorf("invalid max: %w", err)
	}
	if opts.Sum, err = parseBool(q.Get("sum")); err != nil {
		return req, fmt.Errorf("invalid sum: %w", err)
	}
	if b := q.Get("bucket"); b != "" {
		opts.Bucket = stats.ParseBucket(b)
		if string(opts.Bucket) != b {
			return req, fmt.Errorf("invalid bucket %q: want day, week or month", b)
		}
	}
	if l := q.Get("limit"); l != "" {
		if opts.TableLimit, err = strconv.Atoi(l); err != nil {
			return req, fmt.Errorf("invalid limit: %w", err)
		}
	}
	req.Options = opts
	return req, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
