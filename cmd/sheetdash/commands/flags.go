package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetdash/internal/classify"
	"sheetdash/internal/dashboard"
	"sheetdash/internal/service"
	"sheetdash/internal/stats"
)

// viewFlags are the sheet selection and filter flags shared by dashboard and
// export. A role flag that is given narrows that role, even to nothing.
type viewFlags struct {
	sheets    []string
	all       bool
	gid       string
	roles     map[classify.Role]*[]string
	min, max  float64
	sum       bool
	bucket    string
	limit     int
	withLimit bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.sheets, "sheet", nil, "sheet name to load (repeatable; more than one combines sheets)")
	fs.BoolVar(&f.all, "all", false, "load every sheet of the spreadsheet")
	fs.StringVar(&f.gid, "gid", "", "numeric grid id of a single sheet")
	f.roles = make(map[classify.Role]*[]string)
	for _, role := range []classify.Role{classify.RoleZone, classify.RoleProvince, classify.RoleCategory, classify.RoleDate} {
		values := new([]string)
		f.roles[role] = values
		fs.StringSliceVar(values, string(role), nil, fmt.Sprintf("keep rows whose %s column is one of these values", role))
	}
	fs.Float64Var(&f.min, "min", 0, "inclusive lower bound on the numeric column")
	fs.Float64Var(&f.max, "max", 0, "inclusive upper bound on the numeric column")
	fs.BoolVar(&f.sum, "sum", false, "sum the numeric column instead of counting rows")
	fs.StringVar(&f.bucket, "bucket", "day", "period width: day, week or month")
	if f.withLimit {
		fs.IntVar(&f.limit, "limit", dashboard.DefaultTableLimit, "rows of the filtered table to include (-1 for all)")
	}
}

func (f *viewFlags) request(cmd *cobra.Command) (service.Request, error) {
	req := service.Request{Sheets: f.sheets, AllSheets: f.all, GID: f.gid}
	opts := dashboard.Options{Sum: f.sum, TableLimit: f.limit}

	for role, values := range f.roles {
		if !cmd.Flags().Changed(string(role)) {
			continue
		}
		if opts.Selections == nil {
			opts.Selections = make(map[classify.Role][]string)
		}
		opts.Selections[role] = *values
	}
	if cmd.Flags().Changed("min") {
		v := f.min
		opts.Min = &v
	}
	if cmd.Flags().Changed("max") {
		v := f.max
		opts.Max = &v
	}

	opts.Bucket = stats.ParseBucket(f.bucket)
	if string(opts.Bucket) != f.bucket {
		return req, fmt.Errorf("invalid --bucket %q: want day, week or month", f.bucket)
	}
	req.Options = opts
	return req, nil
}
