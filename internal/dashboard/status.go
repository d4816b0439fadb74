package dashboard

// Status classifies the outcome of a render pass. Every value other than
// StatusOK is a valid, non-fatal empty state.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoSheets  Status = "no_sheets"
	StatusNoRows    Status = "no_rows"
	StatusNoMatches Status = "no_matches"
)

// Message is the user-facing text for the status.
func (s Status) Message() string {
	switch s {
	case StatusNoSheets:
		return "No sheets were found in this spreadsheet."
	case StatusNoRows:
		return "The selected sheets contain no data rows."
	case StatusNoMatches:
		return "No rows match the current filters."
	default:
		return "Dashboard ready."
	}
}
