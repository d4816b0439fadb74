package sheets

import (
	"encoding/json"
	"regexp"
	"strings"
)

// sheetNamePattern matches the quoted sheet-title tokens of the htmlview
// page: `"name":"Sheet1"` in the embedded JSON and `name: "Sheet1"` in the
// tab bootstrap script.
var sheetNamePattern = regexp.MustCompile(`"?name"?\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ScrapeSheetNames extracts sheet titles from an htmlview page. Escaped
// characters are decoded and duplicates dropped in first-seen order. Zero
// matches yield an empty list.
func ScrapeSheetNames(page []byte) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, m := range sheetNamePattern.FindAllSubmatch(page, -1) {
		name := unescape(string(m[1]))
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
