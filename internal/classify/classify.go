package classify

import (
	"slices"
	"strings"

	"sheetdash/internal/dataset"
)

// Role is the semantic meaning assigned to a column.
type Role string

const (
	RoleDate     Role = "date"
	RoleZone     Role = "zone"
	RoleProvince Role = "province"
	RoleCategory Role = "category"
	RoleNumeric  Role = "numeric"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleDate, RoleZone, RoleProvince, RoleCategory, RoleNumeric}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllRoles, r) {
		return r, true
	}
	return "", false
}

// Rule proposes a role for a column when Match fires.
type Rule struct {
	Name  string
	Role  Role
	Match func(col dataset.Column) bool
}

// NameContains fires when the lowercased header contains any of the tokens.
// A token starting with "^" only matches at the start of the header.
func NameContains(name string, role Role, tokens ...string) Rule {
	lowered := make([]string, len(tokens))
	for i, t := range tokens {
		lowered[i] = strings.ToLower(t)
	}
	return Rule{
		Name: name,
		Role: role,
		Match: func(col dataset.Column) bool {
			return matchesAny(strings.ToLower(col.Name), lowered)
		},
	}
}

// TypeIs fires when the column's inferred kind equals kind.
func TypeIs(name string, role Role, kind dataset.Kind) Rule {
	return Rule{
		Name: name,
		Role: role,
		Match: func(col dataset.Column) bool {
			return col.Type == kind
		},
	}
}

// Tokens holds the header keywords used by the name rules. See NameContains
// for the "^" anchor.
type Tokens struct {
	Date     []string `yaml:"date"`
	Zone     []string `yaml:"zone"`
	Province []string `yaml:"province"`
}

// DefaultTokens recognises English and Thai headers.
func DefaultTokens() Tokens {
	return Tokens{
		Date:     []string{"date", "วันที่", "^วัน"},
		Zone:     []string{"zone", "โซน", "เขต"},
		Province: []string{"province", "จังหวัด"},
	}
}

// RulesFor builds the standard priority list from a token set: date, zone and
// province names first, then numeric and text types.
func RulesFor(t Tokens) []Rule {
	return []Rule{
		NameContains("date-name", RoleDate, t.Date...),
		NameContains("zone-name", RoleZone, t.Zone...),
		NameContains("province-name", RoleProvince, t.Province...),
		TypeIs("numeric-type", RoleNumeric, dataset.Number),
		TypeIs("text-type", RoleCategory, dataset.String),
	}
}

// DefaultRules is RulesFor(DefaultTokens()).
func DefaultRules() []Rule {
	return RulesFor(DefaultTokens())
}

// Classify assigns at most one column to each role. Columns are visited in
// order; the first rule that fires decides the column's candidate role. A
// column whose candidate role is already taken stays unassigned, it does not
// fall through to later rules.
func Classify(columns []dataset.Column, rules []Rule) Roles {
	assigned := make(map[Role]string)
	for _, col := range columns {
		for _, rule := range rules {
			if rule.Match == nil || !rule.Match(col) {
				continue
			}
			if _, taken := assigned[rule.Role]; !taken {
				assigned[rule.Role] = col.Name
			}
			break
		}
	}
	return Roles{m: assigned}
}

func matchesAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if prefix, anchored := strings.CutPrefix(k, "^"); anchored {
			if prefix != "" && strings.HasPrefix(s, prefix) {
				return true
			}
			continue
		}
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
