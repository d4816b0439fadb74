package geo

import "strings"

// ProvincePrefix is the Thai word for "province" that often precedes names.
const ProvincePrefix = "จังหวัด"

// Bangkok is the canonical name of the capital as used by boundary data.
const Bangkok = "กรุงเทพมหานคร"

// DefaultAliases maps common abbreviations to canonical province names.
func DefaultAliases() map[string]string {
	return map[string]string{
		"กทม":     Bangkok,
		"กทม.":    Bangkok,
		"กรุงเทพ":  Bangkok,
		"กรุงเทพฯ": Bangkok,
	}
}

// Normalizer canonicalizes province names before matching them against
// boundary feature names.
type Normalizer struct {
	aliases map[string]string
	prefix  string
}

// NewNormalizer creates a normalizer. A nil alias map uses DefaultAliases.
func NewNormalizer(aliases map[string]string) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	cp := make(map[string]string, len(aliases))
	for k, v := range aliases {
		cp[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return &Normalizer{aliases: cp, prefix: ProvincePrefix}
}

// Normalize trims name, resolves aliases, strips a leading province word and
// resolves aliases again. Normalizing a normalized name returns it unchanged.
func (n *Normalizer) Normalize(name string) string {
	s := strings.TrimSpace(name)
	if v, ok := n.aliases[s]; ok {
		return v
	}
	for {
		rest, ok := strings.CutPrefix(s, n.prefix)
		rest = strings.TrimSpace(rest)
		if !ok || rest == "" {
			break
		}
		s = rest
	}
	if v, ok := n.aliases[s]; ok {
		return v
	}
	return s
}
