package textmatch

import "strings"

// Groups maps a canonical label to its textual variants. The built-in table
// covers the country aliases and company suffixes that show up in trade
// transaction data; callers merge their own overrides on top per call.
type Groups map[string][]string

// builtinGroups is the immutable base table. Never mutated after init;
// Merge always copies.
var builtinGroups = Groups{
	"united states": {"us", "usa", "u.s.", "u.s.a.", "united states", "united states of america", "hoa kỳ", "mỹ"},
	"vietnam":       {"vn", "vietnam", "viet nam", "việt nam"},
	"china":         {"cn", "china", "trung quốc", "people's republic of china"},
	"south korea":   {"kr", "korea", "south korea", "republic of korea", "hàn quốc"},
	"japan":         {"jp", "japan", "nhật bản"},
	"germany":       {"de", "germany", "đức", "federal republic of germany"},
	"co ltd":        {"co., ltd.", "co ltd", "co. ltd", "company limited", "limited"},
	"jsc":           {"jsc", "joint stock company", "công ty cổ phần"},
	"corporation":   {"corp", "corp.", "corporation"},
	"incorporated":  {"inc", "inc.", "incorporated"},
}

// BuiltinGroups returns a copy of the built-in synonym table.
func BuiltinGroups() Groups {
	return Groups{}.Merge(builtinGroups)
}

// Merge combines the receiver with override groups into a new table. An
// override sharing a canonical label extends that group's variant list; new
// labels become new groups. Neither input is mutated.
func (g Groups) Merge(overrides Groups) Groups {
	out := make(Groups, len(g)+len(overrides))
	for label, variants := range g {
		out[label] = append([]string(nil), variants...)
	}
	for label, variants := range overrides {
		out[label] = append(out[label], variants...)
	}
	return out
}

// memberOf reports whether a normalized value belongs to a variant list.
// Membership is substring-tolerant in both directions: the value matches if
// its normalized form equals, contains, or is contained by any variant.
func memberOf(normValue string, label string, variants []string) bool {
	if normValue == "" {
		return false
	}
	candidates := append([]string{label}, variants...)
	for _, variant := range candidates {
		nv := normalizeFull(variant)
		if nv == "" {
			continue
		}
		if normValue == nv || containsEither(normValue, nv) {
			return true
		}
	}
	return false
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// SameSynonymGroup reports whether two values should be treated as
// equivalent: either their normalized forms are equal, or some group in the
// table contains both of them.
func SameSynonymGroup(v1, v2 string, groups Groups) bool {
	n1 := normalizeFull(v1)
	n2 := normalizeFull(v2)
	if n1 == "" || n2 == "" {
		return false
	}
	if n1 == n2 {
		return true
	}
	for label, variants := range groups {
		if memberOf(n1, label, variants) && memberOf(n2, label, variants) {
			return true
		}
	}
	return false
}
