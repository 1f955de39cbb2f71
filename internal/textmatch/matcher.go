package textmatch

import "strings"

// Mode is the comparison kind requested by a filter operator.
type Mode int

const (
	ModeEquals Mode = iota
	ModeContains
	ModePrefix
)

// MatchOptions select the match strategy and the fuzzy edit-distance bound.
type MatchOptions struct {
	Strategy       string // "exact", "case-insensitive", "normalized", "fuzzy"
	FuzzyThreshold int    // used for "fuzzy"; <=0 means the default of 2
}

// Matches compares a field value against a filter value under the given
// comparison mode and strategy. Callers are responsible for null handling;
// this function only sees concrete strings.
//
// Fuzzy matching never loses exact/contains behavior: a fuzzy comparison
// succeeds when the edit distance is within the threshold or when one
// normalized string contains the other.
func Matches(fieldValue, filterValue string, mode Mode, opts MatchOptions) bool {
	threshold := opts.FuzzyThreshold
	if threshold <= 0 {
		threshold = 2
	}

	var normOpts Options
	switch opts.Strategy {
	case "exact":
		normOpts = Options{CaseSensitive: true, TrimWhitespace: true}
	case "case-insensitive":
		normOpts = DefaultOptions()
	default: // "normalized", "fuzzy" and anything unrecognized
		normOpts = Options{TrimWhitespace: true, RemoveDiacritics: true}
	}

	a := Normalize(fieldValue, normOpts)
	b := Normalize(filterValue, normOpts)

	if opts.Strategy == "fuzzy" {
		if containsEither(a, b) {
			return true
		}
		return EditDistance(a, b) <= threshold
	}

	switch mode {
	case ModeContains:
		return strings.Contains(a, b)
	case ModePrefix:
		return strings.HasPrefix(a, b)
	default:
		return a == b
	}
}
