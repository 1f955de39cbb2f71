package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Best-effort text mining over a free-text answer. These heuristics recover
// soft signals (claimed record counts, contradictory phrasing, suspiciously
// round figures) from prose the reasoning agent produced. Their precision
// and recall are unvalidated: treat every finding as a hint to disclose, not
// a verdict.

var recordCountRe = regexp.MustCompile(`(?i)\b(\d[\d,]*)\s+(?:records?|transactions?|rows?|entries)\b`)

// antonymPairs flag answers that assert a trend and its opposite in one
// breath.
var antonymPairs = [][2]string{
	{"increase", "decrease"},
	{"highest", "lowest"},
	{"most", "least"},
	{"growth", "decline"},
	{"rose", "fell"},
}

// ExtractRecordCounts pulls every "N records"-style figure out of an answer.
// Returns nil when nothing matches.
func ExtractRecordCounts(answer string) []int {
	var counts []int
	for _, m := range recordCountRe.FindAllStringSubmatch(answer, -1) {
		cleaned := strings.ReplaceAll(m[1], ",", "")
		if n, err := strconv.Atoi(cleaned); err == nil {
			counts = append(counts, n)
		}
	}
	return counts
}

// DetectContradictions reports antonym pairs that co-occur in the answer.
func DetectContradictions(answer string) []string {
	lowered := strings.ToLower(answer)
	var found []string
	for _, pair := range antonymPairs {
		if strings.Contains(lowered, pair[0]) && strings.Contains(lowered, pair[1]) {
			found = append(found, fmt.Sprintf("answer mentions both %q and %q", pair[0], pair[1]))
		}
	}
	return found
}

// SuspectRoundNumber flags counts that look like estimates rather than
// actual tallies.
func SuspectRoundNumber(n int) bool {
	return n >= 100 && n%100 == 0
}

// AssessAnswer cross-checks a free-text answer against the actual record
// count of the round that produced it and returns human-readable issues.
// An empty slice means the heuristics found nothing to flag, not that the
// answer is correct.
func AssessAnswer(answer string, actualCount int) []string {
	var issues []string

	for _, claimed := range ExtractRecordCounts(answer) {
		if claimed != actualCount {
			issues = append(issues, fmt.Sprintf("answer claims %d records but the round produced %d", claimed, actualCount))
		}
		if SuspectRoundNumber(claimed) {
			issues = append(issues, fmt.Sprintf("record count %d looks rounded; verify it is an actual tally", claimed))
		}
	}

	issues = append(issues, DetectContradictions(answer)...)
	return issues
}
