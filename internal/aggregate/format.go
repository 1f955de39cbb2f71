package aggregate

import (
	"fmt"
	"strings"

	"tradelens-backend/internal/dto"
)

// MaxFormattedPoints caps the number of data-point lines rendered for the
// reasoning agent. The whole point of the compact rendering is keeping
// payloads in the tens-to-hundreds-of-bytes range even over thousands of
// records.
const MaxFormattedPoints = 20

// FormatForAgent renders an aggregation result as deterministic compact
// text: a header naming the operation and group dimension, up to 20 data
// lines, and a footer with the total record count and an omitted-group note
// when truncated.
func FormatForAgent(result dto.AggregationResult) string {
	var b strings.Builder

	if result.GroupBy != "" {
		fmt.Fprintf(&b, "%s of %s by %s:\n", result.Operation, result.Field, result.GroupBy)
	} else {
		fmt.Fprintf(&b, "%s of %s:\n", result.Operation, result.Field)
	}

	shown := TopN(result.DataPoints, MaxFormattedPoints)
	for _, p := range shown {
		fmt.Fprintf(&b, "%s: %.2f (%d records)\n", p.Key, p.Value, p.Count)
	}

	fmt.Fprintf(&b, "Total: %d records", result.TotalRecords)
	if omitted := len(result.DataPoints) - len(shown); omitted > 0 {
		fmt.Fprintf(&b, ", showing top %d of %d groups (%d omitted)",
			len(shown), len(result.DataPoints), omitted)
	}
	return b.String()
}
