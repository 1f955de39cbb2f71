package validation

import (
	"fmt"

	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
)

// sampleSize bounds how many records are scanned when checking field
// presence; snapshots can hold thousands of records and presence is a
// heuristic, not a census.
const sampleSize = 50

var knownOperators = map[string]bool{
	dto.OpEquals:      true,
	dto.OpContains:    true,
	dto.OpStartsWith:  true,
	dto.OpGreaterThan: true,
	dto.OpLessThan:    true,
	dto.OpBetween:     true,
	dto.OpIn:          true,
}

var knownAggregations = map[string]bool{
	dto.AggCount:   true,
	dto.AggSum:     true,
	dto.AggAverage: true,
	dto.AggMin:     true,
	dto.AggMax:     true,
}

// Validator scores the sufficiency and shape of one round's output. Its
// verdicts are heuristic quality signals, not ground truth; a low confidence
// means "keep iterating or disclose uncertainty", never a hard failure.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate inspects the filtered records and aggregation output of one round
// against the intent that produced them. It never errors: malformed intents
// and empty or all-null record sets degrade to a low-confidence result with
// explanatory issues and suggestions.
func (v *Validator) Validate(records []model.Record, aggs []dto.AggregationResult, intent dto.QueryIntent) dto.DataValidationResult {
	result := dto.DataValidationResult{
		IsValid:     true,
		RecordCount: len(records),
		Confidence:  1.0,
	}

	// Shape check: the intent comes from an external reasoning agent and is
	// untrusted input.
	for _, f := range intent.Filters {
		if f.Field == "" {
			result.IsValid = false
			result.Issues = append(result.Issues, "filter with empty field name")
			continue
		}
		if !knownOperators[f.Operator] {
			result.IsValid = false
			result.Issues = append(result.Issues, fmt.Sprintf("unknown filter operator %q on field %q", f.Operator, f.Field))
		}
	}
	for _, a := range intent.Aggregations {
		if !knownAggregations[a.Operation] {
			result.IsValid = false
			result.Issues = append(result.Issues, fmt.Sprintf("unknown aggregation operation %q", a.Operation))
		}
	}
	if !result.IsValid {
		result.Confidence -= 0.2
	}

	result.MissingFields = missingFields(records, intent)
	result.IsComplete = len(result.MissingFields) == 0
	if !result.IsComplete {
		result.Confidence -= 0.2
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("fields %v are absent from the current records; check field names against the snapshot", result.MissingFields))
	}

	if len(records) == 0 {
		result.Confidence -= 0.4
		result.Issues = append(result.Issues, "no records matched the filters")
		result.Suggestions = append(result.Suggestions, "broaden or relax the filters, or try fuzzy matching")
	}

	if intent.Type == dto.IntentAggregate && len(intent.Aggregations) > 0 && len(aggs) == 0 {
		result.Confidence -= 0.1
		result.Issues = append(result.Issues, "aggregations were requested but none were computed")
	}

	// Blend in the agent's own confidence estimate when it supplied one.
	if intent.Confidence > 0 && intent.Confidence <= 1 {
		result.Confidence = (result.Confidence + intent.Confidence) / 2
	}

	result.Confidence = clamp01(result.Confidence)
	result.IsSufficient = result.IsValid && len(records) > 0 && result.Confidence >= 0.5
	return result
}

// missingFields returns intent-referenced fields that never appear in the
// first sampleSize records.
func missingFields(records []model.Record, intent dto.QueryIntent) []string {
	if len(records) == 0 {
		return nil
	}

	wanted := make([]string, 0, len(intent.Filters)+len(intent.Aggregations))
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			wanted = append(wanted, name)
		}
	}
	for _, f := range intent.Filters {
		add(f.Field)
	}
	for _, a := range intent.Aggregations {
		add(a.Field)
		add(a.GroupBy)
	}

	limit := len(records)
	if limit > sampleSize {
		limit = sampleSize
	}

	var missing []string
	for _, name := range wanted {
		found := false
		for _, rec := range records[:limit] {
			if _, ok := rec.Field(name); ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
