package filter

import (
	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/textmatch"
	"tradelens-backend/internal/util"
)

// Engine evaluates structured boolean filter expressions over record field
// maps. It owns a merged synonym table so equals/contains/startsWith/in
// comparisons are alias-aware before falling back to normalized matching.
type Engine struct {
	groups textmatch.Groups
}

// NewEngine builds an engine from the built-in synonym table plus optional
// caller overrides. The merge happens once here, not per record.
func NewEngine(overrides textmatch.Groups) *Engine {
	return &Engine{groups: textmatch.BuiltinGroups().Merge(overrides)}
}

// Execute returns the records matching the filter list, preserving original
// order and never mutating the input.
//
// Combination semantics: evaluation starts with an implicit AND and a true
// running result. Each filter is folded into the result using the current
// operator, then that filter's own logical operator (default AND) becomes
// the operator for folding the next filter. Once the result is false and the
// pending operator is AND, remaining filters cannot resurrect the record and
// evaluation stops early.
func (e *Engine) Execute(records []model.Record, filters []dto.FilterExpression) []model.Record {
	out := make([]model.Record, 0, len(records))
	if len(filters) == 0 {
		out = append(out, records...)
		return out
	}
	for _, rec := range records {
		if e.evaluate(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func (e *Engine) evaluate(rec model.Record, filters []dto.FilterExpression) bool {
	result := true
	currentOp := dto.LogicalAnd
	for _, f := range filters {
		matched := e.matchesFilter(rec, f)
		if currentOp == dto.LogicalOr {
			result = result || matched
		} else {
			result = result && matched
		}
		currentOp = f.LogicalOperator
		if currentOp == "" {
			currentOp = dto.LogicalAnd
		}
		if !result && currentOp != dto.LogicalOr {
			return false
		}
	}
	return result
}

// matchesFilter applies a single filter to a record. Malformed clauses never
// error: an absent or null field, an unknown operator, or a non-numeric
// value in a numeric comparison all evaluate to non-matching.
func (e *Engine) matchesFilter(rec model.Record, f dto.FilterExpression) bool {
	raw, ok := rec.Field(f.Field)
	if !ok {
		return false
	}

	switch f.Operator {
	case dto.OpEquals:
		return e.textMatch(raw, f.Value, f, textmatch.ModeEquals)
	case dto.OpContains:
		return e.textMatch(raw, f.Value, f, textmatch.ModeContains)
	case dto.OpStartsWith:
		return e.textMatch(raw, f.Value, f, textmatch.ModePrefix)
	case dto.OpIn:
		for _, candidate := range util.ToSlice(f.Value) {
			if e.textMatch(raw, candidate, f, textmatch.ModeEquals) {
				return true
			}
		}
		return false
	case dto.OpGreaterThan:
		fieldNum, ok1 := util.ToFloat(raw)
		filterNum, ok2 := util.ToFloat(f.Value)
		return ok1 && ok2 && fieldNum > filterNum
	case dto.OpLessThan:
		fieldNum, ok1 := util.ToFloat(raw)
		filterNum, ok2 := util.ToFloat(f.Value)
		return ok1 && ok2 && fieldNum < filterNum
	case dto.OpBetween:
		bounds := util.ToSlice(f.Value)
		if len(bounds) < 2 {
			return false
		}
		fieldNum, ok1 := util.ToFloat(raw)
		lo, ok2 := util.ToFloat(bounds[0])
		hi, ok3 := util.ToFloat(bounds[1])
		return ok1 && ok2 && ok3 && fieldNum >= lo && fieldNum <= hi
	default:
		return false
	}
}

// textMatch routes textual comparisons through the synonym table first, then
// through strategy-aware normalized matching.
func (e *Engine) textMatch(fieldValue, filterValue interface{}, f dto.FilterExpression, mode textmatch.Mode) bool {
	fieldStr := util.ToString(fieldValue)
	filterStr := util.ToString(filterValue)
	if filterStr == "" {
		return false
	}
	if textmatch.SameSynonymGroup(fieldStr, filterStr, e.groups) {
		return true
	}
	threshold := f.FuzzyThreshold
	if threshold <= 0 {
		threshold = dto.DefaultFuzzyThreshold
	}
	strategy := f.MatchStrategy
	if strategy == "" {
		strategy = dto.MatchNormalized
	}
	return textmatch.Matches(fieldStr, filterStr, mode, textmatch.MatchOptions{
		Strategy:       strategy,
		FuzzyThreshold: threshold,
	})
}
