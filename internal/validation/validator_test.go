package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/validation"
)

func TestValidate_HealthyRound(t *testing.T) {
	v := validation.NewValidator()
	records := []model.Record{
		{"company": "Acme", "amount": 100.0},
		{"company": "Blue", "amount": 200.0},
	}
	intent := dto.QueryIntent{
		Type:    dto.IntentAggregate,
		Filters: []dto.FilterExpression{{Field: "company", Operator: dto.OpContains, Value: "a"}},
		Aggregations: []dto.AggregationSpec{
			{Field: "amount", Operation: dto.AggSum, GroupBy: "company"},
		},
	}
	aggs := []dto.AggregationResult{{Operation: dto.AggSum, Field: "amount"}}

	res := v.Validate(records, aggs, intent)

	assert.True(t, res.IsValid)
	assert.True(t, res.IsComplete)
	assert.True(t, res.IsSufficient)
	assert.Equal(t, 2, res.RecordCount)
	assert.Empty(t, res.MissingFields)
	assert.GreaterOrEqual(t, res.Confidence, 0.7)
}

func TestValidate_EmptyResultLowersConfidence(t *testing.T) {
	v := validation.NewValidator()

	res := v.Validate(nil, nil, dto.QueryIntent{Type: dto.IntentDetail})

	assert.False(t, res.IsSufficient)
	assert.Zero(t, res.RecordCount)
	assert.NotEmpty(t, res.Issues)
	assert.NotEmpty(t, res.Suggestions)
	assert.Less(t, res.Confidence, 0.7)
}

func TestValidate_UnknownOperatorIsFlaggedNotFatal(t *testing.T) {
	v := validation.NewValidator()
	records := []model.Record{{"company": "Acme"}}
	intent := dto.QueryIntent{
		Filters: []dto.FilterExpression{{Field: "company", Operator: "regex", Value: ".*"}},
	}

	res := v.Validate(records, nil, intent)

	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "unknown filter operator")
}

func TestValidate_MissingAggregationField(t *testing.T) {
	v := validation.NewValidator()
	records := []model.Record{{"company": "Acme"}}
	intent := dto.QueryIntent{
		Type:         dto.IntentAggregate,
		Aggregations: []dto.AggregationSpec{{Field: "tariffValue", Operation: dto.AggSum}},
	}

	res := v.Validate(records, []dto.AggregationResult{{}}, intent)

	assert.False(t, res.IsComplete)
	assert.Contains(t, res.MissingFields, "tariffValue")
}

func TestValidate_ConfidenceAlwaysInUnitInterval(t *testing.T) {
	v := validation.NewValidator()

	// Pathological inputs must degrade gracefully, never panic, and always
	// produce a confidence inside [0,1].
	inputs := []dto.QueryIntent{
		{},
		{Type: "nonsense", Confidence: 5.0},
		{Filters: []dto.FilterExpression{{Operator: "???"}, {Field: "x", Operator: "!!"}}},
		{Aggregations: []dto.AggregationSpec{{Operation: "median"}}},
	}
	recordSets := [][]model.Record{nil, {}, {{"a": nil}}, {{}}}

	for _, intent := range inputs {
		for _, records := range recordSets {
			res := v.Validate(records, nil, intent)
			assert.GreaterOrEqual(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
		}
	}
}

func TestExtractRecordCounts(t *testing.T) {
	counts := validation.ExtractRecordCounts("Found 1,234 records across 3 transactions and 500 rows.")
	assert.Equal(t, []int{1234, 3, 500}, counts)

	assert.Nil(t, validation.ExtractRecordCounts("no figures here"))
}

func TestDetectContradictions(t *testing.T) {
	found := validation.DetectContradictions("Exports showed the highest growth while also being the lowest.")
	assert.NotEmpty(t, found)

	assert.Empty(t, validation.DetectContradictions("Exports grew steadily."))
}

func TestAssessAnswer_GracefulDegradation(t *testing.T) {
	// The heuristics are soft signals: odd inputs must yield issues or
	// nothing, never a panic.
	assert.NotPanics(t, func() {
		validation.AssessAnswer("", 0)
		validation.AssessAnswer(strings.Repeat("records ", 1000), 5)
		validation.AssessAnswer("9999999999999999999999 records", 5)
	})

	issues := validation.AssessAnswer("There are 10 records in total.", 7)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0], "claims 10")

	assert.Empty(t, validation.AssessAnswer("There are 7 records.", 7))
}

func TestSuspectRoundNumber(t *testing.T) {
	assert.True(t, validation.SuspectRoundNumber(100))
	assert.True(t, validation.SuspectRoundNumber(5000))
	assert.False(t, validation.SuspectRoundNumber(99))
	assert.False(t, validation.SuspectRoundNumber(123))
	assert.False(t, validation.SuspectRoundNumber(0))
}