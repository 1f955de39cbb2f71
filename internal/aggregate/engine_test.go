package aggregate_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens-backend/internal/aggregate"
	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
)

func fiveCompanyRecords() []model.Record {
	// 2/2/1 split across three companies.
	return []model.Record{
		{"company": "Acme Trading Co", "amount": 100.0},
		{"company": "Acme Trading Co", "amount": 300.0},
		{"company": "Blue Ocean JSC", "amount": 150.0},
		{"company": "Blue Ocean JSC", "amount": 50.0},
		{"company": "Delta Exports", "amount": 90.0},
	}
}

func TestGroupBy_SortedDescendingAndCountConserved(t *testing.T) {
	records := fiveCompanyRecords()
	records = append(records, model.Record{"amount": 10.0}) // no company -> Unknown bucket

	points := aggregate.GroupBy(records, "company", "amount", dto.AggSum)

	require.Len(t, points, 4)
	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i-1].Value, points[i].Value, "points must be value-descending")
	}

	total := 0
	seenUnknown := false
	for _, p := range points {
		total += p.Count
		if p.Key == dto.KeyUnknown {
			seenUnknown = true
		}
	}
	assert.Equal(t, len(records), total, "group counts must sum to the input size")
	assert.True(t, seenUnknown, "missing group keys must land in the Unknown bucket")
}

func TestGroupBy_SumAndCountAgreeOnRanking(t *testing.T) {
	records := fiveCompanyRecords()

	bySum := aggregate.GroupBy(records, "company", "amount", dto.AggSum)
	byCount := aggregate.GroupBy(records, "company", "amount", dto.AggCount)

	require.Len(t, bySum, 3)
	require.Len(t, byCount, 3)

	// Sum ranking: Acme 400 > Blue Ocean 200 > Delta 90.
	assert.Equal(t, "Acme Trading Co", bySum[0].Key)
	assert.Equal(t, "Blue Ocean JSC", bySum[1].Key)
	assert.Equal(t, "Delta Exports", bySum[2].Key)

	// Count ranking agrees: 2, 2, 1 with ties keeping encounter order.
	assert.Equal(t, "Acme Trading Co", byCount[0].Key)
	assert.Equal(t, "Blue Ocean JSC", byCount[1].Key)
	assert.Equal(t, "Delta Exports", byCount[2].Key)
	assert.Equal(t, 1, byCount[2].Count)
}

func TestGroupBy_Operations(t *testing.T) {
	records := []model.Record{
		{"company": "Acme", "amount": 10.0},
		{"company": "Acme", "amount": 30.0},
		{"company": "Acme", "amount": "not a number"},
	}

	tests := []struct {
		operation string
		expected  float64
	}{
		{dto.AggCount, 3},
		{dto.AggSum, 40},
		{dto.AggAverage, 20}, // non-numeric excluded from divisor
		{dto.AggMin, 10},
		{dto.AggMax, 30},
	}
	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			points := aggregate.GroupBy(records, "company", "amount", tt.operation)
			require.Len(t, points, 1)
			assert.Equal(t, tt.expected, points[0].Value)
			assert.Equal(t, 3, points[0].Count)
		})
	}
}

func TestGroupBy_AllNonNumericDefaultsToZero(t *testing.T) {
	records := []model.Record{
		{"company": "Acme", "amount": "n/a"},
		{"company": "Acme"},
	}
	for _, op := range []string{dto.AggSum, dto.AggAverage, dto.AggMin, dto.AggMax} {
		points := aggregate.GroupBy(records, "company", "amount", op)
		require.Len(t, points, 1)
		assert.Zero(t, points[0].Value, "operation %s on empty numeric subset", op)
	}
}

func TestComputeTotal(t *testing.T) {
	point := aggregate.ComputeTotal(fiveCompanyRecords(), "amount", dto.AggSum)
	assert.Equal(t, dto.KeyTotal, point.Key)
	assert.Equal(t, 690.0, point.Value)
	assert.Equal(t, 5, point.Count)

	empty := aggregate.ComputeTotal(nil, "amount", dto.AggAverage)
	assert.Zero(t, empty.Value)
	assert.Zero(t, empty.Count)
}

func TestTopN(t *testing.T) {
	points := []dto.DataPoint{{Key: "a", Value: 3}, {Key: "b", Value: 2}, {Key: "c", Value: 1}}

	assert.Len(t, aggregate.TopN(points, 2), 2)
	assert.Len(t, aggregate.TopN(points, 10), 3)
	assert.Empty(t, aggregate.TopN(points, 0))
	assert.Empty(t, aggregate.TopN(points, -1))
}

func TestBuildCache(t *testing.T) {
	records := []model.Record{
		{"company": "Acme", "category": "Electronics", "importCountry": "USA", "amount": 100.0, "date": "2024-01-15"},
		{"company": "Acme", "category": "Electronics", "importCountry": "USA", "amount": 200.0, "date": "2024-01-20"},
		{"company": "Blue", "category": "Textiles", "importCountry": "Vietnam", "amount": 50.0, "date": "2024-02-01"},
		{"company": "Blue", "category": "Textiles", "importCountry": "Vietnam", "amount": 75.0, "date": "garbage"},
	}

	cache := aggregate.BuildCache(records, aggregate.DefaultCacheFields())

	require.Len(t, cache.ByCompany, 2)
	assert.Equal(t, "Acme", cache.ByCompany[0].Key)
	assert.Equal(t, 300.0, cache.ByCompany[0].Value)

	// The unparseable date is excluded from month buckets...
	require.Len(t, cache.ByMonth, 2)
	assert.Equal(t, "2024-01", cache.ByMonth[0].Key)
	assert.Equal(t, 300.0, cache.ByMonth[0].Value)
	assert.Equal(t, "2024-02", cache.ByMonth[1].Key)
	assert.Equal(t, 50.0, cache.ByMonth[1].Value)

	// ...but still counts everywhere else.
	assert.Equal(t, 425.0, cache.Totals.Value)
	assert.Equal(t, 4, cache.Totals.Count)
	assert.False(t, cache.BuiltAt.IsZero())
}

func TestRun_DispatchesBetweenGroupAndTotal(t *testing.T) {
	records := fiveCompanyRecords()

	grouped := aggregate.Run(records, dto.AggregationSpec{Field: "amount", Operation: dto.AggSum, GroupBy: "company"})
	assert.Len(t, grouped.DataPoints, 3)
	assert.Equal(t, 5, grouped.TotalRecords)

	total := aggregate.Run(records, dto.AggregationSpec{Field: "amount", Operation: dto.AggCount})
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, dto.KeyTotal, total.DataPoints[0].Key)
	assert.Equal(t, 5.0, total.DataPoints[0].Value)
}

func TestFormatForAgent_TruncatesAtTwenty(t *testing.T) {
	points := make([]dto.DataPoint, 25)
	for i := range points {
		points[i] = dto.DataPoint{Key: fmt.Sprintf("group-%02d", i), Value: float64(100 - i), Count: 2}
	}
	result := dto.AggregationResult{
		Operation:    dto.AggSum,
		Field:        "amount",
		GroupBy:      "company",
		DataPoints:   points,
		TotalRecords: 50,
	}

	text := aggregate.FormatForAgent(result)
	lines := strings.Split(text, "\n")

	// Header + 20 data lines + footer.
	require.Len(t, lines, 22)
	assert.Contains(t, lines[0], "sum of amount by company")
	assert.Contains(t, text, "showing top 20 of 25")
	assert.Contains(t, text, "Total: 50 records")
}

func TestFormatForAgent_NoTruncationNote(t *testing.T) {
	result := dto.AggregationResult{
		Operation:    dto.AggCount,
		Field:        "amount",
		DataPoints:   []dto.DataPoint{{Key: dto.KeyTotal, Value: 4, Count: 4}},
		TotalRecords: 4,
	}
	text := aggregate.FormatForAgent(result)
	assert.NotContains(t, text, "showing top")
	assert.Contains(t, text, "Total: 4 records")
}
