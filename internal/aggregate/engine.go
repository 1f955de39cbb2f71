package aggregate

import (
	"sort"

	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/util"
)

// GroupBy partitions records by the stringified value of groupField (absent
// or empty values land in the "Unknown" bucket) and computes one statistic
// per partition. Non-numeric values of valueField are skipped and excluded
// from the average divisor; an empty numeric subset yields 0. The result is
// sorted by value descending with ties keeping encounter order.
func GroupBy(records []model.Record, groupField, valueField, operation string) []dto.DataPoint {
	partitions := make(map[string][]model.Record)
	order := make([]string, 0)

	for _, rec := range records {
		key := dto.KeyUnknown
		if v, ok := rec.Field(groupField); ok {
			if s := util.ToString(v); s != "" {
				key = s
			}
		}
		if _, seen := partitions[key]; !seen {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], rec)
	}

	points := make([]dto.DataPoint, 0, len(order))
	for _, key := range order {
		part := partitions[key]
		points = append(points, dto.DataPoint{
			Key:   key,
			Value: compute(part, valueField, operation),
			Count: len(part),
		})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

// ComputeTotal computes one statistic over the whole record set, keyed
// "Total".
func ComputeTotal(records []model.Record, field, operation string) dto.DataPoint {
	return dto.DataPoint{
		Key:   dto.KeyTotal,
		Value: compute(records, field, operation),
		Count: len(records),
	}
}

// TopN returns the first n points. Points are assumed pre-sorted descending;
// this function does not re-sort.
func TopN(points []dto.DataPoint, n int) []dto.DataPoint {
	if n < 0 {
		n = 0
	}
	if n > len(points) {
		n = len(points)
	}
	return points[:n]
}

// Run executes one aggregation spec against a record set, dispatching
// between grouped and total computation.
func Run(records []model.Record, spec dto.AggregationSpec) dto.AggregationResult {
	result := dto.AggregationResult{
		Operation:    spec.Operation,
		Field:        spec.Field,
		GroupBy:      spec.GroupBy,
		TotalRecords: len(records),
	}
	if spec.GroupBy != "" {
		result.DataPoints = GroupBy(records, spec.GroupBy, spec.Field, spec.Operation)
	} else {
		result.DataPoints = []dto.DataPoint{ComputeTotal(records, spec.Field, spec.Operation)}
	}
	return result
}

// compute evaluates one statistic over a partition. All arithmetic is
// floating point; numeric coercion is permissive and failures are skipped.
func compute(records []model.Record, valueField, operation string) float64 {
	if operation == dto.AggCount {
		return float64(len(records))
	}

	values := make([]float64, 0, len(records))
	for _, rec := range records {
		raw, ok := rec.Field(valueField)
		if !ok {
			continue
		}
		if f, ok := util.ToFloat(raw); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return 0
	}

	switch operation {
	case dto.AggSum:
		return sum(values)
	case dto.AggAverage:
		return sum(values) / float64(len(values))
	case dto.AggMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case dto.AggMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	default:
		// Unknown operation degrades to 0 rather than erroring; the intent
		// came from an untrusted agent.
		return 0
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
