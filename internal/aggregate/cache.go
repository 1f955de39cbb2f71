package aggregate

import (
	"sort"
	"time"

	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/util"
)

// CacheFields designates which record fields feed the precomputed cache.
type CacheFields struct {
	Company  string
	Category string
	Country  string
	Value    string // monetary value field
	Date     string // date field bucketed as YYYY-MM
}

// DefaultCacheFields matches the field names used by the trade transaction
// snapshots.
func DefaultCacheFields() CacheFields {
	return CacheFields{
		Company:  "company",
		Category: "category",
		Country:  "importCountry",
		Value:    "amount",
		Date:     "date",
	}
}

// Cache is a pure snapshot of one record set: four precomputed sum groupings
// plus grand totals. It is owned by whoever built it and must be fully
// rebuilt, never patched, when the underlying working set changes.
type Cache struct {
	ByCompany  []dto.DataPoint
	ByCategory []dto.DataPoint
	ByCountry  []dto.DataPoint
	ByMonth    []dto.DataPoint
	Totals     dto.DataPoint
	BuiltAt    time.Time
}

// BuildCache eagerly computes the cache groupings for a record set. Records
// with unparseable dates are excluded from the monthly buckets but still
// count toward every other grouping and the grand total.
func BuildCache(records []model.Record, fields CacheFields) *Cache {
	return &Cache{
		ByCompany:  GroupBy(records, fields.Company, fields.Value, dto.AggSum),
		ByCategory: GroupBy(records, fields.Category, fields.Value, dto.AggSum),
		ByCountry:  GroupBy(records, fields.Country, fields.Value, dto.AggSum),
		ByMonth:    groupByMonth(records, fields.Date, fields.Value),
		Totals:     ComputeTotal(records, fields.Value, dto.AggSum),
		BuiltAt:    time.Now().UTC(),
	}
}

// groupByMonth buckets records by the YYYY-MM key of the date field and sums
// the value field per bucket, sorted by value descending like GroupBy.
func groupByMonth(records []model.Record, dateField, valueField string) []dto.DataPoint {
	partitions := make(map[string][]model.Record)
	order := make([]string, 0)

	for _, rec := range records {
		raw, ok := rec.Field(dateField)
		if !ok {
			continue
		}
		key, ok := util.MonthKey(raw)
		if !ok {
			continue
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
			Value: compute(part, valueField, dto.AggSum),
			Count: len(part),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}
