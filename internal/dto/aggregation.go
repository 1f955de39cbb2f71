package dto

// DataPoint is one row of an aggregation result. Key is the group label, or
// the "Total"/"Unknown" sentinel. Value is the computed statistic and Count
// the number of contributing records.
type DataPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Sentinel group keys.
const (
	KeyTotal   = "Total"
	KeyUnknown = "Unknown"
)

// AggregationResult carries the data points for one AggregationSpec together
// with the metadata needed to render a compact textual summary.
type AggregationResult struct {
	Operation    string      `json:"operation"`
	Field        string      `json:"field"`
	GroupBy      string      `json:"group_by,omitempty"`
	DataPoints   []DataPoint `json:"data_points"`
	TotalRecords int         `json:"total_records"`
}
