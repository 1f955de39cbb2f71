package dto

// LoadDatasetRequest replaces the named in-memory record snapshot. Records
// are open field maps; no schema is enforced.
type LoadDatasetRequest struct {
	Name    string                   `json:"name" binding:"required"`
	Records []map[string]interface{} `json:"records" binding:"required"`
}

// DatasetSummaryResponse exposes the precomputed aggregation cache for a
// dataset.
type DatasetSummaryResponse struct {
	Name        string      `json:"name"`
	RecordCount int         `json:"recordCount"`
	TotalValue  float64     `json:"totalValue"`
	ByCompany   []DataPoint `json:"byCompany"`
	ByCategory  []DataPoint `json:"byCategory"`
	ByCountry   []DataPoint `json:"byCountry"`
	ByMonth     []DataPoint `json:"byMonth"`
	BuiltAt     string      `json:"builtAt"`
}
