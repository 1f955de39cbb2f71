package dto

// DataValidationResult is a heuristic quality signal about one round's
// output. It is a confidence score, not ground truth: low confidence means
// "keep iterating or disclose uncertainty", not hard failure.
type DataValidationResult struct {
	IsSufficient  bool     `json:"is_sufficient"`
	IsComplete    bool     `json:"is_complete"`
	IsValid       bool     `json:"is_valid"`
	RecordCount   int      `json:"record_count"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Issues        []string `json:"issues,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
	Confidence    float64  `json:"confidence"` // in [0,1]
}
