package dto

// Filter operators understood by the filter engine. Anything else evaluates
// to non-matching rather than an error, because intents arrive from the LLM
// and are untrusted.
const (
	OpEquals      = "equals"
	OpContains    = "contains"
	OpStartsWith  = "startsWith"
	OpGreaterThan = "greaterThan"
	OpLessThan    = "lessThan"
	OpBetween     = "between"
	OpIn          = "in"
)

// Match strategies for text comparison.
const (
	MatchExact           = "exact"
	MatchFuzzy           = "fuzzy"
	MatchCaseInsensitive = "case-insensitive"
	MatchNormalized      = "normalized"
)

// Logical operators folding consecutive filters together.
const (
	LogicalAnd = "AND"
	LogicalOr  = "OR"
)

// DefaultFuzzyThreshold is the edit-distance bound used when a filter does
// not specify one.
const DefaultFuzzyThreshold = 2

// FilterExpression is one clause of a structured filter request. A list of
// these is evaluated left to right; each expression's LogicalOperator decides
// how the *next* expression is folded into the running result.
type FilterExpression struct {
	Field           string      `json:"field"`
	Operator        string      `json:"operator"`
	Value           interface{} `json:"value"` // scalar, pair (between) or array (in)
	MatchStrategy   string      `json:"match_strategy,omitempty"`
	FuzzyThreshold  int         `json:"fuzzy_threshold,omitempty"`
	LogicalOperator string      `json:"logical_operator,omitempty"` // operator for folding the next filter, default AND
}

// Aggregation operations.
const (
	AggCount   = "count"
	AggSum     = "sum"
	AggAverage = "average"
	AggMin     = "min"
	AggMax     = "max"
)

// AggregationSpec asks for one statistic over the filtered record set.
type AggregationSpec struct {
	Field     string `json:"field"`
	Operation string `json:"operation"` // count, sum, average, min, max
	GroupBy   string `json:"group_by,omitempty"`
}

// Query intent types produced by the LLM.
const (
	IntentDetail    = "detail"    // return matching records
	IntentAggregate = "aggregate" // return summary statistics
)

// QueryIntent is the structured request for one round of a session: filters
// to narrow the working set plus optional aggregation specs. It is produced
// by the reasoning agent and treated as untrusted structured input.
type QueryIntent struct {
	Type         string             `json:"type"` // "detail" | "aggregate"
	Filters      []FilterExpression `json:"filters"`
	Aggregations []AggregationSpec  `json:"aggregations,omitempty"`
	Reasoning    string             `json:"reasoning,omitempty"`
	Confidence   float64            `json:"confidence,omitempty"`
}
