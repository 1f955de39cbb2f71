package dto

// QueryRequest is the user-facing question for one conversational turn.
type QueryRequest struct {
	Question       string  `json:"question" binding:"required"`
	ConversationId *string `json:"conversationId,omitempty"`
	Dataset        *string `json:"dataset,omitempty"`
}

// QueryResponse is the answer produced after the iterative session reached a
// terminal state.
type QueryResponse struct {
	ConversationId string                   `json:"conversationId"`
	SessionId      string                   `json:"sessionId"`
	Question       string                   `json:"question"`
	Status         string                   `json:"status"`              // completed, failed, timeout
	ErrorKind      string                   `json:"errorKind,omitempty"` // machine-checkable terminal reason
	Answer         string                   `json:"answer"`
	Iterations     int                      `json:"iterations"`
	ProcessingMs   int64                    `json:"processingTimeMs"`
	RecordCount    int                      `json:"recordCount"`
	Records        []map[string]interface{} `json:"records,omitempty"` // detail answers, capped
	Aggregations   []AggregationResult      `json:"aggregations,omitempty"`
	Validation     *DataValidationResult    `json:"validation,omitempty"`
	ErrorMessage   *string                  `json:"errorMessage,omitempty"`
}
