package session

import (
	"time"

	"tradelens-backend/internal/dto"
)

// Session statuses. A session is born active and moves to exactly one
// terminal status; terminal states are final.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
)

// Machine-checkable terminal error kinds. Control-flow errors surface as
// named outcomes, never as panics that unwind past the controller.
const (
	ErrKindMaxIterations    = "max_iterations_reached"
	ErrKindSessionTimeout   = "session_timeout"
	ErrKindInfiniteLoop     = "infinite_loop_detected"
	ErrKindValidationFailed = "data_validation_failed"
	ErrKindApplication      = "application_error"
)

// RoundResult is what one filter/aggregate cycle produced.
type RoundResult struct {
	RecordCount  int                     `json:"record_count"`
	Aggregations []dto.AggregationResult `json:"aggregations,omitempty"`
	Summary      string                  `json:"summary,omitempty"` // compact text sent to the agent
}

// DataRequestLog is the audit entry for one round: the intent sent, the
// result, the validator's assessment, the agent's reasoning, and latency.
// The request log is append-only and never rewritten.
type DataRequestLog struct {
	Intent     dto.QueryIntent          `json:"intent"`
	Result     RoundResult              `json:"result"`
	Validation dto.DataValidationResult `json:"validation"`
	Reasoning  string                   `json:"reasoning,omitempty"`
	LatencyMs  int64                    `json:"latency_ms"`
	At         time.Time                `json:"at"`
}

// IterativeQuerySession tracks one user question through bounded multi-round
// refinement. Created with zero rounds, mutated once per round by the
// registry, terminal once Status leaves active.
type IterativeQuerySession struct {
	SessionId             string           `json:"session_id"`
	Question              string           `json:"question"`
	StartTime             time.Time        `json:"start_time"`
	EndTime               time.Time        `json:"end_time,omitempty"`
	IterationCount        int              `json:"iteration_count"`
	MaxIterations         int              `json:"max_iterations"`
	RequestLog            []DataRequestLog `json:"request_log"`
	Status                string           `json:"status"`
	ErrorKind             string           `json:"error_kind,omitempty"`
	TotalProcessingTimeMs int64            `json:"total_processing_time_ms"`
}

// Terminal reports whether the session reached a final state.
func (s *IterativeQuerySession) Terminal() bool {
	return s.Status != StatusActive
}

// clone returns a deep copy safe to hand to readers while the original keeps
// being mutated under the registry's per-session lock.
func (s *IterativeQuerySession) clone() *IterativeQuerySession {
	out := *s
	out.RequestLog = append([]DataRequestLog(nil), s.RequestLog...)
	return &out
}
