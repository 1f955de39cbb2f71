package session

import (
	"encoding/json"
	"fmt"
	"time"

	"tradelens-backend/internal/dto"
)

// Config bounds the refinement loop. Tunable per invocation.
type Config struct {
	MaxIterations           int
	MaxSessionTime          time.Duration
	MinValidationConfidence float64
	LoopDetection           bool
	AllowEmptyResults       bool
}

// DefaultConfig returns the stock bounds: 15 rounds, 30 seconds of wall
// clock, 0.7 minimum confidence, loop detection on.
func DefaultConfig() Config {
	return Config{
		MaxIterations:           15,
		MaxSessionTime:          30 * time.Second,
		MinValidationConfidence: 0.7,
		LoopDetection:           true,
		AllowEmptyResults:       true,
	}
}

// Decision is the controller's verdict after a round. ErrorKind is empty on
// success and on continuation.
type Decision struct {
	Continue  bool
	Reason    string
	ErrorKind string
}

// loopWindow bounds how many trailing rounds the loop detector inspects.
const loopWindow = 5

// ShouldContinue decides whether the refinement loop runs another round.
// Conditions are evaluated in strict priority order; when several hold at
// once the highest-priority one names the outcome (the iteration cap beats
// loop detection, and so on). The latest round must already be appended to
// the session's request log.
func ShouldContinue(sess *IterativeQuerySession, latest dto.DataValidationResult, cfg Config, now time.Time) Decision {
	// 1. Unknown session.
	if sess == nil {
		return Decision{Reason: "session not found", ErrorKind: ErrKindApplication}
	}

	// 2. Iteration cap.
	if sess.IterationCount >= cfg.MaxIterations {
		return Decision{
			Reason:    fmt.Sprintf("reached the maximum of %d iterations", cfg.MaxIterations),
			ErrorKind: ErrKindMaxIterations,
		}
	}

	// 3. Wall-clock cap.
	if now.Sub(sess.StartTime) >= cfg.MaxSessionTime {
		return Decision{
			Reason:    fmt.Sprintf("session exceeded the %s time limit", cfg.MaxSessionTime),
			ErrorKind: ErrKindSessionTimeout,
		}
	}

	// 4. Success.
	if latest.IsSufficient && latest.Confidence >= cfg.MinValidationConfidence {
		return Decision{Reason: "validation reported sufficient data"}
	}

	// 5. Loop detection.
	if cfg.LoopDetection {
		if reason, looping := detectLoop(sess.RequestLog); looping {
			return Decision{Reason: reason, ErrorKind: ErrKindInfiniteLoop}
		}
	}

	// 6. Empty-result policy.
	if !cfg.AllowEmptyResults && latest.RecordCount == 0 {
		return Decision{
			Reason:    "round produced zero records and empty results are disallowed",
			ErrorKind: ErrKindValidationFailed,
		}
	}

	return Decision{Continue: true, Reason: "validation not yet sufficient"}
}

// detectLoop inspects the last loopWindow rounds for repetition: either the
// duplicate ratio of the round keys exceeds 0.5, or at least four rounds
// alternate in a strict period-2 pattern.
func detectLoop(logs []DataRequestLog) (string, bool) {
	if len(logs) == 0 {
		return "", false
	}
	window := logs
	if len(window) > loopWindow {
		window = window[len(window)-loopWindow:]
	}

	keys := make([]string, len(window))
	unique := make(map[string]bool, len(window))
	for i, entry := range window {
		keys[i] = roundKey(entry.Intent)
		unique[keys[i]] = true
	}

	if ratio := 1 - float64(len(unique))/float64(len(keys)); ratio > 0.5 {
		return fmt.Sprintf("last %d rounds repeat the same request (duplicate ratio %.2f)", len(keys), ratio), true
	}

	if len(keys) >= 4 && keys[0] != keys[1] {
		periodic := true
		for i := range keys {
			if keys[i] != keys[i%2] {
				periodic = false
				break
			}
		}
		if periodic {
			return "rounds alternate between two identical requests", true
		}
	}

	return "", false
}

// roundKey serializes the comparable parts of an intent. Reasoning and
// confidence are deliberately excluded: two rounds asking for the same data
// are the same round.
func roundKey(intent dto.QueryIntent) string {
	key := struct {
		Type         string                 `json:"type"`
		Filters      []dto.FilterExpression `json:"filters"`
		Aggregations []dto.AggregationSpec  `json:"aggregations"`
	}{intent.Type, intent.Filters, intent.Aggregations}

	raw, err := json.Marshal(key)
	if err != nil {
		return fmt.Sprintf("%+v", key)
	}
	return string(raw)
}
