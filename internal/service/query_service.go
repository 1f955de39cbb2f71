package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tradelens-backend/config"
	"tradelens-backend/internal/aggregate"
	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/filter"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/session"
	"tradelens-backend/internal/store"
	"tradelens-backend/internal/validation"
)

// QueryService answers one user question by running a bounded refinement
// loop: ask the LLM for a data request, execute it against the dataset,
// validate the result, and either stop or feed the outcome back for another
// round. Every call ends in exactly one terminal state.
type QueryService interface {
	ProcessQuestion(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error)
	GetSession(ctx context.Context, sessionId string) (*session.IterativeQuerySession, error)
}

type queryService struct {
	llm           LLMService
	datasets      store.DatasetStore
	conversations store.ConversationStore
	registry      session.Registry
	engine        *filter.Engine
	validator     *validation.Validator
	sessionCfg    session.Config
	maxDetailRows int
}

func NewQueryService(
	cfg *config.Config,
	llm LLMService,
	datasets store.DatasetStore,
	conversations store.ConversationStore,
	registry session.Registry,
) QueryService {
	return &queryService{
		llm:           llm,
		datasets:      datasets,
		conversations: conversations,
		registry:      registry,
		engine:        filter.NewEngine(nil),
		validator:     validation.NewValidator(),
		sessionCfg:    SessionConfigFrom(cfg),
		maxDetailRows: cfg.Dataset.MaxDetailRows,
	}
}

// SessionConfigFrom maps the application config onto the loop bounds.
func SessionConfigFrom(cfg *config.Config) session.Config {
	out := session.DefaultConfig()
	if cfg.Session.MaxIterations > 0 {
		out.MaxIterations = cfg.Session.MaxIterations
	}
	if cfg.Session.MaxSessionTime > 0 {
		out.MaxSessionTime = cfg.Session.MaxSessionTime
	}
	if cfg.Session.MinValidationConfidence > 0 {
		out.MinValidationConfidence = cfg.Session.MinValidationConfidence
	}
	out.LoopDetection = cfg.Session.LoopDetection
	out.AllowEmptyResults = cfg.Session.AllowEmptyResults
	return out
}

func (s *queryService) ProcessQuestion(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	datasetName := store.DefaultDatasetName
	if req.Dataset != nil && *req.Dataset != "" {
		datasetName = *req.Dataset
	}
	records, err := s.datasets.Records(ctx, datasetName)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", datasetName, err)
	}

	conversationId, history, err := s.resolveConversation(ctx, req.ConversationId)
	if err != nil {
		return nil, err
	}

	sess, err := s.registry.Create(ctx, req.Question, s.sessionCfg.MaxIterations)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("session_id", sess.SessionId).
		Str("conversation_id", conversationId).
		Str("dataset", datasetName).
		Int("dataset_records", len(records)).
		Msg("Query session started")

	schemaContext := buildSchemaContext(records)
	llmInput := req.Question

	var (
		lastFiltered []model.Record
		lastIntent   dto.QueryIntent
		lastAggs     []dto.AggregationResult
		lastSummary  string
		lastValid    dto.DataValidationResult
		decision     session.Decision
	)

	for {
		roundStart := time.Now()

		intent, err := s.llm.AnalyzeQuestionWithHistory(ctx, history, llmInput, schemaContext)
		if err != nil {
			log.Error().Err(err).Str("session_id", sess.SessionId).Msg("LLM analysis failed, terminating session")
			done, _ := s.registry.Complete(ctx, sess.SessionId, session.StatusFailed, session.ErrKindApplication)
			return s.errorResponse(conversationId, done, err), nil
		}

		filtered := s.engine.Execute(records, intent.Filters)

		aggs := make([]dto.AggregationResult, 0, len(intent.Aggregations))
		summaries := make([]string, 0, len(intent.Aggregations))
		for _, spec := range intent.Aggregations {
			result := aggregate.Run(filtered, spec)
			aggs = append(aggs, result)
			summaries = append(summaries, aggregate.FormatForAgent(result))
		}
		summary := strings.Join(summaries, "\n\n")

		valid := s.validator.Validate(filtered, aggs, *intent)

		entry := session.DataRequestLog{
			Intent: *intent,
			Result: session.RoundResult{
				RecordCount:  len(filtered),
				Aggregations: aggs,
				Summary:      summary,
			},
			Validation: valid,
			Reasoning:  intent.Reasoning,
			LatencyMs:  time.Since(roundStart).Milliseconds(),
			At:         roundStart.UTC(),
		}
		updated, err := s.registry.AppendRound(ctx, sess.SessionId, entry)
		if err != nil {
			return nil, err
		}

		decision = session.ShouldContinue(updated, valid, s.sessionCfg, time.Now())
		log.Info().
			Str("session_id", sess.SessionId).
			Int("iteration", updated.IterationCount).
			Int("record_count", len(filtered)).
			Bool("continue", decision.Continue).
			Str("reason", decision.Reason).
			Msg("Round finished")

		history = s.recordTurns(ctx, conversationId, history, llmInput, intent)

		lastFiltered, lastIntent, lastAggs, lastSummary, lastValid = filtered, *intent, aggs, summary, valid
		sess = updated

		if !decision.Continue {
			break
		}
		llmInput = roundFeedback(updated.IterationCount, len(filtered), summary, valid)
	}

	status := terminalStatus(decision)
	done, err := s.registry.Complete(ctx, sess.SessionId, status, decision.ErrorKind)
	if err != nil {
		return nil, err
	}

	answer := composeAnswer(req.Question, done, decision, len(lastFiltered), lastSummary)
	if issues := validation.AssessAnswer(answer, len(lastFiltered)); len(issues) > 0 {
		log.Warn().Str("session_id", done.SessionId).Strs("issues", issues).Msg("Answer assessment flagged issues")
		lastValid.Issues = append(lastValid.Issues, issues...)
	}

	resp := &dto.QueryResponse{
		ConversationId: conversationId,
		SessionId:      done.SessionId,
		Question:       req.Question,
		Status:         done.Status,
		ErrorKind:      done.ErrorKind,
		Answer:         answer,
		Iterations:     done.IterationCount,
		ProcessingMs:   done.TotalProcessingTimeMs,
		RecordCount:    len(lastFiltered),
		Aggregations:   lastAggs,
		Validation:     &lastValid,
	}
	if lastIntent.Type == dto.IntentDetail {
		resp.Records = detailRows(lastFiltered, s.maxDetailRows)
	}
	return resp, nil
}

func (s *queryService) GetSession(ctx context.Context, sessionId string) (*session.IterativeQuerySession, error) {
	return s.registry.Get(ctx, sessionId)
}

// resolveConversation returns the conversation id and its history, creating a
// fresh conversation when none was supplied or the supplied one is unknown.
func (s *queryService) resolveConversation(ctx context.Context, requested *string) (string, []dto.ConversationTurn, error) {
	if requested != nil && *requested != "" {
		history, err := s.conversations.GetHistory(ctx, *requested)
		if err == nil {
			return *requested, history, nil
		}
		log.Warn().Str("conversation_id", *requested).Msg("Unknown conversation id, starting a new conversation")
	}
	id, err := s.conversations.CreateConversation(ctx)
	if err != nil {
		return "", nil, err
	}
	return id, nil, nil
}

// recordTurns appends the round's user input and the model's structured reply
// to the conversation, returning the refreshed history for the next round.
// Store failures degrade to the in-memory history rather than aborting.
func (s *queryService) recordTurns(ctx context.Context, conversationId string, history []dto.ConversationTurn, userInput string, intent *dto.QueryIntent) []dto.ConversationTurn {
	intentJson, err := json.Marshal(intent)
	if err != nil {
		intentJson = []byte(fmt.Sprintf("%+v", intent))
	}
	userTurn := dto.ConversationTurn{Role: "user", Content: userInput}
	modelTurn := dto.ConversationTurn{Role: "model", Content: string(intentJson)}

	if err := s.conversations.AddTurn(ctx, conversationId, userTurn); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationId).Msg("Failed to persist user turn")
	}
	if err := s.conversations.AddTurn(ctx, conversationId, modelTurn); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationId).Msg("Failed to persist model turn")
	}
	return append(append(history, userTurn), modelTurn)
}

func (s *queryService) errorResponse(conversationId string, sess *session.IterativeQuerySession, cause error) *dto.QueryResponse {
	msg := cause.Error()
	resp := &dto.QueryResponse{
		ConversationId: conversationId,
		Status:         session.StatusFailed,
		ErrorKind:      session.ErrKindApplication,
		Answer:         "The question could not be analyzed. Please rephrase and try again.",
		ErrorMessage:   &msg,
	}
	if sess != nil {
		resp.SessionId = sess.SessionId
		resp.Question = sess.Question
		resp.Iterations = sess.IterationCount
		resp.ProcessingMs = sess.TotalProcessingTimeMs
	}
	return resp
}

func terminalStatus(decision session.Decision) string {
	switch decision.ErrorKind {
	case "":
		return session.StatusCompleted
	case session.ErrKindSessionTimeout:
		return session.StatusTimeout
	default:
		return session.StatusFailed
	}
}

// buildSchemaContext describes the dataset to the agent: field names with
// inferred kinds, sampled from the first record.
func buildSchemaContext(records []model.Record) string {
	if len(records) == 0 {
		return "The dataset is currently empty."
	}

	sample := records[0]
	fields := make([]string, 0, len(sample))
	for name := range sample {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var b strings.Builder
	fmt.Fprintf(&b, "Trade transaction records: %d rows. Fields:\n", len(records))
	for _, name := range fields {
		fmt.Fprintf(&b, "- %s (%s)\n", name, fieldKind(sample[name]))
	}
	b.WriteString("Text fields may hold the same entity under different spellings (abbreviations, diacritics, legal suffixes); prefer \"contains\" or a fuzzy match strategy for names.")
	return b.String()
}

func fieldKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "unknown"
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []interface{}, []string:
		return "list"
	case string:
		return "string"
	default:
		return "object"
	}
}

// roundFeedback is the compact result digest sent back to the agent when the
// loop continues.
func roundFeedback(iteration, recordCount int, summary string, valid dto.DataValidationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d matched %d records (validation confidence %.2f).\n", iteration, recordCount, valid.Confidence)
	if summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	}
	if len(valid.Issues) > 0 {
		fmt.Fprintf(&b, "Issues: %s\n", strings.Join(valid.Issues, "; "))
	}
	if len(valid.MissingFields) > 0 {
		fmt.Fprintf(&b, "Fields absent from the data: %s\n", strings.Join(valid.MissingFields, ", "))
	}
	if len(valid.Suggestions) > 0 {
		fmt.Fprintf(&b, "Suggestions: %s", strings.Join(valid.Suggestions, "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// composeAnswer renders the terminal answer text. Aggregate answers reuse the
// compact digest; detail answers report the match count; failed sessions get
// the stop reason plus whatever partial result the last round produced.
func composeAnswer(question string, sess *session.IterativeQuerySession, decision session.Decision, recordCount int, summary string) string {
	if sess.Status == session.StatusCompleted {
		if summary != "" {
			return summary
		}
		if recordCount == 0 {
			return fmt.Sprintf("No transactions matched %q.", question)
		}
		return fmt.Sprintf("Found %d matching transactions.", recordCount)
	}

	answer := fmt.Sprintf("Stopped after %d rounds: %s.", sess.IterationCount, decision.Reason)
	if summary != "" {
		answer += "\n\nBest partial result:\n" + summary
	} else if recordCount > 0 {
		answer += fmt.Sprintf("\n\nBest partial result: %d matching transactions.", recordCount)
	}
	return answer
}

func detailRows(records []model.Record, limit int) []map[string]interface{} {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	rows := make([]map[string]interface{}, 0, limit)
	for _, rec := range records[:limit] {
		rows = append(rows, map[string]interface{}(rec.Clone()))
	}
	return rows
}
