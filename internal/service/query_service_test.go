package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens-backend/config"
	"tradelens-backend/internal/aggregate"
	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/service"
	"tradelens-backend/internal/session"
	"tradelens-backend/internal/store"
)

// scriptedLLM returns canned intents in order, repeating the last one. It
// also records the history length it saw on each call.
type scriptedLLM struct {
	intents      []*dto.QueryIntent
	err          error
	calls        int
	historyLens  []int
	lastFeedback string
}

func (f *scriptedLLM) AnalyzeQuestionWithHistory(ctx context.Context, history []dto.ConversationTurn, newUserQuery string, schemaContext string) (*dto.QueryIntent, error) {
	f.historyLens = append(f.historyLens, len(history))
	f.lastFeedback = newUserQuery
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls
	if idx >= len(f.intents) {
		idx = len(f.intents) - 1
	}
	f.calls++
	return f.intents[idx], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			MaxIterations:           15,
			MaxSessionTime:          30 * time.Second,
			MinValidationConfidence: 0.7,
			LoopDetection:           true,
			AllowEmptyResults:       true,
		},
		Dataset: config.DatasetConfig{MaxDetailRows: 2},
	}
}

func seededStores(t *testing.T) (store.DatasetStore, store.ConversationStore, session.Registry) {
	t.Helper()
	datasets := store.NewInMemoryDatasetStore(aggregate.DefaultCacheFields())
	datasets.Replace(context.Background(), store.DefaultDatasetName, []model.Record{
		{"company": "Acme Trading Co Ltd", "importCountry": "United States", "amount": 1200.0, "category": "electronics"},
		{"company": "Beta Logistics", "importCountry": "USA", "amount": 800.0, "category": "textiles"},
		{"company": "Acme Trading Co Ltd", "importCountry": "Hoa Kỳ", "amount": 500.0, "category": "electronics"},
		{"company": "Gamma Foods", "importCountry": "Vietnam", "amount": 300.0, "category": "agriculture"},
	})
	return datasets, store.NewInMemoryConversationStore(), session.NewInMemoryRegistry()
}

func newService(cfg *config.Config, llm service.LLMService, t *testing.T) (service.QueryService, session.Registry) {
	datasets, conversations, registry := seededStores(t)
	return service.NewQueryService(cfg, llm, datasets, conversations, registry), registry
}

func aggregateIntent(confidence float64) *dto.QueryIntent {
	return &dto.QueryIntent{
		Type: dto.IntentAggregate,
		Filters: []dto.FilterExpression{
			{Field: "importCountry", Operator: dto.OpContains, Value: "US"},
		},
		Aggregations: []dto.AggregationSpec{
			{Field: "amount", Operation: dto.AggSum, GroupBy: "company"},
		},
		Reasoning:  "sum US import value per company",
		Confidence: confidence,
	}
}

func TestProcessQuestion_CompletesInOneRound(t *testing.T) {
	llm := &scriptedLLM{intents: []*dto.QueryIntent{aggregateIntent(0.9)}}
	svc, registry := newService(testConfig(), llm, t)

	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "total US imports by company?"})
	require.NoError(t, err)

	assert.Equal(t, session.StatusCompleted, resp.Status)
	assert.Empty(t, resp.ErrorKind)
	assert.Equal(t, 1, resp.Iterations)
	assert.Equal(t, 3, resp.RecordCount, "US synonyms cover United States, USA and Hoa Kỳ")
	assert.NotEmpty(t, resp.ConversationId)
	assert.Contains(t, resp.Answer, "sum of amount by company")
	assert.Contains(t, resp.Answer, "Acme Trading Co Ltd: 1700.00")
	require.Len(t, resp.Aggregations, 1)
	assert.Nil(t, resp.Records, "aggregate answers carry no raw rows")

	sess, err := registry.Get(context.Background(), resp.SessionId)
	require.NoError(t, err)
	assert.True(t, sess.Terminal())
	assert.Len(t, sess.RequestLog, 1)
}

func TestProcessQuestion_RefinesAfterEmptyRound(t *testing.T) {
	emptyRound := &dto.QueryIntent{
		Type: dto.IntentAggregate,
		Filters: []dto.FilterExpression{
			{Field: "company", Operator: dto.OpEquals, Value: "Nonexistent Co", MatchStrategy: dto.MatchExact},
		},
		Confidence: 0.9,
	}
	llm := &scriptedLLM{intents: []*dto.QueryIntent{emptyRound, aggregateIntent(0.9)}}
	svc, _ := newService(testConfig(), llm, t)

	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "total US imports by company?"})
	require.NoError(t, err)

	assert.Equal(t, session.StatusCompleted, resp.Status)
	assert.Equal(t, 2, resp.Iterations)
	assert.Equal(t, 2, llm.calls)
	assert.Contains(t, llm.lastFeedback, "matched 0 records", "the agent sees the empty first round")
	assert.Contains(t, llm.lastFeedback, "broaden or relax the filters")
}

func TestProcessQuestion_DetailAnswerCapsRows(t *testing.T) {
	detail := &dto.QueryIntent{
		Type: dto.IntentDetail,
		Filters: []dto.FilterExpression{
			{Field: "importCountry", Operator: dto.OpContains, Value: "US"},
		},
		Confidence: 0.9,
	}
	llm := &scriptedLLM{intents: []*dto.QueryIntent{detail}}
	svc, _ := newService(testConfig(), llm, t)

	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "show US transactions"})
	require.NoError(t, err)

	assert.Equal(t, session.StatusCompleted, resp.Status)
	assert.Equal(t, 3, resp.RecordCount)
	assert.Len(t, resp.Records, 2, "detail rows are capped by config")
	assert.Contains(t, resp.Answer, "3 matching transactions")
}

func TestProcessQuestion_RepeatedIntentTripsLoopDetection(t *testing.T) {
	// Valid but never confident enough to succeed, and identical every round.
	llm := &scriptedLLM{intents: []*dto.QueryIntent{aggregateIntent(0.3)}}
	svc, _ := newService(testConfig(), llm, t)

	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "total US imports?"})
	require.NoError(t, err)

	assert.Equal(t, session.StatusFailed, resp.Status)
	assert.Equal(t, session.ErrKindInfiniteLoop, resp.ErrorKind)
	assert.Equal(t, 3, resp.Iterations, "three identical rounds push the duplicate ratio past one half")
	assert.Contains(t, resp.Answer, "Best partial result")
}

func TestProcessQuestion_LLMFailureTerminatesSession(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("gemini API error: status code 400")}
	svc, registry := newService(testConfig(), llm, t)

	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "anything"})
	require.NoError(t, err, "analysis failures surface in the response, not as transport errors")

	assert.Equal(t, session.StatusFailed, resp.Status)
	assert.Equal(t, session.ErrKindApplication, resp.ErrorKind)
	require.NotNil(t, resp.ErrorMessage)
	assert.Contains(t, *resp.ErrorMessage, "status code 400")

	sess, err := registry.Get(context.Background(), resp.SessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusFailed, sess.Status)
}

func TestProcessQuestion_UnknownDataset(t *testing.T) {
	llm := &scriptedLLM{intents: []*dto.QueryIntent{aggregateIntent(0.9)}}
	svc, _ := newService(testConfig(), llm, t)

	missing := "no-such-dataset"
	_, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "q", Dataset: &missing})
	assert.ErrorIs(t, err, store.ErrDatasetNotFound)
}

func TestProcessQuestion_ConversationHistoryAccumulates(t *testing.T) {
	llm := &scriptedLLM{intents: []*dto.QueryIntent{aggregateIntent(0.9)}}
	svc, _ := newService(testConfig(), llm, t)
	ctx := context.Background()

	first, err := svc.ProcessQuestion(ctx, dto.QueryRequest{Question: "total US imports by company?"})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, llm.historyLens, "a fresh conversation starts with no history")

	second, err := svc.ProcessQuestion(ctx, dto.QueryRequest{
		Question:       "and only electronics?",
		ConversationId: &first.ConversationId,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationId, second.ConversationId)
	assert.Equal(t, 2, llm.historyLens[1], "the follow-up sees both turns of the first round")
	assert.NotEqual(t, first.SessionId, second.SessionId, "each question gets its own session")
}

func TestProcessQuestion_UnknownConversationIdStartsFresh(t *testing.T) {
	llm := &scriptedLLM{intents: []*dto.QueryIntent{aggregateIntent(0.9)}}
	svc, _ := newService(testConfig(), llm, t)

	bogus := "not-a-conversation"
	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "q", ConversationId: &bogus})
	require.NoError(t, err)
	assert.NotEqual(t, bogus, resp.ConversationId)
	assert.NotEmpty(t, resp.ConversationId)
}

func TestGetSession(t *testing.T) {
	llm := &scriptedLLM{intents: []*dto.QueryIntent{aggregateIntent(0.9)}}
	svc, _ := newService(testConfig(), llm, t)

	resp, err := svc.ProcessQuestion(context.Background(), dto.QueryRequest{Question: "q"})
	require.NoError(t, err)

	sess, err := svc.GetSession(context.Background(), resp.SessionId)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionId, sess.SessionId)

	_, err = svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
