package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens-backend/internal/aggregate"
	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/store"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{"company": "Acme Trading Co Ltd", "importCountry": "United States", "amount": 1200.0, "date": "2024-01-15"},
		{"company": "Beta Logistics", "importCountry": "Vietnam", "amount": 800.0, "date": "2024-02-03"},
	}
}

func TestDatasetStore_ReplaceAndRead(t *testing.T) {
	s := store.NewInMemoryDatasetStore(aggregate.DefaultCacheFields())
	ctx := context.Background()

	count := s.Replace(ctx, "trades", sampleRecords())
	assert.Equal(t, 2, count)

	records, err := s.Records(ctx, "trades")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	cache, err := s.Cache(ctx, "trades")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, cache.Totals.Value)
	assert.Equal(t, 2, cache.Totals.Count)
	assert.Len(t, cache.ByMonth, 2)

	_, err = s.Records(ctx, "other")
	assert.ErrorIs(t, err, store.ErrDatasetNotFound)
}

func TestDatasetStore_ReplaceRebuildsCache(t *testing.T) {
	s := store.NewInMemoryDatasetStore(aggregate.DefaultCacheFields())
	ctx := context.Background()

	s.Replace(ctx, "trades", sampleRecords())
	s.Replace(ctx, "trades", sampleRecords()[:1])

	cache, err := s.Cache(ctx, "trades")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Totals.Count, "the cache reflects the new snapshot, not the old one")
	assert.Equal(t, 1200.0, cache.Totals.Value)
}

func TestDatasetStore_ReplaceClonesInput(t *testing.T) {
	s := store.NewInMemoryDatasetStore(aggregate.DefaultCacheFields())
	ctx := context.Background()

	input := sampleRecords()
	s.Replace(ctx, "trades", input)
	input[0]["company"] = "tampered"

	records, err := s.Records(ctx, "trades")
	require.NoError(t, err)
	got, _ := records[0].Field("company")
	assert.Equal(t, "Acme Trading Co Ltd", got)
}

func TestDatasetStore_Delete(t *testing.T) {
	s := store.NewInMemoryDatasetStore(aggregate.DefaultCacheFields())
	ctx := context.Background()

	s.Replace(ctx, "trades", sampleRecords())
	require.NoError(t, s.Delete(ctx, "trades"))
	assert.ErrorIs(t, s.Delete(ctx, "trades"), store.ErrDatasetNotFound)
}

func TestConversationStore_RoundTrip(t *testing.T) {
	s := store.NewInMemoryConversationStore()
	ctx := context.Background()

	id, err := s.CreateConversation(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.AddTurn(ctx, id, dto.ConversationTurn{Role: "user", Content: "hello"}))
	require.NoError(t, s.AddTurn(ctx, id, dto.ConversationTurn{Role: "model", Content: "{}"}))

	history, err := s.GetHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)

	_, err = s.GetHistory(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
	assert.ErrorIs(t, s.AddTurn(ctx, "missing", dto.ConversationTurn{}), store.ErrConversationNotFound)
}
