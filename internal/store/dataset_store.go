package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"tradelens-backend/internal/aggregate"
	"tradelens-backend/internal/model"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
)

// DefaultDatasetName is used when a query does not name a dataset.
const DefaultDatasetName = "default"

// DatasetStore owns the named in-memory record snapshots. The surrounding
// application loads snapshots here; the query core only ever reads them.
// Every replace rebuilds the dataset's aggregation cache from scratch;
// patching a cache in place is how staleness bugs happen, so it is not
// offered.
type DatasetStore interface {
	Replace(ctx context.Context, name string, records []model.Record) int
	Records(ctx context.Context, name string) ([]model.Record, error)
	Cache(ctx context.Context, name string) (*aggregate.Cache, error)
	Delete(ctx context.Context, name string) error
}

type dataset struct {
	records []model.Record
	cache   *aggregate.Cache
}

type inMemoryDatasetStore struct {
	datasets map[string]*dataset
	fields   aggregate.CacheFields
	mu       sync.RWMutex
}

func NewInMemoryDatasetStore(fields aggregate.CacheFields) DatasetStore {
	return &inMemoryDatasetStore{
		datasets: make(map[string]*dataset),
		fields:   fields,
	}
}

// Replace swaps the snapshot for a dataset and rebuilds its cache. Returns
// the stored record count.
func (s *inMemoryDatasetStore) Replace(ctx context.Context, name string, records []model.Record) int {
	copied := make([]model.Record, len(records))
	for i, rec := range records {
		copied[i] = rec.Clone()
	}

	ds := &dataset{
		records: copied,
		cache:   aggregate.BuildCache(copied, s.fields),
	}

	s.mu.Lock()
	s.datasets[name] = ds
	s.mu.Unlock()

	log.Info().Str("dataset", name).Int("records", len(copied)).Msg("Dataset snapshot replaced, cache rebuilt")
	return len(copied)
}

func (s *inMemoryDatasetStore) Records(ctx context.Context, name string) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ds, ok := s.datasets[name]; ok {
		return ds.records, nil
	}
	return nil, ErrDatasetNotFound
}

func (s *inMemoryDatasetStore) Cache(ctx context.Context, name string) (*aggregate.Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ds, ok := s.datasets[name]; ok {
		return ds.cache, nil
	}
	return nil, ErrDatasetNotFound
}

func (s *inMemoryDatasetStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[name]; !ok {
		return ErrDatasetNotFound
	}
	delete(s.datasets, name)
	return nil
}
