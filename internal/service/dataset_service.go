package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/store"
)

// DatasetService loads record snapshots and exposes their precomputed
// summaries.
type DatasetService interface {
	Load(ctx context.Context, req dto.LoadDatasetRequest) int
	Summary(ctx context.Context, name string) (*dto.DatasetSummaryResponse, error)
	Delete(ctx context.Context, name string) error
}

type datasetService struct {
	datasets store.DatasetStore
}

func NewDatasetService(datasets store.DatasetStore) DatasetService {
	return &datasetService{datasets: datasets}
}

func (s *datasetService) Load(ctx context.Context, req dto.LoadDatasetRequest) int {
	records := make([]model.Record, len(req.Records))
	for i, row := range req.Records {
		records[i] = model.Record(row)
	}
	count := s.datasets.Replace(ctx, req.Name, records)
	log.Info().Str("dataset", req.Name).Int("records", count).Msg("Dataset loaded")
	return count
}

func (s *datasetService) Summary(ctx context.Context, name string) (*dto.DatasetSummaryResponse, error) {
	cache, err := s.datasets.Cache(ctx, name)
	if err != nil {
		return nil, err
	}
	return &dto.DatasetSummaryResponse{
		Name:        name,
		RecordCount: cache.Totals.Count,
		TotalValue:  cache.Totals.Value,
		ByCompany:   cache.ByCompany,
		ByCategory:  cache.ByCategory,
		ByCountry:   cache.ByCountry,
		ByMonth:     cache.ByMonth,
		BuiltAt:     cache.BuiltAt.Format(time.RFC3339),
	}, nil
}

func (s *datasetService) Delete(ctx context.Context, name string) error {
	return s.datasets.Delete(ctx, name)
}
