// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/stretchr/testify/mock"
)

var (
	_ repository.HadithRepository       = (*MockHadithRepository)(nil)
	_ repository.SourceRepository       = (*MockSourceRepository)(nil)
	_ repository.VectorSearchRepository = (*MockVectorSearchRepository)(nil)
	_ repository.RankedSearchRepository = (*MockRankedSearchRepository)(nil)
)

// MockHadithRepository mocks repository.HadithRepository
type MockHadithRepository struct {
	mock.Mock
}

func (m *MockHadithRepository) List(ctx context.Context, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(models.ResultPage), args.Error(1)
}

func (m *MockHadithRepository) SearchByKeyword(ctx context.Context, query string, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error) {
	args := m.Called(ctx, query, filter, page)
	return args.Get(0).(models.ResultPage), args.Error(1)
}

func (m *MockHadithRepository) GetByID(ctx context.Context, id int64) (*models.Hadith, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hadith), args.Error(1)
}

func (m *MockHadithRepository) ListBooks(ctx context.Context, sourceID int64) ([]models.Facet, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Facet), args.Error(1)
}

func (m *MockHadithRepository) ListChapters(ctx context.Context, sourceID int64, book int) ([]models.Facet, error) {
	args := m.Called(ctx, sourceID, book)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Facet), args.Error(1)
}

// MockSourceRepository mocks repository.SourceRepository
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) List(ctx context.Context) ([]models.Source, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Source), args.Error(1)
}

func (m *MockSourceRepository) GetByID(ctx context.Context, id int64) (*models.Source, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Source), args.Error(1)
}

// MockVectorSearchRepository mocks repository.VectorSearchRepository
type MockVectorSearchRepository struct {
	mock.Mock
}

func (m *MockVectorSearchRepository) SearchByEmbedding(ctx context.Context, embedding []float64, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	args := m.Called(ctx, embedding, query, filter, page)
	return args.Get(0).(models.ResultPage), args.Error(1)
}

func (m *MockVectorSearchRepository) SimilarTo(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	args := m.Called(ctx, hadithID, page)
	return args.Get(0).(models.ResultPage), args.Error(1)
}

func (m *MockVectorSearchRepository) GetEmbedded(ctx context.Context, hadithID int64) (*models.Hadith, []float32, error) {
	args := m.Called(ctx, hadithID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Hadith), args.Get(1).([]float32), args.Error(2)
}

// MockRankedSearchRepository mocks repository.RankedSearchRepository
type MockRankedSearchRepository struct {
	mock.Mock
}

func (m *MockRankedSearchRepository) Search(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	args := m.Called(ctx, query, filter, page)
	return args.Get(0).(models.ResultPage), args.Error(1)
}

func (m *MockRankedSearchRepository) Similar(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	args := m.Called(ctx, hadithID, page)
	return args.Get(0).(models.ResultPage), args.Error(1)
}
