package services

import (
	"context"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
)

// CatalogService reads hadiths and collections straight from the store
type CatalogService struct {
	hadiths repository.HadithRepository
	sources repository.SourceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(hadiths repository.HadithRepository, sources repository.SourceRepository) *CatalogService {
	return &CatalogService{hadiths: hadiths, sources: sources}
}

// ListRecords returns one page of hadiths matching the filter
func (s *CatalogService) ListRecords(ctx context.Context, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error) {
	if err := filter.Validate(); err != nil {
		return models.ResultPage{}, err
	}
	return s.hadiths.List(ctx, filter, page)
}

// SearchByKeyword matches the query literally against hadith text
func (s *CatalogService) SearchByKeyword(ctx context.Context, query string, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error) {
	if err := filter.Validate(); err != nil {
		return models.ResultPage{}, err
	}
	return s.hadiths.SearchByKeyword(ctx, query, filter, page)
}

// GetRecord returns a single hadith with its collection
func (s *CatalogService) GetRecord(ctx context.Context, id int64) (*models.Hadith, error) {
	return s.hadiths.GetByID(ctx, id)
}

// ListCollections returns every collection
func (s *CatalogService) ListCollections(ctx context.Context) ([]models.Source, error) {
	return s.sources.List(ctx)
}

// GetCollection returns a single collection
func (s *CatalogService) GetCollection(ctx context.Context, id int64) (*models.Source, error) {
	return s.sources.GetByID(ctx, id)
}

// ListBooks returns the books of a collection. A nil collection yields no books.
func (s *CatalogService) ListBooks(ctx context.Context, sourceID *int64) ([]models.Facet, error) {
	if sourceID == nil {
		return []models.Facet{}, nil
	}
	return s.hadiths.ListBooks(ctx, *sourceID)
}

// ListChapters returns the chapters of a book. Both levels must be selected.
func (s *CatalogService) ListChapters(ctx context.Context, sourceID *int64, book *int) ([]models.Facet, error) {
	if sourceID == nil || book == nil {
		return []models.Facet{}, nil
	}
	return s.hadiths.ListChapters(ctx, *sourceID, *book)
}
