package services

import (
	"context"
	"errors"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"go.uber.org/zap"
)

// BrowseService is the access layer behind the web frontend. Listing and
// lookups go to the store; ranked search and compare go to the remote
// search service.
type BrowseService struct {
	*CatalogService
	ranked          repository.RankedSearchRepository
	keywordFallback bool
	logger          *zap.Logger
}

// SearchResult is a search page and whether it came from the keyword fallback
type SearchResult struct {
	Page     models.ResultPage
	Fallback bool
}

// NewBrowseService creates the frontend access layer
func NewBrowseService(catalog *CatalogService, ranked repository.RankedSearchRepository, keywordFallback bool, logger *zap.Logger) *BrowseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowseService{
		CatalogService:  catalog,
		ranked:          ranked,
		keywordFallback: keywordFallback,
		logger:          logger,
	}
}

// SearchByVector runs a ranked search on the remote service
func (s *BrowseService) SearchByVector(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.EmptyResultPage(), nil
	}
	if filter.Book != nil && filter.SourceID == nil {
		return models.ResultPage{}, models.NewInvalidFilterError("book requires a collection")
	}
	return s.ranked.Search(ctx, query, filter, page)
}

// Search runs SearchByVector and, when the search service is unavailable and
// the fallback is enabled, answers with a keyword match instead
func (s *BrowseService) Search(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (SearchResult, error) {
	result, err := s.SearchByVector(ctx, query, filter, page)
	if err == nil {
		return SearchResult{Page: result}, nil
	}
	if !s.keywordFallback || !errors.Is(err, models.ErrSearchUnavailable) {
		return SearchResult{}, err
	}

	s.logger.Warn("search service unavailable, falling back to keyword search",
		zap.String("query", query),
		zap.Error(err))

	keyword, kerr := s.SearchByKeyword(ctx, query, models.HadithFilter{SourceID: filter.SourceID, Book: filter.Book}, page)
	if kerr != nil {
		return SearchResult{}, errors.Join(err, kerr)
	}
	return SearchResult{Page: keyword, Fallback: true}, nil
}

// FindSimilar ranks hadiths against the stored vector of hadithID
func (s *BrowseService) FindSimilar(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	return s.ranked.Similar(ctx, hadithID, page)
}
