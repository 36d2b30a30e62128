package repository

import (
	"context"

	"github.com/hadith-similarity-search/internal/models"
)

// HadithRepository defines read access to the hadiths table
type HadithRepository interface {
	// List returns one page of hadiths matching the filter in ascending id order
	List(ctx context.Context, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error)

	// SearchByKeyword matches the query as a substring of the English or Arabic text
	SearchByKeyword(ctx context.Context, query string, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error)

	// GetByID returns models.ErrNotFound when no row matches
	GetByID(ctx context.Context, id int64) (*models.Hadith, error)

	// ListBooks returns the distinct book numbers of a collection in ascending order
	ListBooks(ctx context.Context, sourceID int64) ([]models.Facet, error)

	// ListChapters returns the distinct chapter numbers of a book in ascending order
	ListChapters(ctx context.Context, sourceID int64, book int) ([]models.Facet, error)
}

// SourceRepository defines read access to the sources table
type SourceRepository interface {
	// List returns every collection ordered by tradition and name
	List(ctx context.Context) ([]models.Source, error)

	// GetByID returns models.ErrNotFound when no row matches
	GetByID(ctx context.Context, id int64) (*models.Source, error)
}

// VectorSearchRepository defines operations for vector similarity search
type VectorSearchRepository interface {
	// SearchByEmbedding ranks hadiths against a query vector, filtering before paging
	SearchByEmbedding(ctx context.Context, embedding []float64, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error)

	// SimilarTo ranks hadiths against the stored vector of another hadith, excluding it
	SimilarTo(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error)

	// GetEmbedded returns a hadith with its stored vector, models.ErrNotFound
	// when no row matches and models.ErrMissingEmbedding when it has no vector
	GetEmbedded(ctx context.Context, hadithID int64) (*models.Hadith, []float32, error)
}

// RankedSearchRepository is the remote ranked-search service consumed by the web frontend
type RankedSearchRepository interface {
	// Search returns models.SearchUnavailableError on transport or non-2xx failures
	Search(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error)

	// Similar returns models.ErrNotFound when the anchor hadith does not exist
	Similar(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error)
}
