package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	pkgservices "github.com/hadith-similarity-search/pkg/schema/services"
)

// QueryEmbedder turns a search query into a vector
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
}

// Ensure the shared embeddings service satisfies QueryEmbedder
var _ QueryEmbedder = (*pkgservices.EmbeddingsService)(nil)

// VectorSearchService handles semantic search over hadiths
type VectorSearchService struct {
	vectorRepo repository.VectorSearchRepository
	embedder   QueryEmbedder
}

// NewVectorSearchService creates a new vector search service
func NewVectorSearchService(vectorRepo repository.VectorSearchRepository, embedder QueryEmbedder) *VectorSearchService {
	return &VectorSearchService{
		vectorRepo: vectorRepo,
		embedder:   embedder,
	}
}

// SearchHadiths embeds a query and ranks hadiths against it, applying the
// filter before paging
func (s *VectorSearchService) SearchHadiths(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	query = strings.TrimSpace(query)
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return models.ResultPage{}, err
	}
	return s.vectorRepo.SearchByEmbedding(ctx, embedding, query, filter, page)
}

// SimilarHadiths ranks hadiths against the stored vector of hadithID
func (s *VectorSearchService) SimilarHadiths(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	return s.vectorRepo.SimilarTo(ctx, hadithID, page)
}

// CompareHadiths scores two hadiths by the cosine similarity of their stored vectors
func (s *VectorSearchService) CompareHadiths(ctx context.Context, firstID, secondID int64) (models.HadithComparison, error) {
	first, firstVec, err := s.vectorRepo.GetEmbedded(ctx, firstID)
	if err != nil {
		return models.HadithComparison{}, fmt.Errorf("hadith %d: %w", firstID, err)
	}
	second, secondVec, err := s.vectorRepo.GetEmbedded(ctx, secondID)
	if err != nil {
		return models.HadithComparison{}, fmt.Errorf("hadith %d: %w", secondID, err)
	}

	similarity, err := cosineSimilarity(float64Slice(firstVec), float64Slice(secondVec))
	if err != nil {
		return models.HadithComparison{}, err
	}
	return models.HadithComparison{Hadith1: *first, Hadith2: *second, Similarity: similarity}, nil
}

// CompareToText scores a hadith against free text. The hadith is loaded
// before the text is embedded.
func (s *VectorSearchService) CompareToText(ctx context.Context, hadithID int64, text string) (models.TextComparison, error) {
	hadith, stored, err := s.vectorRepo.GetEmbedded(ctx, hadithID)
	if err != nil {
		return models.TextComparison{}, fmt.Errorf("hadith %d: %w", hadithID, err)
	}

	text = strings.TrimSpace(text)
	embedding, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return models.TextComparison{}, err
	}

	similarity, err := cosineSimilarity(float64Slice(stored), embedding)
	if err != nil {
		return models.TextComparison{}, err
	}
	return models.TextComparison{Hadith: *hadith, Text: text, Similarity: similarity}, nil
}

// cosineSimilarity is clamped to [0, 1]. A zero vector scores 0.
func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("compare vectors: dimensions %d and %d differ", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return min(max(dot/(math.Sqrt(normA)*math.Sqrt(normB)), 0), 1), nil
}

func float64Slice(f32 []float32) []float64 {
	f64 := make([]float64, len(f32))
	for i, v := range f32 {
		f64[i] = float64(v)
	}
	return f64
}
