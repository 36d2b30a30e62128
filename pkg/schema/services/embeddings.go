package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/hadith-similarity-search/pkg/schema/config"
)

// EmbeddingsService embeds search queries with the configured provider
type EmbeddingsService struct {
	embedder Embedder
}

var (
	embeddingsService *EmbeddingsService
	embeddingsOnce    sync.Once
	initErr           error
)

// GetEmbeddingsService returns the process-wide service built from
// EMBEDDING_PROVIDER. Check GetInitError before using it.
func GetEmbeddingsService() *EmbeddingsService {
	embeddingsOnce.Do(func() {
		embedder, err := newEmbedder(context.Background(), config.GetConfig())
		if err != nil {
			initErr = err
			return
		}
		embeddingsService = NewEmbeddingsService(embedder)
	})
	return embeddingsService
}

// GetInitError returns the error from building the process-wide service
func GetInitError() error {
	return initErr
}

func newEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "vertex":
		e, err := NewVertexEmbedder(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create vertex embedder: %w", err)
		}
		return e, nil
	case "custom", "":
		return NewCustomEmbedder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", cfg.EmbeddingProvider)
	}
}

// NewEmbeddingsService wraps an explicit embedder
func NewEmbeddingsService(embedder Embedder) *EmbeddingsService {
	return &EmbeddingsService{embedder: embedder}
}

// EmbedQuery folds Arabic spelling variants and embeds the query for retrieval
func (s *EmbeddingsService) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	embedding, err := s.embedder.Embed(ctx, NormalizeArabic(query), TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return embedding, nil
}

// Close releases the provider client, if it holds one
func (s *EmbeddingsService) Close() error {
	if s == nil {
		return nil
	}
	if closer, ok := s.embedder.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
