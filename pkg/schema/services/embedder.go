package services

import (
	"context"
	"errors"
	"fmt"
)

// TaskType tells the embedding model what the vector will be used for
type TaskType string

const (
	// TaskTypeQuery embeds a user question that is matched against stored hadiths
	TaskTypeQuery TaskType = "RETRIEVAL_QUERY"
	// TaskTypeDocument is the task the stored hadith vectors were produced with
	TaskTypeDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// Embedder turns text into a vector comparable with hadiths.vector_embedding
type Embedder interface {
	Embed(ctx context.Context, text string, taskType TaskType) ([]float64, error)
}

var errEmptyEmbedding = errors.New("embedding is empty")

// checkDimensions rejects vectors that cannot be compared with the stored ones
func checkDimensions(vec []float64, want int) error {
	if len(vec) == 0 {
		return errEmptyEmbedding
	}
	if want > 0 && len(vec) != want {
		return fmt.Errorf("embedding has %d dimensions, stored hadiths have %d", len(vec), want)
	}
	return nil
}
