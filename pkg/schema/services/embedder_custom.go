package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hadith-similarity-search/pkg/schema/config"
)

// CustomEmbedder calls a self-hosted embedding service over HTTP. The service
// takes an instruction prefix in place of a Vertex task type.
type CustomEmbedder struct {
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewCustomEmbedder creates an embedder for EMBEDDING_SERVICE_URL
func NewCustomEmbedder(cfg *config.Config) *CustomEmbedder {
	return &CustomEmbedder{
		baseURL:    strings.TrimRight(cfg.EmbeddingServiceURL, "/"),
		dimensions: cfg.EmbeddingDimensions,
		client:     &http.Client{Timeout: cfg.EmbeddingTimeout},
	}
}

var instructions = map[TaskType]string{
	TaskTypeQuery:    "Represent the question for retrieving relevant hadiths: ",
	TaskTypeDocument: "Represent the hadith for retrieval: ",
}

func instructionFor(taskType TaskType) string {
	if instruction, ok := instructions[taskType]; ok {
		return instruction
	}
	return instructions[TaskTypeDocument]
}

type embedRequest struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed posts text to /embed
func (e *CustomEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Text: text, Instruction: instructionFor(taskType)})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if err := checkDimensions(out.Embedding, e.dimensions); err != nil {
		return nil, err
	}
	return out.Embedding, nil
}
