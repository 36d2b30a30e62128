package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hadith-similarity-search/pkg/schema/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(url string, dims int) *CustomEmbedder {
	return NewCustomEmbedder(&config.Config{
		EmbeddingServiceURL: url + "/",
		EmbeddingDimensions: dims,
		EmbeddingTimeout:    time.Second,
	})
}

func TestCustomEmbedder_Embed(t *testing.T) {
	var got embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	emb, err := newTestEmbedder(srv.URL, 3).Embed(context.Background(), "intentions", TaskTypeQuery)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, emb)
	assert.Equal(t, "intentions", got.Text)
	assert.Equal(t, instructions[TaskTypeQuery], got.Instruction)
}

func TestCustomEmbedder_UnknownTaskUsesDocumentInstruction(t *testing.T) {
	assert.Equal(t, instructions[TaskTypeDocument], instructionFor(TaskType("OTHER")))
}

func TestCustomEmbedder_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		dims    int
		wantErr string
	}{
		{name: "error status", status: http.StatusServiceUnavailable, body: "model not loaded", wantErr: "503: model not loaded"},
		{name: "empty vector", status: http.StatusOK, body: `{"embedding":[]}`, wantErr: "embedding is empty"},
		{name: "wrong width", status: http.StatusOK, body: `{"embedding":[1,2]}`, dims: 768, wantErr: "has 2 dimensions"},
		{name: "bad json", status: http.StatusOK, body: `{"embedding":`, wantErr: "decode embed response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestEmbedder(srv.URL, tt.dims).Embed(context.Background(), "text", TaskTypeQuery)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
