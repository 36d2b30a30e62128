package services

import (
	"testing"

	"github.com/hadith-similarity-search/pkg/schema/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestVertexModelEndpoint(t *testing.T) {
	cfg := &config.Config{GCPProjectID: "proj", GCPLocation: "europe-west4", VertexModel: "text-multilingual-embedding-002"}
	assert.Equal(t,
		"projects/proj/locations/europe-west4/publishers/google/models/text-multilingual-embedding-002",
		vertexModelEndpoint(cfg))
}

func TestPredictRequest(t *testing.T) {
	req, err := predictRequest("endpoint", "patience", TaskTypeQuery, 768)
	require.NoError(t, err)

	assert.Equal(t, "endpoint", req.Endpoint)
	require.Len(t, req.Instances, 1)
	fields := req.Instances[0].GetStructValue().GetFields()
	assert.Equal(t, "patience", fields["content"].GetStringValue())
	assert.Equal(t, "RETRIEVAL_QUERY", fields["task_type"].GetStringValue())
	assert.Equal(t, float64(768), req.Parameters.GetStructValue().GetFields()["outputDimensionality"].GetNumberValue())

	req, err = predictRequest("endpoint", "x", TaskTypeQuery, 0)
	require.NoError(t, err)
	assert.Nil(t, req.Parameters)
}

func prediction(t *testing.T, values ...any) *structpb.Value {
	t.Helper()
	v, err := structpb.NewValue(map[string]any{
		"embeddings": map[string]any{"values": values},
	})
	require.NoError(t, err)
	return v
}

func TestEmbeddingFrom(t *testing.T) {
	got, err := embeddingFrom([]*structpb.Value{prediction(t, 0.5, -0.25)})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.25}, got)
}

func TestEmbeddingFrom_Malformed(t *testing.T) {
	_, err := embeddingFrom(nil)
	assert.ErrorContains(t, err, "empty")

	other, err := structpb.NewValue(map[string]any{"other": 1})
	require.NoError(t, err)
	_, err = embeddingFrom([]*structpb.Value{other})
	assert.ErrorContains(t, err, "no embeddings.values")

	_, err = embeddingFrom([]*structpb.Value{structpb.NewStringValue("x")})
	assert.ErrorContains(t, err, "no embeddings.values")

	_, err = embeddingFrom([]*structpb.Value{prediction(t, 1.0, "two")})
	assert.ErrorContains(t, err, "value 1 is not a number")
}

func TestCheckDimensions(t *testing.T) {
	assert.ErrorIs(t, checkDimensions(nil, 3), errEmptyEmbedding)
	assert.NoError(t, checkDimensions([]float64{1, 2, 3}, 3))
	assert.NoError(t, checkDimensions([]float64{1}, 0))
	assert.Error(t, checkDimensions([]float64{1}, 3))
}
