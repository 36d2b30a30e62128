package services

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/hadith-similarity-search/pkg/schema/config"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexEmbedder embeds queries with a Vertex AI text embedding model
type VertexEmbedder struct {
	client     *aiplatform.PredictionClient
	model      string
	dimensions int
}

// NewVertexEmbedder connects to the regional prediction endpoint
func NewVertexEmbedder(ctx context.Context, cfg *config.Config) (*VertexEmbedder, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for Vertex AI embeddings")
	}

	client, err := aiplatform.NewPredictionClient(ctx,
		option.WithEndpoint(cfg.GCPLocation+"-aiplatform.googleapis.com:443"))
	if err != nil {
		return nil, fmt.Errorf("create prediction client: %w", err)
	}

	return &VertexEmbedder{
		client:     client,
		model:      vertexModelEndpoint(cfg),
		dimensions: cfg.EmbeddingDimensions,
	}, nil
}

func vertexModelEndpoint(cfg *config.Config) string {
	return fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		cfg.GCPProjectID, cfg.GCPLocation, cfg.VertexModel)
}

// Close closes the prediction client
func (e *VertexEmbedder) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Embed predicts the embedding of one text
func (e *VertexEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float64, error) {
	req, err := predictRequest(e.model, text, taskType, e.dimensions)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("predict embedding: %w", err)
	}

	vec, err := embeddingFrom(resp.GetPredictions())
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(vec, e.dimensions); err != nil {
		return nil, err
	}
	return vec, nil
}

// predictRequest asks for one embedding. The output width is pinned to the
// width of the stored hadith vectors when it is known.
func predictRequest(model, text string, taskType TaskType, dimensions int) (*aiplatformpb.PredictRequest, error) {
	instance, err := structpb.NewValue(map[string]interface{}{
		"content":   text,
		"task_type": string(taskType),
	})
	if err != nil {
		return nil, fmt.Errorf("build instance: %w", err)
	}

	req := &aiplatformpb.PredictRequest{
		Endpoint:  model,
		Instances: []*structpb.Value{instance},
	}
	if dimensions > 0 {
		req.Parameters, err = structpb.NewValue(map[string]interface{}{
			"outputDimensionality": dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("build parameters: %w", err)
		}
	}
	return req, nil
}

// embeddingFrom reads predictions[0].embeddings.values
func embeddingFrom(predictions []*structpb.Value) ([]float64, error) {
	if len(predictions) == 0 {
		return nil, fmt.Errorf("prediction response is empty")
	}
	embeddings := predictions[0].GetStructValue().GetFields()["embeddings"]
	values := embeddings.GetStructValue().GetFields()["values"].GetListValue()
	if values == nil {
		return nil, fmt.Errorf("prediction has no embeddings.values list")
	}

	vec := make([]float64, len(values.GetValues()))
	for i, v := range values.GetValues() {
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, fmt.Errorf("embedding value %d is not a number", i)
		}
		vec[i] = v.GetNumberValue()
	}
	return vec, nil
}
