package vertex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	aiplatformpb "cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/hadith-similarity-search/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"
)

// Ensure VectorSearchRepository implements repository.VectorSearchRepository
var _ repository.VectorSearchRepository = (*VectorSearchRepository)(nil)

// Restrict namespaces the index datapoints are tagged with
const (
	namespaceSource = "source_id"
	namespaceBook   = "book"
)

// maxNeighbors caps a single FindNeighbors call
const maxNeighbors = 1000

// Config holds Vertex AI Vector Search configuration
type Config struct {
	ProjectID            string // GCP project ID
	Location             string // e.g., "us-central1"
	IndexEndpointID      string // Deployed index endpoint ID
	DeployedIndexID      string // The deployed index ID within the endpoint
	PublicEndpointDomain string // Public endpoint domain for queries (e.g., "123.us-central1-456.vdb.vertexai.goog")
}

func (c Config) indexEndpoint() string {
	return fmt.Sprintf("projects/%s/locations/%s/indexEndpoints/%s", c.ProjectID, c.Location, c.IndexEndpointID)
}

// neighborFinder is the part of aiplatform.MatchClient the repository calls
type neighborFinder interface {
	FindNeighbors(ctx context.Context, req *aiplatformpb.FindNeighborsRequest, opts ...gax.CallOption) (*aiplatformpb.FindNeighborsResponse, error)
}

// VectorSearchRepository implements repository.VectorSearchRepository using
// Vertex AI Vector Search. Datapoint ids are hadith ids; the hadith rows are
// read back from PostgreSQL.
type VectorSearchRepository struct {
	config      Config
	matchClient *aiplatform.MatchClient
	finder      neighborFinder
	db          *sqlx.DB
}

// NewVectorSearchRepository creates a new Vertex AI vector search repository
func NewVectorSearchRepository(ctx context.Context, config Config, db *sqlx.DB) (*VectorSearchRepository, error) {
	// For public endpoints, use the public domain; otherwise use regional endpoint
	var endpoint string
	if config.PublicEndpointDomain != "" {
		endpoint = fmt.Sprintf("%s:443", config.PublicEndpointDomain)
	} else {
		endpoint = fmt.Sprintf("%s-aiplatform.googleapis.com:443", config.Location)
	}

	matchClient, err := aiplatform.NewMatchClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create match client: %w", err)
	}

	return &VectorSearchRepository{
		config:      config,
		matchClient: matchClient,
		finder:      matchClient,
		db:          db,
	}, nil
}

// Close closes the Vertex AI client
func (r *VectorSearchRepository) Close() error {
	if r.matchClient != nil {
		return r.matchClient.Close()
	}
	return nil
}

// SearchByEmbedding finds the nearest hadiths to the query vector. The index
// holds vectors only, so query is not used for phrase matching. TotalCount
// counts neighbours up to one past the page: it tells whether a next page
// exists, not how many hadiths match.
func (r *VectorSearchRepository) SearchByEmbedding(ctx context.Context, embedding []float64, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	var restricts []*aiplatformpb.IndexDatapoint_Restriction
	if filter.SourceID != nil {
		restricts = append(restricts, &aiplatformpb.IndexDatapoint_Restriction{
			Namespace: namespaceSource,
			AllowList: []string{strconv.FormatInt(*filter.SourceID, 10)},
		})
	}
	if filter.Book != nil {
		restricts = append(restricts, &aiplatformpb.IndexDatapoint_Restriction{
			Namespace: namespaceBook,
			AllowList: []string{strconv.Itoa(*filter.Book)},
		})
	}

	neighbors, err := r.findNeighbors(ctx, float32Slice(embedding), restricts, neighborCount(page, 1))
	if err != nil {
		return models.ResultPage{}, err
	}
	return r.pageOf(ctx, neighbors, 0, page)
}

// SimilarTo reads the anchor's stored vector from PostgreSQL and finds its
// nearest neighbours, dropping the anchor from the results.
func (r *VectorSearchRepository) SimilarTo(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	var vec *pgvector.Vector
	err := r.db.GetContext(ctx, &vec, `SELECT vector_embedding FROM hadiths WHERE id = $1`, hadithID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResultPage{}, models.ErrNotFound
	}
	if err != nil {
		return models.ResultPage{}, models.NewQueryError("similar hadiths", fmt.Errorf("load anchor: %w", err))
	}
	if vec == nil {
		return models.ResultPage{}, models.ErrMissingEmbedding
	}

	neighbors, err := r.findNeighbors(ctx, vec.Slice(), nil, neighborCount(page, 2))
	if err != nil {
		return models.ResultPage{}, err
	}
	return r.pageOf(ctx, neighbors, hadithID, page)
}

// GetEmbedded reads a hadith and its stored vector from PostgreSQL
func (r *VectorSearchRepository) GetEmbedded(ctx context.Context, hadithID int64) (*models.Hadith, []float32, error) {
	return postgres.LoadEmbedded(ctx, r.db, hadithID)
}

// neighborCount is the page window plus extra look-ahead, capped at maxNeighbors
func neighborCount(page models.PageRequest, extra int) int {
	offset := page.Offset()
	if offset >= maxNeighbors || page.Limit+extra >= maxNeighbors-offset {
		return maxNeighbors
	}
	return offset + page.Limit + extra
}

type neighbor struct {
	id    int64
	score float64
}

func (r *VectorSearchRepository) findNeighbors(ctx context.Context, vector []float32, restricts []*aiplatformpb.IndexDatapoint_Restriction, count int) ([]neighbor, error) {
	req := &aiplatformpb.FindNeighborsRequest{
		IndexEndpoint:   r.config.indexEndpoint(),
		DeployedIndexId: r.config.DeployedIndexID,
		Queries: []*aiplatformpb.FindNeighborsRequest_Query{
			{
				Datapoint: &aiplatformpb.IndexDatapoint{
					FeatureVector: vector,
					Restricts:     restricts,
				},
				NeighborCount: int32(count),
			},
		},
	}

	resp, err := r.finder.FindNeighbors(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}
	if len(resp.GetNearestNeighbors()) == 0 {
		return nil, nil
	}

	found := resp.GetNearestNeighbors()[0].GetNeighbors()
	neighbors := make([]neighbor, 0, len(found))
	for _, n := range found {
		id, err := strconv.ParseInt(n.GetDatapoint().GetDatapointId(), 10, 64)
		if err != nil {
			continue
		}
		// Cosine distance; similarity = 1 - distance
		neighbors = append(neighbors, neighbor{id: id, score: 1 - n.GetDistance()})
	}
	return neighbors, nil
}

// pageOf drops exclude, cuts the requested window and hydrates it in neighbour order
func (r *VectorSearchRepository) pageOf(ctx context.Context, neighbors []neighbor, exclude int64, page models.PageRequest) (models.ResultPage, error) {
	kept := neighbors[:0]
	for _, n := range neighbors {
		if n.id != exclude {
			kept = append(kept, n)
		}
	}

	start := page.Offset()
	if start >= len(kept) {
		return models.ResultPage{Hadiths: []models.Hadith{}, TotalCount: len(kept)}, nil
	}
	end := min(start+page.Limit, len(kept))
	total := min(len(kept), end+1)

	hadiths, err := r.lookupHadiths(ctx, kept[start:end])
	if err != nil {
		return models.ResultPage{}, models.NewQueryError("lookup hadiths", err)
	}
	return models.ResultPage{Hadiths: hadiths, TotalCount: total}, nil
}

// lookupHadiths retrieves hadith rows from PostgreSQL, preserving neighbour order
func (r *VectorSearchRepository) lookupHadiths(ctx context.Context, neighbors []neighbor) ([]models.Hadith, error) {
	if len(neighbors) == 0 {
		return []models.Hadith{}, nil
	}

	ids := make([]int64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.id
	}

	query, args, err := sqlx.In(`
		SELECT `+postgres.HadithColumns+`
		FROM hadiths h
		JOIN sources s ON s.id = h.source_id
		WHERE h.id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("build IN query: %w", err)
	}

	// Rebind for PostgreSQL
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hadiths: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]postgres.HadithRow, len(neighbors))
	for rows.Next() {
		var row postgres.HadithRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan hadith: %w", err)
		}
		byID[row.ID] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hadiths: %w", err)
	}

	results := make([]models.Hadith, 0, len(neighbors))
	for _, n := range neighbors {
		row, ok := byID[n.id]
		if !ok {
			continue
		}
		h := row.ToModel()
		score := n.score
		h.Similarity = &score
		results = append(results, h)
	}
	return results, nil
}

func float32Slice(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
