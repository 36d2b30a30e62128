package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// scoredRow is a hadith row carrying its ranking score
type scoredRow struct {
	HadithRow
	Similarity float64 `db:"similarity"`
}

func (r scoredRow) toModel() models.Hadith {
	h := r.HadithRow.ToModel()
	score := r.Similarity
	h.Similarity = &score
	return h
}

// VectorSearchRepository implements repository.VectorSearchRepository for PostgreSQL with pgvector
type VectorSearchRepository struct {
	db *sqlx.DB
}

// NewVectorSearchRepository creates a new PostgreSQL vector search repository
func NewVectorSearchRepository(db *sqlx.DB) repository.VectorSearchRepository {
	return &VectorSearchRepository{db: db}
}

// SearchByEmbedding ranks hadiths by a hybrid of cosine similarity to the
// query vector (weight 0.8) and a literal phrase match on the English text
// (weight 0.2). A hadith qualifies when its similarity exceeds 0.4 or when the
// phrase or any significant query word appears in its text.
func (r *VectorSearchRepository) SearchByEmbedding(ctx context.Context, embedding []float64, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	vec := pgvector.NewVector(float32Slice(embedding))

	w := whereClause{args: []interface{}{
		vec,
		"%" + escapeLike(query) + "%",
		pq.Array(keywordPatterns(query)),
	}}
	w.addRaw("h.vector_embedding IS NOT NULL")
	w.addRaw(`(
		1 - (h.vector_embedding <=> $1::vector) > 0.4
		OR h.english_text ILIKE $2
		OR h.english_text ILIKE ANY($3)
	)`)
	if filter.SourceID != nil {
		w.add("h.source_id = $%d", *filter.SourceID)
	}
	if filter.Book != nil {
		w.add("h.book = $%d", *filter.Book)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM hadiths h "+w.String(), w.args...); err != nil {
		return models.ResultPage{}, models.NewQueryError("vector search hadiths", fmt.Errorf("count: %w", err))
	}
	if total == 0 || page.Offset() >= total {
		return models.ResultPage{Hadiths: []models.Hadith{}, TotalCount: total}, nil
	}

	rankQuery := fmt.Sprintf(`
		SELECT %s,
		       0.8 * (1 - (h.vector_embedding <=> $1::vector))
		       + 0.2 * CASE WHEN h.english_text ILIKE $2 THEN 1.0 ELSE 0.0 END AS similarity
		FROM hadiths h
		JOIN sources s ON s.id = h.source_id
		%s
		ORDER BY similarity DESC, h.id ASC
		LIMIT $%d OFFSET $%d
	`, HadithColumns, w.String(), w.next(), w.next()+1)
	args := append(append([]interface{}{}, w.args...), page.Limit, page.Offset())

	hadiths, err := r.queryScored(ctx, rankQuery, args...)
	if err != nil {
		return models.ResultPage{}, models.NewQueryError("vector search hadiths", err)
	}
	return models.ResultPage{Hadiths: hadiths, TotalCount: total}, nil
}

// similarAnchor exposes the anchor hadith's vector and its English terms as a tsquery
const similarAnchor = `
	WITH anchor AS (
		SELECT vector_embedding,
		       plainto_tsquery('english', COALESCE(english_text, '')) AS terms
		FROM hadiths
		WHERE id = $1
	)`

const similarPredicate = `
	WHERE h.id <> $1
	  AND h.vector_embedding IS NOT NULL
	  AND (
		1 - (h.vector_embedding <=> a.vector_embedding) > 0.5
		OR to_tsvector('english', COALESCE(h.english_text, '')) @@ a.terms
	  )`

// SimilarTo ranks hadiths against the stored vector of another hadith by a
// hybrid of cosine similarity (weight 0.7) and full-text rank against the
// anchor's English text (weight 0.3). The anchor itself is never returned.
func (r *VectorSearchRepository) SimilarTo(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	var hasEmbedding bool
	err := r.db.GetContext(ctx, &hasEmbedding, `SELECT vector_embedding IS NOT NULL FROM hadiths WHERE id = $1`, hadithID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResultPage{}, models.ErrNotFound
	}
	if err != nil {
		return models.ResultPage{}, models.NewQueryError("similar hadiths", fmt.Errorf("load anchor: %w", err))
	}
	if !hasEmbedding {
		return models.ResultPage{}, models.ErrMissingEmbedding
	}

	var total int
	countQuery := similarAnchor + `
		SELECT COUNT(*)
		FROM hadiths h
		CROSS JOIN anchor a` + similarPredicate
	if err := r.db.GetContext(ctx, &total, countQuery, hadithID); err != nil {
		return models.ResultPage{}, models.NewQueryError("similar hadiths", fmt.Errorf("count: %w", err))
	}
	if total == 0 || page.Offset() >= total {
		return models.ResultPage{Hadiths: []models.Hadith{}, TotalCount: total}, nil
	}

	rankQuery := similarAnchor + `
		SELECT ` + HadithColumns + `,
		       0.7 * (1 - (h.vector_embedding <=> a.vector_embedding))
		       + 0.3 * ts_rank_cd(to_tsvector('english', COALESCE(h.english_text, '')), a.terms) AS similarity
		FROM hadiths h
		CROSS JOIN anchor a
		JOIN sources s ON s.id = h.source_id` + similarPredicate + `
		ORDER BY similarity DESC, h.id ASC
		LIMIT $2 OFFSET $3`

	hadiths, err := r.queryScored(ctx, rankQuery, hadithID, page.Limit, page.Offset())
	if err != nil {
		return models.ResultPage{}, models.NewQueryError("similar hadiths", err)
	}
	return models.ResultPage{Hadiths: hadiths, TotalCount: total}, nil
}

// embeddedRow is a hadith row carrying its stored vector
type embeddedRow struct {
	HadithRow
	Embedding *pgvector.Vector `db:"vector_embedding"`
}

// LoadEmbedded reads a hadith with its collection and stored vector. It
// returns models.ErrNotFound when no row matches and models.ErrMissingEmbedding
// when the hadith has not been embedded.
func LoadEmbedded(ctx context.Context, db sqlx.QueryerContext, hadithID int64) (*models.Hadith, []float32, error) {
	var row embeddedRow
	err := sqlx.GetContext(ctx, db, &row, `
		SELECT `+HadithColumns+`, h.vector_embedding
		FROM hadiths h
		JOIN sources s ON s.id = h.source_id
		WHERE h.id = $1`, hadithID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, models.ErrNotFound
	}
	if err != nil {
		return nil, nil, models.NewQueryError("load embedded hadith", err)
	}
	if row.Embedding == nil {
		return nil, nil, models.ErrMissingEmbedding
	}
	h := row.ToModel()
	return &h, row.Embedding.Slice(), nil
}

// GetEmbedded returns a hadith with its stored vector
func (r *VectorSearchRepository) GetEmbedded(ctx context.Context, hadithID int64) (*models.Hadith, []float32, error) {
	return LoadEmbedded(ctx, r.db, hadithID)
}

func (r *VectorSearchRepository) queryScored(ctx context.Context, query string, args ...interface{}) ([]models.Hadith, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hadiths := []models.Hadith{}
	for rows.Next() {
		var row scoredRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan hadith result: %w", err)
		}
		hadiths = append(hadiths, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hadith results: %w", err)
	}
	return hadiths, nil
}

// float32Slice converts []float64 to []float32 for pgvector
func float32Slice(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
