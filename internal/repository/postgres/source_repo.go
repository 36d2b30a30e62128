package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/jmoiron/sqlx"
)

// SourceRepository implements repository.SourceRepository for PostgreSQL
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository creates a new PostgreSQL source repository
func NewSourceRepository(db *sqlx.DB) repository.SourceRepository {
	return &SourceRepository{db: db}
}

// List returns every collection ordered by tradition and name
func (r *SourceRepository) List(ctx context.Context) ([]models.Source, error) {
	sources := []models.Source{}
	err := r.db.SelectContext(ctx, &sources, `
		SELECT id, name, tradition, description, compiler, created_at
		FROM sources
		ORDER BY tradition, name
	`)
	if err != nil {
		return nil, models.NewQueryError("list sources", err)
	}
	return sources, nil
}

// GetByID returns a single collection
func (r *SourceRepository) GetByID(ctx context.Context, id int64) (*models.Source, error) {
	var source models.Source
	err := r.db.GetContext(ctx, &source, `
		SELECT id, name, tradition, description, compiler, created_at
		FROM sources
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewQueryError("get source", err)
	}
	return &source, nil
}
