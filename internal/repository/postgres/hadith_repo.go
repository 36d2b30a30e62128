package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/jmoiron/sqlx"
)

// HadithColumns selects a hadith joined with its collection. The query must
// alias hadiths as h and sources as s.
const HadithColumns = `
	h.id, h.source_id, h.volume, h.book, h.chapter, h.number,
	h.arabic_text, COALESCE(h.english_text, '') AS english_text,
	h.narrator_chain, h.topics, h.created_at,
	s.name AS source_name, s.tradition, s.compiler`

// HadithRow is a hadiths row with the joined collection columns
type HadithRow struct {
	models.Hadith
	SourceName string  `db:"source_name"`
	Tradition  string  `db:"tradition"`
	Compiler   *string `db:"compiler"`
}

func (r HadithRow) ToModel() models.Hadith {
	h := r.Hadith
	h.Source = &models.SourceInfo{
		ID:        r.SourceID,
		Name:      r.SourceName,
		Tradition: r.Tradition,
		Compiler:  r.Compiler,
	}
	return h
}

// whereClause accumulates AND-ed conditions with positional arguments.
// Each condition is a format string whose verbs receive the argument's
// placeholder index.
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereClause) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

// next returns the placeholder index the following argument will take
func (w *whereClause) next() int {
	return len(w.args) + 1
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func applyHadithFilter(w *whereClause, filter models.HadithFilter) {
	if filter.SourceID != nil {
		w.add("h.source_id = $%d", *filter.SourceID)
	}
	if filter.Book != nil {
		w.add("h.book = $%d", *filter.Book)
	}
	if filter.Chapter != nil {
		w.add("h.chapter = $%d", *filter.Chapter)
	}
}

// escapeLike escapes LIKE metacharacters so the query matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// HadithRepository implements repository.HadithRepository for PostgreSQL
type HadithRepository struct {
	db *sqlx.DB
}

// NewHadithRepository creates a new PostgreSQL hadith repository
func NewHadithRepository(db *sqlx.DB) repository.HadithRepository {
	return &HadithRepository{db: db}
}

// List returns one page of hadiths matching the filter in ascending id order
func (r *HadithRepository) List(ctx context.Context, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error) {
	var w whereClause
	applyHadithFilter(&w, filter)
	return r.queryPage(ctx, "list hadiths", &w, page)
}

// SearchByKeyword matches the query as a case-insensitive substring of the English or Arabic text
func (r *HadithRepository) SearchByKeyword(ctx context.Context, query string, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.EmptyResultPage(), nil
	}

	var w whereClause
	w.add("(h.english_text ILIKE $%[1]d OR h.arabic_text ILIKE $%[1]d)", "%"+escapeLike(query)+"%")
	applyHadithFilter(&w, filter)
	return r.queryPage(ctx, "search hadiths by keyword", &w, page)
}

func (r *HadithRepository) queryPage(ctx context.Context, op string, w *whereClause, page models.PageRequest) (models.ResultPage, error) {
	var total int
	countQuery := "SELECT COUNT(*) FROM hadiths h " + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return models.ResultPage{}, models.NewQueryError(op, fmt.Errorf("count: %w", err))
	}
	if total == 0 || page.Offset() >= total {
		return models.ResultPage{Hadiths: []models.Hadith{}, TotalCount: total}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM hadiths h
		JOIN sources s ON s.id = h.source_id
		%s
		ORDER BY h.id ASC
		LIMIT $%d OFFSET $%d
	`, HadithColumns, w.String(), w.next(), w.next()+1)
	args := append(append([]interface{}{}, w.args...), page.Limit, page.Offset())

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return models.ResultPage{}, models.NewQueryError(op, err)
	}
	defer rows.Close()

	hadiths := make([]models.Hadith, 0, page.Limit)
	for rows.Next() {
		var row HadithRow
		if err := rows.StructScan(&row); err != nil {
			return models.ResultPage{}, models.NewQueryError(op, fmt.Errorf("scan hadith: %w", err))
		}
		hadiths = append(hadiths, row.ToModel())
	}
	if err := rows.Err(); err != nil {
		return models.ResultPage{}, models.NewQueryError(op, fmt.Errorf("iterate hadiths: %w", err))
	}

	return models.ResultPage{Hadiths: hadiths, TotalCount: total}, nil
}

// GetByID returns a single hadith with its collection
func (r *HadithRepository) GetByID(ctx context.Context, id int64) (*models.Hadith, error) {
	var row HadithRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+HadithColumns+`
		FROM hadiths h
		JOIN sources s ON s.id = h.source_id
		WHERE h.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewQueryError("get hadith", err)
	}
	h := row.ToModel()
	return &h, nil
}

// ListBooks returns the distinct book numbers of a collection with their hadith counts
func (r *HadithRepository) ListBooks(ctx context.Context, sourceID int64) ([]models.Facet, error) {
	facets := []models.Facet{}
	err := r.db.SelectContext(ctx, &facets, `
		SELECT book AS value, COUNT(*) AS hadith_count
		FROM hadiths
		WHERE source_id = $1 AND book IS NOT NULL
		GROUP BY book
		ORDER BY book ASC
	`, sourceID)
	if err != nil {
		return nil, models.NewQueryError("list books", err)
	}
	return facets, nil
}

// ListChapters returns the distinct chapter numbers of a book with their hadith counts
func (r *HadithRepository) ListChapters(ctx context.Context, sourceID int64, book int) ([]models.Facet, error) {
	facets := []models.Facet{}
	err := r.db.SelectContext(ctx, &facets, `
		SELECT chapter AS value, COUNT(*) AS hadith_count
		FROM hadiths
		WHERE source_id = $1 AND book = $2 AND chapter IS NOT NULL
		GROUP BY chapter
		ORDER BY chapter ASC
	`, sourceID, book)
	if err != nil {
		return nil, models.NewQueryError("list chapters", err)
	}
	return facets, nil
}
