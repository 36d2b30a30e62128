package models

// SearchRequest is the query string accepted by GET /search/.
// Optional numeric filters are untagged and parsed by the handler so that an
// absent value stays nil.
type SearchRequest struct {
	Query    string `query:"query" validate:"required,min=2,max=500"`
	Page     int    `query:"page" validate:"min=1,max=100000"`
	Limit    int    `query:"limit" validate:"min=1,max=100"`
	SourceID *int64 `validate:"omitempty,gt=0"`
	Book     *int   `validate:"omitempty,gte=0"`
}

// SimilarRequest is the path and query accepted by GET /compare/similar-hadiths/:id
type SimilarRequest struct {
	HadithID int64 `param:"id" validate:"required,gt=0"`
	Page     int   `query:"page" validate:"min=1,max=100000"`
	Limit    int   `query:"limit" validate:"min=1,max=100"`
}

// PairCompareRequest is the query string accepted by GET /compare/hadith-to-hadith
type PairCompareRequest struct {
	HadithID1 int64 `query:"hadith_id_1" validate:"required,gt=0"`
	HadithID2 int64 `query:"hadith_id_2" validate:"required,gt=0"`
}

// TextCompareRequest is the query string accepted by GET /compare/hadith-to-text
type TextCompareRequest struct {
	HadithID int64  `query:"hadith_id" validate:"required,gt=0"`
	Text     string `query:"text" validate:"required,min=2,max=500"`
}

// ListRequest is the query string accepted by GET /hadiths/
type ListRequest struct {
	SourceID *int64 `validate:"omitempty,gt=0"`
	Book     *int   `validate:"omitempty,gte=0"`
	Chapter  *int   `validate:"omitempty,gte=0"`
	Page     int    `query:"page" validate:"min=1,max=100000"`
	Limit    int    `query:"limit" validate:"min=1,max=100"`
}

// SearchResponse is the wire shape of GET /search/. With the Vertex AI
// backend TotalCount stops one past the page, so it only tells whether a next
// page exists.
type SearchResponse struct {
	Hadiths    []Hadith `json:"hadiths"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	Query      string   `json:"query"`
}

// SimilarResponse is the wire shape of GET /compare/similar-hadiths/:id.
// The snake_case total is what deployed clients of this endpoint expect.
type SimilarResponse struct {
	Hadiths    []Hadith `json:"hadiths"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	Query      string   `json:"query"`
}

// HadithComparison is the wire shape of GET /compare/hadith-to-hadith
type HadithComparison struct {
	Hadith1    Hadith  `json:"hadith1"`
	Hadith2    Hadith  `json:"hadith2"`
	Similarity float64 `json:"similarity"`
}

// TextComparison is the wire shape of GET /compare/hadith-to-text
type TextComparison struct {
	Hadith     Hadith  `json:"hadith"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// ListResponse is the wire shape of GET /hadiths/
type ListResponse struct {
	Hadiths    []Hadith `json:"hadiths"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
}

// SourcesResponse is the wire shape of GET /hadiths/sources
type SourcesResponse struct {
	Sources []Source `json:"sources"`
	Count   int      `json:"count"`
}

// BooksResponse is the wire shape of GET /hadiths/books/:source_id
type BooksResponse struct {
	Books []Facet `json:"books"`
	Count int     `json:"count"`
}

// ChaptersResponse is the wire shape of GET /hadiths/chapters/:source_id/:book
type ChaptersResponse struct {
	Chapters []Facet `json:"chapters"`
	Count    int     `json:"count"`
}
