package models

import (
	"math"
	"time"

	"github.com/lib/pq"
)

// SourceInfo is the collection summary attached to a hadith
type SourceInfo struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Tradition string  `json:"tradition"`
	Compiler  *string `json:"compiler,omitempty"`
}

// Hadith represents a single hadith record
type Hadith struct {
	ID            int64          `json:"id" db:"id"`
	SourceID      int64          `json:"source_id" db:"source_id"`
	Volume        *int           `json:"volume,omitempty" db:"volume"`
	Book          *int           `json:"book,omitempty" db:"book"`
	Chapter       *int           `json:"chapter,omitempty" db:"chapter"`
	Number        *int           `json:"number,omitempty" db:"number"`
	ArabicText    *string        `json:"arabic_text,omitempty" db:"arabic_text"`
	EnglishText   string         `json:"english_text" db:"english_text"`
	NarratorChain *string        `json:"narrator_chain,omitempty" db:"narrator_chain"`
	Topics        pq.StringArray `json:"topics,omitempty" db:"topics"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`

	// Similarity is only set on search and compare results
	Similarity *float64    `json:"similarity,omitempty" db:"-"`
	Source     *SourceInfo `json:"source,omitempty" db:"-"`
}

// Source represents a hadith collection
type Source struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Tradition   string    `json:"tradition" db:"tradition"`
	Description *string   `json:"description,omitempty" db:"description"`
	Compiler    *string   `json:"compiler,omitempty" db:"compiler"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Facet is a distinct book or chapter value with the number of hadiths under it
type Facet struct {
	Value int `json:"value" db:"value"`
	Count int `json:"hadith_count" db:"hadith_count"`
}

// HadithFilter narrows listings. Book requires SourceID and Chapter requires Book.
type HadithFilter struct {
	SourceID *int64
	Book     *int
	Chapter  *int
}

// Validate rejects filters that skip a nesting level
func (f HadithFilter) Validate() error {
	if f.Book != nil && f.SourceID == nil {
		return NewInvalidFilterError("book requires a collection")
	}
	if f.Chapter != nil && f.Book == nil {
		return NewInvalidFilterError("chapter requires a book")
	}
	return nil
}

// SearchFilter narrows ranked search results before paging
type SearchFilter struct {
	SourceID *int64
	Book     *int
}

// MaxPage is the highest page number a request may ask for. The validate
// tags below repeat it.
const MaxPage = 100000

// PageRequest is a 1-based page window
type PageRequest struct {
	Page  int `json:"page" validate:"min=1,max=100000"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of wrapping negative.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// ResultPage is the page of records returned by every listing, search and compare call
type ResultPage struct {
	Hadiths    []Hadith `json:"hadiths"`
	TotalCount int      `json:"totalCount"`
}

// EmptyResultPage returns a page with a non-nil, empty record slice
func EmptyResultPage() ResultPage {
	return ResultPage{Hadiths: []Hadith{}}
}
