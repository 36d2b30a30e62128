// Package filter holds the browse state carried in page URLs: the search
// text, the collection, book and chapter selection, the compare anchor and
// the page number.
package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/validation"
)

// URL parameter names
const (
	ParamQuery   = "q"
	ParamSource  = "source"
	ParamBook    = "book"
	ParamChapter = "chapter"
	ParamHadith  = "hadith"
	ParamPage    = "page"
)

// State is the filter and page selection of a browse, search or compare page
type State struct {
	Query    string `query:"q" validate:"max=500"`
	SourceID *int64 `query:"source" validate:"omitempty,gt=0"`
	Book     *int   `query:"book" validate:"omitempty,gte=0"`
	Chapter  *int   `query:"chapter" validate:"omitempty,gte=0"`
	HadithID *int64 `query:"hadith" validate:"omitempty,gt=0"`
	Page     int    `query:"page" validate:"min=1,max=100000"`
}

// Validate rejects a book without a collection and a chapter without a book
func (s State) Validate() error {
	return s.HadithFilter().Validate()
}

// Parse reads a State from URL values. Empty parameters count as absent and
// page defaults to 1. Malformed numbers and skipped nesting levels fail with
// models.ErrInvalidFilter.
func Parse(values url.Values) (State, error) {
	s := State{
		Query: strings.TrimSpace(values.Get(ParamQuery)),
		Page:  1,
	}

	var err error
	if s.SourceID, err = parseInt64(values, ParamSource); err != nil {
		return State{}, err
	}
	if s.Book, err = parseInt(values, ParamBook); err != nil {
		return State{}, err
	}
	if s.Chapter, err = parseInt(values, ParamChapter); err != nil {
		return State{}, err
	}
	if s.HadithID, err = parseInt64(values, ParamHadith); err != nil {
		return State{}, err
	}
	page, err := parseInt(values, ParamPage)
	if err != nil {
		return State{}, err
	}
	if page != nil {
		s.Page = *page
	}

	if err := validation.GetValidator().Validate(&s); err != nil {
		return State{}, err
	}
	return s, nil
}

func parseInt64(values url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, models.NewInvalidFilterError(key + " must be a whole number")
	}
	return &v, nil
}

func parseInt(values url.Values, key string) (*int, error) {
	v, err := parseInt64(values, key)
	if v == nil || err != nil {
		return nil, err
	}
	i := int(*v)
	return &i, nil
}

// Values encodes the state. Absent filters and page 1 are omitted.
func (s State) Values() url.Values {
	values := url.Values{}
	if s.Query != "" {
		values.Set(ParamQuery, s.Query)
	}
	if s.SourceID != nil {
		values.Set(ParamSource, strconv.FormatInt(*s.SourceID, 10))
	}
	if s.Book != nil {
		values.Set(ParamBook, strconv.Itoa(*s.Book))
	}
	if s.Chapter != nil {
		values.Set(ParamChapter, strconv.Itoa(*s.Chapter))
	}
	if s.HadithID != nil {
		values.Set(ParamHadith, strconv.FormatInt(*s.HadithID, 10))
	}
	if s.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return values
}

// URL returns path with the state as its query string
func (s State) URL(path string) string {
	encoded := s.Values().Encode()
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

// PageURL returns the URL of page p with every other parameter unchanged
func (s State) PageURL(path string, p int) string {
	s.Page = p
	return s.URL(path)
}

// WithQuery changes the search text and returns to page 1
func (s State) WithQuery(q string) State {
	s.Query = strings.TrimSpace(q)
	s.Page = 1
	return s
}

// WithSource selects a collection, clearing book and chapter
func (s State) WithSource(id *int64) State {
	s.SourceID = id
	s.Book = nil
	s.Chapter = nil
	s.Page = 1
	return s
}

// WithBook selects a book, clearing the chapter
func (s State) WithBook(book *int) State {
	s.Book = book
	s.Chapter = nil
	s.Page = 1
	return s
}

// WithChapter selects a chapter
func (s State) WithChapter(chapter *int) State {
	s.Chapter = chapter
	s.Page = 1
	return s
}

// HadithFilter returns the listing filter of the state
func (s State) HadithFilter() models.HadithFilter {
	return models.HadithFilter{SourceID: s.SourceID, Book: s.Book, Chapter: s.Chapter}
}

// SearchFilter returns the ranked search filter of the state
func (s State) SearchFilter() models.SearchFilter {
	return models.SearchFilter{SourceID: s.SourceID, Book: s.Book}
}

// PageRequest returns the page window of the state for the given page size
func (s State) PageRequest(limit int) models.PageRequest {
	return models.PageRequest{Page: s.Page, Limit: limit}
}
