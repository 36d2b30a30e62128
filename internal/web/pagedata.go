package web

import (
	"html/template"
	"strconv"

	"github.com/hadith-similarity-search/internal/filter"
	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/pagination"
)

// PageData is the view model of every page. It is built per request.
type PageData struct {
	AppTitle string
	Title    string
	Path     string
	State    filter.State

	CollectionOptions []Option
	BookOptions       []Option
	ChapterOptions    []Option
	Filters           []ActiveFilter

	Hadiths    []HadithView
	Anchor     *HadithView
	TotalCount int
	Pager      Pager

	// Searched is set once a search or compare has run, so an empty
	// result list reads as "no matches" rather than an empty form.
	Searched bool
	Notice   string
	Error    string
	Status   int
}

// Option is one entry of a filter dropdown
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ActiveFilter is a selected filter with the link that clears it
type ActiveFilter struct {
	Label    string
	ClearURL string
}

// HadithView is a hadith prepared for display
type HadithView struct {
	models.Hadith
	Text       template.HTML
	Arabic     template.HTML
	Narrators  template.HTML
	Reference  string
	Collection string
	Tradition  string
	Score      string
	URL        string
	CompareURL string
}

// Pager is the page bar under a result list
type Pager struct {
	Current int
	Total   int
	Links   []PageLink
	PrevURL string
	NextURL string
}

// PageLink is one entry of the page bar
type PageLink struct {
	Page     int
	URL      string
	Current  bool
	Ellipsis bool
}

func newPager(state filter.State, path string, totalCount, limit int) Pager {
	total := pagination.TotalPages(totalCount, limit)
	p := Pager{Current: state.Page, Total: total}
	if total <= 1 {
		return p
	}
	for _, item := range pagination.VisiblePages(state.Page, total) {
		if item.Ellipsis {
			p.Links = append(p.Links, PageLink{Ellipsis: true})
			continue
		}
		p.Links = append(p.Links, PageLink{
			Page:    item.Page,
			URL:     state.PageURL(path, item.Page),
			Current: item.Page == state.Page,
		})
	}
	if state.Page > 1 {
		p.PrevURL = state.PageURL(path, min(state.Page-1, total))
	}
	if state.Page < total {
		p.NextURL = state.PageURL(path, state.Page+1)
	}
	return p
}

func collectionOptions(f *Formatter, sources []models.Source, selected *int64) []Option {
	opts := make([]Option, 0, len(sources))
	for _, s := range sources {
		opts = append(opts, Option{
			Value:    strconv.FormatInt(s.ID, 10),
			Label:    s.Name + " (" + f.Tradition(s.Tradition) + ")",
			Selected: selected != nil && *selected == s.ID,
		})
	}
	return opts
}

// activeFilters lists the selections of state. Clearing a level also clears
// the levels nested under it.
func activeFilters(state filter.State, path string, collection *models.Source) []ActiveFilter {
	var out []ActiveFilter
	if state.Query != "" {
		out = append(out, ActiveFilter{Label: "“" + state.Query + "”", ClearURL: state.WithQuery("").URL(path)})
	}
	if state.SourceID != nil {
		label := "Collection " + strconv.FormatInt(*state.SourceID, 10)
		if collection != nil {
			label = collection.Name
		}
		out = append(out, ActiveFilter{Label: label, ClearURL: state.WithSource(nil).URL(path)})
	}
	if state.Book != nil {
		out = append(out, ActiveFilter{Label: "Book " + strconv.Itoa(*state.Book), ClearURL: state.WithBook(nil).URL(path)})
	}
	if state.Chapter != nil {
		out = append(out, ActiveFilter{Label: "Chapter " + strconv.Itoa(*state.Chapter), ClearURL: state.WithChapter(nil).URL(path)})
	}
	return out
}

func facetOptions(prefix string, facets []models.Facet, selected *int) []Option {
	opts := make([]Option, 0, len(facets))
	for _, fc := range facets {
		opts = append(opts, Option{
			Value:    strconv.Itoa(fc.Value),
			Label:    prefix + " " + strconv.Itoa(fc.Value) + " (" + strconv.Itoa(fc.Count) + ")",
			Selected: selected != nil && *selected == fc.Value,
		})
	}
	return opts
}

func (f *Formatter) view(h models.Hadith) HadithView {
	v := HadithView{
		Hadith:     h,
		Text:       f.Text(h.EnglishText),
		Arabic:     f.OptionalText(h.ArabicText),
		Narrators:  f.OptionalText(h.NarratorChain),
		Reference:  Reference(h),
		Score:      Similarity(h.Similarity),
		URL:        "/hadiths/" + strconv.FormatInt(h.ID, 10),
		CompareURL: "/compare?hadith=" + strconv.FormatInt(h.ID, 10),
	}
	if h.Source != nil {
		v.Collection = h.Source.Name
		v.Tradition = f.Tradition(h.Source.Tradition)
	}
	return v
}

func (f *Formatter) views(hadiths []models.Hadith) []HadithView {
	out := make([]HadithView, len(hadiths))
	for i, h := range hadiths {
		out[i] = f.view(h)
	}
	return out
}
