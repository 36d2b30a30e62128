package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hadith-similarity-search/internal/filter"
	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const genericError = "Something went wrong. Please try again later."

// Browser is the access layer the pages read from
type Browser interface {
	ListRecords(ctx context.Context, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error)
	GetRecord(ctx context.Context, id int64) (*models.Hadith, error)
	ListCollections(ctx context.Context) ([]models.Source, error)
	GetCollection(ctx context.Context, id int64) (*models.Source, error)
	ListBooks(ctx context.Context, sourceID *int64) ([]models.Facet, error)
	ListChapters(ctx context.Context, sourceID *int64, book *int) ([]models.Facet, error)
	Search(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (services.SearchResult, error)
	FindSimilar(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error)
}

// FallbackRecorder counts searches answered by the keyword fallback
type FallbackRecorder interface {
	RecordSearchFallback()
}

// Handler serves the browse, search, detail and compare pages
type Handler struct {
	browser   Browser
	format    *Formatter
	fallbacks FallbackRecorder
	logger    *zap.Logger
	title     string
	pageSize  int
}

// NewHandler creates the page handler. fallbacks may be nil.
func NewHandler(browser Browser, title string, pageSize int, fallbacks FallbackRecorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Handler{
		browser:   browser,
		format:    NewFormatter(),
		fallbacks: fallbacks,
		logger:    logger,
		title:     title,
		pageSize:  pageSize,
	}
}

// RegisterRoutes registers the page and dropdown routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Browse)
	e.GET("/search", h.Search)
	e.GET("/hadiths/:id", h.Hadith)
	e.GET("/compare", h.Compare)
	e.GET("/api/books", h.Books)
	e.GET("/api/chapters", h.Chapters)
}

func (h *Handler) newPage(c echo.Context, title string) *PageData {
	return &PageData{
		AppTitle: h.title,
		Title:    title,
		Path:     c.Request().URL.Path,
		Status:   http.StatusOK,
	}
}

// Browse handles GET /
func (h *Handler) Browse(c echo.Context) error {
	data := h.newPage(c, "")
	state, err := filter.Parse(c.QueryParams())
	if err != nil {
		return h.fail(c, data, "browse", err)
	}
	data.State = state

	var (
		sources    []models.Source
		collection *models.Source
		books      []models.Facet
		chapters   []models.Facet
		result     models.ResultPage
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		sources, err = h.browser.ListCollections(ctx)
		return err
	})
	if state.SourceID != nil {
		g.Go(func() (err error) {
			collection, err = h.browser.GetCollection(ctx, *state.SourceID)
			return err
		})
	}
	g.Go(func() (err error) {
		books, err = h.browser.ListBooks(ctx, state.SourceID)
		return err
	})
	g.Go(func() (err error) {
		chapters, err = h.browser.ListChapters(ctx, state.SourceID, state.Book)
		return err
	})
	g.Go(func() (err error) {
		result, err = h.browser.ListRecords(ctx, state.HadithFilter(), state.PageRequest(h.pageSize))
		return err
	})
	if err := g.Wait(); err != nil {
		return h.fail(c, data, "browse", err)
	}

	data.CollectionOptions = collectionOptions(h.format, sources, state.SourceID)
	data.BookOptions = facetOptions("Book", books, state.Book)
	data.ChapterOptions = facetOptions("Chapter", chapters, state.Chapter)
	data.Filters = activeFilters(state, data.Path, collection)
	h.fillResults(data, result)
	data.Searched = true
	return c.Render(data.Status, "browse", data)
}

// Search handles GET /search
func (h *Handler) Search(c echo.Context) error {
	data := h.newPage(c, "Search")
	state, err := filter.Parse(c.QueryParams())
	if err != nil {
		return h.fail(c, data, "search", err)
	}
	data.State = state

	ctx := c.Request().Context()
	sources, err := h.browser.ListCollections(ctx)
	if err != nil {
		return h.fail(c, data, "search", err)
	}
	data.CollectionOptions = collectionOptions(h.format, sources, state.SourceID)

	var collection *models.Source
	if state.SourceID != nil {
		if collection, err = h.browser.GetCollection(ctx, *state.SourceID); err != nil {
			return h.fail(c, data, "search", err)
		}
	}
	data.Filters = activeFilters(state, data.Path, collection)

	if state.Query == "" {
		return c.Render(data.Status, "search", data)
	}
	data.Title = state.Query

	res, err := h.browser.Search(ctx, state.Query, state.SearchFilter(), state.PageRequest(h.pageSize))
	if err != nil {
		return h.fail(c, data, "search", err)
	}
	if res.Fallback {
		data.Notice = "Semantic search is unavailable right now. Showing keyword matches instead."
		if h.fallbacks != nil {
			h.fallbacks.RecordSearchFallback()
		}
	}
	h.fillResults(data, res.Page)
	data.Searched = true
	return c.Render(data.Status, "search", data)
}

// Hadith handles GET /hadiths/:id
func (h *Handler) Hadith(c echo.Context) error {
	data := h.newPage(c, "Hadith")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return h.fail(c, data, "hadith", models.ErrNotFound)
	}

	hadith, err := h.browser.GetRecord(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, data, "hadith", err)
	}
	view := h.format.view(*hadith)
	data.Anchor = &view
	if view.Collection != "" {
		data.Title = view.Collection + ", " + view.Reference
	}
	return c.Render(data.Status, "hadith", data)
}

// Compare handles GET /compare
func (h *Handler) Compare(c echo.Context) error {
	data := h.newPage(c, "Compare")
	state, err := filter.Parse(c.QueryParams())
	if err != nil {
		return h.fail(c, data, "compare", err)
	}
	data.State = state
	if state.HadithID == nil {
		return c.Render(data.Status, "compare", data)
	}

	var (
		anchor  *models.Hadith
		similar models.ResultPage
		missing bool
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		anchor, err = h.browser.GetRecord(ctx, *state.HadithID)
		return err
	})
	g.Go(func() error {
		var err error
		similar, err = h.browser.FindSimilar(ctx, *state.HadithID, state.PageRequest(h.pageSize))
		if errors.Is(err, models.ErrMissingEmbedding) {
			missing = true
			similar = models.EmptyResultPage()
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return h.fail(c, data, "compare", err)
	}

	view := h.format.view(*anchor)
	data.Anchor = &view
	if missing {
		data.Notice = "This hadith has no embedding yet, so similar hadiths cannot be ranked."
	}
	h.fillResults(data, similar)
	data.Searched = true
	return c.Render(data.Status, "compare", data)
}

// Books handles GET /api/books?source=
func (h *Handler) Books(c echo.Context) error {
	state, err := filter.Parse(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	books, err := h.browser.ListBooks(c.Request().Context(), state.SourceID)
	if err != nil {
		return h.failJSON("list books", err)
	}
	return c.JSON(http.StatusOK, models.BooksResponse{Books: books, Count: len(books)})
}

// Chapters handles GET /api/chapters?source=&book=
func (h *Handler) Chapters(c echo.Context) error {
	state, err := filter.Parse(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	chapters, err := h.browser.ListChapters(c.Request().Context(), state.SourceID, state.Book)
	if err != nil {
		return h.failJSON("list chapters", err)
	}
	return c.JSON(http.StatusOK, models.ChaptersResponse{Chapters: chapters, Count: len(chapters)})
}

func (h *Handler) fillResults(data *PageData, result models.ResultPage) {
	data.Hadiths = h.format.views(result.Hadiths)
	data.TotalCount = result.TotalCount
	data.Pager = newPager(data.State, data.Path, result.TotalCount, h.pageSize)
}

// fail renders the error banner. Only invalid filters show their own message.
func (h *Handler) fail(c echo.Context, data *PageData, page string, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidFilter):
		data.Status = http.StatusBadRequest
		data.Error = err.Error()
		return c.Render(data.Status, "error", data)
	case errors.Is(err, models.ErrNotFound):
		data.Status = http.StatusNotFound
		data.Title = "Not found"
		return c.Render(data.Status, "notfound", data)
	case errors.Is(err, models.ErrSearchUnavailable):
		data.Status = http.StatusServiceUnavailable
	default:
		data.Status = http.StatusInternalServerError
	}

	h.logger.Error("page failed",
		zap.String("page", page),
		zap.String("path", data.Path),
		zap.Int("status", data.Status),
		zap.Error(err))
	data.Error = genericError
	data.Hadiths = nil
	return c.Render(data.Status, "error", data)
}

func (h *Handler) failJSON(op string, err error) error {
	h.logger.Error(op+" failed", zap.Error(err))
	if errors.Is(err, models.ErrSearchUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, genericError)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, genericError)
}
