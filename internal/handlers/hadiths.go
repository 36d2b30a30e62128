package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Catalog reads hadiths and collections
type Catalog interface {
	ListRecords(ctx context.Context, filter models.HadithFilter, page models.PageRequest) (models.ResultPage, error)
	GetRecord(ctx context.Context, id int64) (*models.Hadith, error)
	ListCollections(ctx context.Context) ([]models.Source, error)
	ListBooks(ctx context.Context, sourceID *int64) ([]models.Facet, error)
	ListChapters(ctx context.Context, sourceID *int64, book *int) ([]models.Facet, error)
}

// HadithHandler handles the hadith listing and lookup endpoints
type HadithHandler struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewHadithHandler creates a new hadith handler
func NewHadithHandler(catalog Catalog, logger *zap.Logger) *HadithHandler {
	return &HadithHandler{catalog: catalog, logger: logger}
}

// List handles GET /hadiths/
func (h *HadithHandler) List(c echo.Context) error {
	req := models.ListRequest{Page: 1, Limit: 10}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	var err error
	if req.SourceID, err = queryInt64(c, "source_id"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Book, err = queryInt(c, "book"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Chapter, err = queryInt(c, "chapter"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.catalog.ListRecords(c.Request().Context(),
		models.HadithFilter{SourceID: req.SourceID, Book: req.Book, Chapter: req.Chapter},
		models.PageRequest{Page: req.Page, Limit: req.Limit})
	if err != nil {
		return httpError(h.logger, "List hadiths", err)
	}

	return c.JSON(http.StatusOK, models.ListResponse{
		Hadiths:    result.Hadiths,
		TotalCount: result.TotalCount,
		Page:       req.Page,
		Limit:      req.Limit,
	})
}

// Get handles GET /hadiths/:id
func (h *HadithHandler) Get(c echo.Context) error {
	id, err := pathInt64(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hadith, err := h.catalog.GetRecord(c.Request().Context(), id)
	if err != nil {
		return httpError(h.logger, "Get hadith", err)
	}
	return c.JSON(http.StatusOK, hadith)
}

// Sources handles GET /hadiths/sources
func (h *HadithHandler) Sources(c echo.Context) error {
	sources, err := h.catalog.ListCollections(c.Request().Context())
	if err != nil {
		return httpError(h.logger, "List sources", err)
	}
	return c.JSON(http.StatusOK, models.SourcesResponse{Sources: sources, Count: len(sources)})
}

// Books handles GET /hadiths/books/:source_id
func (h *HadithHandler) Books(c echo.Context) error {
	sourceID, err := pathInt64(c, "source_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	books, err := h.catalog.ListBooks(c.Request().Context(), &sourceID)
	if err != nil {
		return httpError(h.logger, "List books", err)
	}
	return c.JSON(http.StatusOK, models.BooksResponse{Books: books, Count: len(books)})
}

// Chapters handles GET /hadiths/chapters/:source_id/:book
func (h *HadithHandler) Chapters(c echo.Context) error {
	sourceID, err := pathInt64(c, "source_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := strconv.Atoi(c.Param("book"))
	if err != nil || book < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "book must be a whole number")
	}
	chapters, err := h.catalog.ListChapters(c.Request().Context(), &sourceID, &book)
	if err != nil {
		return httpError(h.logger, "List chapters", err)
	}
	return c.JSON(http.StatusOK, models.ChaptersResponse{Chapters: chapters, Count: len(chapters)})
}

// RegisterRoutes registers hadith routes
func (h *HadithHandler) RegisterRoutes(g *echo.Group) {
	hadiths := g.Group("/hadiths")
	hadiths.GET("", h.List)
	hadiths.GET("/", h.List)
	hadiths.GET("/sources", h.Sources)
	hadiths.GET("/books/:source_id", h.Books)
	hadiths.GET("/chapters/:source_id/:book", h.Chapters)
	hadiths.GET("/:id", h.Get)
}
