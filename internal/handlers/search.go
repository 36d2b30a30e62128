package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HadithSearcher ranks hadiths by meaning
type HadithSearcher interface {
	SearchHadiths(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error)
	SimilarHadiths(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error)
	CompareHadiths(ctx context.Context, firstID, secondID int64) (models.HadithComparison, error)
	CompareToText(ctx context.Context, hadithID int64, text string) (models.TextComparison, error)
}

// SearchHandler handles search endpoints
type SearchHandler struct {
	search HadithSearcher
	logger *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search HadithSearcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		logger: logger,
	}
}

// Search handles GET /search/ - hybrid semantic search
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	req := models.SearchRequest{Page: 1, Limit: 10}
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
	req.Query = strings.TrimSpace(req.Query)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.search.SearchHadiths(ctx, req.Query,
		models.SearchFilter{SourceID: req.SourceID, Book: req.Book},
		models.PageRequest{Page: req.Page, Limit: req.Limit})
	if err != nil {
		return httpError(h.logger, "Search", err)
	}

	return c.JSON(http.StatusOK, models.SearchResponse{
		Hadiths:    result.Hadiths,
		TotalCount: result.TotalCount,
		Page:       req.Page,
		Limit:      req.Limit,
		Query:      req.Query,
	})
}

// Similar handles GET /compare/similar-hadiths/:id
func (h *SearchHandler) Similar(c echo.Context) error {
	ctx := c.Request().Context()

	req := models.SimilarRequest{Page: 1, Limit: 10}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request parameters")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.search.SimilarHadiths(ctx, req.HadithID, models.PageRequest{Page: req.Page, Limit: req.Limit})
	if err != nil {
		return httpError(h.logger, "Compare", err)
	}

	return c.JSON(http.StatusOK, models.SimilarResponse{
		Hadiths:    result.Hadiths,
		TotalCount: result.TotalCount,
		Page:       req.Page,
		Limit:      req.Limit,
		Query:      "similar to hadith " + c.Param("id"),
	})
}

// CompareHadiths handles GET /compare/hadith-to-hadith
func (h *SearchHandler) CompareHadiths(c echo.Context) error {
	var req models.PairCompareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.search.CompareHadiths(c.Request().Context(), req.HadithID1, req.HadithID2)
	if err != nil {
		return httpError(h.logger, "Compare hadiths", err)
	}
	return c.JSON(http.StatusOK, result)
}

// CompareToText handles GET /compare/hadith-to-text
func (h *SearchHandler) CompareToText(c echo.Context) error {
	var req models.TextCompareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.search.CompareToText(c.Request().Context(), req.HadithID, req.Text)
	if err != nil {
		return httpError(h.logger, "Compare to text", err)
	}
	return c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers search routes behind the given middleware
func (h *SearchHandler) RegisterRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.GET("/search", h.Search, m...)
	g.GET("/search/", h.Search, m...)
	g.GET("/compare/similar-hadiths/:id", h.Similar, m...)
	g.GET("/compare/hadith-to-hadith", h.CompareHadiths, m...)
	g.GET("/compare/hadith-to-text", h.CompareToText, m...)
}
