package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// httpError maps an access error to the status the API reports. Store and
// backend failures are logged and answered with a generic message.
func httpError(logger *zap.Logger, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidFilter):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Hadith not found")
	case errors.Is(err, models.ErrMissingEmbedding):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Hadith has no embedding to compare against")
	}
	logger.Error(op+" failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, op+" failed")
}

// queryInt64 reads an optional integer query parameter. An absent or empty
// parameter yields nil.
func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, models.NewInvalidFilterError(name + " must be a whole number")
	}
	return &v, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
	v, err := queryInt64(c, name)
	if v == nil || err != nil {
		return nil, err
	}
	i := int(*v)
	return &i, nil
}

func pathInt64(c echo.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, models.NewInvalidFilterError(name + " must be a positive whole number")
	}
	return v, nil
}
