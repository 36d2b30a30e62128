package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hadith-similarity-search/internal/handlers"
	"github.com/hadith-similarity-search/internal/middleware"
	"github.com/hadith-similarity-search/internal/validation"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ServerOptions carries the shared infrastructure of the web server
type ServerOptions struct {
	Logger   *zap.Logger
	Recorder middleware.RequestRecorder
	Metrics  http.Handler
	DB       handlers.Pinger
}

// NewServer builds the echo instance serving the frontend
func NewServer(h *Handler, opts ServerOptions) (*echo.Echo, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = validation.GetValidator()
	e.HTTPErrorHandler = h.errorHandler(e)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	if opts.Recorder != nil {
		e.Use(middleware.Metrics(opts.Recorder))
	}
	e.Use(echomiddleware.Recover())

	h.RegisterRoutes(e)

	health := handlers.NewHealthHandler(opts.DB)
	e.GET("/healthz", health.PostgresHealth)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}
	return e, nil
}

// errorHandler answers /api and /metrics paths the default JSON way and
// renders the error page everywhere else
func (h *Handler) errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		path := c.Request().URL.Path
		if c.Response().Committed || strings.HasPrefix(path, "/api/") || path == "/metrics" {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		data := h.newPage(c, "")
		data.Status = code
		name := "error"
		switch {
		case code == http.StatusNotFound:
			name = "notfound"
			data.Title = "Not found"
		case code >= http.StatusInternalServerError:
			h.logger.Error("unhandled error", zap.String("path", path), zap.Error(err))
			data.Error = genericError
		default:
			data.Error = http.StatusText(code)
		}
		if rerr := c.Render(code, name, data); rerr != nil {
			h.logger.Error("render error page", zap.Error(rerr))
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
}
