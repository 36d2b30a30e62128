package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordedRequest struct {
	route  string
	status int
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(route, method string, statusCode int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{route: route, status: statusCode})
}

func newTestServer(recorder RequestRecorder, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.Use(RequestID())
	e.Use(Metrics(recorder))
	e.Use(RequestLogger(logger))
	e.GET("/hadiths/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return echo.NewHTTPError(http.StatusNotFound, "Hadith not found")
		}
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestMetrics_RecordsRoutePatternAndStatus(t *testing.T) {
	recorder := &fakeRecorder{}
	e := newTestServer(recorder, zap.NewNop())

	for _, path := range []string{"/hadiths/12", "/hadiths/0"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, recorder.requests, 2)
	assert.Equal(t, recordedRequest{route: "/hadiths/:id", status: 200}, recorder.requests[0])
	assert.Equal(t, recordedRequest{route: "/hadiths/:id", status: 404}, recorder.requests[1])
}

func TestRequestID_SetsHeader(t *testing.T) {
	e := newTestServer(&fakeRecorder{}, zap.NewNop())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hadiths/1", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/hadiths/1", nil)
	req.Header.Set(echo.HeaderXRequestID, "caller-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger_LevelsByOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := newTestServer(&fakeRecorder{}, zap.New(core))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hadiths/3", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hadiths/0", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, "request rejected", entries[1].Message)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}

func TestCORSMiddleware_AllowsConfiguredOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORSMiddleware([]string{"https://hadith.example"}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://hadith.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "https://hadith.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
