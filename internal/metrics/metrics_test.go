package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "web")

	c.RecordRequest("/search", http.MethodGet, 200, 20*time.Millisecond)
	c.RecordRequest("/search", http.MethodGet, 200, 30*time.Millisecond)
	c.RecordRequest("/search", http.MethodGet, 503, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("/search", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("/search", "GET", "503")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.requestLatency))
}

func TestObserveRemoteCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "web")

	c.ObserveRemoteCall("search", "ok", 50*time.Millisecond)
	c.ObserveRemoteCall("search", "error", time.Second)
	c.ObserveRemoteCall("similar", "not_found", 5*time.Millisecond)
	c.RecordSearchFallback()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.remoteCalls.WithLabelValues("search", "error")))
	assert.Equal(t, 3, testutil.CollectAndCount(c.remoteCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searchFallbacks))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "api")
	c.RecordRequest("/api/v1/search/", http.MethodGet, 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hadith_http_requests_total{method="GET",route="/api/v1/search/",service="api",status_code="200"} 1`)
}
