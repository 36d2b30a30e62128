package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository/mocks"
	"github.com/hadith-similarity-search/internal/services"
	"github.com/hadith-similarity-search/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(context.Context, string) ([]float64, error) {
	return []float64{0.25, 0.5}, nil
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type fixture struct {
	e       *echo.Echo
	vectors *mocks.MockVectorSearchRepository
	hadiths *mocks.MockHadithRepository
	sources *mocks.MockSourceRepository
}

func newFixture() *fixture {
	f := &fixture{
		e:       echo.New(),
		vectors: new(mocks.MockVectorSearchRepository),
		hadiths: new(mocks.MockHadithRepository),
		sources: new(mocks.MockSourceRepository),
	}
	f.e.Validator = validation.New()

	logger := zap.NewNop()
	api := f.e.Group("/api/v1")
	NewHealthHandler(pinger{}).RegisterRoutes(api)
	NewSearchHandler(services.NewVectorSearchService(f.vectors, stubEmbedder{}), logger).RegisterRoutes(api)
	NewHadithHandler(services.NewCatalogService(f.hadiths, f.sources), logger).RegisterRoutes(api)
	return f
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func int64Ptr(i int64) *int64 { return &i }
func intPtr(i int) *int       { return &i }

func scored(id int64, score float64) models.Hadith {
	return models.Hadith{ID: id, SourceID: 1, EnglishText: "text", Similarity: &score}
}

func TestSearch_Success(t *testing.T) {
	f := newFixture()
	f.vectors.On("SearchByEmbedding", mock.Anything, []float64{0.25, 0.5}, "patience",
		models.SearchFilter{SourceID: int64Ptr(2), Book: intPtr(3)},
		models.PageRequest{Page: 2, Limit: 5}).
		Return(models.ResultPage{Hadiths: []models.Hadith{scored(9, 0.8)}, TotalCount: 6}, nil)

	rec := f.get(t, "/api/v1/search/?query=%20patience%20&page=2&limit=5&source_id=2&book=3")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(6), body["totalCount"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, "patience", body["query"])
	hadiths := body["hadiths"].([]interface{})
	require.Len(t, hadiths, 1)
	assert.Equal(t, 0.8, hadiths[0].(map[string]interface{})["similarity"])
	f.vectors.AssertExpectations(t)
}

func TestSearch_Defaults(t *testing.T) {
	f := newFixture()
	f.vectors.On("SearchByEmbedding", mock.Anything, mock.Anything, "zakat", models.SearchFilter{}, models.PageRequest{Page: 1, Limit: 10}).
		Return(models.EmptyResultPage(), nil)

	rec := f.get(t, "/api/v1/search?query=zakat")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, decode(t, rec)["hadiths"])
}

func TestSearch_BadRequests(t *testing.T) {
	f := newFixture()
	for _, target := range []string{
		"/api/v1/search/",
		"/api/v1/search/?query=a",
		"/api/v1/search/?query=zakat&limit=101",
		"/api/v1/search/?query=zakat&page=0",
		"/api/v1/search/?query=zakat&page=x",
		"/api/v1/search/?query=zakat&source_id=abc",
		"/api/v1/search/?query=zakat&page=100001",
		"/api/v1/search/?query=zakat&page=9223372036854775807",
	} {
		rec := f.get(t, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	f.vectors.AssertNotCalled(t, "SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_BackendFailureIsGeneric(t *testing.T) {
	f := newFixture()
	f.vectors.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.ResultPage{}, models.NewQueryError("vector search hadiths", errors.New("pq: password authentication failed")))

	rec := f.get(t, "/api/v1/search/?query=zakat")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSimilar(t *testing.T) {
	f := newFixture()
	f.vectors.On("SimilarTo", mock.Anything, int64(12), models.PageRequest{Page: 1, Limit: 10}).
		Return(models.ResultPage{Hadiths: []models.Hadith{scored(13, 0.9)}, TotalCount: 1}, nil)
	f.vectors.On("SimilarTo", mock.Anything, int64(404), mock.Anything).Return(models.ResultPage{}, models.ErrNotFound)
	f.vectors.On("SimilarTo", mock.Anything, int64(5), mock.Anything).Return(models.ResultPage{}, models.ErrMissingEmbedding)

	rec := f.get(t, "/api/v1/compare/similar-hadiths/12")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["total_count"])
	assert.NotContains(t, body, "totalCount")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/compare/similar-hadiths/404").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.get(t, "/api/v1/compare/similar-hadiths/5").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/compare/similar-hadiths/abc").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/compare/similar-hadiths/0").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/compare/similar-hadiths/12?page=9223372036854775807").Code)
}

func TestCompareHadiths(t *testing.T) {
	f := newFixture()
	f.vectors.On("GetEmbedded", mock.Anything, int64(1)).Return(&models.Hadith{ID: 1, EnglishText: "One"}, []float32{1, 0}, nil)
	f.vectors.On("GetEmbedded", mock.Anything, int64(2)).Return(&models.Hadith{ID: 2, EnglishText: "Two"}, []float32{1, 0}, nil)
	f.vectors.On("GetEmbedded", mock.Anything, int64(404)).Return(nil, nil, models.ErrNotFound)
	f.vectors.On("GetEmbedded", mock.Anything, int64(5)).Return(nil, nil, models.ErrMissingEmbedding)

	rec := f.get(t, "/api/v1/compare/hadith-to-hadith?hadith_id_1=1&hadith_id_2=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 1.0, body["similarity"])
	assert.Equal(t, "One", body["hadith1"].(map[string]interface{})["english_text"])
	assert.Equal(t, "Two", body["hadith2"].(map[string]interface{})["english_text"])

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/compare/hadith-to-hadith?hadith_id_1=1&hadith_id_2=404").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.get(t, "/api/v1/compare/hadith-to-hadith?hadith_id_1=5&hadith_id_2=1").Code)
	for _, target := range []string{
		"/api/v1/compare/hadith-to-hadith",
		"/api/v1/compare/hadith-to-hadith?hadith_id_1=1",
		"/api/v1/compare/hadith-to-hadith?hadith_id_1=1&hadith_id_2=x",
		"/api/v1/compare/hadith-to-hadith?hadith_id_1=0&hadith_id_2=2",
	} {
		assert.Equal(t, http.StatusBadRequest, f.get(t, target).Code, target)
	}
}

func TestCompareToText(t *testing.T) {
	f := newFixture()
	f.vectors.On("GetEmbedded", mock.Anything, int64(3)).Return(&models.Hadith{ID: 3, EnglishText: "Three"}, []float32{0.5, 1}, nil)
	f.vectors.On("GetEmbedded", mock.Anything, int64(404)).Return(nil, nil, models.ErrNotFound)
	f.vectors.On("GetEmbedded", mock.Anything, int64(5)).Return(nil, nil, models.ErrMissingEmbedding)

	rec := f.get(t, "/api/v1/compare/hadith-to-text?hadith_id=3&text=%20mercy%20")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "mercy", body["text"])
	assert.InDelta(t, 1.0, body["similarity"].(float64), 1e-6)
	assert.Equal(t, float64(3), body["hadith"].(map[string]interface{})["id"])

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/compare/hadith-to-text?hadith_id=404&text=mercy").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.get(t, "/api/v1/compare/hadith-to-text?hadith_id=5&text=mercy").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/compare/hadith-to-text?hadith_id=3&text=a").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/compare/hadith-to-text?hadith_id=3").Code)
}

func TestListHadiths(t *testing.T) {
	f := newFixture()
	f.hadiths.On("List", mock.Anything,
		models.HadithFilter{SourceID: int64Ptr(1), Book: intPtr(2)},
		models.PageRequest{Page: 3, Limit: 20}).
		Return(models.ResultPage{Hadiths: []models.Hadith{{ID: 41}}, TotalCount: 41}, nil)

	rec := f.get(t, "/api/v1/hadiths/?source_id=1&book=2&page=3&limit=20")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(41), body["total_count"])
	assert.Equal(t, float64(3), body["page"])

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/hadiths/?book=2").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/hadiths/?source_id=1&chapter=2").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/hadiths/?page=9223372036854775807").Code)
}

func TestGetHadith(t *testing.T) {
	f := newFixture()
	f.hadiths.On("GetByID", mock.Anything, int64(7)).Return(&models.Hadith{ID: 7, EnglishText: "Seven"}, nil)
	f.hadiths.On("GetByID", mock.Anything, int64(8)).Return(nil, models.ErrNotFound)

	rec := f.get(t, "/api/v1/hadiths/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Seven", decode(t, rec)["english_text"])

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/v1/hadiths/8").Code)
}

func TestFacetEndpoints(t *testing.T) {
	f := newFixture()
	f.sources.On("List", mock.Anything).Return([]models.Source{{ID: 1, Name: "Sahih al-Bukhari", Tradition: "sunni"}}, nil)
	f.hadiths.On("ListBooks", mock.Anything, int64(1)).Return([]models.Facet{{Value: 1, Count: 7}, {Value: 2, Count: 9}}, nil)
	f.hadiths.On("ListChapters", mock.Anything, int64(1), 2).Return([]models.Facet{{Value: 4, Count: 1}}, nil)

	body := decode(t, f.get(t, "/api/v1/hadiths/sources"))
	assert.Equal(t, float64(1), body["count"])

	body = decode(t, f.get(t, "/api/v1/hadiths/books/1"))
	assert.Equal(t, float64(2), body["count"])
	first := body["books"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["value"])
	assert.Equal(t, float64(7), first["hadith_count"])

	body = decode(t, f.get(t, "/api/v1/hadiths/chapters/1/2"))
	assert.Equal(t, float64(1), body["count"])

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/v1/hadiths/books/x").Code)
}

func TestHealth(t *testing.T) {
	f := newFixture()
	assert.Equal(t, http.StatusOK, f.get(t, "/api/v1/health").Code)
	assert.Equal(t, "connected", decode(t, f.get(t, "/api/v1/health/postgres"))["status"])

	e := echo.New()
	NewHealthHandler(nil).RegisterRoutes(e.Group(""))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/postgres", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e = echo.New()
	NewHealthHandler(pinger{err: errors.New("dial tcp: refused")}).RegisterRoutes(e.Group(""))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/postgres", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}
