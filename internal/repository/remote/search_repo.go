// Package remote talks to the ranked-search service over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hadith-similarity-search/internal/models"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Ensure SearchRepository implements repository.RankedSearchRepository
var _ repository.RankedSearchRepository = (*SearchRepository)(nil)

// Endpoint labels reported to the Observer
const (
	EndpointSearch  = "search"
	EndpointSimilar = "similar"
)

// Call outcomes reported to the Observer
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
)

// Observer records the outcome and latency of remote calls
type Observer interface {
	ObserveRemoteCall(endpoint, outcome string, elapsed time.Duration)
}

// Config holds the remote search client settings
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RetryInterval   time.Duration
	BreakerFailures int
	BreakerTimeout  time.Duration
}

// SearchRepository implements repository.RankedSearchRepository against the
// remote search service. Transient failures are retried with exponential
// backoff inside a circuit breaker.
type SearchRepository struct {
	baseURL       string
	client        *http.Client
	breaker       *gobreaker.CircuitBreaker
	maxRetries    int
	retryInterval time.Duration
	observer      Observer
	logger        *zap.Logger
}

// NewSearchRepository creates a remote search client. observer may be nil.
func NewSearchRepository(cfg Config, logger *zap.Logger, observer Observer) *SearchRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := uint32(max(cfg.BreakerFailures, 1))

	r := &SearchRepository{
		baseURL:       cfg.BaseURL,
		client:        &http.Client{Timeout: cfg.Timeout},
		maxRetries:    max(cfg.MaxRetries, 0),
		retryInterval: cfg.RetryInterval,
		observer:      observer,
		logger:        logger,
	}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "search-service",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrMissingEmbedding)
		},
	})
	return r
}

// Search runs a ranked search with the collection and book filters pushed down
func (r *SearchRepository) Search(ctx context.Context, query string, filter models.SearchFilter, page models.PageRequest) (models.ResultPage, error) {
	params := pageParams(page)
	params.Set("query", query)
	if filter.SourceID != nil {
		params.Set("source_id", strconv.FormatInt(*filter.SourceID, 10))
	}
	if filter.Book != nil {
		params.Set("book", strconv.Itoa(*filter.Book))
	}
	return r.get(ctx, EndpointSearch, "/api/v1/search/", params)
}

// Similar ranks hadiths against the stored vector of hadithID
func (r *SearchRepository) Similar(ctx context.Context, hadithID int64, page models.PageRequest) (models.ResultPage, error) {
	path := "/api/v1/compare/similar-hadiths/" + strconv.FormatInt(hadithID, 10)
	return r.get(ctx, EndpointSimilar, path, pageParams(page))
}

func pageParams(page models.PageRequest) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page.Page))
	params.Set("limit", strconv.Itoa(page.Limit))
	return params
}

// statusError is a non-2xx response from the search service
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return http.StatusText(e.code)
	}
	return fmt.Sprintf("%s: %s", http.StatusText(e.code), e.body)
}

// resultEnvelope accepts both count spellings the service has used
type resultEnvelope struct {
	Hadiths         []models.Hadith `json:"hadiths"`
	TotalCount      *int            `json:"totalCount"`
	TotalCountSnake *int            `json:"total_count"`
}

func (e resultEnvelope) toPage() models.ResultPage {
	page := models.ResultPage{Hadiths: e.Hadiths}
	if page.Hadiths == nil {
		page.Hadiths = []models.Hadith{}
	}
	switch {
	case e.TotalCount != nil:
		page.TotalCount = *e.TotalCount
	case e.TotalCountSnake != nil:
		page.TotalCount = *e.TotalCountSnake
	default:
		page.TotalCount = len(page.Hadiths)
	}
	return page
}

func (r *SearchRepository) get(ctx context.Context, endpoint, path string, params url.Values) (models.ResultPage, error) {
	target := r.baseURL + path + "?" + params.Encode()
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	if r.retryInterval > 0 {
		b.InitialInterval = r.retryInterval
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return backoff.Retry(ctx,
			func() (models.ResultPage, error) { return r.fetch(ctx, target) },
			backoff.WithBackOff(b),
			backoff.WithMaxTries(uint(r.maxRetries+1)),
			backoff.WithNotify(func(err error, next time.Duration) {
				r.logger.Debug("retrying search service call",
					zap.String("endpoint", endpoint),
					zap.Duration("backoff", next),
					zap.Error(err))
			}),
		)
	})

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	elapsed := time.Since(start)
	switch {
	case err == nil:
		r.observe(endpoint, OutcomeOK, elapsed)
		return result.(models.ResultPage), nil
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrMissingEmbedding):
		r.observe(endpoint, OutcomeNotFound, elapsed)
		return models.ResultPage{}, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		r.observe(endpoint, OutcomeCircuitOpen, elapsed)
	default:
		r.observe(endpoint, OutcomeError, elapsed)
	}

	r.logger.Warn("search service call failed",
		zap.String("endpoint", endpoint),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))

	unavailable := &models.SearchUnavailableError{Op: endpoint, Err: err}
	var se *statusError
	if errors.As(err, &se) {
		unavailable.StatusCode = se.code
	}
	return models.ResultPage{}, unavailable
}

// fetch performs one attempt. Responses that cannot succeed on retry are
// returned as permanent errors.
func (r *SearchRepository) fetch(ctx context.Context, target string) (models.ResultPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.ResultPage{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.ResultPage{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ResultPage{}, backoff.Permanent(models.ErrNotFound)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return models.ResultPage{}, backoff.Permanent(models.ErrMissingEmbedding)
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		se := &statusError{code: resp.StatusCode, body: string(body)}
		if resp.StatusCode < http.StatusInternalServerError {
			return models.ResultPage{}, backoff.Permanent(se)
		}
		return models.ResultPage{}, se
	}

	var envelope resultEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return models.ResultPage{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return envelope.toPage(), nil
}

func (r *SearchRepository) observe(endpoint, outcome string, elapsed time.Duration) {
	if r.observer != nil {
		r.observer.ObserveRemoteCall(endpoint, outcome, elapsed)
	}
}
