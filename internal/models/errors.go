package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced hadith or collection does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidFilter is returned when filter parameters are malformed or out of order
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrSearchUnavailable matches every SearchUnavailableError
	ErrSearchUnavailable = errors.New("search service unavailable")

	// ErrMissingEmbedding is returned when a hadith has no stored vector to compare against
	ErrMissingEmbedding = errors.New("hadith has no embedding")
)

// QueryError wraps a store failure with the operation that caused it
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err as a store failure for op
func NewQueryError(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}

// SearchUnavailableError reports a transport failure or non-2xx response from
// the ranked search service. StatusCode is zero when no response was received.
type SearchUnavailableError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *SearchUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: search service returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: search service unavailable: %v", e.Op, e.Err)
}

func (e *SearchUnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSearchUnavailable) hold for every SearchUnavailableError
func (e *SearchUnavailableError) Is(target error) bool {
	return target == ErrSearchUnavailable
}

// NewInvalidFilterError describes why a filter was rejected
func NewInvalidFilterError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFilter, reason)
}
