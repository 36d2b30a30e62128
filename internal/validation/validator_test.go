package validation

import (
	"errors"
	"testing"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SearchRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.SearchRequest{Query: "patience", Page: 1, Limit: 10}))

	err := v.Validate(&models.SearchRequest{Query: "a", Page: 0, Limit: 500})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidFilter))

	var fieldErrs Errors
	require.True(t, errors.As(err, &fieldErrs))
	fields := map[string]string{}
	for _, fe := range fieldErrs {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Must be at least 2 characters", fields["query"])
	assert.Equal(t, "Must be at least 1", fields["page"])
	assert.Equal(t, "Must be at most 100", fields["limit"])
}

func TestValidate_OptionalPointers(t *testing.T) {
	v := New()
	zero := int64(0)

	err := v.Validate(&models.ListRequest{SourceID: &zero, Page: 1, Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sourceid")

	assert.NoError(t, v.Validate(&models.ListRequest{Page: 1, Limit: 10}))
}

func TestValidate_SimilarRequest(t *testing.T) {
	err := GetValidator().Validate(&models.SimilarRequest{HadithID: 0, Page: 1, Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id: This field is required")
}
