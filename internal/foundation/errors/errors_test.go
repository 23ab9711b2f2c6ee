package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderClassification(t *testing.T) {
	err := NotFoundWarning("section not found").
		WithContext("section", "hero").
		Build()

	assert.Equal(t, CategoryNotFound, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.True(t, err.IsWarning())
	assert.False(t, err.CanRetry())
	assert.Equal(t, "hero", err.Context()["section"])
	assert.Contains(t, err.Error(), "not_found")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := WrapError(cause, CategoryStorage, "failed to persist page").Retryable().Build()

	require.True(t, errors.Is(err, cause))
	assert.True(t, err.CanRetry())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
}

func TestIsNotice(t *testing.T) {
	assert.True(t, IsNotice(BoundaryWarning("cannot move section up").Build()))
	assert.False(t, IsNotice(StorageError("save failed").Build()))
	assert.False(t, IsNotice(fmt.Errorf("plain")))
}

func TestGetCategoryDefaults(t *testing.T) {
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
	assert.Equal(t, SeverityError, GetSeverity(fmt.Errorf("plain")))
	assert.Equal(t, CategoryValidation, GetCategory(ValidationError("bad").Build()))
}

func TestWithContextCopies(t *testing.T) {
	base := ValidationError("bad input").Build()
	derived := base.WithContext("field", "headline")

	assert.NotContains(t, base.Context(), "field")
	assert.Equal(t, "headline", derived.Context()["field"])
}
