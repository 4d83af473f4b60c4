package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumensearch/hybrid"
)

func TestMapError_NilError(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_DuplicateID(t *testing.T) {
	result := MapError(hybrid.ErrDuplicateID)
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeDuplicateID, result.Code)
}

func TestMapError_NotFound(t *testing.T) {
	result := MapError(hybrid.ErrNotFound)
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeNotFound, result.Code)
}

func TestMapError_EmptyQuery(t *testing.T) {
	result := MapError(hybrid.ErrEmptyQuery)
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInvalidParams, result.Code)
}

func TestMapError_ContextCanceled(t *testing.T) {
	result := MapError(context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInternalError, result.Code)
}

func TestMapError_VectorError(t *testing.T) {
	result := MapError(&hybrid.VectorError{Err: errors.New("expected dimension 3, got 2")})
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeInvalidParams, result.Code)
}

func TestNewInvalidParamsError(t *testing.T) {
	err := NewInvalidParamsError("bad input")
	assert.Equal(t, ErrCodeInvalidParams, err.Code)
	assert.Equal(t, "bad input", err.Message)
}

func TestNewMethodNotFoundError(t *testing.T) {
	err := NewMethodNotFoundError("bogus_tool")
	assert.Equal(t, ErrCodeMethodNotFound, err.Code)
	assert.Contains(t, err.Error(), "bogus_tool")
}
