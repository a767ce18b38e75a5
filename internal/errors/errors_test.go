package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageErrorMatchesStoreUnavailable(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("toggle: %w", NewStorageError("failed to delete engagement", cause))

	assert.True(t, Is(err, ErrStoreUnavailable))
	assert.True(t, Is(err, cause))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, "toggle: failed to delete engagement: connection refused", err.Error())
}

func TestValidationErrorKinds(t *testing.T) {
	plain := NewValidationError("contentType", "unknown content type")
	assert.True(t, Is(plain, ErrInvalidInput))
	assert.False(t, Is(plain, ErrEmptyBody))
	assert.Equal(t, "contentType: unknown content type", plain.Error())

	empty := NewKindError(ErrEmptyBody, "body", ErrMsgEmptyBody)
	assert.True(t, Is(empty, ErrEmptyBody))
	assert.False(t, Is(empty, ErrInvalidInput))
	assert.False(t, IsRetryable(empty))

	var ve *ValidationError
	assert.True(t, As(fmt.Errorf("wrapped: %w", empty), &ve))
	assert.Equal(t, "body", ve.Field)
}
