package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Is(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("load chat: %w", Wrap(ErrNotFound, "chat not found", cause))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "chat not found", Public(err))
}

func TestPublic_PlainError(t *testing.T) {
	assert.Equal(t, "", Public(errors.New("boom")))
	assert.Equal(t, "forbidden", Public(New(ErrForbidden, "")))
}
