package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestError_UnwrapsAndFormats(t *testing.T) {
	base := errors.New("batch is already harvested")
	err := fmt.Errorf("advance: %w", NewRequestError(ErrInvalidState, base))

	assert.Equal(t, "advance: INVALID_STATE: batch is already harvested", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, ErrInvalidState, ErrorCode(err))
}

func TestErrorCode_NonRequestError(t *testing.T) {
	assert.Equal(t, RequestErrorCode(""), ErrorCode(errors.New("boom")))
	assert.Equal(t, RequestErrorCode(""), ErrorCode(nil))
}
