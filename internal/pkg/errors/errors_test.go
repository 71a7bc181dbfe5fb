package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_CopiesDoNotMutateCatalogue(t *testing.T) {
	withDetails := ErrInvalidYear.WithDetails(map[string]interface{}{"year": 1999})
	withMessage := ErrBackendUnavailable.WithMessage("upstream said no")

	assert.Empty(t, ErrInvalidYear.Details)
	assert.Equal(t, 1999, withDetails.Details["year"])
	assert.Equal(t, "Evaluation backend is unavailable", ErrBackendUnavailable.Message)
	assert.Equal(t, "upstream said no", withMessage.Message)
	assert.Equal(t, http.StatusBadGateway, withMessage.StatusCode)
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("select year: %w", ErrInvalidYear.WithDetails(nil))

	assert.True(t, stderrors.Is(wrapped, ErrInvalidYear))
	assert.False(t, stderrors.Is(wrapped, ErrSessionNotFound))
	assert.Equal(t, "INVALID_YEAR: Year is not available", ErrInvalidYear.Error())
}
