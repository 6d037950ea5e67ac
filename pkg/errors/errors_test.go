package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{NotFound("Order", nil), CodeNotFound, http.StatusNotFound},
		{BadRequest("bad", nil), CodeBadRequest, http.StatusBadRequest},
		{Unauthorized("no token", nil), CodeUnauthorized, http.StatusUnauthorized},
		{Forbidden("nope", nil), CodeForbidden, http.StatusForbidden},
		{Conflict("dup"), CodeConflict, http.StatusConflict},
		{Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{TooManyRequests("slow down", time.Second), CodeTooManyRequests, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.Status)
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Product not found", NotFound("Product", nil).Message)
}

func TestIsFollowsWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading order: %w", NotFound("Order", nil))

	assert.True(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(wrapped, CodeForbidden))
	assert.False(t, Is(fmt.Errorf("plain"), CodeNotFound))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
