package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/stridecal/internal/core/domain"
)

func apiError(code int) *googleapi.Error {
	return &googleapi.Error{Code: code, Message: http.StatusText(code)}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil passes through", err: nil, want: nil},
		{name: "401 maps to auth invalid", err: apiError(http.StatusUnauthorized), want: domain.ErrAuthInvalid},
		{name: "403 maps to auth invalid", err: apiError(http.StatusForbidden), want: domain.ErrAuthInvalid},
		{name: "404 maps to not found", err: apiError(http.StatusNotFound), want: domain.ErrNotFound},
		{name: "429 maps to rate limited", err: apiError(http.StatusTooManyRequests), want: domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("other status codes pass through", func(t *testing.T) {
		err := apiError(http.StatusInternalServerError)
		assert.Equal(t, error(err), WrapError(err))
	})

	t.Run("wrapped googleapi errors are unwrapped", func(t *testing.T) {
		err := fmt.Errorf("calling calendar: %w", apiError(http.StatusNotFound))
		assert.ErrorIs(t, WrapError(err), domain.ErrNotFound)
	})

	t.Run("non-google errors pass through", func(t *testing.T) {
		err := errors.New("connection refused")
		assert.Equal(t, err, WrapError(err))
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(apiError(http.StatusNotFound)))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", domain.ErrNotFound)))
	assert.False(t, IsNotFound(apiError(http.StatusGone)))
	assert.False(t, IsNotFound(errors.New("other")))
	assert.False(t, IsNotFound(nil))
}

func TestIsGone(t *testing.T) {
	assert.True(t, IsGone(apiError(http.StatusGone)))
	assert.True(t, IsGone(fmt.Errorf("delete: %w", apiError(http.StatusGone))))
	assert.False(t, IsGone(apiError(http.StatusNotFound)))
	assert.False(t, IsGone(nil))
}
