package connectors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectorErrorClassification(t *testing.T) {
	t.Run("retryable categories", func(t *testing.T) {
		for _, c := range []ErrorCategory{ErrorTimeout, ErrorProviderOutage, ErrorRateLimited} {
			assert.True(t, IsRetryable(NewConnectorError(c, "crm", "x", nil)), c)
		}
		for _, c := range []ErrorCategory{ErrorBadData, ErrorAuthentication, ErrorNotFound, ErrorInternal, ErrorContractMismatch} {
			assert.False(t, IsRetryable(NewConnectorError(c, "crm", "x", nil)), c)
		}
	})

	t.Run("category survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("query: %w", NewConnectorError(ErrorAuthentication, "crm", "token expired", nil))
		assert.Equal(t, ErrorAuthentication, GetCategory(err))
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		assert.Equal(t, ErrorTimeout, GetCategory(context.DeadlineExceeded))
		assert.True(t, IsRetryable(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, ErrorInternal, GetCategory(errors.New("boom")))
	})
}

func TestSanitize(t *testing.T) {
	t.Run("drops the underlying error", func(t *testing.T) {
		err := NewConnectorError(ErrorBadData, "crm", "unexpected payload",
			errors.New("GET https://crm.local/search?q=jane@example.com: 500"))
		got := Sanitize(err)
		assert.Equal(t, "bad_data: unexpected payload", got)
		assert.NotContains(t, got, "jane@example.com")
	})

	t.Run("never echoes raw errors", func(t *testing.T) {
		got := Sanitize(errors.New("lookup jane@example.com failed"))
		assert.Equal(t, "internal: unexpected connector error", got)
	})

	t.Run("timeouts", func(t *testing.T) {
		assert.Equal(t, "timeout: connector call timed out", Sanitize(fmt.Errorf("x: %w", context.DeadlineExceeded)))
	})

	t.Run("panics", func(t *testing.T) {
		err := PanicError("crm", "index out of range for jane@example.com")
		assert.Equal(t, "internal: connector panicked", Sanitize(err))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, Sanitize(nil))
	})
}
