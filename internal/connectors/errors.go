package connectors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory is the normalized connector failure taxonomy.
type ErrorCategory string

const (
	// ErrorTimeout indicates the source took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the source returned invalid or malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the source is unavailable
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorContractMismatch indicates the source API changed shape
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	// ErrorNotFound indicates the subject has no records there
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates the source throttled us
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected fault, including recovered panics
	ErrorInternal ErrorCategory = "internal"
)

// ConnectorError wraps a connector failure with its category. Message must
// never contain a subject identifier; it ends up in query records.
type ConnectorError struct {
	Category   ErrorCategory
	Provider   string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ConnectorError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("connector %s [%s]: %s: %v", e.Provider, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("connector %s [%s]: %s", e.Provider, e.Category, e.Message)
}

func (e *ConnectorError) Unwrap() error {
	return e.Underlying
}

// NewConnectorError creates a categorized connector error.
func NewConnectorError(category ErrorCategory, provider, message string, underlying error) *ConnectorError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &ConnectorError{
		Category:   category,
		Provider:   provider,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// GetCategory extracts the error category from an error. Context deadlines
// map to timeout; anything unrecognized is internal.
func GetCategory(err error) ErrorCategory {
	var ce *ConnectorError
	switch {
	case errors.As(err, &ce):
		return ce.Category
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	default:
		return ErrorInternal
	}
}

// Sanitize produces the message recorded on a failed query. Only the category
// and the connector's own message survive: underlying errors from client
// libraries can echo request URLs or search values back.
func Sanitize(err error) string {
	if err == nil {
		return ""
	}
	var ce *ConnectorError
	if errors.As(err, &ce) {
		msg := strings.TrimSpace(ce.Message)
		if msg == "" {
			return string(ce.Category)
		}
		return string(ce.Category) + ": " + msg
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return string(ErrorTimeout) + ": connector call timed out"
	case errors.Is(err, context.Canceled):
		return string(ErrorInternal) + ": connector call cancelled"
	}
	return string(ErrorInternal) + ": unexpected connector error"
}

// PanicError converts a recovered panic value into a ConnectorError. The
// panic value itself is kept only as the unwrapped cause.
func PanicError(provider string, recovered any) *ConnectorError {
	return NewConnectorError(ErrorInternal, provider, "connector panicked", fmt.Errorf("panic: %v", recovered))
}

var (
	ErrConnectorNotFound  = errors.New("connector not found")
	ErrDuplicateConnector = errors.New("connector already registered")
	ErrConnectorNameEmpty = errors.New("connector provider name is required")
)
