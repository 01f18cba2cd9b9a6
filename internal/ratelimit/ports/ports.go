// Package ports defines the interfaces the ratelimit service depends on.
package ports

import (
	"context"
	"log/slog"
	"time"

	"dsar/internal/ratelimit/models"
	"dsar/pkg/platform/audit"
	"dsar/pkg/requestcontext"
)

// AuditPublisher emits audit events for denials.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// BucketStore manages sliding window rate limit counters. Allow and AllowN
// must check and consume atomically per key.
type BucketStore interface {
	// Allow checks if a single request is allowed and consumes one token if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)

	// AllowN checks if 'cost' requests are allowed and consumes that many tokens if so.
	AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error)

	// Reset clears the rate limit counter for a key.
	Reset(ctx context.Context, key string) error

	// GetCurrentCount returns the current request count in the window.
	GetCurrentCount(ctx context.Context, key string) (int, error)
}

// LogAudit logs an audit event to the structured logger and, when a publisher
// is configured, emits it. Emission failures are logged and swallowed.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event string, attrs ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", event, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}
	if publisher == nil {
		return
	}
	ev := audit.Event{
		Action:    event,
		CaseID:    requestcontext.CaseID(ctx),
		RunID:     requestcontext.RunID(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
	}
	if err := publisher.Emit(ctx, ev); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
