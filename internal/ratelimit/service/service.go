// Package service enforces per-case quotas on source queries.
package service

import (
	"context"
	"errors"
	"log/slog"

	"dsar/internal/ratelimit/metrics"
	"dsar/internal/ratelimit/models"
	"dsar/internal/ratelimit/ports"
	dErrors "dsar/pkg/domain-errors"
	"dsar/pkg/platform/audit"
)

type (
	BucketStore    = ports.BucketStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	buckets        BucketStore
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(buckets BucketStore, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}
	svc := &Service{buckets: buckets}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckRateLimit consumes one request from key's window. The check and the
// consumption are a single atomic store operation.
func (s *Service) CheckRateLimit(ctx context.Context, key string, limit models.Limit) (models.Decision, error) {
	if key == "" {
		return models.Decision{}, dErrors.New(dErrors.CodeInvalidInput, "rate limit key is required")
	}
	if !limit.Valid() {
		return models.Decision{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid rate limit %d/%s", limit.MaxRequests, limit.Window)
	}

	result, err := s.buckets.Allow(ctx, key, limit.MaxRequests, limit.Window)
	if err != nil {
		s.metrics.IncStoreErrors()
		return models.Decision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check rate limit")
	}

	s.metrics.RecordDecision(result.Allowed)
	if !result.Allowed {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, string(audit.EventRateLimitExceeded),
			"key", key,
			"limit", limit.MaxRequests,
			"window_seconds", int(limit.Window.Seconds()),
			"retry_after_seconds", int(result.RetryAfter.Seconds()),
		)
	}
	return result.Decision(), nil
}
