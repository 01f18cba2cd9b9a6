// Package compliance provides a fail-closed audit publisher for regulatory events.
//
// Events are written to the store synchronously and the caller blocks until
// the write succeeds. If the write fails an error is returned and the caller
// decides whether its operation may continue.
//
// Use for: dsar_run_started, dsar_run_completed, dsar_run_failed, dsar_legal_hold_triggered
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "dsar/pkg/platform/audit"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a compliance publisher.
// The store should be outbox-backed for guaranteed delivery.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a compliance event to the audit store.
func (p *Publisher) Emit(ctx context.Context, event audit.ComplianceEvent) error {
	start := p.now()

	if event.CaseID.IsNil() {
		return errors.New("compliance event requires CaseID")
	}
	if event.Action == "" {
		return errors.New("compliance event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = start
	}

	if err := p.store.Append(ctx, event.ToEvent()); err != nil {
		p.metrics.IncPersistFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"case_id", event.CaseID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	p.metrics.IncEventsEmitted()
	return nil
}

// Close is a no-op for the synchronous compliance publisher.
func (p *Publisher) Close() error {
	return nil
}
