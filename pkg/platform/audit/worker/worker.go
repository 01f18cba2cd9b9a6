// Package worker relays outbox rows to the audit stream.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "dsar/pkg/platform/audit"
)

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
)

// Outbox is the pending side of the transactional outbox.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID) error
}

// Sink receives relayed entries.
type Sink interface {
	PublishEntry(ctx context.Context, entry audit.OutboxEntry) error
}

// Worker polls the outbox and publishes entries in creation order. An entry
// that fails to publish stops the batch so ordering per case is kept; it is
// retried on the next tick.
type Worker struct {
	outbox    Outbox
	sink      Sink
	logger    *slog.Logger
	batchSize int
	interval  time.Duration
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func NewWorker(outbox Outbox, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		outbox:    outbox,
		sink:      sink,
		logger:    slog.New(slog.DiscardHandler),
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce relays one batch and returns how many entries were published.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	entries, err := w.outbox.FetchPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	var published []uuid.UUID
	var publishErr error
	for _, entry := range entries {
		if publishErr = w.sink.PublishEntry(ctx, entry); publishErr != nil {
			break
		}
		published = append(published, entry.ID)
	}

	if err := w.outbox.MarkProcessed(ctx, published); err != nil {
		return 0, err
	}
	return len(published), publishErr
}
