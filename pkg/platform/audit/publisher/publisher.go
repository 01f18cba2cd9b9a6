// Package publisher emits audit events either synchronously or through a
// bounded in-process buffer drained by a background goroutine.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "dsar/pkg/domain"
	audit "dsar/pkg/platform/audit"
)

// ErrBufferFull is returned when an async publisher cannot accept an event.
var ErrBufferFull = errors.New("audit buffer full")

type lister interface {
	ListByCase(ctx context.Context, caseID id.CaseID) ([]audit.Event, error)
}

// Publisher writes audit events to a store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer    chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue into a buffer of the given size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit stamps the event and persists it. In async mode a full buffer returns
// ErrBufferFull immediately; a cancelled context wins over a full buffer.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.buffer <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// Buffered events outlive the request context that produced them.
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Warn("failed to persist buffered audit event", "action", event.Action, "error", err)
		}
	}
}

// List returns the events recorded for a case when the store supports listing.
func (p *Publisher) List(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	l, ok := p.store.(lister)
	if !ok {
		return nil, errors.New("audit store does not support listing")
	}
	return l.ListByCase(ctx, caseID)
}

// Close drains buffered events and stops the background goroutine.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
	return nil
}
