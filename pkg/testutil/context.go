package testutil

import (
	"context"
	"time"

	id "dsar/pkg/domain"
	"dsar/pkg/requestcontext"
)

// RunScope is the ambient identity a discovery run puts on its context.
type RunScope struct {
	CaseID    id.CaseID
	RunID     id.RunID
	RequestID string
	At        time.Time
}

// NewRunScope returns fresh case and run IDs pinned to at.
func NewRunScope(at time.Time) RunScope {
	return RunScope{
		CaseID:    id.NewCaseID(),
		RunID:     id.NewRunID(),
		RequestID: "req-test",
		At:        at,
	}
}

// Context attaches the scope to ctx. A zero At leaves the clock unpinned.
func (s RunScope) Context(ctx context.Context) context.Context {
	ctx = requestcontext.WithCaseID(ctx, s.CaseID)
	ctx = requestcontext.WithRunID(ctx, s.RunID)
	if s.RequestID != "" {
		ctx = requestcontext.WithRequestID(ctx, s.RequestID)
	}
	if !s.At.IsZero() {
		ctx = requestcontext.WithTime(ctx, s.At)
	}
	return ctx
}
