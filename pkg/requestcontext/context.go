// Package requestcontext provides context accessors for values scoped to one
// discovery run or CLI invocation.
//
// Usage in services (read values):
//
//	runID := requestcontext.RunID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "dsar/pkg/domain"
)

type (
	caseIDKey      struct{}
	runIDKey       struct{}
	requestIDKey   struct{}
	actorIDKey     struct{}
	requestTimeKey struct{}
)

// CaseID returns the case the current run belongs to, or the nil ID.
func CaseID(ctx context.Context) id.CaseID {
	if v, ok := ctx.Value(caseIDKey{}).(id.CaseID); ok {
		return v
	}
	return id.CaseID{}
}

func WithCaseID(ctx context.Context, caseID id.CaseID) context.Context {
	return context.WithValue(ctx, caseIDKey{}, caseID)
}

// RunID returns the current run, or the nil ID.
func RunID(ctx context.Context) id.RunID {
	if v, ok := ctx.Value(runIDKey{}).(id.RunID); ok {
		return v
	}
	return id.RunID{}
}

func WithRunID(ctx context.Context, runID id.RunID) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RequestID is the correlation ID supplied by the caller that started the run.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ActorID identifies the operator who started the run.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// Now returns the injected clock time, or time.Now when none is set.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithTime pins Now for deterministic tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
