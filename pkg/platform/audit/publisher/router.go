package publisher

import (
	"context"

	audit "dsar/pkg/platform/audit"
)

// ComplianceEmitter is the fail-closed path for regulatory events.
type ComplianceEmitter interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// Router sends compliance events through a fail-closed emitter and every
// other category through a regular publisher.
type Router struct {
	compliance ComplianceEmitter
	fallback   *Publisher
}

// NewRouter routes by event category. A nil compliance emitter sends
// everything to fallback.
func NewRouter(compliance ComplianceEmitter, fallback *Publisher) *Router {
	return &Router{compliance: compliance, fallback: fallback}
}

func (r *Router) Emit(ctx context.Context, event audit.Event) error {
	if r.compliance != nil && audit.AuditEvent(event.Action).Category() == audit.CategoryCompliance {
		return r.compliance.Emit(ctx, audit.ComplianceEvent{
			Timestamp: event.Timestamp,
			CaseID:    event.CaseID,
			RunID:     event.RunID,
			Subject:   event.Subject,
			Action:    event.Action,
			Purpose:   event.Purpose,
			Decision:  event.Decision,
			Reason:    event.Reason,
			RequestID: event.RequestID,
			ActorID:   event.ActorID,
		})
	}
	return r.fallback.Emit(ctx, event)
}

// Close drains the fallback publisher.
func (r *Router) Close() error {
	return r.fallback.Close()
}
