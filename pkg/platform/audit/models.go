package audit

import (
	"context"
	"time"

	id "dsar/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// run outcomes and legal holds that a DSAR response must be able to prove.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring, such as
	// rate-limit denials and sources tripping their circuit breaker.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Subject never carries a raw identifier; callers pass a fingerprint.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	CaseID    id.CaseID
	RunID     id.RunID
	SourceID  string
	Subject   string
	Action    string
	Purpose   string
	Decision  string
	Reason    string
	RequestID string
	ActorID   string
}

type AuditEvent string

const (
	// Run lifecycle
	EventRunStarted   AuditEvent = "dsar_run_started"
	EventRunCompleted AuditEvent = "dsar_run_completed"
	EventRunFailed    AuditEvent = "dsar_run_failed"

	// Per-source queries
	EventQueryCompleted AuditEvent = "dsar_query_completed"
	EventQueryFailed    AuditEvent = "dsar_query_failed"
	EventQuerySkipped   AuditEvent = "dsar_query_skipped"

	// Gates
	EventLegalHoldTriggered AuditEvent = "dsar_legal_hold_triggered"
	EventRateLimitExceeded  AuditEvent = "dsar_rate_limit_exceeded"
	EventSourceCircuitOpen  AuditEvent = "dsar_source_circuit_opened"
	EventSourceCircuitClose AuditEvent = "dsar_source_circuit_closed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventRunStarted:         CategoryCompliance,
	EventRunCompleted:       CategoryCompliance,
	EventRunFailed:          CategoryCompliance,
	EventLegalHoldTriggered: CategoryCompliance,

	EventRateLimitExceeded:  CategorySecurity,
	EventSourceCircuitOpen:  CategorySecurity,
	EventSourceCircuitClose: CategorySecurity,

	EventQueryCompleted: CategoryOperations,
	EventQueryFailed:    CategoryOperations,
	EventQuerySkipped:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// -----------------------------------------------------------------------------
// Right-sized event types
// -----------------------------------------------------------------------------

// ComplianceEvent captures regulatory-significant actions requiring guaranteed persistence.
type ComplianceEvent struct {
	Timestamp time.Time // set automatically if zero
	CaseID    id.CaseID // required
	RunID     id.RunID
	Subject   string // fingerprint of the primary identifier
	Action    string
	Purpose   string // legal purpose, always "dsar" today
	Decision  string // e.g. "completed", "failed", "legal_hold"
	Reason    string
	RequestID string
	ActorID   string
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:  CategoryCompliance,
		Timestamp: e.Timestamp,
		CaseID:    e.CaseID,
		RunID:     e.RunID,
		Subject:   e.Subject,
		Action:    e.Action,
		Purpose:   e.Purpose,
		Decision:  e.Decision,
		Reason:    e.Reason,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
	}
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SecurityEvent captures security-relevant actions for SIEM and alerting.
type SecurityEvent struct {
	Timestamp time.Time
	CaseID    id.CaseID
	SourceID  string
	Subject   string
	Action    string
	Reason    string
	RequestID string
	Severity  Severity
}

// Category returns CategorySecurity (always).
func (e SecurityEvent) Category() EventCategory { return CategorySecurity }

func (e SecurityEvent) ToEvent() Event {
	return Event{
		Category:  CategorySecurity,
		Timestamp: e.Timestamp,
		CaseID:    e.CaseID,
		SourceID:  e.SourceID,
		Subject:   e.Subject,
		Action:    e.Action,
		Reason:    e.Reason,
		Decision:  string(e.Severity),
		RequestID: e.RequestID,
	}
}

// OpsEvent captures operational events with minimal overhead.
type OpsEvent struct {
	Timestamp time.Time
	CaseID    id.CaseID
	RunID     id.RunID
	SourceID  string
	Action    string
	Reason    string
	RequestID string
}

// Category returns CategoryOperations (always).
func (e OpsEvent) Category() EventCategory { return CategoryOperations }

func (e OpsEvent) ToEvent() Event {
	return Event{
		Category:  CategoryOperations,
		Timestamp: e.Timestamp,
		CaseID:    e.CaseID,
		RunID:     e.RunID,
		SourceID:  e.SourceID,
		Action:    e.Action,
		Reason:    e.Reason,
		RequestID: e.RequestID,
	}
}
