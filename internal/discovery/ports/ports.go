// Package ports declares the collaborators the discovery service depends on.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"

	"dsar/internal/detection/engine"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/queryspec"
	"dsar/internal/identity"
	rlmodels "dsar/internal/ratelimit/models"
	id "dsar/pkg/domain"
	"dsar/pkg/platform/audit"
	"dsar/pkg/requestcontext"
)

// CaseStore loads the case record and its subject. Missing records are
// reported with models.ErrCaseNotFound and models.ErrSubjectNotFound.
type CaseStore interface {
	GetCase(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	GetSubject(ctx context.Context, caseID id.CaseID) (*identity.CaseSubject, error)
}

// SourceStore lists the record systems configured for a case.
type SourceStore interface {
	ListSources(ctx context.Context, caseID id.CaseID) ([]models.SourceConfig, error)
}

// Connector queries one external record system. Expected failures come back
// as a result with Success=false; a returned error or a panic is unexpected.
type Connector interface {
	CollectData(ctx context.Context, cfg models.SourceConfig, secret models.SecretRef, spec queryspec.QuerySpec) (*models.CollectionResult, error)
}

// ConnectorRegistry resolves a connector by provider name.
type ConnectorRegistry interface {
	Get(provider string) (Connector, bool)
}

// RateLimiter performs an atomic check-and-consume for key.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit rlmodels.Limit) (rlmodels.Decision, error)
}

// Sink persists run output. Every call is fire-and-forget from the service's
// point of view except WriteRunStatus for the final state.
type Sink interface {
	WriteRunStatus(ctx context.Context, status models.RunStatusRecord) error
	WriteEvidenceItem(ctx context.Context, item models.EvidenceItem) error
	WriteDetectionResult(ctx context.Context, evidenceID id.EvidenceItemID, result detection.DetectionResult) error
	WriteFinding(ctx context.Context, finding models.Finding) error
	UpsertIdentityProfile(ctx context.Context, caseID id.CaseID, graph *identity.Graph) error
}

// Detector runs detection over one collected document.
type Detector interface {
	Detect(ctx context.Context, in engine.Input) (*engine.Report, error)
}

// LegalReviewHook opens the legal gate task when special-category data is found.
type LegalReviewHook interface {
	CreateLegalReviewTask(ctx context.Context, task models.LegalReviewTask) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs ev with attrs and emits it to publisher. Case, run and request
// identifiers missing from ev are taken from ctx. Emission failures are logged
// and swallowed.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, ev audit.Event, attrs ...any) {
	if ev.CaseID.IsNil() {
		ev.CaseID = requestcontext.CaseID(ctx)
	}
	if ev.RunID.IsNil() {
		ev.RunID = requestcontext.RunID(ctx)
	}
	if ev.RequestID == "" {
		ev.RequestID = requestcontext.RequestID(ctx)
	}
	if ev.ActorID == "" {
		ev.ActorID = requestcontext.ActorID(ctx)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = requestcontext.Now(ctx)
	}

	if logger != nil {
		args := append(attrs, "event", ev.Action, "log_type", "audit", "run_id", ev.RunID.String())
		if ev.SourceID != "" {
			args = append(args, "source_id", ev.SourceID)
		}
		if ev.Reason != "" {
			args = append(args, "reason", ev.Reason)
		}
		logger.InfoContext(ctx, ev.Action, args...)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, ev); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", ev.Action, "error", err)
	}
}
