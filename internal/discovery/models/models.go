// Package models holds the discovery run's domain types.
package models

import (
	"time"

	"dsar/internal/detection/catalog"
	detection "dsar/internal/detection/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
)

// RunStatus is the lifecycle state of a discovery run.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// QueryStatus is the lifecycle state of one source query.
type QueryStatus string

const (
	QueryPending   QueryStatus = "PENDING"
	QueryRunning   QueryStatus = "RUNNING"
	QueryCompleted QueryStatus = "COMPLETED"
	QueryFailed    QueryStatus = "FAILED"
	QuerySkipped   QueryStatus = "SKIPPED"
)

// Skip reasons recorded on SKIPPED queries.
const (
	SkipRateLimited   = "rate limited"
	SkipNoConnector   = "no connector registered"
	SkipCircuitOpen   = "source circuit open"
	SkipRunCancelled  = "run cancelled"
	SkipRateLimitDown = "rate limiter unavailable"
)

// Severity of a finding.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityFor is CRITICAL for special categories, WARNING for sensitive ones,
// INFO otherwise.
func SeverityFor(c catalog.Category) Severity {
	switch {
	case catalog.IsSpecialCategory(c):
		return SeverityCritical
	case catalog.IsSensitiveCategory(c):
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Case is the slice of case-record state the pipeline reads.
type Case struct {
	ID        id.CaseID
	Reference string
	Purpose   id.LegalPurpose
	// Window optionally bounds collection in time.
	From *time.Time
	To   *time.Time
}

// SecretRef names a credential held by an external secret store. The
// pipeline passes it through; only connectors resolve it.
type SecretRef struct {
	Name string `json:"name" yaml:"name"`
}

// SourceConfig is one external record system enabled for a case.
type SourceConfig struct {
	ID       id.SourceID       `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Provider string            `json:"provider" yaml:"provider"`
	Enabled  bool              `json:"enabled" yaml:"enabled"`
	Scope    []string          `json:"scope,omitempty" yaml:"scope"`
	Settings map[string]string `json:"settings,omitempty" yaml:"settings"`
	Secret   SecretRef         `json:"secret" yaml:"secret"`
}

// CollectedDocument is one item returned by a connector.
type CollectedDocument struct {
	Location string
	Title    string
	MIMEType string
	FileName string
	// Text is already-extracted text; Content holds raw bytes when the
	// connector has them (e.g. a PDF).
	Text    string
	Content []byte
}

// CollectionResult is a connector's answer. Expected failures (auth, no data)
// come back as Success=false with Error set rather than as a Go error.
type CollectionResult struct {
	Success         bool
	RecordsFound    int
	ResultMetadata  map[string]string
	FindingsSummary string
	Error           string
	Documents       []CollectedDocument
	// Identifiers the source associates with the subject.
	DiscoveredIdentifiers []identity.Identifier
	SystemAccounts        []identity.SystemAccount
}

// EvidenceItem is created once per successful source query.
type EvidenceItem struct {
	ID           id.EvidenceItemID
	RunID        id.RunID
	CaseID       id.CaseID
	SourceID     id.SourceID
	Provider     string
	Location     string
	Title        string
	RecordsFound int
	Metadata     map[string]string
	CollectedAt  time.Time

	Results                 []detection.DetectionResult
	Categories              []detection.DetectedCategory
	ContainsSpecialCategory bool
	ThirdPartyDataSuspected bool
}

// Finding is the single per-category outcome of a run.
type Finding struct {
	ID                      id.FindingID
	RunID                   id.RunID
	CaseID                  id.CaseID
	DataCategory            catalog.Category
	Severity                Severity
	Confidence              float64
	ConfidenceLevel         detection.ConfidenceLevel
	EvidenceItemIDs         []id.EvidenceItemID
	ContainsSpecialCategory bool
	RequiresLegalReview     bool
	CreatedAt               time.Time
}

// QueryRecord tracks one source query through the run.
type QueryRecord struct {
	ID             id.QueryID
	SourceID       id.SourceID
	Provider       string
	Status         QueryStatus
	Reason         string // skip reason or sanitized failure message
	ErrorCategory  string
	EvidenceItemID id.EvidenceItemID
	RecordsFound   int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// RunTotals are the deterministic counters of a run.
type RunTotals struct {
	Sources          int `json:"sources"`
	QueriesCompleted int `json:"queriesCompleted"`
	QueriesFailed    int `json:"queriesFailed"`
	QueriesSkipped   int `json:"queriesSkipped"`
	EvidenceItems    int `json:"evidenceItems"`
	RecordsFound     int `json:"recordsFound"`
	Findings         int `json:"findings"`
	CriticalFindings int `json:"criticalFindings"`
	WarningFindings  int `json:"warningFindings"`
	IdentifiersAdded int `json:"identifiersAdded"`
}

// RunRequest starts a discovery run.
type RunRequest struct {
	CaseID    id.CaseID
	SourceIDs []id.SourceID // empty means every enabled source
	Mode      detection.ContentMode
	EnableOCR bool
	EnableLLM bool
}

// RunStatusRecord is what the sink persists for run state transitions.
type RunStatusRecord struct {
	RunID       id.RunID
	CaseID      id.CaseID
	Status      RunStatus
	Error       string
	Totals      RunTotals
	LegalHold   bool
	Summary     string
	StartedAt   time.Time
	CompletedAt time.Time
}

// LegalReviewTask asks a human to clear the legal gate before export.
type LegalReviewTask struct {
	CaseID            id.CaseID
	RunID             id.RunID
	SpecialCategories []catalog.Category
	FindingIDs        []id.FindingID
	Reason            string
}

// RunResult is the in-memory outcome of Run.
type RunResult struct {
	RunID                   id.RunID
	CaseID                  id.CaseID
	Status                  RunStatus
	Mode                    detection.ContentMode
	Error                   string
	Totals                  RunTotals
	ContainsSpecialCategory bool
	SpecialCategories       []catalog.Category
	LegalHold               bool
	Graph                   *identity.Graph
	Findings                []Finding
	EvidenceItems           []EvidenceItem
	Queries                 []QueryRecord
	Summary                 string
	StartedAt               time.Time
	CompletedAt             time.Time
	// StatusPersistError is set when writing the final run status failed;
	// the rest of the result is unaffected.
	StatusPersistError error
}

// StatusRecord projects the result onto the persisted run status.
func (r *RunResult) StatusRecord() RunStatusRecord {
	return RunStatusRecord{
		RunID:       r.RunID,
		CaseID:      r.CaseID,
		Status:      r.Status,
		Error:       r.Error,
		Totals:      r.Totals,
		LegalHold:   r.LegalHold,
		Summary:     r.Summary,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}
