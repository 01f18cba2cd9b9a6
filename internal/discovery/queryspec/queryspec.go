// Package queryspec builds the typed query handed to connectors.
//
// New validates once at construction. When validation fails the orchestrator
// falls back to BestEffort, which assembles the same fields without checks and
// marks the spec so connectors and logs can tell it apart. A best-effort spec
// is never a silent success: the connector may still reject it.
package queryspec

import (
	"strings"
	"time"

	detection "dsar/internal/detection/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
	dErrors "dsar/pkg/domain-errors"
	"dsar/pkg/platform/normalize"
)

const (
	DefaultMaxItems = 500
	maxMaxItems     = 10000
)

// SubjectIdentifiers are the values a connector searches for.
type SubjectIdentifiers struct {
	Primary      identity.Identifier   `json:"primary"`
	Alternatives []identity.Identifier `json:"alternatives,omitempty"`
}

// TimeRange bounds collection; From must not be after To.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type OutputOptions struct {
	Mode               detection.ContentMode `json:"mode"`
	MaxItems           int                   `json:"maxItems"`
	IncludeAttachments bool                  `json:"includeAttachments"`
}

type Legal struct {
	Purpose          id.LegalPurpose `json:"purpose"`
	DataMinimization bool            `json:"dataMinimization"`
}

// QuerySpec is the strongly typed query for one source.
type QuerySpec struct {
	Subject       SubjectIdentifiers `json:"subjectIdentifiers"`
	TimeRange     *TimeRange         `json:"timeRange,omitempty"`
	SearchTerms   []string           `json:"searchTerms,omitempty"`
	ProviderScope []string           `json:"providerScope,omitempty"`
	Output        OutputOptions      `json:"outputOptions"`
	Legal         Legal              `json:"legal"`

	bestEffort bool
}

// Params is the raw input both constructors accept.
type Params struct {
	Graph              *identity.Graph
	From, To           *time.Time
	SearchTerms        []string
	ProviderScope      []string
	Mode               detection.ContentMode
	MaxItems           int
	IncludeAttachments bool
	Purpose            id.LegalPurpose
	DataMinimization   bool
}

// New builds a validated spec.
func New(p Params) (QuerySpec, error) {
	if p.Graph.IsEmpty() {
		return QuerySpec{}, dErrors.New(dErrors.CodeValidation, "subject identifiers are required")
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return QuerySpec{}, dErrors.New(dErrors.CodeValidation, "time range start is after end")
	}
	if !p.Purpose.IsValid() {
		return QuerySpec{}, dErrors.New(dErrors.CodeValidation, "legal purpose must be dsar")
	}
	switch p.Mode {
	case detection.ModeMetadataOnly, detection.ModeContentScan, detection.ModeFullContent:
	default:
		return QuerySpec{}, dErrors.Newf(dErrors.CodeValidation, "unknown content mode %q", p.Mode)
	}
	if p.MaxItems < 0 || p.MaxItems > maxMaxItems {
		return QuerySpec{}, dErrors.Newf(dErrors.CodeValidation, "max items must be between 0 and %d", maxMaxItems)
	}
	for _, scope := range p.ProviderScope {
		if strings.TrimSpace(scope) == "" {
			return QuerySpec{}, dErrors.New(dErrors.CodeValidation, "provider scope entries cannot be blank")
		}
	}
	return assemble(p), nil
}

// BestEffort builds the spec without validation.
func BestEffort(p Params) QuerySpec {
	qs := assemble(p)
	qs.bestEffort = true
	return qs
}

// IsBestEffort reports whether the spec skipped validation.
func (q QuerySpec) IsBestEffort() bool { return q.bestEffort }

// Values lists every subject identifier value, primary first.
func (q QuerySpec) Values() []string {
	var out []string
	if q.Subject.Primary.Value != "" {
		out = append(out, q.Subject.Primary.Value)
	}
	for _, a := range q.Subject.Alternatives {
		out = append(out, a.Value)
	}
	return out
}

func assemble(p Params) QuerySpec {
	qs := QuerySpec{
		SearchTerms:   normalize.DedupeAndTrim(p.SearchTerms),
		ProviderScope: normalize.DedupeAndTrim(p.ProviderScope),
		Output: OutputOptions{
			Mode:               p.Mode,
			MaxItems:           p.MaxItems,
			IncludeAttachments: p.IncludeAttachments,
		},
		Legal: Legal{Purpose: p.Purpose, DataMinimization: p.DataMinimization},
	}
	if qs.Output.MaxItems == 0 {
		qs.Output.MaxItems = DefaultMaxItems
	}
	if ids := p.Graph.Identifiers(); len(ids) > 0 {
		qs.Subject.Primary = ids[0]
		qs.Subject.Alternatives = ids[1:]
	}
	if p.From != nil || p.To != nil {
		qs.TimeRange = &TimeRange{}
		if p.From != nil {
			qs.TimeRange.From = *p.From
		}
		if p.To != nil {
			qs.TimeRange.To = *p.To
		}
	}
	return qs
}
