// Package domain holds the typed identifiers and value primitives shared by the
// detection, identity and discovery modules.
//
// Identifiers are distinct named UUID types so a RunID can never be passed
// where a CaseID is expected. Construct them with the Parse functions at trust
// boundaries (CLI flags, run files, connector payloads) and with the New
// functions inside the pipeline.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "dsar/pkg/domain-errors"
)

type (
	CaseID         uuid.UUID
	RunID          uuid.UUID
	QueryID        uuid.UUID
	EvidenceItemID uuid.UUID
	FindingID      uuid.UUID
)

// SourceID names a configured external record system. Source IDs are operator
// chosen slugs rather than UUIDs.
type SourceID string

const maxSourceIDLength = 128

func NewCaseID() CaseID                 { return CaseID(uuid.New()) }
func NewRunID() RunID                   { return RunID(uuid.New()) }
func NewQueryID() QueryID               { return QueryID(uuid.New()) }
func NewEvidenceItemID() EvidenceItemID { return EvidenceItemID(uuid.New()) }
func NewFindingID() FindingID           { return FindingID(uuid.New()) }

func (id CaseID) String() string         { return uuid.UUID(id).String() }
func (id RunID) String() string          { return uuid.UUID(id).String() }
func (id QueryID) String() string        { return uuid.UUID(id).String() }
func (id EvidenceItemID) String() string { return uuid.UUID(id).String() }
func (id FindingID) String() string      { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RunID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id EvidenceItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case ID")
	return CaseID(u), err
}

func ParseRunID(s string) (RunID, error) {
	u, err := parseUUID(s, "run ID")
	return RunID(u), err
}

func ParseEvidenceItemID(s string) (EvidenceItemID, error) {
	u, err := parseUUID(s, "evidence item ID")
	return EvidenceItemID(u), err
}

// ParseSourceID accepts lowercase slugs made of letters, digits, '-', '_' and '.'.
func ParseSourceID(s string) (SourceID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "source ID cannot be empty")
	}
	if len(s) > maxSourceIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "source ID too long")
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "source ID contains invalid characters")
		}
	}
	return SourceID(s), nil
}

func (id SourceID) String() string { return string(id) }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must be valid UTF-8")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
