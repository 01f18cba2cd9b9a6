package domain

import dErrors "dsar/pkg/domain-errors"

// LegalPurpose identifies the lawful basis under which a discovery query runs.
// Invariant: the discovery workflow only ever runs under PurposeDSAR.
//
// Usage: construct via ParseLegalPurpose at trust boundaries; direct casting
// bypasses validation.
type LegalPurpose string

const (
	PurposeDSAR LegalPurpose = "dsar"
)

// ParseLegalPurpose constructs a LegalPurpose from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or is anything
// other than the DSAR purpose.
func ParseLegalPurpose(s string) (LegalPurpose, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "legal purpose cannot be empty")
	}
	p := LegalPurpose(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid legal purpose")
	}
	return p, nil
}

func (p LegalPurpose) IsValid() bool {
	return p == PurposeDSAR
}

func (p LegalPurpose) String() string {
	return string(p)
}
