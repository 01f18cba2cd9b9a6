// Package normalize canonicalizes subject identifiers before comparison.
package normalize

import (
	"strings"
	"unicode"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  payroll ", "hr", "payroll", "", "  "})
//	// Returns: []string{"payroll", "hr"}
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is like DedupeAndTrim but compares and returns lowercased values.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, canon func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		c := canon(v)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			result = append(result, c)
		}
	}
	return result
}

// Email lowercases and trims an address. Gmail-style dots and plus tags are
// kept: they are distinct mailboxes for most providers.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone keeps digits and a leading '+'.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name collapses internal whitespace and trims. Case is preserved for display.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Opaque trims an identifier whose case may be significant (object IDs, UPNs
// are lowercased by callers that know they are case-insensitive).
func Opaque(s string) string {
	return strings.TrimSpace(s)
}
