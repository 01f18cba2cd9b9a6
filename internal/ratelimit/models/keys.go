package models

import "strings"

const keyPrefixCase = "dsar:case:"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so an identifier containing ':' cannot address a neighbouring bucket.
//
// Example: "case:admin" becomes "case_admin".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// CaseKey is the bucket key shared by every source query of one case.
func CaseKey(caseID string) string {
	return keyPrefixCase + SanitizeKeySegment(caseID)
}
