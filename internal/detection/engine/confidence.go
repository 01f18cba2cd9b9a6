package engine

import (
	"math"

	"dsar/internal/detection/catalog"
)

const (
	regexBaseConfidence   = 0.70
	keywordBaseConfidence = 0.50
	perMatchBoost         = 0.05
	maxMatchBoost         = 0.15
	validationBoost       = 0.15
)

// patternConfidence scores a pattern that produced matches accepted matches.
// Validated is true when the pattern has a checksum and every accepted match
// passed it.
func patternConfidence(kind catalog.Kind, matches int, validated bool) float64 {
	if matches < 1 {
		return 0
	}

	c := keywordBaseConfidence
	if kind == catalog.KindRegex {
		c = regexBaseConfidence
	}
	c += math.Min(float64(matches-1)*perMatchBoost, maxMatchBoost)
	if validated {
		c += validationBoost
	}
	return clamp(c)
}

// clamp bounds c to [0,1] and rounds to three decimals so threshold
// comparisons are not disturbed by float error (0.70+0.15 must be 0.85).
func clamp(c float64) float64 {
	c = math.Round(c*1000) / 1000
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
