package engine

import (
	"sort"
	"unicode/utf8"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/models"
)

// scanText applies every catalog pattern to text. Matches failing their
// pattern's validator are dropped and never reported.
func (e *Engine) scanText(detector models.DetectorType, text string, withOffsets bool) models.DetectionResult {
	res := models.DetectionResult{DetectorType: detector}
	if text == "" {
		return res
	}

	best := make(map[catalog.Category]float64)
	for _, p := range e.patterns {
		locs := p.FindAll(text, e.maxMatchesPerPattern)

		var first []int
		accepted, dropped := 0, 0
		for _, loc := range locs {
			if !p.Validate(text[loc[0]:loc[1]]) {
				dropped++
				continue
			}
			if first == nil {
				first = loc
			}
			accepted++
		}
		e.metrics.AddValidationDropped(p.Name(), dropped)
		if accepted == 0 {
			continue
		}
		e.metrics.AddMatches(p.Name(), accepted)

		confidence := patternConfidence(p.Kind(), accepted, p.HasValidator())
		el := models.DetectedElement{
			ElementType:     p.Name(),
			PIIType:         p.PIIType(),
			Category:        p.Category(),
			Confidence:      confidence,
			ConfidenceLevel: models.ToConfidenceLevel(confidence),
			RedactedSample:  p.Redact(text[first[0]:first[1]]),
			MatchCount:      accepted,
		}
		if withOffsets {
			el.Offsets = &models.Span{Start: first[0], End: first[1]}
		}
		if p.HasValidator() {
			validated := true
			el.Validated = &validated
		}
		res.Elements = append(res.Elements, el)

		if confidence > best[p.Category()] {
			best[p.Category()] = confidence
		}
		if p.IsSpecial() {
			res.ContainsSpecialCategorySuspected = true
		}
	}
	res.Categories = categoriesFrom(best)
	return res
}

// categoriesFrom turns per-category maxima into a sorted slice.
func categoriesFrom(best map[catalog.Category]float64) []models.DetectedCategory {
	if len(best) == 0 {
		return nil
	}
	out := make([]models.DetectedCategory, 0, len(best))
	for c, conf := range best {
		out = append(out, models.DetectedCategory{
			Category:        c,
			Confidence:      conf,
			ConfidenceLevel: models.ToConfidenceLevel(conf),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
