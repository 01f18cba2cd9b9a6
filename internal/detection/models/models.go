package models

import (
	"fmt"
	"strings"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/masking"
)

// DetectorType names the pipeline stage that produced a result.
type DetectorType string

const (
	DetectorMetadata      DetectorType = "METADATA"
	DetectorRegex         DetectorType = "REGEX"
	DetectorPDFMetadata   DetectorType = "PDF_METADATA"
	DetectorOCR           DetectorType = "OCR"
	DetectorLLMClassifier DetectorType = "LLM_CLASSIFIER"
)

// ConfidenceLevel buckets a confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// Thresholds are inclusive at the boundary.
const (
	HighConfidenceThreshold   = 0.85
	MediumConfidenceThreshold = 0.50
)

// ToConfidenceLevel maps a score in [0,1] to its level.
func ToConfidenceLevel(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= HighConfidenceThreshold:
		return ConfidenceHigh
	case confidence >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ContentMode gates how much raw content the engine may read.
type ContentMode string

const (
	ModeMetadataOnly ContentMode = "METADATA_ONLY"
	ModeContentScan  ContentMode = "CONTENT_SCAN"
	ModeFullContent  ContentMode = "FULL_CONTENT"
)

// ParseContentMode accepts the mode name case-insensitively.
func ParseContentMode(s string) (ContentMode, error) {
	m := ContentMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ModeMetadataOnly, ModeContentScan, ModeFullContent:
		return m, nil
	}
	return "", fmt.Errorf("unknown content mode %q", s)
}

// ScansContent reports whether the mode is at least CONTENT_SCAN.
func (m ContentMode) ScansContent() bool {
	return m == ModeContentScan || m == ModeFullContent
}

// Span is a half-open byte range in the scanned text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DetectedElement is one pattern's contribution to a result. It never holds
// the raw matched value, only the masked sample.
type DetectedElement struct {
	ElementType     string           `json:"element_type"`
	PIIType         masking.PIIType  `json:"pii_type"`
	Category        catalog.Category `json:"category"`
	Confidence      float64          `json:"confidence"`
	ConfidenceLevel ConfidenceLevel  `json:"confidence_level"`
	RedactedSample  string           `json:"redacted_sample"`
	MatchCount      int              `json:"match_count"`
	Offsets         *Span            `json:"offsets,omitempty"`
	Validated       *bool            `json:"validated,omitempty"`
}

// DetectedCategory is the strongest evidence seen for a category in one result.
type DetectedCategory struct {
	Category        catalog.Category `json:"category"`
	Confidence      float64          `json:"confidence"`
	ConfidenceLevel ConfidenceLevel  `json:"confidence_level"`
}

// DetectionResult is one stage's output for one evidence item.
type DetectionResult struct {
	DetectorType                     DetectorType       `json:"detector_type"`
	Elements                         []DetectedElement  `json:"elements"`
	Categories                       []DetectedCategory `json:"categories"`
	ContainsSpecialCategorySuspected bool               `json:"contains_special_category_suspected"`
}

// IsEmpty reports whether the stage found nothing.
func (r DetectionResult) IsEmpty() bool {
	return len(r.Elements) == 0 && len(r.Categories) == 0
}

// DocumentMetadata holds the descriptive fields of a document.
type DocumentMetadata struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords string
}

// Text joins the non-empty fields, one per line, for pattern scanning.
func (m DocumentMetadata) Text() string {
	var b strings.Builder
	for _, f := range []string{m.Title, m.Author, m.Subject, m.Creator, m.Producer, m.Keywords} {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f)
	}
	return b.String()
}

// CategorySuggestion is a category proposed by a generative classifier.
type CategorySuggestion struct {
	Category   catalog.Category
	Confidence float64
}
