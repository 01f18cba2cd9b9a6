// Package ports defines the optional collaborators of the detection engine.
// Every port may be absent; the engine skips the corresponding stage.
package ports

import (
	"context"

	"dsar/internal/detection/models"
)

// MetadataExtractor reads descriptive fields from a document buffer.
type MetadataExtractor interface {
	Extract(ctx context.Context, document []byte) (*models.DocumentMetadata, error)
}

// TextRecognizer turns a document or image buffer into text (OCR). An empty
// string with a nil error means nothing was recognised.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, document []byte, mimeType string) (string, error)
}

// CategoryClassifier proposes data categories for a text. Its output is
// advisory: the engine never lets it be the only source of a special category.
type CategoryClassifier interface {
	Classify(ctx context.Context, text string) ([]models.CategorySuggestion, error)
}
