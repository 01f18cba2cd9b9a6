package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToConfidenceLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  ConfidenceLevel
	}{
		{1.0, ConfidenceHigh},
		{0.85, ConfidenceHigh},
		{0.8499, ConfidenceMedium},
		{0.50, ConfidenceMedium},
		{0.49, ConfidenceLow},
		{0, ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToConfidenceLevel(tt.score), "score %v", tt.score)
	}
}

func TestParseContentMode(t *testing.T) {
	m, err := ParseContentMode(" content_scan ")
	require.NoError(t, err)
	assert.Equal(t, ModeContentScan, m)
	assert.True(t, m.ScansContent())
	assert.True(t, ModeFullContent.ScansContent())
	assert.False(t, ModeMetadataOnly.ScansContent())

	_, err = ParseContentMode("everything")
	assert.Error(t, err)
}

func TestDocumentMetadataText(t *testing.T) {
	md := DocumentMetadata{Title: "Payslip", Author: " Jane Doe ", Producer: ""}
	assert.Equal(t, "Payslip\nJane Doe", md.Text())
	assert.Empty(t, DocumentMetadata{}.Text())
}
