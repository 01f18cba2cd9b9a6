package queryspec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	detection "dsar/internal/detection/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
	dErrors "dsar/pkg/domain-errors"
)

func validParams() Params {
	return Params{
		Graph: identity.Build(identity.CaseSubject{
			Name:          "Jane Doe",
			Email:         "Jane@Example.com",
			EmailVerified: true,
			Phone:         "+44 20 7946 0958",
		}),
		Mode:    detection.ModeContentScan,
		Purpose: id.PurposeDSAR,
	}
}

func TestNew(t *testing.T) {
	t.Run("builds subject identifiers with the primary first", func(t *testing.T) {
		qs, err := New(validParams())
		require.NoError(t, err)

		assert.Equal(t, identity.TypeEmail, qs.Subject.Primary.Type)
		assert.Equal(t, "jane@example.com", qs.Subject.Primary.Value)
		assert.Len(t, qs.Subject.Alternatives, 2)
		assert.Equal(t, DefaultMaxItems, qs.Output.MaxItems)
		assert.False(t, qs.IsBestEffort())
		assert.Equal(t, "jane@example.com", qs.Values()[0])
	})

	t.Run("keeps a well-ordered time range", func(t *testing.T) {
		p := validParams()
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := from.Add(24 * time.Hour)
		p.From, p.To = &from, &to

		qs, err := New(p)
		require.NoError(t, err)
		require.NotNil(t, qs.TimeRange)
		assert.Equal(t, from, qs.TimeRange.From)
		assert.Equal(t, to, qs.TimeRange.To)
	})

	t.Run("deduplicates search terms and scope", func(t *testing.T) {
		p := validParams()
		p.SearchTerms = []string{" payroll ", "payroll", ""}
		p.ProviderScope = []string{"hr", "hr"}

		qs, err := New(p)
		require.NoError(t, err)
		assert.Equal(t, []string{"payroll"}, qs.SearchTerms)
		assert.Equal(t, []string{"hr"}, qs.ProviderScope)
	})
}

func TestNewRejects(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"empty graph", func(p *Params) { p.Graph = identity.Empty() }},
		{"nil graph", func(p *Params) { p.Graph = nil }},
		{"inverted time range", func(p *Params) { p.From, p.To = &from, &to }},
		{"non-dsar purpose", func(p *Params) { p.Purpose = id.LegalPurpose("marketing") }},
		{"unknown mode", func(p *Params) { p.Mode = "EVERYTHING" }},
		{"negative max items", func(p *Params) { p.MaxItems = -1 }},
		{"blank scope", func(p *Params) { p.ProviderScope = []string{" "} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			_, err := New(p)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestBestEffort(t *testing.T) {
	p := validParams()
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	p.From, p.To = &from, &to
	p.Purpose = ""

	_, err := New(p)
	require.Error(t, err)

	qs := BestEffort(p)
	assert.True(t, qs.IsBestEffort())
	require.NotNil(t, qs.TimeRange)
	assert.Equal(t, from, qs.TimeRange.From)
	assert.NotEmpty(t, qs.Values())
}
