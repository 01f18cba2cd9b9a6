package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsar/internal/discovery/models"
	id "dsar/pkg/domain"
)

const runFileYAML = `case:
  reference: DSAR-2026-014
  subject:
    name: Jane Doe
    email: jane.doe@example.com
    emailVerified: true
    identifiers:
      employeeId: E-1001
mode: content_scan
fixtures: fixtures
sources:
  - id: hr
    name: HR system
    provider: fixture
    enabled: true
    settings: {dir: hr}
  - id: crm
    provider: fixture
    enabled: true
    settings: {dir: crm}
  - id: archive
    provider: fixture
    enabled: false
    settings: {dir: archive}
`

func TestParseRunFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		rf, err := parseRunFile([]byte(runFileYAML))
		require.NoError(t, err)
		assert.Equal(t, "CONTENT_SCAN", string(rf.contentMode()))
		require.Len(t, rf.Sources, 3)
		assert.Equal(t, id.SourceID("crm"), rf.Sources[1].ID)
		assert.Equal(t, "crm", rf.Sources[1].Name, "name defaults to the id")
		assert.False(t, rf.Sources[2].Enabled)

		caseID := id.NewCaseID()
		kase := rf.caseRecord(caseID)
		assert.Equal(t, id.PurposeDSAR, kase.Purpose)
		assert.Equal(t, "DSAR-2026-014", kase.Reference)
		assert.Equal(t, "E-1001", rf.subject().Identifiers["employeeId"])
		assert.True(t, rf.subject().EmailVerified)
	})

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "subject without name or email",
			yaml:    "case: {subject: {phone: '+44 20 7946 0000'}}\nsources: [{id: hr, provider: fixture}]",
			wantErr: "name or an email",
		},
		{
			name:    "no sources",
			yaml:    "case: {subject: {name: Jane Doe}}",
			wantErr: "at least one source",
		},
		{
			name:    "invalid source id",
			yaml:    "case: {subject: {name: Jane Doe}}\nsources: [{id: 'HR System', provider: fixture}]",
			wantErr: "source 0",
		},
		{
			name:    "duplicate source id",
			yaml:    "case: {subject: {name: Jane Doe}}\nsources: [{id: hr, provider: fixture}, {id: hr, provider: fixture}]",
			wantErr: "duplicate source id",
		},
		{
			name:    "missing provider",
			yaml:    "case: {subject: {name: Jane Doe}}\nsources: [{id: hr}]",
			wantErr: "provider is required",
		},
		{
			name:    "unknown mode",
			yaml:    "mode: everything\ncase: {subject: {name: Jane Doe}}\nsources: [{id: hr, provider: fixture}]",
			wantErr: "unknown content mode",
		},
		{
			name:    "inverted window",
			yaml:    "case: {from: 2026-03-01T00:00:00Z, to: 2026-01-01T00:00:00Z, subject: {name: Jane Doe}}\nsources: [{id: hr, provider: fixture}]",
			wantErr: "ends before it starts",
		},
		{
			name:    "malformed yaml",
			yaml:    "case: [",
			wantErr: "parse run file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRunFile([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRunFileResolvesFixtures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.yaml")
	writeFile(t, path, runFileYAML)

	rf, err := loadRunFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fixtures"), rf.Fixtures)
}

// runOutput is the subset of the JSON report the tests read.
type runOutput struct {
	Status            string           `json:"status"`
	Summary           string           `json:"summary"`
	LegalHold         bool             `json:"legalHold"`
	SpecialCategories []string         `json:"specialCategories"`
	Totals            models.RunTotals `json:"totals"`
	Findings          []struct {
		Category            string   `json:"dataCategory"`
		Severity            string   `json:"severity"`
		EvidenceItemIDs     []string `json:"evidenceItemIds"`
		RequiresLegalReview bool     `json:"requiresLegalReview"`
	} `json:"findings"`
	Queries []struct {
		SourceID string `json:"sourceId"`
		Status   string `json:"status"`
		Reason   string `json:"reason"`
	} `json:"queries"`
}

func writeRunFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "case.yaml"), runFileYAML)
	writeFile(t, filepath.Join(dir, "fixtures", "hr", "leave.txt"),
		"Sick leave approved for Jane Doe. Diagnosis: diabetes. Contact jane.doe@example.com.")
	writeFile(t, filepath.Join(dir, "fixtures", "hr", "source.yaml"),
		"identifiers:\n  - {type: upn, value: jdoe@corp.example.com, confidence: 0.9}\n")
	writeFile(t, filepath.Join(dir, "fixtures", "crm", "source.yaml"), "fail: \"authentication: token expired\"\n")
	return dir
}

func TestRunCommand(t *testing.T) {
	t.Run("offline run reports findings and a legal hold", func(t *testing.T) {
		dir := writeRunFixtures(t)
		out, err := execute(t, "", "--json", "run", filepath.Join(dir, "case.yaml"))
		require.NoError(t, err)

		var got runOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, string(models.RunCompleted), got.Status)
		assert.True(t, got.LegalHold)
		assert.Contains(t, got.SpecialCategories, "HEALTH")

		assert.Equal(t, 2, got.Totals.Sources)
		assert.Equal(t, 1, got.Totals.QueriesCompleted)
		assert.Equal(t, 1, got.Totals.QueriesFailed)
		assert.Equal(t, 1, got.Totals.EvidenceItems)
		assert.Equal(t, 1, got.Totals.IdentifiersAdded)

		var health bool
		for _, f := range got.Findings {
			if f.Category == "HEALTH" {
				health = true
				assert.Equal(t, string(models.SeverityCritical), f.Severity)
				assert.True(t, f.RequiresLegalReview)
				assert.Len(t, f.EvidenceItemIDs, 1)
			}
		}
		assert.True(t, health)
		assert.NotContains(t, out, "Diagnosis: diabetes", "collected content never reaches the report")
	})

	t.Run("source filter", func(t *testing.T) {
		dir := writeRunFixtures(t)
		out, err := execute(t, "", "--json", "run", "--source", "hr", filepath.Join(dir, "case.yaml"))
		require.NoError(t, err)
		var got runOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Queries, 1)
		assert.Equal(t, "hr", got.Queries[0].SourceID)
		assert.Equal(t, string(models.QueryCompleted), got.Queries[0].Status)
	})

	t.Run("table output", func(t *testing.T) {
		dir := writeRunFixtures(t)
		out, err := execute(t, "", "run", filepath.Join(dir, "case.yaml"))
		require.NoError(t, err)
		assert.Contains(t, out, "LEGAL HOLD")
		assert.Contains(t, out, "SOURCE")
		assert.Contains(t, out, "CATEGORY")
	})

	t.Run("missing run file", func(t *testing.T) {
		_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
