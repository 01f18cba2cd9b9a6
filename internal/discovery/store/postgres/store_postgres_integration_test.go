//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"dsar/internal/detection/catalog"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/store/postgres"
	"dsar/internal/identity"
	platformpg "dsar/internal/platform/postgres"
	id "dsar/pkg/domain"
	"dsar/pkg/platform/sentinel"
	"dsar/pkg/requestcontext"
	"dsar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), platformpg.Schema())
	s.store = postgres.NewPostgres(s.pg.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(),
		"dsar_runs", "dsar_evidence_items", "dsar_detection_results", "dsar_findings",
		"dsar_identity_profiles", "dsar_legal_review_tasks"))
}

func (s *PostgresStoreSuite) TestRunStatusUpsert() {
	ctx := context.Background()
	runID, caseID := id.NewRunID(), id.NewCaseID()
	started := time.Now().UTC().Truncate(time.Millisecond)

	running := models.RunStatusRecord{RunID: runID, CaseID: caseID, Status: models.RunRunning, StartedAt: started}
	s.Require().NoError(s.store.WriteRunStatus(ctx, running))

	completed := running
	completed.Status = models.RunCompleted
	completed.CompletedAt = started.Add(time.Second)
	completed.LegalHold = true
	completed.Summary = "done"
	completed.Totals = models.RunTotals{Sources: 2, QueriesCompleted: 1, QueriesFailed: 1}
	s.Require().NoError(s.store.WriteRunStatus(ctx, completed))

	got, err := s.store.GetRunStatus(ctx, runID)
	s.Require().NoError(err)
	s.Equal(models.RunCompleted, got.Status)
	s.True(got.LegalHold)
	s.Equal(2, got.Totals.Sources)
	s.Equal(caseID, got.CaseID)
	s.WithinDuration(started.Add(time.Second), got.CompletedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestUnknownRun() {
	_, err := s.store.GetRunStatus(context.Background(), id.NewRunID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEvidenceAndFindings() {
	ctx := context.Background()
	runID, caseID := id.NewRunID(), id.NewCaseID()
	item := models.EvidenceItem{
		ID:           id.NewEvidenceItemID(),
		RunID:        runID,
		CaseID:       caseID,
		SourceID:     "crm",
		Provider:     "fixture",
		Location:     "fixture://crm/notes.txt",
		Title:        "notes.txt",
		RecordsFound: 1,
		Metadata:     map[string]string{"region": "eu"},
		CollectedAt:  time.Now(),
	}
	s.Require().NoError(s.store.WriteEvidenceItem(ctx, item))
	s.Require().NoError(s.store.WriteDetectionResult(ctx, item.ID, detection.DetectionResult{
		DetectorType:                     detection.DetectorRegex,
		Categories:                       []detection.DetectedCategory{{Category: catalog.CategoryHealth, Confidence: 0.6}},
		ContainsSpecialCategorySuspected: true,
	}))

	finding := models.Finding{
		ID:                      id.NewFindingID(),
		RunID:                   runID,
		CaseID:                  caseID,
		DataCategory:            catalog.CategoryHealth,
		Severity:                models.SeverityCritical,
		Confidence:              0.6,
		EvidenceItemIDs:         []id.EvidenceItemID{item.ID},
		ContainsSpecialCategory: true,
		RequiresLegalReview:     true,
		CreatedAt:               time.Now(),
	}
	s.Require().NoError(s.store.WriteFinding(ctx, finding))
	s.Require().NoError(s.store.WriteFinding(ctx, finding), "duplicate finding is ignored")

	findings, err := s.store.ListFindings(ctx, runID)
	s.Require().NoError(err)
	s.Require().Len(findings, 1)
	s.Equal(finding.ID, findings[0].ID)
	s.Equal([]id.EvidenceItemID{item.ID}, findings[0].EvidenceItemIDs)
	s.Equal(detection.ConfidenceMedium, findings[0].ConfidenceLevel)

	s.Require().NoError(s.store.CreateLegalReviewTask(ctx, models.LegalReviewTask{
		CaseID:            caseID,
		RunID:             runID,
		SpecialCategories: []catalog.Category{catalog.CategoryHealth},
		FindingIDs:        []id.FindingID{finding.ID},
		Reason:            "special category data discovered",
	}))
}

func (s *PostgresStoreSuite) TestIdentityProfile() {
	caseID := id.NewCaseID()
	ctx := requestcontext.WithRunID(context.Background(), id.NewRunID())
	g := identity.Build(identity.CaseSubject{Name: "Jane Doe", Email: "jane@example.com", EmailVerified: true})
	g = identity.Merge(g, []identity.Identifier{{Type: identity.TypeEmployeeID, Value: "E-1001", Confidence: 0.8}}, "hr")

	s.Require().NoError(s.store.UpsertIdentityProfile(ctx, caseID, g))
	s.Require().NoError(s.store.UpsertIdentityProfile(ctx, caseID, g))

	got, err := s.store.GetIdentityProfile(ctx, caseID)
	s.Require().NoError(err)
	s.Equal(g.Primary().Value, got.Primary().Value)
	s.Equal(g.Len(), got.Len())
	s.Equal(g.ConfidenceScore(), got.ConfidenceScore())

	_, err = s.store.GetIdentityProfile(ctx, id.NewCaseID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
