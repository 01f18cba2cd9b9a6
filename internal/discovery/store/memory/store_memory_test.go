package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsar/internal/discovery/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	caseID := id.NewCaseID()

	t.Run("missing case and subject", func(t *testing.T) {
		_, err := s.GetCase(ctx, caseID)
		assert.ErrorIs(t, err, models.ErrCaseNotFound)

		s.PutCase(models.Case{ID: caseID, Purpose: id.PurposeDSAR}, nil)
		_, err = s.GetSubject(ctx, caseID)
		assert.ErrorIs(t, err, models.ErrSubjectNotFound)
	})

	t.Run("sources are returned as a copy", func(t *testing.T) {
		s.PutSources(caseID, models.SourceConfig{ID: "crm", Enabled: true})
		got, err := s.ListSources(ctx, caseID)
		require.NoError(t, err)
		got[0].ID = "changed"

		again, _ := s.ListSources(ctx, caseID)
		assert.Equal(t, id.SourceID("crm"), again[0].ID)
	})

	t.Run("run status keeps history", func(t *testing.T) {
		runID := id.NewRunID()
		require.NoError(t, s.WriteRunStatus(ctx, models.RunStatusRecord{RunID: runID, Status: models.RunRunning}))
		require.NoError(t, s.WriteRunStatus(ctx, models.RunStatusRecord{RunID: runID, Status: models.RunCompleted}))

		latest, ok := s.RunStatus(runID)
		require.True(t, ok)
		assert.Equal(t, models.RunCompleted, latest.Status)
		assert.Len(t, s.StatusHistory(runID), 2)
	})

	t.Run("identity profile stored as snapshot", func(t *testing.T) {
		g := identity.Build(identity.CaseSubject{Email: "jane@example.com", EmailVerified: true})
		require.NoError(t, s.UpsertIdentityProfile(ctx, caseID, g))

		snap, ok := s.IdentityProfile(caseID)
		require.True(t, ok)
		require.NotNil(t, snap.Primary)
		assert.Equal(t, "jane@example.com", snap.Primary.Value)
	})
}
