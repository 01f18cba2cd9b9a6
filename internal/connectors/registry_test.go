package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsar/internal/discovery/models"
	"dsar/internal/discovery/queryspec"
)

type stubConnector struct{}

func (stubConnector) CollectData(context.Context, models.SourceConfig, models.SecretRef, queryspec.QuerySpec) (*models.CollectionResult, error) {
	return &models.CollectionResult{Success: true}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("CRM", stubConnector{}))
	require.NoError(t, r.Register("objectstore", stubConnector{}))

	_, ok := r.Get(" crm ")
	assert.True(t, ok, "lookup is case-insensitive")

	_, ok = r.Get("mailbox")
	assert.False(t, ok)

	err := r.Register("crm", stubConnector{})
	assert.ErrorIs(t, err, ErrDuplicateConnector)
	assert.ErrorIs(t, r.Register("  ", stubConnector{}), ErrConnectorNameEmpty)

	assert.Equal(t, []string{"crm", "objectstore"}, r.Providers())
}
