package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dsar/pkg/domain"
	audit "dsar/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	caseA, caseB := id.NewCaseID(), id.NewCaseID()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, audit.Event{CaseID: caseA, Action: string(audit.EventRunStarted), Timestamp: base}))
	require.NoError(t, store.Append(ctx, audit.Event{CaseID: caseB, Action: string(audit.EventRunStarted), Timestamp: base.Add(time.Minute)}))
	require.NoError(t, store.Append(ctx, audit.Event{CaseID: caseA, Action: string(audit.EventRunCompleted), Timestamp: base.Add(2 * time.Minute)}))

	events, err := store.ListByCase(ctx, caseA)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventRunStarted), events[0].Action)

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, string(audit.EventRunCompleted), recent[0].Action)
	assert.Equal(t, caseB, recent[1].CaseID)

	store.Clear()
	events, err = store.ListByCase(ctx, caseA)
	require.NoError(t, err)
	assert.Empty(t, events)
}
