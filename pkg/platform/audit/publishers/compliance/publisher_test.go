package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dsar/pkg/domain"
	audit "dsar/pkg/platform/audit"
	"dsar/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	caseID := id.NewCaseID()

	t.Run("persists and stamps the event", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		m := NewMetricsWithRegisterer(prometheus.NewRegistry())
		pub := New(store, WithMetrics(m))
		fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
		pub.now = func() time.Time { return fixed }

		require.NoError(t, pub.Emit(ctx, audit.ComplianceEvent{CaseID: caseID, Action: string(audit.EventRunCompleted)}))

		events, err := store.ListByCase(ctx, caseID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.Equal(t, fixed, events[0].Timestamp)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted))
	})

	t.Run("rejects events without case or action", func(t *testing.T) {
		pub := New(memory.NewInMemoryStore())
		assert.Error(t, pub.Emit(ctx, audit.ComplianceEvent{Action: "x"}))
		assert.Error(t, pub.Emit(ctx, audit.ComplianceEvent{CaseID: caseID}))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		m := NewMetricsWithRegisterer(prometheus.NewRegistry())
		pub := New(failingStore{}, WithMetrics(m))
		err := pub.Emit(ctx, audit.ComplianceEvent{CaseID: caseID, Action: string(audit.EventRunFailed)})
		require.Error(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures))
	})
}
