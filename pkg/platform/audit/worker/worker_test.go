package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "dsar/pkg/platform/audit"
)

type fakeOutbox struct {
	pending   []audit.OutboxEntry
	processed []uuid.UUID
}

func (f *fakeOutbox) FetchPending(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	if len(f.pending) < limit {
		limit = len(f.pending)
	}
	return f.pending[:limit], nil
}

func (f *fakeOutbox) MarkProcessed(_ context.Context, ids []uuid.UUID) error {
	f.processed = append(f.processed, ids...)
	return nil
}

type fakeSink struct {
	failOn uuid.UUID
	got    []uuid.UUID
}

func (f *fakeSink) PublishEntry(_ context.Context, e audit.OutboxEntry) error {
	if e.ID == f.failOn {
		return errors.New("broker unavailable")
	}
	f.got = append(f.got, e.ID)
	return nil
}

func entries(n int) []audit.OutboxEntry {
	out := make([]audit.OutboxEntry, n)
	for i := range out {
		out[i] = audit.OutboxEntry{ID: uuid.New()}
	}
	return out
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a batch and marks it processed", func(t *testing.T) {
		outbox := &fakeOutbox{pending: entries(5)}
		sink := &fakeSink{}
		w := NewWorker(outbox, sink, WithBatchSize(3))

		n, err := w.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, sink.got, outbox.processed)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		pending := entries(3)
		outbox := &fakeOutbox{pending: pending}
		sink := &fakeSink{failOn: pending[1].ID}
		w := NewWorker(outbox, sink)

		n, err := w.RunOnce(ctx)
		require.Error(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []uuid.UUID{pending[0].ID}, outbox.processed)
	})
}
