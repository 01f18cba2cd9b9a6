package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "dsar/pkg/domain"
	audit "dsar/pkg/platform/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (r *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, rec := range rs {
		r.records = append(r.records, rec)
		results = append(results, kgo.ProduceResult{Record: rec, Err: r.err})
	}
	return results
}

func TestAppendRoutesByCategory(t *testing.T) {
	prod := &recordingProducer{}
	pub := New(prod, WithTopic(audit.CategorySecurity, "siem"))
	caseID := id.NewCaseID()
	ctx := context.Background()

	require.NoError(t, pub.Append(ctx, audit.Event{CaseID: caseID, Action: string(audit.EventLegalHoldTriggered)}))
	require.NoError(t, pub.Append(ctx, audit.Event{CaseID: caseID, Action: string(audit.EventRateLimitExceeded)}))
	require.NoError(t, pub.Append(ctx, audit.Event{Action: string(audit.EventQuerySkipped)}))

	require.Len(t, prod.records, 3)
	assert.Equal(t, TopicCompliance, prod.records[0].Topic)
	assert.Equal(t, []byte(caseID.String()), prod.records[0].Key)
	assert.Equal(t, "siem", prod.records[1].Topic)
	assert.Equal(t, TopicOperations, prod.records[2].Topic)
	assert.Nil(t, prod.records[2].Key)
}

func TestPublishEntry(t *testing.T) {
	ctx := context.Background()
	caseID := id.NewCaseID()
	payload, err := audit.EncodePayload(uuid.New(), audit.Event{CaseID: caseID, Action: string(audit.EventRunCompleted)})
	require.NoError(t, err)

	t.Run("relays payload unchanged", func(t *testing.T) {
		prod := &recordingProducer{}
		entry := audit.OutboxEntry{ID: uuid.New(), AggregateID: caseID.String(), Payload: payload}
		require.NoError(t, New(prod).PublishEntry(ctx, entry))
		require.Len(t, prod.records, 1)
		assert.Equal(t, TopicCompliance, prod.records[0].Topic)
		assert.Equal(t, payload, prod.records[0].Value)
	})

	t.Run("producer error is returned", func(t *testing.T) {
		prod := &recordingProducer{err: errors.New("broker down")}
		err := New(prod).PublishEntry(ctx, audit.OutboxEntry{ID: uuid.New(), Payload: payload})
		assert.ErrorContains(t, err, "broker down")
	})

	t.Run("corrupt payload is rejected", func(t *testing.T) {
		err := New(&recordingProducer{}).PublishEntry(ctx, audit.OutboxEntry{ID: uuid.New(), Payload: []byte("nope")})
		assert.Error(t, err)
	})
}
