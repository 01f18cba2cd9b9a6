package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "dsar/pkg/domain"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()
	assert.True(t, CaseID(ctx).IsNil())
	assert.True(t, RunID(ctx).IsNil())
	assert.Empty(t, RequestID(ctx))

	caseID, runID := id.NewCaseID(), id.NewRunID()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx = WithCaseID(ctx, caseID)
	ctx = WithRunID(ctx, runID)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActorID(ctx, "dpo@example.com")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, caseID, CaseID(ctx))
	assert.Equal(t, runID, RunID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "dpo@example.com", ActorID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}
