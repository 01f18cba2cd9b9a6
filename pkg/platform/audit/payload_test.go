package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dsar/pkg/domain"
)

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventLegalHoldTriggered.Category())
	assert.Equal(t, CategorySecurity, EventRateLimitExceeded.Category())
	assert.Equal(t, CategoryOperations, EventQuerySkipped.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}

func TestPayloadCarriesCategoryFromAction(t *testing.T) {
	event := Event{
		Category:  CategoryOperations, // overridden by the action's category
		Timestamp: time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
		CaseID:    id.NewCaseID(),
		RunID:     id.NewRunID(),
		Action:    string(EventRunFailed),
		Reason:    "case not found",
	}

	data, err := EncodePayload(uuid.New(), event)
	require.NoError(t, err)

	decoded, err := DecodePayload(data)
	require.NoError(t, err)
	assert.Equal(t, CategoryCompliance, decoded.Category)
	assert.Equal(t, event.CaseID, decoded.CaseID)
	assert.Equal(t, event.RunID, decoded.RunID)
	assert.True(t, event.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, "case not found", decoded.Reason)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, err := DecodePayload([]byte("{"))
	assert.Error(t, err)

	_, err = DecodePayload([]byte(`{"CaseID":"not-a-uuid","Action":"x"}`))
	assert.Error(t, err)
}
