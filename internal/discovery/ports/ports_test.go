package ports_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dsar/internal/discovery/mocks"
	"dsar/internal/discovery/ports"
	"dsar/pkg/platform/audit"
	"dsar/pkg/requestcontext"
	"dsar/pkg/testutil"
)

func TestLogAudit(t *testing.T) {
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	scope := testutil.NewRunScope(at)

	testutil.Given(t, "a run-scoped context", func(t *testing.T) {
		ctx := requestcontext.WithActorID(scope.Context(context.Background()), "officer-7")

		testutil.When(t, "an event without identifiers is logged", func(t *testing.T) {
			ctrl := gomock.NewController(t)
			publisher := mocks.NewMockAuditPublisher(ctrl)
			var got audit.Event
			publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
				got = ev
				return nil
			})
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			ports.LogAudit(ctx, logger, publisher, audit.Event{
				Action:   string(audit.EventQuerySkipped),
				SourceID: "crm-eu",
				Reason:   "rate limited",
			}, "provider", "stub")

			testutil.Then(t, "the event carries the scope", func(t *testing.T) {
				assert.Equal(t, scope.CaseID, got.CaseID)
				assert.Equal(t, scope.RunID, got.RunID)
				assert.Equal(t, scope.RequestID, got.RequestID)
				assert.Equal(t, at, got.Timestamp)
				assert.Equal(t, "officer-7", got.ActorID)
			})
			testutil.Then(t, "the log line is tagged as audit", func(t *testing.T) {
				out := buf.String()
				assert.Contains(t, out, `"log_type":"audit"`)
				assert.Contains(t, out, `"source_id":"crm-eu"`)
				assert.Contains(t, out, `"provider":"stub"`)
				assert.Contains(t, out, scope.RunID.String())
			})
		})

		testutil.When(t, "the publisher fails", func(t *testing.T) {
			ctrl := gomock.NewController(t)
			publisher := mocks.NewMockAuditPublisher(ctrl)
			publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox full"))
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			ports.LogAudit(ctx, logger, publisher, audit.Event{Action: string(audit.EventRunCompleted)})

			testutil.Then(t, "the failure is logged and swallowed", func(t *testing.T) {
				assert.Contains(t, buf.String(), "failed to emit audit event")
				assert.Contains(t, buf.String(), "outbox full")
			})
		})
	})

	t.Run("nil logger and publisher are tolerated", func(t *testing.T) {
		require.NotPanics(t, func() {
			ports.LogAudit(context.Background(), nil, nil, audit.Event{Action: string(audit.EventRunStarted)})
		})
	})
}
