package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"dsar/internal/ratelimit/metrics"
	"dsar/internal/ratelimit/models"
	"dsar/internal/ratelimit/store/bucket"
	id "dsar/pkg/domain"
	dErrors "dsar/pkg/domain-errors"
	"dsar/pkg/platform/audit"
	"dsar/pkg/platform/audit/store/memory"
	"dsar/pkg/requestcontext"
)

type brokenStore struct{ *bucket.InMemoryBucketStore }

func (*brokenStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("connection reset")
}

type recordingPublisher struct{ store *memory.InMemoryStore }

func (p recordingPublisher) Emit(ctx context.Context, e audit.Event) error {
	return p.store.Append(ctx, e)
}

// =============================================================================
// Rate Limit Service Test Suite
// =============================================================================
// Justification for unit tests: the orchestrator skips a source query on a
// denial, so the decision shape and the audit trail of denials matter.

type ServiceSuite struct {
	suite.Suite
	events  *memory.InMemoryStore
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
	caseID  id.CaseID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.events = memory.NewInMemoryStore()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	svc, err := New(bucket.NewInMemoryBucketStore(),
		WithAuditPublisher(recordingPublisher{store: s.events}),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.svc = svc
	s.caseID = id.NewCaseID()
	s.ctx = requestcontext.WithCaseID(context.Background(), s.caseID)
}

func (s *ServiceSuite) TestAllowsUpToLimitThenDenies() {
	limit := models.Limit{MaxRequests: 2, Window: time.Minute}
	key := models.CaseKey(s.caseID.String())

	for want := 1; want >= 0; want-- {
		d, err := s.svc.CheckRateLimit(s.ctx, key, limit)
		s.Require().NoError(err)
		s.True(d.Allowed)
		s.Equal(want, d.Remaining)
	}

	d, err := s.svc.CheckRateLimit(s.ctx, key, limit)
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Positive(d.RetryAfter)

	events, err := s.events.ListByCase(s.ctx, s.caseID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventRateLimitExceeded), events[0].Action)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("allowed")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("denied")))
}

func (s *ServiceSuite) TestRejectsInvalidInput() {
	_, err := s.svc.CheckRateLimit(s.ctx, "", models.Limit{MaxRequests: 1, Window: time.Second})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.svc.CheckRateLimit(s.ctx, "k", models.Limit{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestStoreFailureIsUnavailable() {
	svc, err := New(&brokenStore{bucket.NewInMemoryBucketStore()}, WithMetrics(s.metrics))
	s.Require().NoError(err)

	_, err = svc.CheckRateLimit(s.ctx, "k", models.Limit{MaxRequests: 1, Window: time.Second})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreErrors))
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Fatal("expected error for nil store")
	}
}
