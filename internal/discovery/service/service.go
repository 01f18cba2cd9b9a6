// Package service runs discovery for one case: it fans out to the case's
// enabled sources, isolates per-source failures, runs detection over what
// comes back, merges newly discovered identifiers and folds everything into
// per-category findings.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/metrics"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/ports"
	"dsar/internal/identity"
	rlmodels "dsar/internal/ratelimit/models"
	id "dsar/pkg/domain"
	dErrors "dsar/pkg/domain-errors"
	"dsar/pkg/platform/audit"
	"dsar/pkg/platform/circuit"
	"dsar/pkg/platform/privacy"
	"dsar/pkg/requestcontext"
)

const (
	DefaultWorkers          = 4
	DefaultConnectorTimeout = 30 * time.Second
	DefaultRateLimit        = 20
	DefaultRateWindow       = time.Minute

	tracerName = "dsar/internal/discovery"
)

type (
	CaseStore         = ports.CaseStore
	SourceStore       = ports.SourceStore
	ConnectorRegistry = ports.ConnectorRegistry
	Detector          = ports.Detector
	RateLimiter       = ports.RateLimiter
	Sink              = ports.Sink
	LegalReviewHook   = ports.LegalReviewHook
	AuditPublisher    = ports.AuditPublisher
)

// Deps are the required collaborators.
type Deps struct {
	Cases      CaseStore
	Sources    SourceStore
	Connectors ConnectorRegistry
	Detector   Detector
}

type Service struct {
	cases      CaseStore
	sources    SourceStore
	connectors ConnectorRegistry
	detector   Detector

	limiter        RateLimiter
	sink           Sink
	legal          LegalReviewHook
	auditPublisher AuditPublisher

	workers     int
	timeout     time.Duration
	rateLimit   rlmodels.Limit
	maxItems    int
	identity    identity.Policy
	breakerOpts []circuit.Option

	breakersMu sync.Mutex
	breakers   map[string]*circuit.Breaker

	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	fingerprint *privacy.Fingerprinter
	now         func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithRateLimiter enables the per-case quota check before each dispatch.
func WithRateLimiter(l RateLimiter, limit rlmodels.Limit) Option {
	return func(s *Service) {
		s.limiter = l
		if limit.Valid() {
			s.rateLimit = limit
		}
	}
}

func WithSink(sink Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func WithLegalReviewHook(h LegalReviewHook) Option {
	return func(s *Service) {
		s.legal = h
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

// WithWorkers bounds concurrent connector calls. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithConnectorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxItems caps the documents requested from each source.
func WithMaxItems(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

func WithIdentityPolicy(p identity.Policy) Option {
	return func(s *Service) {
		s.identity = p
	}
}

func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(s *Service) {
		s.breakerOpts = append(s.breakerOpts, opts...)
	}
}

// WithFingerprinter sets the keyed digest used in place of identifiers in logs.
func WithFingerprinter(f *privacy.Fingerprinter) Option {
	return func(s *Service) {
		s.fingerprint = f
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(deps Deps, opts ...Option) (*Service, error) {
	if deps.Cases == nil {
		return nil, errors.New("case store is required")
	}
	if deps.Sources == nil {
		return nil, errors.New("source store is required")
	}
	if deps.Connectors == nil {
		return nil, errors.New("connector registry is required")
	}
	if deps.Detector == nil {
		return nil, errors.New("detector is required")
	}

	s := &Service{
		cases:      deps.Cases,
		sources:    deps.Sources,
		connectors: deps.Connectors,
		detector:   deps.Detector,
		workers:    DefaultWorkers,
		timeout:    DefaultConnectorTimeout,
		rateLimit:  rlmodels.Limit{MaxRequests: DefaultRateLimit, Window: DefaultRateWindow},
		identity:   identity.DefaultPolicy(),
		breakers:   make(map[string]*circuit.Breaker),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.fingerprint == nil {
		s.fingerprint = privacy.NewFingerprinter("")
	}
	return s, nil
}

// runState is the mutable state shared by the workers of one run.
type runState struct {
	runID     id.RunID
	caseID    id.CaseID
	kase      *models.Case
	req       models.RunRequest
	mode      detection.ContentMode
	baseGraph *identity.Graph

	mu    sync.Mutex
	graph *identity.Graph
}

func (r *runState) merge(p identity.Policy, ids []identity.Identifier, accounts []identity.SystemAccount, source string) {
	if len(ids) == 0 && len(accounts) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g := p.Merge(r.graph, ids, source)
	r.graph = p.ResolveSystemAccounts(g, accounts, source)
}

func (r *runState) finalGraph() *identity.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph
}

// Run executes one discovery run. Missing case or subject records produce a
// FAILED result with a nil error. An error is returned only for an invalid
// request or when the case or source store cannot be reached; the result is
// still returned, FAILED, in the latter case.
func (s *Service) Run(ctx context.Context, req models.RunRequest) (*models.RunResult, error) {
	if req.CaseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "case ID is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = detection.ModeContentScan
	}
	if _, err := detection.ParseContentMode(string(mode)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid content mode")
	}

	run := &runState{runID: id.NewRunID(), caseID: req.CaseID, req: req, mode: mode}
	ctx = requestcontext.WithRunID(requestcontext.WithCaseID(ctx, run.caseID), run.runID)
	ctx, span := s.tracer.Start(ctx, "discovery.run", trace.WithAttributes(
		attribute.String("dsar.case_id", run.caseID.String()),
		attribute.String("dsar.run_id", run.runID.String()),
		attribute.String("dsar.mode", string(mode)),
	))
	defer span.End()

	result := &models.RunResult{
		RunID:     run.runID,
		CaseID:    run.caseID,
		Status:    models.RunRunning,
		Mode:      mode,
		Graph:     identity.Empty(),
		StartedAt: s.now(),
	}

	kase, subject, err := s.load(ctx, run.caseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "case lookup failed")
		s.fail(ctx, result, err)
		if errors.Is(err, models.ErrCaseNotFound) || errors.Is(err, models.ErrSubjectNotFound) {
			return result, nil
		}
		return result, dErrors.Wrap(err, dErrors.CodeUnavailable, "load case")
	}
	run.kase = kase
	run.baseGraph = identity.Build(*subject)
	run.graph = run.baseGraph

	s.persist(ctx, "write_run_status", func(ctx context.Context) error {
		return s.sink.WriteRunStatus(ctx, result.StatusRecord())
	})
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:  string(audit.EventRunStarted),
		Purpose: string(kase.Purpose),
		Subject: s.fingerprint.Fingerprint(run.baseGraph.Primary().Value),
	}, "mode", string(mode))

	sources, err := s.selectSources(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source lookup failed")
		s.fail(ctx, result, err)
		return result, dErrors.Wrap(err, dErrors.CodeUnavailable, "list sources")
	}

	outcomes := s.dispatch(ctx, run, sources)
	// Results of drained queries are recorded even when the run was cancelled.
	s.complete(context.WithoutCancel(ctx), run, result, sources, outcomes)
	span.SetAttributes(
		attribute.Int("dsar.findings", result.Totals.Findings),
		attribute.Bool("dsar.legal_hold", result.LegalHold),
	)
	return result, nil
}

func (s *Service) load(ctx context.Context, caseID id.CaseID) (*models.Case, *identity.CaseSubject, error) {
	kase, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	if kase == nil {
		return nil, nil, models.ErrCaseNotFound
	}
	subject, err := s.cases.GetSubject(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	if subject == nil {
		return nil, nil, models.ErrSubjectNotFound
	}
	return kase, subject, nil
}

// selectSources returns the enabled sources, filtered by the request, ordered
// by ID so dispatch order is stable.
func (s *Service) selectSources(ctx context.Context, run *runState) ([]models.SourceConfig, error) {
	all, err := s.sources.ListSources(ctx, run.caseID)
	if err != nil {
		return nil, err
	}
	want := make(map[id.SourceID]bool, len(run.req.SourceIDs))
	for _, sid := range run.req.SourceIDs {
		want[sid] = true
	}
	var out []models.SourceConfig
	seen := make(map[id.SourceID]bool, len(all))
	for _, src := range all {
		if !src.Enabled || seen[src.ID] {
			continue
		}
		if len(want) > 0 && !want[src.ID] {
			continue
		}
		seen[src.ID] = true
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// dispatch admits each source in order and runs admitted queries on a
// bounded pool. Once ctx is done no further source is dispatched; queries
// already running drain or hit their timeout.
func (s *Service) dispatch(ctx context.Context, run *runState, sources []models.SourceConfig) []queryOutcome {
	outcomes := make([]queryOutcome, len(sources))
	sem := semaphore.NewWeighted(int64(s.workers))
	var g errgroup.Group

	for i, src := range sources {
		rec := newQueryRecord(src)
		if ctx.Err() != nil {
			outcomes[i] = s.skip(ctx, rec, models.SkipRunCancelled)
			continue
		}
		conn, reason := s.admit(ctx, run, src)
		if reason != "" {
			outcomes[i] = s.skip(ctx, rec, reason)
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = s.skip(ctx, rec, models.SkipRunCancelled)
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)
			outcomes[i] = s.query(ctx, run, src, conn, rec)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// admit runs the pre-dispatch gates in order: per-case quota, connector
// lookup, provider circuit breaker.
func (s *Service) admit(ctx context.Context, run *runState, src models.SourceConfig) (ports.Connector, string) {
	if s.limiter != nil {
		decision, err := s.limiter.CheckRateLimit(ctx, rlmodels.CaseKey(run.caseID.String()), s.rateLimit)
		if err != nil {
			s.logger.WarnContext(ctx, "rate limiter unavailable", "source_id", src.ID.String(), "error", err)
			return nil, models.SkipRateLimitDown
		}
		if !decision.Allowed {
			return nil, models.SkipRateLimited
		}
	}
	conn, ok := s.connectors.Get(src.Provider)
	if !ok || conn == nil {
		return nil, models.SkipNoConnector
	}
	if !s.breaker(src.Provider).Allow() {
		return nil, models.SkipCircuitOpen
	}
	return conn, ""
}

func (s *Service) breaker(provider string) *circuit.Breaker {
	s.breakersMu.Lock()
	defer s.breakersMu.Unlock()
	b, ok := s.breakers[provider]
	if !ok {
		b = circuit.New(provider, s.breakerOpts...)
		s.breakers[provider] = b
	}
	return b
}

// fail finishes a run that could not start.
func (s *Service) fail(ctx context.Context, result *models.RunResult, cause error) {
	result.Status = models.RunFailed
	result.Error = failureMessage(cause)
	result.CompletedAt = s.now()
	result.Summary = summarizeFailure(result.Error)

	if s.sink != nil {
		if err := s.sink.WriteRunStatus(ctx, result.StatusRecord()); err != nil {
			result.StatusPersistError = err
			s.metrics.IncSinkError("write_run_status")
			s.logger.ErrorContext(ctx, "failed to persist run status", "error", err)
		}
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventRunFailed),
		Decision: string(models.RunFailed),
		Reason:   result.Error,
	})
	s.metrics.IncRun(string(models.RunFailed), result.CompletedAt.Sub(result.StartedAt))
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrCaseNotFound):
		return models.ErrCaseNotFound.Error()
	case errors.Is(err, models.ErrSubjectNotFound):
		return models.ErrSubjectNotFound.Error()
	default:
		return "case data unavailable"
	}
}

// persist runs a fire-and-forget sink call: failures are logged and counted.
func (s *Service) persist(ctx context.Context, operation string, fn func(context.Context) error) {
	if s.sink == nil {
		return
	}
	if err := fn(ctx); err != nil {
		s.metrics.IncSinkError(operation)
		s.logger.WarnContext(ctx, "sink write failed", "operation", operation, "error", err)
	}
}
