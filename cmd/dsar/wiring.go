package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dsar/internal/connectors"
	"dsar/internal/connectors/fixture"
	"dsar/internal/connectors/objectstore"
	"dsar/internal/detection/engine"
	discoverymetrics "dsar/internal/discovery/metrics"
	"dsar/internal/discovery/service"
	"dsar/internal/discovery/store/memory"
	discoverypg "dsar/internal/discovery/store/postgres"
	"dsar/internal/platform/config"
	"dsar/internal/platform/httpserver"
	platformkafka "dsar/internal/platform/kafka"
	platformpg "dsar/internal/platform/postgres"
	platformredis "dsar/internal/platform/redis"
	rlmetrics "dsar/internal/ratelimit/metrics"
	rlmodels "dsar/internal/ratelimit/models"
	rlports "dsar/internal/ratelimit/ports"
	rlservice "dsar/internal/ratelimit/service"
	"dsar/internal/ratelimit/store/bucket"
	"dsar/pkg/platform/audit"
	"dsar/pkg/platform/audit/publisher"
	"dsar/pkg/platform/audit/publishers/compliance"
	kafkapublisher "dsar/pkg/platform/audit/publishers/kafka"
	auditmemory "dsar/pkg/platform/audit/store/memory"
	auditpg "dsar/pkg/platform/audit/store/postgres"
	"dsar/pkg/platform/audit/worker"
	"dsar/pkg/platform/circuit"
	"dsar/pkg/platform/privacy"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// pipeline holds every collaborator of a discovery run, chosen from config:
// Postgres, Kafka and Redis when configured, in-memory stand-ins otherwise.
type pipeline struct {
	detector *engine.Engine
	registry *connectors.Registry
	sink     service.Sink
	legal    service.LegalReviewHook
	audit    *publisher.Router
	limiter  *rlservice.Service
	// relay is set when audit events land in the Postgres outbox and Kafka is
	// configured to receive them.
	relay   *worker.Worker
	metrics *discoverymetrics.Metrics
	health  map[string]httpserver.HealthFunc

	logger  *slog.Logger
	closers []func() error
}

// buildPipeline connects to the configured infrastructure. local backs the
// sink and legal hook when Postgres is not configured. fixtures may be nil.
func buildPipeline(ctx context.Context, cfg config.Config, reg prometheus.Registerer, logger *slog.Logger, local *memory.InMemoryStore, fixtures fs.FS) (_ *pipeline, err error) {
	p := &pipeline{
		registry: connectors.NewRegistry(),
		sink:     local,
		legal:    local,
		metrics:  discoverymetrics.NewWithRegisterer(reg),
		health:   map[string]httpserver.HealthFunc{},
		logger:   logger,
	}
	defer func() {
		if err != nil {
			p.Close()
		}
	}()

	if p.detector, err = newEngine(cfg, reg, logger); err != nil {
		return nil, err
	}
	if err = p.registerConnectors(cfg, fixtures); err != nil {
		return nil, err
	}

	kc, err := platformkafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if kc != nil {
		p.closers = append(p.closers, func() error { kc.Close(); return nil })
		p.health["kafka"] = kc.Health
		if cfg.Kafka.CreateTopics {
			if err = kc.EnsureTopics(ctx, auditTopicPartitions, auditTopicReplication, kafkapublisher.Topics()...); err != nil {
				return nil, err
			}
		}
	}

	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if cfg.Postgres.URL != "" {
		if auditStore, err = p.openPostgres(ctx, cfg, kc); err != nil {
			return nil, err
		}
	} else if kc != nil {
		auditStore = kafkapublisher.New(kc.Client)
	}
	fallback := publisher.NewPublisher(auditStore, publisher.WithLogger(logger))
	p.audit = publisher.NewRouter(
		compliance.New(auditStore,
			compliance.WithLogger(logger),
			compliance.WithMetrics(compliance.NewMetricsWithRegisterer(reg)),
		),
		fallback,
	)
	p.closers = append(p.closers, p.audit.Close)

	var buckets rlports.BucketStore = bucket.NewInMemoryBucketStore()
	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		p.closers = append(p.closers, rc.Close)
		p.health["redis"] = rc.Health
		if err = rc.RegisterPoolMetrics(reg); err != nil {
			return nil, err
		}
		buckets = bucket.NewRedis(rc.Client)
	}
	if p.limiter, err = rlservice.New(buckets,
		rlservice.WithLogger(logger),
		rlservice.WithAuditPublisher(p.audit),
		rlservice.WithMetrics(rlmetrics.NewWithRegisterer(reg)),
	); err != nil {
		return nil, err
	}
	return p, nil
}

// openPostgres migrates the schema, points the sink and legal hook at it and
// returns the outbox store for audit events.
func (p *pipeline) openPostgres(ctx context.Context, cfg config.Config, kc *platformkafka.Client) (audit.Store, error) {
	pool, err := platformpg.OpenPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, func() error { pool.Close(); return nil })
	p.health["postgres"] = pool.Ping
	if err := platformpg.Migrate(ctx, pool); err != nil {
		return nil, err
	}
	store := discoverypg.NewPostgres(pool)
	p.sink, p.legal = store, store

	db, err := platformpg.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, db.Close)
	outbox := auditpg.New(db)
	if kc != nil {
		p.relay = worker.NewWorker(outbox, kafkapublisher.New(kc.Client), worker.WithLogger(p.logger))
	}
	return outbox, nil
}

func (p *pipeline) registerConnectors(cfg config.Config, fixtures fs.FS) error {
	if fixtures != nil {
		if err := p.registry.Register(fixture.Provider, fixture.New(fixtures)); err != nil {
			return err
		}
	}
	if cfg.ObjectStore.Endpoint == "" {
		return nil
	}
	store, err := objectstore.New(objectstore.Options{
		Endpoint:  cfg.ObjectStore.Endpoint,
		AccessKey: cfg.ObjectStore.AccessKey,
		SecretKey: cfg.ObjectStore.SecretKey,
		Region:    cfg.ObjectStore.Region,
		UseSSL:    cfg.ObjectStore.UseSSL,
	},
		objectstore.WithSecretResolver(objectstore.NewEnvSecretResolver()),
		objectstore.WithLogger(p.logger),
	)
	if err != nil {
		return err
	}
	return p.registry.Register(objectstore.Provider, store)
}

// service builds the discovery service over cases and sources.
func (p *pipeline) service(cfg config.Config, cases service.CaseStore, sources service.SourceStore) (*service.Service, error) {
	return service.New(service.Deps{
		Cases:      cases,
		Sources:    sources,
		Connectors: p.registry,
		Detector:   p.detector,
	},
		service.WithLogger(p.logger),
		service.WithMetrics(p.metrics),
		service.WithSink(p.sink),
		service.WithLegalReviewHook(p.legal),
		service.WithAuditPublisher(p.audit),
		service.WithRateLimiter(p.limiter, rlmodels.Limit{
			MaxRequests: cfg.Discovery.RateLimit,
			Window:      cfg.Discovery.RateWindow,
		}),
		service.WithWorkers(cfg.Discovery.Workers),
		service.WithConnectorTimeout(cfg.Discovery.ConnectorTimeout),
		service.WithBreakerOptions(
			circuit.WithFailureThreshold(cfg.Discovery.BreakerFailures),
			circuit.WithCooldown(cfg.Discovery.BreakerCooldown),
		),
		service.WithFingerprinter(privacy.NewFingerprinter(cfg.FingerprintKey)),
	)
}

// serveOps starts the metrics and health endpoint when an address is set.
func (p *pipeline) serveOps(addr string, gatherer prometheus.Gatherer) {
	if addr == "" {
		return
	}
	srv := httpserver.New(addr, httpserver.OpsRouter(gatherer, p.health))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("ops server failed", "addr", addr, "error", err)
		}
	}()
	p.closers = append(p.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// Close releases resources in reverse order of acquisition.
func (p *pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	p.closers = nil
	return errors.Join(errs...)
}
