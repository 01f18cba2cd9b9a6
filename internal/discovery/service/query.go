package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dsar/internal/connectors"
	"dsar/internal/detection/catalog"
	"dsar/internal/detection/engine"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/ports"
	"dsar/internal/discovery/queryspec"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
	"dsar/pkg/platform/audit"
	"dsar/pkg/platform/circuit"
)

const maxFailureMessage = 200

// queryOutcome is what one source query contributes to the run.
type queryOutcome struct {
	record   models.QueryRecord
	evidence *models.EvidenceItem
}

func newQueryRecord(src models.SourceConfig) models.QueryRecord {
	return models.QueryRecord{
		ID:       id.NewQueryID(),
		SourceID: src.ID,
		Provider: src.Provider,
		Status:   models.QueryPending,
	}
}

func (s *Service) skip(ctx context.Context, rec models.QueryRecord, reason string) queryOutcome {
	rec.Status = models.QuerySkipped
	rec.Reason = reason
	s.metrics.IncQuery(rec.Provider, string(rec.Status))

	ev := audit.Event{
		Action:   string(audit.EventQuerySkipped),
		SourceID: rec.SourceID.String(),
		Reason:   reason,
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, ev, "provider", rec.Provider)
	return queryOutcome{record: rec}
}

// query runs one admitted source: connector call under the per-call timeout,
// then detection and identity merge on success. An admitted query drains even
// if the run is cancelled; only the timeout bounds it.
func (s *Service) query(ctx context.Context, run *runState, src models.SourceConfig, conn ports.Connector, rec models.QueryRecord) queryOutcome {
	ctx = context.WithoutCancel(ctx)
	ctx, span := s.tracer.Start(ctx, "discovery.query", trace.WithAttributes(
		attribute.String("dsar.source_id", src.ID.String()),
		attribute.String("dsar.provider", src.Provider),
	))
	defer span.End()

	spec := s.buildSpec(ctx, run, src)

	rec.Status = models.QueryRunning
	rec.StartedAt = s.now()
	s.metrics.QueryStarted()
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	res, err := collect(callCtx, conn, src, spec)
	cancel()
	s.metrics.ObserveQuery(src.Provider, time.Since(start))
	s.metrics.QueryFinished()
	rec.FinishedAt = s.now()

	switch {
	case err != nil:
		s.recordBreaker(ctx, src.Provider, false)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(connectors.GetCategory(err)))
		return s.failQuery(ctx, rec, connectors.Sanitize(err), string(connectors.GetCategory(err)))
	case res == nil:
		s.recordBreaker(ctx, src.Provider, false)
		span.SetStatus(codes.Error, "nil result")
		return s.failQuery(ctx, rec, string(connectors.ErrorContractMismatch)+": connector returned no result", string(connectors.ErrorContractMismatch))
	case !res.Success:
		span.SetStatus(codes.Error, "collection unsuccessful")
		msg := scrubMessage(res.Error, spec.Values())
		if msg == "" {
			msg = "connector reported failure"
		}
		return s.failQuery(ctx, rec, msg, categoryOf(msg))
	}
	s.recordBreaker(ctx, src.Provider, true)

	item, err := s.evidence(ctx, run, src, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detection failed")
		return s.failQuery(ctx, rec, string(connectors.ErrorInternal)+": detection failed", string(connectors.ErrorInternal))
	}
	rec.Status = models.QueryCompleted
	rec.EvidenceItemID = item.ID
	rec.RecordsFound = item.RecordsFound

	run.merge(s.identity, res.DiscoveredIdentifiers, res.SystemAccounts, src.ID.String())

	s.metrics.IncQuery(rec.Provider, string(rec.Status))
	span.SetAttributes(attribute.Int("dsar.records_found", rec.RecordsFound))
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventQueryCompleted),
		SourceID: src.ID.String(),
	}, "provider", src.Provider, "records_found", rec.RecordsFound, "categories", len(item.Categories))
	return queryOutcome{record: rec, evidence: item}
}

func (s *Service) failQuery(ctx context.Context, rec models.QueryRecord, msg, category string) queryOutcome {
	rec.Status = models.QueryFailed
	rec.Reason = msg
	rec.ErrorCategory = category
	s.metrics.IncQuery(rec.Provider, string(rec.Status))
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventQueryFailed),
		SourceID: rec.SourceID.String(),
		Reason:   msg,
	}, "provider", rec.Provider, "error_category", category)
	return queryOutcome{record: rec}
}

type collection struct {
	res *models.CollectionResult
	err error
}

// collect calls the connector and waits for it no longer than ctx allows. A
// connector that ignores ctx is abandoned at the deadline and its late result
// discarded. A panic becomes a ConnectorError.
func collect(ctx context.Context, conn ports.Connector, src models.SourceConfig, spec queryspec.QuerySpec) (*models.CollectionResult, error) {
	done := make(chan collection, 1)
	go func() {
		var c collection
		defer func() {
			if r := recover(); r != nil {
				c = collection{err: connectors.PanicError(src.Provider, r)}
			}
			done <- c
		}()
		c.res, c.err = conn.CollectData(ctx, src, src.Secret, spec)
	}()

	select {
	case c := <-done:
		return c.res, c.err
	case <-ctx.Done():
		return nil, connectors.NewConnectorError(connectors.ErrorTimeout, src.Provider,
			"connector call timed out", ctx.Err())
	}
}

func (s *Service) recordBreaker(ctx context.Context, provider string, ok bool) {
	b := s.breaker(provider)
	var change circuit.Change
	if ok {
		_, change = b.RecordSuccess()
	} else {
		_, change = b.RecordFailure()
	}
	switch {
	case change.Opened:
		s.metrics.IncBreakerTransition(provider, "open")
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
			Action: string(audit.EventSourceCircuitOpen),
			Reason: "consecutive connector failures",
		}, "provider", provider)
	case change.Closed:
		s.metrics.IncBreakerTransition(provider, "closed")
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
			Action: string(audit.EventSourceCircuitClose),
		}, "provider", provider)
	}
}

// buildSpec derives the query from the graph as it stood when the case was
// loaded, so every source sees the same identifiers regardless of
// completion order. A spec that fails validation is replaced by the
// best-effort form and the connector decides.
func (s *Service) buildSpec(ctx context.Context, run *runState, src models.SourceConfig) queryspec.QuerySpec {
	p := queryspec.Params{
		Graph:              run.baseGraph,
		SearchTerms:        run.baseGraph.Values(identity.TypeName),
		ProviderScope:      src.Scope,
		Mode:               run.mode,
		MaxItems:           s.maxItems,
		IncludeAttachments: run.mode == detection.ModeFullContent,
		Purpose:            run.kase.Purpose,
		DataMinimization:   run.mode != detection.ModeFullContent,
	}
	if run.kase.From != nil || run.kase.To != nil {
		p.From, p.To = run.kase.From, run.kase.To
	}
	spec, err := queryspec.New(p)
	if err != nil {
		s.logger.WarnContext(ctx, "query spec failed validation, using best-effort spec",
			"source_id", src.ID.String(), "provider", src.Provider, "error", err)
		return queryspec.BestEffort(p)
	}
	return spec
}

// evidence builds the evidence item for a successful collection and runs
// detection over each document, or over the result's own text when no
// documents came back. A detection failure fails the whole item so
// undetected content never counts as a completed query.
func (s *Service) evidence(ctx context.Context, run *runState, src models.SourceConfig, res *models.CollectionResult) (*models.EvidenceItem, error) {
	item := &models.EvidenceItem{
		ID:           id.NewEvidenceItemID(),
		RunID:        run.runID,
		CaseID:       run.caseID,
		SourceID:     src.ID,
		Provider:     src.Provider,
		Location:     "source://" + src.ID.String(),
		Title:        src.Name,
		RecordsFound: res.RecordsFound,
		Metadata:     copyMetadata(res.ResultMetadata),
		CollectedAt:  s.now(),
	}
	if item.Title == "" {
		item.Title = src.ID.String()
	}
	if len(res.Documents) == 1 {
		item.Location = res.Documents[0].Location
		if res.Documents[0].Title != "" {
			item.Title = res.Documents[0].Title
		}
	}
	if item.RecordsFound < len(res.Documents) {
		item.RecordsFound = len(res.Documents)
	}

	inputs := make([]engine.Input, 0, len(res.Documents)+1)
	for _, doc := range res.Documents {
		inputs = append(inputs, engine.Input{
			Mode:         run.mode,
			MIMEType:     doc.MIMEType,
			FileName:     doc.FileName,
			SourceSystem: src.Provider,
			Text:         doc.Text,
			Document:     doc.Content,
			EnableOCR:    run.req.EnableOCR,
			EnableLLM:    run.req.EnableLLM,
		})
	}
	if len(inputs) == 0 {
		inputs = append(inputs, engine.Input{
			Mode:         run.mode,
			SourceSystem: src.Provider,
			Text:         resultText(res),
			EnableLLM:    run.req.EnableLLM,
		})
	}

	best := make(map[catalog.Category]float64)
	for _, in := range inputs {
		report, err := s.detector.Detect(ctx, in)
		if err != nil {
			s.logger.WarnContext(ctx, "detection failed for document",
				"source_id", src.ID.String(), "file", in.FileName, "error", err)
			return nil, fmt.Errorf("detect %s: %w", src.ID, err)
		}
		item.Results = append(item.Results, report.Results...)
		item.ContainsSpecialCategory = item.ContainsSpecialCategory || report.ContainsSpecialCategory
		item.ThirdPartyDataSuspected = item.ThirdPartyDataSuspected || report.ThirdPartyDataSuspected
		for _, c := range report.Categories {
			if cur, seen := best[c.Category]; !seen || c.Confidence > cur {
				best[c.Category] = c.Confidence
			}
		}
	}
	item.Categories = detectedCategories(best)

	s.persist(ctx, "write_evidence_item", func(ctx context.Context) error {
		return s.sink.WriteEvidenceItem(ctx, *item)
	})
	for _, r := range item.Results {
		s.persist(ctx, "write_detection_result", func(ctx context.Context) error {
			return s.sink.WriteDetectionResult(ctx, item.ID, r)
		})
	}
	return item, nil
}

// resultText is the detectable text of a collection without documents.
func resultText(res *models.CollectionResult) string {
	var b strings.Builder
	b.WriteString(res.FindingsSummary)
	for _, k := range sortedKeys(res.ResultMetadata) {
		fmt.Fprintf(&b, "\n%s: %s", k, res.ResultMetadata[k])
	}
	return strings.TrimSpace(b.String())
}

func detectedCategories(best map[catalog.Category]float64) []detection.DetectedCategory {
	cats := make([]catalog.Category, 0, len(best))
	for c := range best {
		cats = append(cats, c)
	}
	catalog.SortCategories(cats)
	out := make([]detection.DetectedCategory, 0, len(cats))
	for _, c := range cats {
		out = append(out, detection.DetectedCategory{
			Category:        c,
			Confidence:      best[c],
			ConfidenceLevel: detection.ToConfidenceLevel(best[c]),
		})
	}
	return out
}

// scrubMessage replaces subject identifier values in a connector's failure
// message and caps its length.
func scrubMessage(msg string, values []string) string {
	msg = strings.TrimSpace(msg)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) < 3 {
			continue
		}
		msg = regexp.MustCompile(`(?i)`+regexp.QuoteMeta(v)).ReplaceAllLiteralString(msg, "[redacted]")
	}
	if len(msg) > maxFailureMessage {
		cut := maxFailureMessage
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}

// categoryOf reads the "category: message" prefix connectors use for
// unsuccessful results.
func categoryOf(msg string) string {
	prefix, _, ok := strings.Cut(msg, ":")
	if !ok {
		return string(connectors.ErrorInternal)
	}
	switch c := connectors.ErrorCategory(strings.TrimSpace(prefix)); c {
	case connectors.ErrorTimeout, connectors.ErrorBadData, connectors.ErrorAuthentication,
		connectors.ErrorProviderOutage, connectors.ErrorContractMismatch, connectors.ErrorNotFound,
		connectors.ErrorRateLimited, connectors.ErrorInternal:
		return string(c)
	}
	return string(connectors.ErrorInternal)
}

func copyMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
