package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"dsar/internal/detection/catalog"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/ports"
	id "dsar/pkg/domain"
	"dsar/pkg/platform/audit"
)

// complete folds the query outcomes into the run result, runs the legal gate
// and persists the final state.
func (s *Service) complete(ctx context.Context, run *runState, result *models.RunResult, sources []models.SourceConfig, outcomes []queryOutcome) {
	completedAt := s.now()

	result.Queries = make([]models.QueryRecord, 0, len(outcomes))
	for _, o := range outcomes {
		result.Queries = append(result.Queries, o.record)
		if o.evidence != nil {
			result.EvidenceItems = append(result.EvidenceItems, *o.evidence)
		}
	}
	result.Graph = run.finalGraph()
	result.Findings = aggregateFindings(run.runID, run.caseID, result.EvidenceItems, completedAt)
	result.SpecialCategories = specialCategories(result.Findings)
	result.ContainsSpecialCategory = len(result.SpecialCategories) > 0
	result.LegalHold = result.ContainsSpecialCategory
	result.Totals = computeTotals(len(sources), result, run.baseGraph.Len())
	result.Status = models.RunCompleted
	result.CompletedAt = completedAt
	result.Summary = summarize(result)

	for _, f := range result.Findings {
		s.metrics.IncFinding(string(f.Severity))
		s.persist(ctx, "write_finding", func(ctx context.Context) error {
			return s.sink.WriteFinding(ctx, f)
		})
	}
	s.persist(ctx, "upsert_identity_profile", func(ctx context.Context) error {
		return s.sink.UpsertIdentityProfile(ctx, run.caseID, result.Graph)
	})

	if result.LegalHold {
		s.triggerLegalHold(ctx, run, result)
	}

	if s.sink != nil {
		if err := s.sink.WriteRunStatus(ctx, result.StatusRecord()); err != nil {
			result.StatusPersistError = err
			s.metrics.IncSinkError("write_run_status")
			s.logger.ErrorContext(ctx, "failed to persist run status", "error", err)
		}
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventRunCompleted),
		Decision: string(models.RunCompleted),
	},
		"sources", result.Totals.Sources,
		"queries_completed", result.Totals.QueriesCompleted,
		"queries_failed", result.Totals.QueriesFailed,
		"queries_skipped", result.Totals.QueriesSkipped,
		"findings", result.Totals.Findings,
	)
	s.metrics.IncRun(string(models.RunCompleted), completedAt.Sub(result.StartedAt))
}

func (s *Service) triggerLegalHold(ctx context.Context, run *runState, result *models.RunResult) {
	s.metrics.IncLegalHold()
	task := models.LegalReviewTask{
		CaseID:            run.caseID,
		RunID:             run.runID,
		SpecialCategories: append([]catalog.Category(nil), result.SpecialCategories...),
		Reason:            "special category data discovered",
	}
	for _, f := range result.Findings {
		if f.RequiresLegalReview {
			task.FindingIDs = append(task.FindingIDs, f.ID)
		}
	}
	if s.legal != nil {
		if err := s.legal.CreateLegalReviewTask(ctx, task); err != nil {
			s.metrics.IncSinkError("create_legal_review_task")
			s.logger.ErrorContext(ctx, "failed to create legal review task", "error", err)
		}
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:   string(audit.EventLegalHoldTriggered),
		Decision: "legal_review_required",
		Reason:   task.Reason,
	}, "special_categories", categoryNames(task.SpecialCategories))
}

// aggregateFindings folds evidence items into one finding per category. The
// fold is commutative: confidence is a max, evidence is a set, and the
// output is sorted, so item order never changes the result. Finding IDs are
// derived from the run and category for the same reason.
func aggregateFindings(runID id.RunID, caseID id.CaseID, items []models.EvidenceItem, at time.Time) []models.Finding {
	type acc struct {
		confidence float64
		evidence   map[id.EvidenceItemID]struct{}
	}
	byCategory := make(map[catalog.Category]*acc)
	for _, item := range items {
		for _, c := range item.Categories {
			a, ok := byCategory[c.Category]
			if !ok {
				a = &acc{confidence: c.Confidence, evidence: make(map[id.EvidenceItemID]struct{})}
				byCategory[c.Category] = a
			}
			if c.Confidence > a.confidence {
				a.confidence = c.Confidence
			}
			a.evidence[item.ID] = struct{}{}
		}
	}

	cats := make([]catalog.Category, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	catalog.SortCategories(cats)

	findings := make([]models.Finding, 0, len(cats))
	for _, c := range cats {
		a := byCategory[c]
		ids := make([]id.EvidenceItemID, 0, len(a.evidence))
		for eid := range a.evidence {
			ids = append(ids, eid)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		special := catalog.IsSpecialCategory(c)
		findings = append(findings, models.Finding{
			ID:                      findingID(runID, c),
			RunID:                   runID,
			CaseID:                  caseID,
			DataCategory:            c,
			Severity:                models.SeverityFor(c),
			Confidence:              a.confidence,
			ConfidenceLevel:         detection.ToConfidenceLevel(a.confidence),
			EvidenceItemIDs:         ids,
			ContainsSpecialCategory: special,
			RequiresLegalReview:     special,
			CreatedAt:               at,
		})
	}
	return findings
}

func findingID(runID id.RunID, c catalog.Category) id.FindingID {
	return id.FindingID(uuid.NewSHA1(uuid.UUID(runID), []byte(c)))
}

func specialCategories(findings []models.Finding) []catalog.Category {
	var out []catalog.Category
	for _, f := range findings {
		if f.ContainsSpecialCategory {
			out = append(out, f.DataCategory)
		}
	}
	return out
}

func computeTotals(sources int, result *models.RunResult, initialIdentifiers int) models.RunTotals {
	t := models.RunTotals{
		Sources:          sources,
		EvidenceItems:    len(result.EvidenceItems),
		Findings:         len(result.Findings),
		IdentifiersAdded: result.Graph.Len() - initialIdentifiers,
	}
	for _, q := range result.Queries {
		switch q.Status {
		case models.QueryCompleted:
			t.QueriesCompleted++
			t.RecordsFound += q.RecordsFound
		case models.QueryFailed:
			t.QueriesFailed++
		case models.QuerySkipped:
			t.QueriesSkipped++
		}
	}
	for _, f := range result.Findings {
		switch f.Severity {
		case models.SeverityCritical:
			t.CriticalFindings++
		case models.SeverityWarning:
			t.WarningFindings++
		}
	}
	if t.IdentifiersAdded < 0 {
		t.IdentifiersAdded = 0
	}
	return t
}

func categoryNames(cs []catalog.Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
