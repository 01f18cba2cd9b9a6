// Package postgres persists discovery output with pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dsar/internal/detection/catalog"
	detection "dsar/internal/detection/models"
	"dsar/internal/discovery/models"
	"dsar/internal/identity"
	id "dsar/pkg/domain"
	"dsar/pkg/platform/sentinel"
	"dsar/pkg/requestcontext"
)

// execer is satisfied by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements the discovery sink and legal review hook.
type PostgresStore struct {
	db  execer
	now func() time.Time
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, now: time.Now}
}

// WithTx returns a store that writes through tx.
func (s *PostgresStore) WithTx(tx pgx.Tx) *PostgresStore {
	return &PostgresStore{db: tx, now: s.now}
}

func (s *PostgresStore) WriteRunStatus(ctx context.Context, status models.RunStatusRecord) error {
	totals, err := json.Marshal(status.Totals)
	if err != nil {
		return fmt.Errorf("marshal run totals: %w", err)
	}
	var completedAt *time.Time
	if !status.CompletedAt.IsZero() {
		completedAt = &status.CompletedAt
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO dsar_runs (run_id, case_id, status, error, totals, legal_hold, summary, started_at, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			totals = EXCLUDED.totals,
			legal_hold = EXCLUDED.legal_hold,
			summary = EXCLUDED.summary,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at`,
		status.RunID.String(), status.CaseID.String(), string(status.Status), status.Error, totals,
		status.LegalHold, status.Summary, status.StartedAt, completedAt, s.now(),
	)
	if err != nil {
		return fmt.Errorf("write run status: %w", err)
	}
	return nil
}

func (s *PostgresStore) WriteEvidenceItem(ctx context.Context, item models.EvidenceItem) error {
	metadata, err := json.Marshal(nonNilMap(item.Metadata))
	if err != nil {
		return fmt.Errorf("marshal evidence metadata: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO dsar_evidence_items (id, run_id, case_id, source_id, provider, location, title, records_found, metadata, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		item.ID.String(), item.RunID.String(), item.CaseID.String(), item.SourceID.String(), item.Provider,
		item.Location, item.Title, item.RecordsFound, metadata, item.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("write evidence item: %w", err)
	}
	return nil
}

func (s *PostgresStore) WriteDetectionResult(ctx context.Context, evidenceID id.EvidenceItemID, result detection.DetectionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal detection result: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO dsar_detection_results (id, evidence_item_id, detector_type, special_suspected, result)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), evidenceID.String(), string(result.DetectorType), result.ContainsSpecialCategorySuspected, payload,
	)
	if err != nil {
		return fmt.Errorf("write detection result: %w", err)
	}
	return nil
}

// WriteFinding is idempotent per (run, category).
func (s *PostgresStore) WriteFinding(ctx context.Context, f models.Finding) error {
	evidenceIDs := make([]string, len(f.EvidenceItemIDs))
	for i, eid := range f.EvidenceItemIDs {
		evidenceIDs[i] = eid.String()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO dsar_findings (id, run_id, case_id, data_category, severity, confidence, evidence_item_ids,
			contains_special_category, requires_legal_review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::uuid[], $8, $9, $10)
		ON CONFLICT (run_id, data_category) DO NOTHING`,
		f.ID.String(), f.RunID.String(), f.CaseID.String(), string(f.DataCategory), string(f.Severity), f.Confidence,
		evidenceIDs, f.ContainsSpecialCategory, f.RequiresLegalReview, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write finding: %w", err)
	}
	return nil
}

// UpsertIdentityProfile stores the graph snapshot; the run ID comes from ctx.
func (s *PostgresStore) UpsertIdentityProfile(ctx context.Context, caseID id.CaseID, graph *identity.Graph) error {
	if graph == nil {
		return errors.New("identity graph is required")
	}
	snapshot, err := json.Marshal(graph.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal identity snapshot: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO dsar_identity_profiles (case_id, run_id, snapshot, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (case_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at`,
		caseID.String(), requestcontext.RunID(ctx).String(), snapshot, s.now(),
	)
	if err != nil {
		return fmt.Errorf("upsert identity profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateLegalReviewTask(ctx context.Context, task models.LegalReviewTask) error {
	categories := make([]string, len(task.SpecialCategories))
	for i, c := range task.SpecialCategories {
		categories[i] = string(c)
	}
	findingIDs := make([]string, len(task.FindingIDs))
	for i, fid := range task.FindingIDs {
		findingIDs[i] = fid.String()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO dsar_legal_review_tasks (id, case_id, run_id, special_categories, finding_ids, reason, created_at)
		VALUES ($1, $2, $3, $4, $5::uuid[], $6, $7)`,
		uuid.NewString(), task.CaseID.String(), task.RunID.String(), categories, findingIDs, task.Reason, s.now(),
	)
	if err != nil {
		return fmt.Errorf("create legal review task: %w", err)
	}
	return nil
}

// GetRunStatus returns sentinel.ErrNotFound for an unknown run.
func (s *PostgresStore) GetRunStatus(ctx context.Context, runID id.RunID) (models.RunStatusRecord, error) {
	var (
		rec         models.RunStatusRecord
		runIDStr    string
		caseIDStr   string
		status      string
		totals      []byte
		completedAt *time.Time
	)
	err := s.db.QueryRow(ctx, `
		SELECT run_id::text, case_id::text, status, error, totals, legal_hold, summary, started_at, completed_at
		FROM dsar_runs WHERE run_id = $1`, runID.String(),
	).Scan(&runIDStr, &caseIDStr, &status, &rec.Error, &totals, &rec.LegalHold, &rec.Summary, &rec.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RunStatusRecord{}, sentinel.ErrNotFound
		}
		return models.RunStatusRecord{}, fmt.Errorf("get run status: %w", err)
	}
	if rec.RunID, err = id.ParseRunID(runIDStr); err != nil {
		return models.RunStatusRecord{}, fmt.Errorf("parse run id: %w", err)
	}
	if rec.CaseID, err = id.ParseCaseID(caseIDStr); err != nil {
		return models.RunStatusRecord{}, fmt.Errorf("parse case id: %w", err)
	}
	rec.Status = models.RunStatus(status)
	if err := json.Unmarshal(totals, &rec.Totals); err != nil {
		return models.RunStatusRecord{}, fmt.Errorf("unmarshal run totals: %w", err)
	}
	if completedAt != nil {
		rec.CompletedAt = *completedAt
	}
	return rec, nil
}

// ListFindings returns a run's findings ordered by category.
func (s *PostgresStore) ListFindings(ctx context.Context, runID id.RunID) ([]models.Finding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, case_id::text, data_category, severity, confidence, evidence_item_ids::text[],
			contains_special_category, requires_legal_review, created_at
		FROM dsar_findings WHERE run_id = $1 ORDER BY data_category`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var out []models.Finding
	for rows.Next() {
		var (
			f           models.Finding
			findingID   string
			caseID      string
			category    string
			severity    string
			evidenceIDs []string
		)
		if err := rows.Scan(&findingID, &caseID, &category, &severity, &f.Confidence, &evidenceIDs,
			&f.ContainsSpecialCategory, &f.RequiresLegalReview, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		u, err := uuid.Parse(findingID)
		if err != nil {
			return nil, fmt.Errorf("parse finding id: %w", err)
		}
		f.ID = id.FindingID(u)
		f.RunID = runID
		if f.CaseID, err = id.ParseCaseID(caseID); err != nil {
			return nil, fmt.Errorf("parse case id: %w", err)
		}
		f.DataCategory = catalog.Category(category)
		f.Severity = models.Severity(severity)
		f.ConfidenceLevel = detection.ToConfidenceLevel(f.Confidence)
		for _, raw := range evidenceIDs {
			eid, err := id.ParseEvidenceItemID(raw)
			if err != nil {
				return nil, fmt.Errorf("parse evidence item id: %w", err)
			}
			f.EvidenceItemIDs = append(f.EvidenceItemIDs, eid)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return out, nil
}

// GetIdentityProfile returns sentinel.ErrNotFound when no run has stored one.
func (s *PostgresStore) GetIdentityProfile(ctx context.Context, caseID id.CaseID) (*identity.Graph, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT snapshot FROM dsar_identity_profiles WHERE case_id = $1`, caseID.String()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get identity profile: %w", err)
	}
	var snap identity.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal identity snapshot: %w", err)
	}
	return identity.FromSnapshot(snap), nil
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
