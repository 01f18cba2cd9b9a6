package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "dsar/pkg/domain"
	audit "dsar/pkg/platform/audit"
	txcontext "dsar/pkg/platform/tx"
)

const aggregateCase = "case"

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and relayed to Kafka by the outbox
// worker; the outbox doubles as the per-case audit trail.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	payload, err := audit.EncodePayload(eventID, event)
	if err != nil {
		return err
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.CaseID.IsNil() {
		aggregateType = aggregateCase
		aggregateID = event.CaseID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.Use(ctx, s.db).ExecContext(ctx, query,
		eventID,
		aggregateType,
		aggregateID,
		event.Action,
		payload,
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByCase returns a case's events, oldest first.
func (s *Store) ListByCase(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM outbox
		WHERE aggregate_type = $1 AND aggregate_id = $2
		ORDER BY created_at ASC
	`
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, aggregateCase, caseID.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := audit.DecodePayload(payload)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// FetchPending returns up to limit entries not yet relayed, oldest first.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox: %w", err)
	}
	defer rows.Close()

	var entries []audit.OutboxEntry
	for rows.Next() {
		var e audit.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

// AppendAll writes events atomically: either every event reaches the outbox
// or none does.
func (s *Store) AppendAll(ctx context.Context, events ...audit.Event) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		for _, e := range events {
			if err := s.Append(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkProcessed stamps relayed entries so they are not fetched again.
func (s *Store) MarkProcessed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, v := range ids {
		raw[i] = v.String()
	}
	query := `UPDATE outbox SET processed_at = $1 WHERE id = ANY($2::uuid[])`
	if _, err := txcontext.Use(ctx, s.db).ExecContext(ctx, query, s.now(), pq.Array(raw)); err != nil {
		return fmt.Errorf("mark outbox processed: %w", err)
	}
	return nil
}
