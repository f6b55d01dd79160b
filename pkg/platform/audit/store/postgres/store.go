package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "verigate/pkg/domain"
	audit "verigate/pkg/platform/audit"
	txcontext "verigate/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is bound to the context.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}

	var subjectID *uuid.UUID
	if !event.SubjectID.IsNil() {
		sid := uuid.UUID(event.SubjectID)
		subjectID = &sid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, subject_id, submission_id, action,
			decision, reason, request_id, actor_id, detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		subjectID,
		event.SubmissionID,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
		detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns events for one subject, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, subject_id, submission_id, action,
			   decision, reason, request_id, actor_id, detail
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := txcontext.ExecutorFor(ctx, s.db).QueryContext(ctx, query, uuid.UUID(subjectID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, subject_id, submission_id, action,
			   decision, reason, request_id, actor_id, detail
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category  string
			event     audit.Event
			subjectID *uuid.UUID
			detail    []byte
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&subjectID,
			&event.SubmissionID,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
			&detail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if subjectID != nil {
			event.SubjectID = id.SubjectID(*subjectID)
		}
		if len(detail) > 0 && string(detail) != "null" {
			if err := json.Unmarshal(detail, &event.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
