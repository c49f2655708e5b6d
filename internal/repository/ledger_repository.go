package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
)

// LedgerRepository persists the per-session workload ledger.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ListBySession returns the ledger of a session ordered by staff identifier.
func (r *LedgerRepository) ListBySession(ctx context.Context, sessionID string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, session_id, staff_id, grade, realized, grade_quota, majority_realized,
		delta_grade, delta_majority, adjusted_quota, adjusted_majority, created_at
		FROM ledger_entries WHERE session_id = $1 ORDER BY staff_id ASC`
	entries := []models.LedgerEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, sessionID); err != nil {
		return nil, fmt.Errorf("list ledger for session %s: %w", sessionID, err)
	}
	return entries, nil
}

// ReplaceForSession swaps the full ledger of a session inside one transaction.
func (r *LedgerRepository) ReplaceForSession(ctx context.Context, sessionID string, entries []models.LedgerEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace ledger: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear ledger for session %s: %w", sessionID, err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO ledger_entries (id, session_id, staff_id, grade, realized, grade_quota, majority_realized,
			delta_grade, delta_majority, adjusted_quota, adjusted_majority, created_at)
		VALUES (:id, :session_id, :staff_id, :grade, :realized, :grade_quota, :majority_realized,
			:delta_grade, :delta_majority, :adjusted_quota, :adjusted_majority, :created_at)`
	for i := range entries {
		entries[i].SessionID = sessionID
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, entries[i]); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace ledger: %w", err)
	}
	return nil
}

// DeleteBySession removes the ledger of a session.
func (r *LedgerRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete ledger for session %s: %w", sessionID, err)
	}
	return nil
}

// PriorAdjustedQuotas returns the adjusted quotas from the ledger of the most
// recent session that started before the given one. The result feeds the
// carry-over priority of the next solve. An empty map means no prior ledger
// exists.
func (r *LedgerRepository) PriorAdjustedQuotas(ctx context.Context, sessionID string) (map[string]int, error) {
	const query = `SELECT l.staff_id, l.adjusted_quota
		FROM ledger_entries l
		WHERE l.session_id = (
			SELECT s.id FROM sessions s
			WHERE s.start_date < (SELECT start_date FROM sessions WHERE id = $1)
			ORDER BY s.start_date DESC
			LIMIT 1
		)`
	rows, err := r.db.QueryxContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load prior adjusted quotas for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var staffID string
		var adjusted int
		if err := rows.Scan(&staffID, &adjusted); err != nil {
			return nil, fmt.Errorf("scan prior adjusted quota: %w", err)
		}
		out[staffID] = adjusted
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prior adjusted quotas: %w", err)
	}
	return out, nil
}
