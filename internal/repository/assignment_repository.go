package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
)

// AssignmentRepository persists solved duty assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListBySession returns the saved assignments of a session ordered for
// deterministic export.
func (r *AssignmentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Assignment, error) {
	const query = `SELECT id, session_id, run_id, staff_id, slot_key, room_name, role, day_index, period, exam_date, created_at
		FROM assignments WHERE session_id = $1
		ORDER BY exam_date ASC, slot_key ASC, room_name ASC, role ASC, staff_id ASC`
	assignments := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, sessionID); err != nil {
		return nil, fmt.Errorf("list assignments for session %s: %w", sessionID, err)
	}
	return assignments, nil
}

// ListByStaff returns one staff member's saved duties for a session.
func (r *AssignmentRepository) ListByStaff(ctx context.Context, sessionID, staffID string) ([]models.Assignment, error) {
	const query = `SELECT id, session_id, run_id, staff_id, slot_key, room_name, role, day_index, period, exam_date, created_at
		FROM assignments WHERE session_id = $1 AND staff_id = $2
		ORDER BY exam_date ASC, slot_key ASC`
	assignments := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, sessionID, staffID); err != nil {
		return nil, fmt.Errorf("list assignments for staff %s: %w", staffID, err)
	}
	return assignments, nil
}

// ReplaceForSession clears prior saved assignments of a session and stores the
// given batch inside one transaction.
func (r *AssignmentRepository) ReplaceForSession(ctx context.Context, sessionID string, assignments []models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace assignments: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear assignments for session %s: %w", sessionID, err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO assignments (id, session_id, run_id, staff_id, slot_key, room_name, role, day_index, period, exam_date, created_at)
		VALUES (:id, :session_id, :run_id, :staff_id, :slot_key, :room_name, :role, :day_index, :period, :exam_date, :created_at)`
	for i := range assignments {
		assignments[i].SessionID = sessionID
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, assignments[i]); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace assignments: %w", err)
	}
	return nil
}

// DeleteBySession removes all saved assignments of a session.
func (r *AssignmentRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete assignments for session %s: %w", sessionID, err)
	}
	return nil
}
