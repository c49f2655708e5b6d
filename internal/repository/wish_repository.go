package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
)

// WishRepository persists staff requests to avoid specific day/period pairs.
type WishRepository struct {
	db *sqlx.DB
}

// NewWishRepository constructs the repository.
func NewWishRepository(db *sqlx.DB) *WishRepository {
	return &WishRepository{db: db}
}

// ListBySession returns all wishes recorded for a session.
func (r *WishRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Wish, error) {
	const query = `SELECT id, session_id, staff_id, day_index, period
		FROM wishes WHERE session_id = $1
		ORDER BY staff_id ASC, day_index ASC, period ASC`
	wishes := []models.Wish{}
	if err := r.db.SelectContext(ctx, &wishes, query, sessionID); err != nil {
		return nil, fmt.Errorf("list wishes for session %s: %w", sessionID, err)
	}
	return wishes, nil
}

// ReplaceForStaff swaps the wish list of one staff member for a session.
func (r *WishRepository) ReplaceForStaff(ctx context.Context, sessionID, staffID string, wishes []models.Wish) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace wishes: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wishes WHERE session_id = $1 AND staff_id = $2`, sessionID, staffID); err != nil {
		return fmt.Errorf("clear wishes for staff %s: %w", staffID, err)
	}

	const insert = `INSERT INTO wishes (id, session_id, staff_id, day_index, period)
		VALUES (:id, :session_id, :staff_id, :day_index, :period)`
	for i := range wishes {
		wishes[i].SessionID = sessionID
		wishes[i].StaffID = staffID
		if wishes[i].ID == "" {
			wishes[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insert, wishes[i]); err != nil {
			return fmt.Errorf("insert wish: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace wishes: %w", err)
	}
	return nil
}
