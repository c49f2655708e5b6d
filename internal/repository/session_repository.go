package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

// SessionRepository persists examination sessions and their solve runs.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns all sessions, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	const query = `SELECT id, name, start_date, end_date, created_at FROM sessions ORDER BY start_date DESC`
	sessions := []models.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetByID returns one session.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT id, name, start_date, end_date, created_at FROM sessions WHERE id = $1`
	var s models.Session
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &s, nil
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO sessions (id, name, start_date, end_date, created_at)
		VALUES (:id, :name, :start_date, :end_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// CreateRun records the start of a solve run.
func (r *SessionRepository) CreateRun(ctx context.Context, run *models.SolveRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	const query = `INSERT INTO solve_runs (id, session_id, status, objective, wall_millis, saved, started_at, completed_at)
		VALUES (:id, :session_id, :status, :objective, :wall_millis, :saved, :started_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create solve run: %w", err)
	}
	return nil
}

// UpdateRun stores the terminal state of a solve run.
func (r *SessionRepository) UpdateRun(ctx context.Context, run *models.SolveRun) error {
	const query = `UPDATE solve_runs
		SET status = :status, objective = :objective, wall_millis = :wall_millis,
		    saved = :saved, completed_at = :completed_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("update solve run %s: %w", run.ID, err)
	}
	return nil
}

// LatestRun returns the most recent solve run of a session.
func (r *SessionRepository) LatestRun(ctx context.Context, sessionID string) (*models.SolveRun, error) {
	const query = `SELECT id, session_id, status, objective, wall_millis, saved, started_at, completed_at
		FROM solve_runs WHERE session_id = $1 ORDER BY started_at DESC LIMIT 1`
	var run models.SolveRun
	if err := r.db.GetContext(ctx, &run, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("latest solve run for session %s: %w", sessionID, err)
	}
	return &run, nil
}
