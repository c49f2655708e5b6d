package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

// GradeRepository persists staff grades and their quota ceilings.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns all grades ordered by identifier.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	const query = `SELECT id, name, ceiling FROM grades ORDER BY id ASC`
	grades := []models.Grade{}
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// GetByID returns one grade.
func (r *GradeRepository) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	const query = `SELECT id, name, ceiling FROM grades WHERE id = $1`
	var g models.Grade
	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get grade %s: %w", id, err)
	}
	return &g, nil
}

// Upsert creates or updates a grade.
func (r *GradeRepository) Upsert(ctx context.Context, g *models.Grade) error {
	const query = `INSERT INTO grades (id, name, ceiling)
		VALUES (:id, :name, :ceiling)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    ceiling = EXCLUDED.ceiling`
	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// SetCeiling updates the supervision quota ceiling of a grade.
func (r *GradeRepository) SetCeiling(ctx context.Context, id string, ceiling int) error {
	const query = `UPDATE grades SET ceiling = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, ceiling, id)
	if err != nil {
		return fmt.Errorf("set ceiling for grade %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
