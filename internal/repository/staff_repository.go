package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

// StaffRepository persists supervision-eligible staff members.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff matching the filter with pagination metadata.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	conditions := []string{"1=1"}
	args := map[string]interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, "(full_name ILIKE :search OR id ILIKE :search)")
		args["search"] = "%" + filter.Search + "%"
	}
	if filter.Grade != "" {
		conditions = append(conditions, "grade = :grade")
		args["grade"] = filter.Grade
	}
	if filter.Participates != nil {
		conditions = append(conditions, "participates = :participates")
		args["participates"] = *filter.Participates
	}

	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM staff WHERE " + where
	rows, err := r.db.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, nil, fmt.Errorf("count staff: %w", err)
	}
	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan staff count: %w", err)
		}
	}
	rows.Close()

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args["limit"] = pageSize
	args["offset"] = (page - 1) * pageSize

	listQuery := `SELECT id, full_name, email, grade, participates, created_at, updated_at
		FROM staff WHERE ` + where + ` ORDER BY full_name ASC LIMIT :limit OFFSET :offset`
	rows, err = r.db.NamedQueryContext(ctx, listQuery, args)
	if err != nil {
		return nil, nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	staff := []models.Staff{}
	for rows.Next() {
		var s models.Staff
		if err := rows.StructScan(&s); err != nil {
			return nil, nil, fmt.Errorf("scan staff row: %w", err)
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate staff rows: %w", err)
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return staff, pagination, nil
}

// ListAll returns every staff member ordered by identifier. The optimizer
// needs the full roster, opted-out members included, so the diagnostician
// can suggest enrolling them.
func (r *StaffRepository) ListAll(ctx context.Context) ([]models.Staff, error) {
	const query = `SELECT id, full_name, email, grade, participates, created_at, updated_at
		FROM staff ORDER BY id ASC`
	staff := []models.Staff{}
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("list all staff: %w", err)
	}
	return staff, nil
}

// CountOptedOutByGrade returns how many staff per grade sit out of supervision.
func (r *StaffRepository) CountOptedOutByGrade(ctx context.Context) (map[string]int, error) {
	const query = `SELECT grade, COUNT(*) AS n FROM staff WHERE participates = FALSE GROUP BY grade`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count opted-out staff: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var grade string
		var n int
		if err := rows.Scan(&grade, &n); err != nil {
			return nil, fmt.Errorf("scan opted-out count: %w", err)
		}
		out[grade] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opted-out counts: %w", err)
	}
	return out, nil
}

// GetByID returns one staff member.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `SELECT id, full_name, email, grade, participates, created_at, updated_at FROM staff WHERE id = $1`
	var s models.Staff
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get staff %s: %w", id, err)
	}
	return &s, nil
}

// Upsert creates or updates a staff member.
func (r *StaffRepository) Upsert(ctx context.Context, s *models.Staff) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	const query = `INSERT INTO staff (id, full_name, email, grade, participates, created_at, updated_at)
		VALUES (:id, :full_name, :email, :grade, :participates, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    email = EXCLUDED.email,
		    grade = EXCLUDED.grade,
		    participates = EXCLUDED.participates,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("upsert staff: %w", err)
	}
	return nil
}

// SetParticipation flips a staff member's enrollment flag.
func (r *StaffRepository) SetParticipation(ctx context.Context, id string, participates bool) error {
	const query = `UPDATE staff SET participates = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, participates, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set participation for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
