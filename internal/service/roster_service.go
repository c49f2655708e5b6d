package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

type rosterStaffStore interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error)
	GetByID(ctx context.Context, id string) (*models.Staff, error)
	Upsert(ctx context.Context, s *models.Staff) error
	SetParticipation(ctx context.Context, id string, participates bool) error
}

type rosterGradeStore interface {
	List(ctx context.Context) ([]models.Grade, error)
	GetByID(ctx context.Context, id string) (*models.Grade, error)
	Upsert(ctx context.Context, g *models.Grade) error
	SetCeiling(ctx context.Context, id string, ceiling int) error
}

// RosterService manages the staff roster and grade ceilings.
type RosterService struct {
	staff     rosterStaffStore
	grades    rosterGradeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService wires roster dependencies.
func NewRosterService(staff rosterStaffStore, grades rosterGradeStore, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{staff: staff, grades: grades, validator: validate, logger: logger}
}

// ListStaff returns staff matching the query.
func (s *RosterService) ListStaff(ctx context.Context, query dto.StaffListQuery) ([]models.Staff, *models.Pagination, error) {
	filter := models.StaffFilter{
		Search:       query.Search,
		Grade:        query.Grade,
		Participates: query.Participates,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	return s.staff.List(ctx, filter)
}

// GetStaff returns one staff member.
func (s *RosterService) GetStaff(ctx context.Context, id string) (*models.Staff, error) {
	return s.staff.GetByID(ctx, id)
}

// UpsertStaff creates or updates a staff member. The grade must exist.
func (s *RosterService) UpsertStaff(ctx context.Context, req dto.UpsertStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if _, err := s.grades.GetByID(ctx, req.Grade); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade code "+req.Grade)
	}

	member := &models.Staff{
		ID:           req.ID,
		FullName:     req.FullName,
		Email:        req.Email,
		Grade:        req.Grade,
		Participates: *req.Participates,
	}
	if err := s.staff.Upsert(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// SetParticipation flips a staff member's supervision enrollment.
func (s *RosterService) SetParticipation(ctx context.Context, id string, req dto.ParticipationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid participation payload")
	}
	return s.staff.SetParticipation(ctx, id, *req.Participates)
}

// ListGrades returns all grades with their ceilings.
func (s *RosterService) ListGrades(ctx context.Context) ([]models.Grade, error) {
	return s.grades.List(ctx)
}

// UpsertGrade creates or updates a grade and its quota ceiling.
func (s *RosterService) UpsertGrade(ctx context.Context, req dto.UpsertGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	grade := &models.Grade{ID: req.ID, Name: req.Name, Ceiling: req.Ceiling}
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, err
	}
	return grade, nil
}

// SetGradeCeiling adjusts the quota ceiling of one grade. Raising a ceiling
// is the usual remedy when a session diagnoses a capacity shortfall.
func (s *RosterService) SetGradeCeiling(ctx context.Context, id string, req dto.CeilingRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ceiling payload")
	}
	return s.grades.SetCeiling(ctx, id, req.Ceiling)
}
