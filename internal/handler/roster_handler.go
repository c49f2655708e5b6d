package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
	"github.com/noah-isme/exam-proctor-api/pkg/response"
)

type rosterService interface {
	ListStaff(ctx context.Context, query dto.StaffListQuery) ([]models.Staff, *models.Pagination, error)
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
	UpsertStaff(ctx context.Context, req dto.UpsertStaffRequest) (*models.Staff, error)
	SetParticipation(ctx context.Context, id string, req dto.ParticipationRequest) error
	ListGrades(ctx context.Context) ([]models.Grade, error)
	UpsertGrade(ctx context.Context, req dto.UpsertGradeRequest) (*models.Grade, error)
	SetGradeCeiling(ctx context.Context, id string, req dto.CeilingRequest) error
}

// RosterHandler exposes staff roster and grade endpoints.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler builds a new handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// ListStaff godoc
// @Summary List staff
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *RosterHandler) ListStaff(c *gin.Context) {
	var query dto.StaffListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff query"))
		return
	}
	staff, pagination, err := h.service.ListStaff(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, pagination)
}

// GetStaff godoc
// @Summary Get staff member
// @Tags Roster
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *RosterHandler) GetStaff(c *gin.Context) {
	member, err := h.service.GetStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// UpsertStaff godoc
// @Summary Create or update a staff member
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.UpsertStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [put]
func (h *RosterHandler) UpsertStaff(c *gin.Context) {
	var req dto.UpsertStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.service.UpsertStaff(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// SetParticipation godoc
// @Summary Flip supervision enrollment
// @Tags Roster
// @Accept json
// @Param id path string true "Staff ID"
// @Param payload body dto.ParticipationRequest true "Participation payload"
// @Success 204
// @Router /staff/{id}/participation [put]
func (h *RosterHandler) SetParticipation(c *gin.Context) {
	var req dto.ParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid participation payload"))
		return
	}
	if err := h.service.SetParticipation(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGrades godoc
// @Summary List grades and ceilings
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *RosterHandler) ListGrades(c *gin.Context) {
	grades, err := h.service.ListGrades(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// UpsertGrade godoc
// @Summary Create or update a grade
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.UpsertGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [put]
func (h *RosterHandler) UpsertGrade(c *gin.Context) {
	var req dto.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	grade, err := h.service.UpsertGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// SetGradeCeiling godoc
// @Summary Adjust a grade's quota ceiling
// @Tags Roster
// @Accept json
// @Param id path string true "Grade ID"
// @Param payload body dto.CeilingRequest true "Ceiling payload"
// @Success 204
// @Router /grades/{id}/ceiling [put]
func (h *RosterHandler) SetGradeCeiling(c *gin.Context) {
	var req dto.CeilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ceiling payload"))
		return
	}
	if err := h.service.SetGradeCeiling(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
