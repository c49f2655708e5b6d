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

type scheduleService interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error)
	ListSchedule(ctx context.Context, sessionID string) ([]models.RoomRecord, error)
	ReplaceSchedule(ctx context.Context, sessionID string, req dto.ReplaceScheduleRequest) ([]models.RoomRecord, error)
	ListWishes(ctx context.Context, sessionID string) ([]models.Wish, error)
	ReplaceWishes(ctx context.Context, sessionID, staffID string, req dto.ReplaceWishesRequest) error
}

// ScheduleHandler exposes session and exam schedule endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// ListSessions godoc
// @Summary List examination sessions
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *ScheduleHandler) ListSessions(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// GetSession godoc
// @Summary Get one session
// @Tags Schedule
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *ScheduleHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// CreateSession godoc
// @Summary Open a new session
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *ScheduleHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ListSchedule godoc
// @Summary Room schedule of a session
// @Tags Schedule
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/schedule [get]
func (h *ScheduleHandler) ListSchedule(c *gin.Context) {
	records, err := h.service.ListSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ReplaceSchedule godoc
// @Summary Replace the room schedule of a session
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ReplaceScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/schedule [put]
func (h *ScheduleHandler) ReplaceSchedule(c *gin.Context) {
	var req dto.ReplaceScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	records, err := h.service.ReplaceSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ListWishes godoc
// @Summary Wishes of a session
// @Tags Schedule
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/wishes [get]
func (h *ScheduleHandler) ListWishes(c *gin.Context) {
	wishes, err := h.service.ListWishes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, wishes, nil)
}

// ReplaceWishes godoc
// @Summary Replace one staff member's wishes for a session
// @Tags Schedule
// @Accept json
// @Param id path string true "Session ID"
// @Param staffId path string true "Staff ID"
// @Param payload body dto.ReplaceWishesRequest true "Wishes payload"
// @Success 204
// @Router /sessions/{id}/wishes/{staffId} [put]
func (h *ScheduleHandler) ReplaceWishes(c *gin.Context) {
	var req dto.ReplaceWishesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid wishes payload"))
		return
	}
	if err := h.service.ReplaceWishes(c.Request.Context(), c.Param("id"), c.Param("staffId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
