package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
	"github.com/noah-isme/exam-proctor-api/pkg/response"
)

type solveService interface {
	Solve(ctx context.Context, sessionID string, req dto.SolveRequest) (*dto.SolveStatusResponse, error)
	Status(ctx context.Context, sessionID string) (*dto.SolveStatusResponse, error)
	Stats(ctx context.Context, sessionID string) (*dto.SolveStatsResponse, error)
	Workload(ctx context.Context, sessionID string) (*dto.WorkloadResponse, error)
	Clear(ctx context.Context, sessionID string) error
}

// SolveHandler exposes duty assignment endpoints.
type SolveHandler struct {
	service solveService
}

// NewSolveHandler builds a new handler.
func NewSolveHandler(service solveService) *SolveHandler {
	return &SolveHandler{service: service}
}

// Solve godoc
// @Summary Run duty assignment for a session
// @Tags Solve
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SolveRequest false "Solve options"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/solve [post]
func (h *SolveHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}

	status, err := h.service.Solve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.Async {
		response.Accepted(c, status)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Status godoc
// @Summary Latest solve run status for a session
// @Tags Solve
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/solve/status [get]
func (h *SolveHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Stats godoc
// @Summary Statistics of the latest solve run
// @Tags Solve
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/solve/stats [get]
func (h *SolveHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Workload godoc
// @Summary Saved workload ledger of a session
// @Tags Solve
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/workload [get]
func (h *SolveHandler) Workload(c *gin.Context) {
	workload, err := h.service.Workload(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workload, nil)
}

// Clear godoc
// @Summary Drop saved assignments and ledger of a session
// @Tags Solve
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/assignments [delete]
func (h *SolveHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
