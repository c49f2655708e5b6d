package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
	"github.com/noah-isme/exam-proctor-api/pkg/response"
)

type exportService interface {
	AssignmentsCSV(ctx context.Context, sessionID string, dayIndex int) ([]byte, error)
	AssignmentsPDF(ctx context.Context, sessionID string) ([]byte, error)
	LedgerCSV(ctx context.Context, sessionID string) ([]byte, error)
	ConvocationsPDF(ctx context.Context, sessionID string) ([]byte, error)
	ConvocationPDF(ctx context.Context, sessionID, staffID string) ([]byte, error)
}

// ExportHandler exposes roster and convocation downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// AssignmentsCSV godoc
// @Summary Download the duty roster as CSV
// @Tags Export
// @Produce text/csv
// @Param id path string true "Session ID"
// @Param day query int false "Restrict to one session day"
// @Success 200 {file} file
// @Router /sessions/{id}/exports/assignments.csv [get]
func (h *ExportHandler) AssignmentsCSV(c *gin.Context) {
	dayIndex := 0
	if raw := c.Query("day"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be a positive integer"))
			return
		}
		dayIndex = parsed
	}

	payload, err := h.service.AssignmentsCSV(c.Request.Context(), c.Param("id"), dayIndex)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, "assignments.csv", "text/csv", payload)
}

// AssignmentsPDF godoc
// @Summary Download the duty roster as PDF
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Router /sessions/{id}/exports/assignments.pdf [get]
func (h *ExportHandler) AssignmentsPDF(c *gin.Context) {
	payload, err := h.service.AssignmentsPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, "assignments.pdf", "application/pdf", payload)
}

// LedgerCSV godoc
// @Summary Download the workload ledger as CSV
// @Tags Export
// @Produce text/csv
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Router /sessions/{id}/exports/ledger.csv [get]
func (h *ExportHandler) LedgerCSV(c *gin.Context) {
	payload, err := h.service.LedgerCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, "ledger.csv", "text/csv", payload)
}

// ConvocationsPDF godoc
// @Summary Download per-staff duty notices as PDF
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Router /sessions/{id}/exports/convocations.pdf [get]
func (h *ExportHandler) ConvocationsPDF(c *gin.Context) {
	payload, err := h.service.ConvocationsPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, "convocations.pdf", "application/pdf", payload)
}

// ConvocationPDF godoc
// @Summary Download one staff member's duty notice as PDF
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Param staffId path string true "Staff ID"
// @Success 200 {file} file
// @Router /sessions/{id}/exports/convocations/{staffId} [get]
func (h *ExportHandler) ConvocationPDF(c *gin.Context) {
	staffID := c.Param("staffId")
	payload, err := h.service.ConvocationPDF(c.Request.Context(), c.Param("id"), staffID)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, fmt.Sprintf("convocation_%s.pdf", staffID), "application/pdf", payload)
}

func serveDownload(c *gin.Context, filename, contentType string, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
