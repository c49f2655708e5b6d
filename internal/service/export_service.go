package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
	"github.com/noah-isme/exam-proctor-api/pkg/export"
)

type exportAssignmentReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Assignment, error)
	ListByStaff(ctx context.Context, sessionID, staffID string) ([]models.Assignment, error)
}

type exportLedgerReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.LedgerEntry, error)
}

type exportStaffReader interface {
	ListAll(ctx context.Context) ([]models.Staff, error)
}

type exportSessionReader interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type convocationRenderer interface {
	Render(convocations []export.Convocation) ([]byte, error)
}

// ExportService renders saved duty plans into CSV rosters, PDF tables and
// per-staff convocation documents.
type ExportService struct {
	assignments exportAssignmentReader
	ledger      exportLedgerReader
	staff       exportStaffReader
	sessions    exportSessionReader

	csv          csvRenderer
	pdf          pdfRenderer
	convocations convocationRenderer
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(
	assignments exportAssignmentReader,
	ledger exportLedgerReader,
	staff exportStaffReader,
	sessions exportSessionReader,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		assignments:  assignments,
		ledger:       ledger,
		staff:        staff,
		sessions:     sessions,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		convocations: export.NewConvocationExporter(),
		logger:       logger,
	}
}

var assignmentHeaders = []string{"date", "day", "period", "slot", "room", "role", "staff_id", "staff_name", "grade"}

// AssignmentsCSV renders the saved assignments of a session. A dayIndex of
// zero exports the whole session; a positive value exports one day.
func (s *ExportService) AssignmentsCSV(ctx context.Context, sessionID string, dayIndex int) ([]byte, error) {
	dataset, err := s.assignmentDataset(ctx, sessionID, dayIndex)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(*dataset)
}

// AssignmentsPDF renders the saved assignments of a session as a PDF table.
func (s *ExportService) AssignmentsPDF(ctx context.Context, sessionID string) ([]byte, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	dataset, err := s.assignmentDataset(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(*dataset, fmt.Sprintf("Supervision Duties - %s", session.Name))
}

// LedgerCSV renders the saved workload ledger of a session.
func (s *ExportService) LedgerCSV(ctx context.Context, sessionID string) ([]byte, error) {
	entries, err := s.ledger.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no saved ledger for this session")
	}
	names, _ := s.staffIndex(ctx)

	dataset := export.Dataset{
		Headers: []string{"staff_id", "staff_name", "grade", "realized", "grade_quota", "majority", "delta_grade", "delta_majority", "adjusted_quota"},
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"staff_id":       entry.StaffID,
			"staff_name":     names[entry.StaffID].FullName,
			"grade":          entry.Grade,
			"realized":       strconv.Itoa(entry.Realized),
			"grade_quota":    strconv.Itoa(entry.GradeQuota),
			"majority":       strconv.Itoa(entry.MajorityRealized),
			"delta_grade":    strconv.Itoa(entry.DeltaGrade),
			"delta_majority": strconv.Itoa(entry.DeltaMajority),
			"adjusted_quota": strconv.Itoa(entry.AdjustedQuota),
		})
	}
	return s.csv.Render(dataset)
}

// ConvocationsPDF renders one duty notice page per staff member holding at
// least one saved assignment.
func (s *ExportService) ConvocationsPDF(ctx context.Context, sessionID string) ([]byte, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no saved assignments for this session")
	}
	staff, _ := s.staffIndex(ctx)

	byStaff := map[string][]models.Assignment{}
	for _, a := range assignments {
		byStaff[a.StaffID] = append(byStaff[a.StaffID], a)
	}
	staffIDs := make([]string, 0, len(byStaff))
	for id := range byStaff {
		staffIDs = append(staffIDs, id)
	}
	sort.Strings(staffIDs)

	convocations := make([]export.Convocation, 0, len(staffIDs))
	for _, id := range staffIDs {
		convocations = append(convocations, buildConvocation(staff[id], id, session.Name, byStaff[id]))
	}

	return s.convocations.Render(convocations)
}

// ConvocationPDF renders the duty notice of a single staff member.
func (s *ExportService) ConvocationPDF(ctx context.Context, sessionID, staffID string) ([]byte, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByStaff(ctx, sessionID, staffID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no saved assignments for this staff member")
	}
	staff, _ := s.staffIndex(ctx)

	conv := buildConvocation(staff[staffID], staffID, session.Name, assignments)
	return s.convocations.Render([]export.Convocation{conv})
}

func buildConvocation(member models.Staff, staffID, sessionName string, assignments []models.Assignment) export.Convocation {
	name := member.FullName
	if name == "" {
		name = staffID
	}
	conv := export.Convocation{
		StaffName: name,
		Grade:     member.Grade,
		Session:   sessionName,
	}
	for _, a := range assignments {
		conv.Duties = append(conv.Duties, export.ConvocationDuty{
			Date:   a.ExamDate.Format("2006-01-02"),
			Period: a.Period,
			Start:  slotStart(a.SlotKey),
			End:    "",
			Room:   a.RoomName,
			Role:   a.Role,
		})
	}
	return conv
}

func (s *ExportService) assignmentDataset(ctx context.Context, sessionID string, dayIndex int) (*export.Dataset, error) {
	assignments, err := s.assignments.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if dayIndex > 0 {
		filtered := assignments[:0]
		for _, a := range assignments {
			if a.DayIndex == dayIndex {
				filtered = append(filtered, a)
			}
		}
		assignments = filtered
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no saved assignments for this session")
	}
	names, err := s.staffIndex(ctx)
	if err != nil {
		return nil, err
	}

	dataset := &export.Dataset{Headers: assignmentHeaders}
	for _, a := range assignments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":       a.ExamDate.Format("2006-01-02"),
			"day":        strconv.Itoa(a.DayIndex),
			"period":     a.Period,
			"slot":       a.SlotKey,
			"room":       a.RoomName,
			"role":       a.Role,
			"staff_id":   a.StaffID,
			"staff_name": names[a.StaffID].FullName,
			"grade":      names[a.StaffID].Grade,
		})
	}
	return dataset, nil
}

func (s *ExportService) staffIndex(ctx context.Context) (map[string]models.Staff, error) {
	staff, err := s.staff.ListAll(ctx)
	if err != nil {
		s.logger.Warn("load staff for export", zap.Error(err))
		return map[string]models.Staff{}, err
	}
	index := make(map[string]models.Staff, len(staff))
	for _, member := range staff {
		index[member.ID] = member
	}
	return index, nil
}

// slotStart extracts the start clock from a slot key of shape
// "YYYY-MM-DD_HH:MM".
func slotStart(slotKey string) string {
	for i := 0; i < len(slotKey); i++ {
		if slotKey[i] == '_' {
			return slotKey[i+1:]
		}
	}
	return ""
}
