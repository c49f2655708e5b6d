package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

type exportAssignmentsStub struct {
	assignments []models.Assignment
}

func (s *exportAssignmentsStub) ListBySession(ctx context.Context, sessionID string) ([]models.Assignment, error) {
	return s.assignments, nil
}

func (s *exportAssignmentsStub) ListByStaff(ctx context.Context, sessionID, staffID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.StaffID == staffID {
			out = append(out, a)
		}
	}
	return out, nil
}

type exportLedgerStub struct {
	entries []models.LedgerEntry
}

func (s *exportLedgerStub) ListBySession(ctx context.Context, sessionID string) ([]models.LedgerEntry, error) {
	return s.entries, nil
}

type exportStaffStub struct {
	staff []models.Staff
}

func (s *exportStaffStub) ListAll(ctx context.Context) ([]models.Staff, error) {
	return s.staff, nil
}

type exportSessionStub struct{}

func (exportSessionStub) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return &models.Session{ID: id, Name: "June 2026"}, nil
}

func newExportFixture(assignments []models.Assignment, entries []models.LedgerEntry) *ExportService {
	staff := []models.Staff{
		{ID: "m1", FullName: "Amina Bazi", Grade: "MA"},
		{ID: "p1", FullName: "Lina Saad", Grade: "PR"},
	}
	return NewExportService(
		&exportAssignmentsStub{assignments: assignments},
		&exportLedgerStub{entries: entries},
		&exportStaffStub{staff: staff},
		exportSessionStub{},
		nil,
	)
}

func sampleAssignments() []models.Assignment {
	examDate := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	return []models.Assignment{
		{StaffID: "m1", SlotKey: "2026-06-10_08:30", RoomName: "A", Role: models.RolePrimary, DayIndex: 1, Period: "S1", ExamDate: examDate},
		{StaffID: "p1", SlotKey: "2026-06-10_08:30", RoomName: "A", Role: models.RolePrimary, DayIndex: 1, Period: "S1", ExamDate: examDate},
		{StaffID: "m1", SlotKey: "2026-06-11_10:30", RoomName: "B", Role: models.RoleReserve, DayIndex: 2, Period: "S2", ExamDate: examDate.AddDate(0, 0, 1)},
	}
}

func TestExportServiceAssignmentsCSV(t *testing.T) {
	svc := newExportFixture(sampleAssignments(), nil)

	payload, err := svc.AssignmentsCSV(context.Background(), "session-1", 0)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus three assignments")
	assert.Equal(t, assignmentHeaders, rows[0])
	assert.Contains(t, rows[1], "Amina Bazi")
}

func TestExportServiceAssignmentsCSVFiltersByDay(t *testing.T) {
	svc := newExportFixture(sampleAssignments(), nil)

	payload, err := svc.AssignmentsCSV(context.Background(), "session-1", 2)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus the single day-2 assignment")
	assert.Contains(t, rows[1], "2026-06-11")
}

func TestExportServiceAssignmentsCSVEmptyIsNotFound(t *testing.T) {
	svc := newExportFixture(nil, nil)

	_, err := svc.AssignmentsCSV(context.Background(), "session-1", 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceLedgerCSV(t *testing.T) {
	svc := newExportFixture(nil, []models.LedgerEntry{
		{StaffID: "m1", Grade: "MA", Realized: 3, GradeQuota: 3, MajorityRealized: 3, AdjustedQuota: 3},
	})

	payload, err := svc.LedgerCSV(context.Background(), "session-1")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "Amina Bazi")
	assert.Contains(t, rows[1], "3")
}

func TestExportServiceConvocationsPDF(t *testing.T) {
	svc := newExportFixture(sampleAssignments(), nil)

	payload, err := svc.ConvocationsPDF(context.Background(), "session-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")), "renders a PDF document")
}

func TestExportServiceConvocationPDFForStaff(t *testing.T) {
	svc := newExportFixture(sampleAssignments(), nil)

	payload, err := svc.ConvocationPDF(context.Background(), "session-1", "m1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestExportServiceConvocationPDFUnknownStaff(t *testing.T) {
	svc := newExportFixture(sampleAssignments(), nil)

	_, err := svc.ConvocationPDF(context.Background(), "session-1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceAssignmentsPDF(t *testing.T) {
	svc := newExportFixture(sampleAssignments(), nil)

	payload, err := svc.AssignmentsPDF(context.Background(), "session-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
