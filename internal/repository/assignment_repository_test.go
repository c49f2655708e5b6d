package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-proctor-api/internal/models"
)

func TestAssignmentRepositoryReplaceForSession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	examDate := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM assignments").
		WithArgs("session-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(sqlmock.AnyArg(), "session-1", "run-1", "staff-1", "2026-06-10_08:30", "A101",
			models.RolePrimary, 1, "S1", examDate, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignments := []models.Assignment{{
		RunID:    "run-1",
		StaffID:  "staff-1",
		SlotKey:  "2026-06-10_08:30",
		RoomName: "A101",
		Role:     models.RolePrimary,
		DayIndex: 1,
		Period:   "S1",
		ExamDate: examDate,
	}}
	require.NoError(t, repo.ReplaceForSession(context.Background(), "session-1", assignments))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "run_id", "staff_id", "slot_key", "room_name", "role", "day_index", "period", "exam_date", "created_at"}).
		AddRow("a-1", "session-1", "run-1", "staff-1", "2026-06-10_08:30", "A101", models.RolePrimary, 1, "S1", now, now).
		AddRow("a-2", "session-1", "run-1", "staff-2", "2026-06-10_08:30", "A101", models.RoleReserve, 1, "S1", now, now)
	mock.ExpectQuery("SELECT id, session_id, run_id, staff_id").
		WithArgs("session-1").
		WillReturnRows(rows)

	assignments, err := repo.ListBySession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, models.RoleReserve, assignments[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("DELETE FROM assignments").
		WithArgs("session-1").
		WillReturnResult(sqlmock.NewResult(0, 6))

	require.NoError(t, repo.DeleteBySession(context.Background(), "session-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
