package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-proctor-api/internal/models"
)

// SlotRepository persists the exam room schedule and the session calendar.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListRecords returns the room/time records of a session ordered by date,
// start time and room name.
func (r *SlotRepository) ListRecords(ctx context.Context, sessionID string) ([]models.RoomRecord, error) {
	const query = `SELECT id, session_id, room_name, exam_date, start_time, end_time, owner_id
		FROM room_records WHERE session_id = $1
		ORDER BY exam_date ASC, start_time ASC, room_name ASC`
	records := []models.RoomRecord{}
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list room records for session %s: %w", sessionID, err)
	}
	return records, nil
}

// ReplaceRecords swaps the full room schedule of a session inside one
// transaction.
func (r *SlotRepository) ReplaceRecords(ctx context.Context, sessionID string, records []models.RoomRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace room records: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM room_records WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear room records for session %s: %w", sessionID, err)
	}

	const insert = `INSERT INTO room_records (id, session_id, room_name, exam_date, start_time, end_time, owner_id)
		VALUES (:id, :session_id, :room_name, :exam_date, :start_time, :end_time, :owner_id)`
	for i := range records {
		records[i].SessionID = sessionID
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insert, records[i]); err != nil {
			return fmt.Errorf("insert room record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace room records: %w", err)
	}
	return nil
}

// ListCalendar returns the session calendar ordered by day index and period.
func (r *SlotRepository) ListCalendar(ctx context.Context, sessionID string) ([]models.CalendarEntry, error) {
	const query = `SELECT id, session_id, date, start_time, day_index, period
		FROM calendar_entries WHERE session_id = $1
		ORDER BY day_index ASC, start_time ASC`
	entries := []models.CalendarEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, sessionID); err != nil {
		return nil, fmt.Errorf("list calendar for session %s: %w", sessionID, err)
	}
	return entries, nil
}

// ReplaceCalendar swaps the full session calendar inside one transaction.
func (r *SlotRepository) ReplaceCalendar(ctx context.Context, sessionID string, entries []models.CalendarEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace calendar: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_entries WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear calendar for session %s: %w", sessionID, err)
	}

	const insert = `INSERT INTO calendar_entries (id, session_id, date, start_time, day_index, period)
		VALUES (:id, :session_id, :date, :start_time, :day_index, :period)`
	for i := range entries {
		entries[i].SessionID = sessionID
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insert, entries[i]); err != nil {
			return fmt.Errorf("insert calendar entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace calendar: %w", err)
	}
	return nil
}
