package models

import "time"

// RoomRecord is one exam room scheduled at a concrete time.
// Rooms sharing a date and start time belong to the same slot.
type RoomRecord struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	RoomName  string    `db:"room_name" json:"room_name"`
	ExamDate  time.Time `db:"exam_date" json:"exam_date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	OwnerID   *string   `db:"owner_id" json:"owner_id,omitempty"`
}

// CalendarEntry maps a concrete date and start time to a session day and
// period.
type CalendarEntry struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	DayIndex  int       `db:"day_index" json:"day_index"`
	Period    string    `db:"period" json:"period"`
}
