package models

import "time"

// Assignment roles.
const (
	RolePrimary = "primary"
	RoleReserve = "reserve"
)

// Assignment places a staff member in a room for one slot.
type Assignment struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	RunID     string    `db:"run_id" json:"run_id"`
	StaffID   string    `db:"staff_id" json:"staff_id"`
	SlotKey   string    `db:"slot_key" json:"slot_key"`
	RoomName  string    `db:"room_name" json:"room_name"`
	Role      string    `db:"role" json:"role"`
	DayIndex  int       `db:"day_index" json:"day_index"`
	Period    string    `db:"period" json:"period"`
	ExamDate  time.Time `db:"exam_date" json:"exam_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
