package models

// Wish is a staff member's request to avoid a given day and period.
type Wish struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"session_id"`
	StaffID   string `db:"staff_id" json:"staff_id"`
	DayIndex  int    `db:"day_index" json:"day_index"`
	Period    string `db:"period" json:"period"`
}
