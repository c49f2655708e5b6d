package models

import "time"

// Session groups the exam slots of one examination period.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Solve run statuses. Terminal solver statuses (optimal, feasible,
// infeasible) come from the optimizer.
const (
	RunStatusRunning = "running"
	RunStatusFailed  = "failed"
)

// SolveRun records one optimization attempt for a session.
type SolveRun struct {
	ID          string     `db:"id" json:"id"`
	SessionID   string     `db:"session_id" json:"session_id"`
	Status      string     `db:"status" json:"status"`
	Objective   *int64     `db:"objective" json:"objective,omitempty"`
	WallMillis  int64      `db:"wall_millis" json:"wall_millis"`
	Saved       bool       `db:"saved" json:"saved"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
