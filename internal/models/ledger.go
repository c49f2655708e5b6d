package models

import "time"

// LedgerEntry is one staff member's workload accounting row for a session.
type LedgerEntry struct {
	ID               string    `db:"id" json:"id"`
	SessionID        string    `db:"session_id" json:"session_id"`
	StaffID          string    `db:"staff_id" json:"staff_id"`
	Grade            string    `db:"grade" json:"grade"`
	Realized         int       `db:"realized" json:"realized"`
	GradeQuota       int       `db:"grade_quota" json:"grade_quota"`
	MajorityRealized int       `db:"majority_realized" json:"majority_realized"`
	DeltaGrade       int       `db:"delta_grade" json:"delta_grade"`
	DeltaMajority    int       `db:"delta_majority" json:"delta_majority"`
	AdjustedQuota    int       `db:"adjusted_quota" json:"adjusted_quota"`
	AdjustedMajority int       `db:"adjusted_majority" json:"adjusted_majority"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
