package dto

import (
	"time"

	"github.com/noah-isme/exam-proctor-api/internal/optimizer"
)

// SolveRequest triggers a duty assignment run for a session.
type SolveRequest struct {
	// Save persists assignments and the workload ledger when the solve
	// lands on a feasible or optimal plan.
	Save bool `json:"save"`
	// Async queues the run and returns immediately; poll the status
	// endpoint for the outcome.
	Async             bool `json:"async"`
	TimeBudgetSeconds int  `json:"timeBudgetSeconds" validate:"omitempty,min=1,max=3600"`
	Workers           int  `json:"workers" validate:"omitempty,min=1,max=64"`
	// ReservesPerSlot overrides the dynamic reserve count for every slot.
	ReservesPerSlot *int `json:"reservesPerSlot" validate:"omitempty,min=0,max=10"`
}

// SolveStatusResponse reports the state of the latest run for a session.
type SolveStatusResponse struct {
	RunID       string     `json:"runId"`
	SessionID   string     `json:"sessionId"`
	Status      string     `json:"status"`
	Objective   *int64     `json:"objective,omitempty"`
	WallMillis  int64      `json:"wallMillis"`
	Saved       bool       `json:"saved"`
	Assignments int        `json:"assignments"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Diagnosis is present only for infeasible runs.
	Diagnosis *optimizer.Diagnosis `json:"diagnosis,omitempty"`
}

// SolveStatsResponse summarises the inputs and outcome of the latest run.
type SolveStatsResponse struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Objective int64  `json:"objective"`

	Demand        int            `json:"demand"`
	Capacity      int            `json:"capacity"`
	Quotas        map[string]int `json:"quotas"`
	CountsByGrade map[string]int `json:"countsByGrade"`
	OptedOut      map[string]int `json:"optedOutByGrade,omitempty"`

	SlotCount       int `json:"slotCount"`
	WishCount       int `json:"wishCount"`
	OwnerExclusions int `json:"ownerExclusions"`

	// Breakdowns of the solved plan. Empty for infeasible runs.
	AssignmentsByDay   map[int]int    `json:"assignmentsByDay,omitempty"`
	AssignmentsByRole  map[string]int `json:"assignmentsByRole,omitempty"`
	AssignmentsByGrade map[string]int `json:"assignmentsByGrade,omitempty"`
	AssignmentsByStaff map[string]int `json:"assignmentsByStaff,omitempty"`
	// WishViolations counts assignments landing on a day/period the staff
	// member asked to avoid.
	WishViolations int `json:"wishViolations"`

	RowErrors      []optimizer.RowError      `json:"rowErrors,omitempty"`
	ExcludedSlots  []optimizer.ExcludedSlot  `json:"excludedSlots,omitempty"`
	StaffRejected  []optimizer.RowError      `json:"staffRejected,omitempty"`
	LedgerWarnings []optimizer.LedgerWarning `json:"ledgerWarnings,omitempty"`
}

// WorkloadEntry is one staff member's ledger row enriched with their name.
type WorkloadEntry struct {
	StaffID          string `json:"staffId"`
	StaffName        string `json:"staffName"`
	Grade            string `json:"grade"`
	Realized         int    `json:"realized"`
	GradeQuota       int    `json:"gradeQuota"`
	MajorityRealized int    `json:"majorityRealized"`
	DeltaGrade       int    `json:"deltaGrade"`
	DeltaMajority    int    `json:"deltaMajority"`
	AdjustedQuota    int    `json:"adjustedQuota"`
	AdjustedMajority int    `json:"adjustedMajority"`
}

// WorkloadResponse is the session workload ledger.
type WorkloadResponse struct {
	SessionID     string          `json:"sessionId"`
	Entries       []WorkloadEntry `json:"entries"`
	TotalRealized int             `json:"totalRealized"`
}
