// Package optimizer assigns exam-supervision duties to staff. It turns raw
// room/time records into slots, plans per-grade workload quotas, solves the
// resulting assignment problem under hard coverage and equity constraints,
// distributes the solution across rooms, maintains the cross-session workload
// ledger and diagnoses infeasible sessions.
package optimizer

import "errors"

// Hard failures raised before model construction. Everything else is
// collected per record and returned alongside results.
var (
	ErrEmptyRoster = errors.New("no participating staff in roster")
	ErrNoSlots     = errors.New("no usable exam slots")
)

// Solve statuses. Optimal means the incumbent's objective matches the
// fixed-cost lower bound of a complete count-vector enumeration; a
// timed-out search with a valid incumbent is feasible, not a failure.
const (
	StatusOptimal    = "optimal"
	StatusFeasible   = "feasible"
	StatusInfeasible = "infeasible"
)

// StaffMember is one supervision-eligible staff member. AdjustedQuota is the
// carried-over quota from the previous session's ledger, when present.
type StaffMember struct {
	ID            string
	Name          string
	Grade         string
	OptsIn        bool
	AdjustedQuota *int
}

// GradeRef carries a grade's statutory assignment ceiling.
type GradeRef struct {
	Code    string
	Ceiling int
}

// RoomTimeRecord is one raw room scheduled at a concrete time. Records
// sharing (date, start, end) form one slot.
type RoomTimeRecord struct {
	Date    string
	Start   string
	End     string
	Room    string
	OwnerID string
}

// CalendarDay maps a (date, start time) pair to a session day and period.
type CalendarDay struct {
	Date     string
	Start    string
	DayIndex int
	Period   string
}

// Wish is a staff member's request not to supervise on a day/period.
// Advisory only, violable under the soft objective.
type Wish struct {
	StaffID  string
	DayIndex int
	Period   string
}

// Room is one exam room within a slot with its pre-designated owner.
type Room struct {
	Name    string
	OwnerID string
}

// Slot is one (date, time window) unit requiring Required supervisors
// across its rooms. DayIndex is -1 until calendar mapping succeeds.
type Slot struct {
	ID       string
	Date     string
	Start    string
	End      string
	Rooms    []Room
	Reserves int
	Required int
	DayIndex int
	Period   string
}

// RowError identifies a rejected input record. The batch continues with
// the remaining valid records.
type RowError struct {
	Index  int
	Room   string
	Reason string
}

// ExcludedSlot is a slot dropped from optimization, reported not silently
// swallowed.
type ExcludedSlot struct {
	SlotID string
	Reason string
}

// Assignment places a staff member in a room for one slot.
type Assignment struct {
	StaffID  string
	SlotID   string
	Room     string
	Role     string
	Date     string
	DayIndex int
	Period   string
}

// Assignment roles. The first two staff per room are primary, the rest
// reserve.
const (
	RolePrimary = "primary"
	RoleReserve = "reserve"
)

// LedgerEntry is one staff member's workload accounting row.
type LedgerEntry struct {
	StaffID          string
	Grade            string
	Realized         int
	GradeQuota       int
	Majority         int
	DeltaGrade       int
	DeltaMajority    int
	AdjustedQuota    int
	AdjustedMajority int
}

// LedgerWarning reports a non-fatal inconsistency found while computing
// ledger entries.
type LedgerWarning struct {
	StaffID string
	Reason  string
}
