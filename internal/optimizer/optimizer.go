package optimizer

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Input bundles everything one session solve needs. The optimizer owns no
// long-lived state: it is a pure function of these records.
type Input struct {
	Staff    []StaffMember
	Grades   []GradeRef
	Records  []RoomTimeRecord
	Calendar []CalendarDay // generated from Records when empty
	Wishes   []Wish

	// PriorAdjusted maps staff id to the adjusted quota carried from the
	// previous session's ledger.
	PriorAdjusted map[string]int

	Slots SlotOptions
	Solve SolveOptions
}

// Result is the full outcome of one session solve.
type Result struct {
	Status    string
	Objective int64
	WallTime  time.Duration

	QuotaPlan   QuotaPlan
	Slots       []Slot
	Assignments []Assignment
	Ledger      []LedgerEntry

	RowErrors      []RowError
	ExcludedSlots  []ExcludedSlot
	StaffRejected  []RowError
	LedgerWarnings []LedgerWarning
	Exclusions     int
	CountsByGrade  map[string]int

	Diagnosis *Diagnosis
}

// Optimizer runs the assignment pipeline for one session.
type Optimizer struct {
	logger *zap.Logger
}

// New builds an Optimizer. A nil logger defaults to a nop.
func New(logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{logger: logger}
}

// Run executes the full pipeline: build slots, plan quotas, solve,
// distribute rooms and compute the ledger, or diagnose when infeasible.
// Recoverable issues (bad rows, unmapped slots, unknown grades) are
// collected into the result; only an empty roster or empty slot set
// aborts before model construction.
func (o *Optimizer) Run(ctx context.Context, in Input) (*Result, error) {
	res := &Result{}

	calendar := in.Calendar
	if len(calendar) == 0 {
		calendar = GenerateCalendar(in.Records)
		o.logger.Info("calendar generated from slot records",
			zap.Int("entries", len(calendar)))
	}

	slots, rowErrs, excluded := BuildSlots(in.Records, calendar, in.Slots)
	res.Slots = slots
	res.RowErrors = rowErrs
	res.ExcludedSlots = excluded

	ceilings := make(map[string]int, len(in.Grades))
	for _, grade := range in.Grades {
		ceilings[grade.Code] = grade.Ceiling
	}

	roster, rejected := filterRoster(in.Staff, ceilings, in.PriorAdjusted)
	res.StaffRejected = rejected
	res.LedgerWarnings = priorLedgerWarnings(in.PriorAdjusted, roster)

	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	demand := 0
	for _, slot := range slots {
		demand += slot.Required
	}

	headcounts := make(map[string]int)
	for _, member := range roster {
		if member.OptsIn {
			headcounts[member.Grade]++
		}
	}

	plan := PlanQuotas(headcounts, ceilings, demand)
	res.QuotaPlan = plan
	for _, grade := range plan.Corrections {
		o.logger.Warn("quota ceiling correction applied", zap.String("grade", grade))
	}

	model, err := BuildModel(roster, slots, plan, in.Wishes, in.PriorAdjusted)
	if err != nil {
		return nil, err
	}
	res.Exclusions = model.OwnerExclusions

	solved := Solve(ctx, model, in.Solve)
	res.Status = solved.Status
	res.Objective = solved.Objective
	res.WallTime = solved.WallTime
	res.CountsByGrade = solved.Counts

	if solved.Status == StatusInfeasible {
		diag := Diagnose(DiagnosisInput{
			Headcounts: headcounts,
			Quotas:     plan.Quotas,
			OptedOut:   optedOutByGrade(roster),
			Slots:      slots,
			WishCount:  len(in.Wishes),
		})
		res.Diagnosis = &diag
		o.logger.Warn("solve infeasible",
			zap.Int("deficit", diag.Deficit),
			zap.Int("causes", len(diag.Causes)))
		return res, nil
	}

	slotStaff := make(map[string][]string, len(model.Slots))
	for j, slot := range model.Slots {
		for i := range model.Staff {
			if solved.Assigned[i][j] {
				slotStaff[slot.ID] = append(slotStaff[slot.ID], model.Staff[i].ID)
			}
		}
	}
	res.Assignments = DistributeRooms(model.Slots, slotStaff)

	entries, warnings := ComputeLedger(roster, plan.Quotas, res.Assignments)
	res.Ledger = entries
	res.LedgerWarnings = append(res.LedgerWarnings, warnings...)

	o.logger.Info("solve complete",
		zap.String("status", solved.Status),
		zap.Int64("objective", solved.Objective),
		zap.Duration("wall_time", solved.WallTime),
		zap.Int("assignments", len(res.Assignments)))

	return res, nil
}

// filterRoster drops staff with unknown grade codes, reporting each
// rejection, and attaches carried-over adjusted quotas.
func filterRoster(staff []StaffMember, ceilings map[string]int, prior map[string]int) ([]StaffMember, []RowError) {
	roster := make([]StaffMember, 0, len(staff))
	var rejected []RowError

	for i, member := range staff {
		if _, ok := ceilings[member.Grade]; !ok {
			rejected = append(rejected, RowError{
				Index:  i,
				Reason: "unknown grade code " + member.Grade,
			})
			continue
		}
		if adjusted, ok := prior[member.ID]; ok {
			v := adjusted
			member.AdjustedQuota = &v
		}
		roster = append(roster, member)
	}

	sort.Slice(roster, func(a, b int) bool { return roster[a].ID < roster[b].ID })
	return roster, rejected
}

// priorLedgerWarnings flags carried-over ledger entries whose staff no
// longer appear on the roster. Those entries are skipped, never fatal.
func priorLedgerWarnings(prior map[string]int, roster []StaffMember) []LedgerWarning {
	if len(prior) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(roster))
	for _, member := range roster {
		ids[member.ID] = struct{}{}
	}
	var missing []string
	for id := range prior {
		if _, ok := ids[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)

	warnings := make([]LedgerWarning, 0, len(missing))
	for _, id := range missing {
		warnings = append(warnings, LedgerWarning{
			StaffID: id,
			Reason:  "prior ledger entry for staff absent from roster",
		})
	}
	return warnings
}

func optedOutByGrade(roster []StaffMember) map[string]int {
	out := make(map[string]int)
	for _, member := range roster {
		if !member.OptsIn {
			out[member.Grade]++
		}
	}
	return out
}
