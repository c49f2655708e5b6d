package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionInput() Input {
	zero := 0
	return Input{
		Staff: []StaffMember{
			{ID: "m1", Grade: "MA", OptsIn: true},
			{ID: "m2", Grade: "MA", OptsIn: true},
			{ID: "p1", Grade: "PR", OptsIn: true},
			{ID: "p2", Grade: "PR", OptsIn: true},
		},
		Grades: []GradeRef{{Code: "MA", Ceiling: 5}, {Code: "PR", Ceiling: 5}},
		Records: []RoomTimeRecord{
			{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A", OwnerID: "m1"},
			{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "B"},
		},
		Slots: SlotOptions{FixedReserves: &zero},
		Solve: SolveOptions{TimeBudget: 5 * time.Second, Workers: 2},
	}
}

func TestRunFullPipelineSingleSlot(t *testing.T) {
	res, err := New(nil).Run(context.Background(), sessionInput())
	require.NoError(t, err)
	require.NotEqual(t, StatusInfeasible, res.Status)
	require.Nil(t, res.Diagnosis)
	require.Len(t, res.Assignments, 4, "one slot, two rooms, no reserves")

	perGrade := map[string]int{"m1": 0, "m2": 0, "p1": 0, "p2": 0}
	perRoom := map[string]int{}
	for _, a := range res.Assignments {
		perGrade[a.StaffID]++
		perRoom[a.Room]++
		assert.Equal(t, RolePrimary, a.Role)
		assert.Equal(t, 1, a.DayIndex, "calendar generated from records")
		assert.Equal(t, "S1", a.Period)

		if a.StaffID == "m1" {
			assert.NotEqual(t, "A", a.Room, "m1 owns room A")
		}
	}
	assert.Equal(t, 2, perRoom["A"])
	assert.Equal(t, 2, perRoom["B"])
	for id, n := range perGrade {
		assert.Equal(t, 1, n, "staff %s supervises exactly once", id)
	}

	assert.Equal(t, 1, res.CountsByGrade["MA"], "two per grade across the slot")
	assert.Equal(t, 1, res.CountsByGrade["PR"])

	require.Len(t, res.Ledger, 4)
	for _, entry := range res.Ledger {
		assert.Equal(t, 1, entry.Realized)
		assert.Equal(t, 1, entry.Majority)
		assert.Zero(t, entry.DeltaMajority)
	}
}

func TestRunEmptyRosterIsHardError(t *testing.T) {
	in := sessionInput()
	in.Staff = nil

	_, err := New(nil).Run(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestRunNoUsableSlotsIsHardError(t *testing.T) {
	in := sessionInput()
	in.Records = nil

	_, err := New(nil).Run(context.Background(), in)
	assert.ErrorIs(t, err, ErrNoSlots)
}

func TestRunRejectsUnknownGradeCodes(t *testing.T) {
	in := sessionInput()
	in.Staff = append(in.Staff, StaffMember{ID: "x1", Grade: "ZZ", OptsIn: true})

	res, err := New(nil).Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.StaffRejected, 1)
	assert.Equal(t, 4, res.StaffRejected[0].Index)
	assert.Contains(t, res.StaffRejected[0].Reason, "ZZ")
}

func TestRunInfeasibleSessionGetsDiagnosis(t *testing.T) {
	in := sessionInput()
	// Demand 5 cannot split evenly across two 2-head grades at any quota.
	one := 1
	in.Slots.FixedReserves = &one

	res, err := New(nil).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Empty(t, res.Assignments)
	require.NotNil(t, res.Diagnosis)
	assert.False(t, res.Diagnosis.Feasible)
}

func TestRunCarriesAdjustedQuotasIntoPriority(t *testing.T) {
	in := sessionInput()
	in.PriorAdjusted = map[string]int{"m2": 1}

	res, err := New(nil).Run(context.Background(), in)
	require.NoError(t, err)
	require.NotEqual(t, StatusInfeasible, res.Status)
	assert.Len(t, res.Assignments, 4)
	assert.Empty(t, res.LedgerWarnings)
}

func TestRunWarnsOnPriorLedgerForDepartedStaff(t *testing.T) {
	in := sessionInput()
	in.PriorAdjusted = map[string]int{"ghost": 3, "m2": 1}

	res, err := New(nil).Run(context.Background(), in)
	require.NoError(t, err)
	require.NotEqual(t, StatusInfeasible, res.Status)
	assert.Len(t, res.Assignments, 4, "a stale carry-over entry never aborts the solve")

	require.Len(t, res.LedgerWarnings, 1)
	assert.Equal(t, "ghost", res.LedgerWarnings[0].StaffID)
	assert.Contains(t, res.LedgerWarnings[0].Reason, "absent from roster")
}
