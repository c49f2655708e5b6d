package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveFixture(t *testing.T, m *Model) SolveResult {
	t.Helper()
	return Solve(context.Background(), m, SolveOptions{
		TimeBudget: 5 * time.Second,
		Workers:    2,
	})
}

func TestSolveSatisfiesHardConstraints(t *testing.T) {
	staff := append(staffOf("MA", "m1", "m2"), staffOf("PR", "p1", "p2")...)
	slots := []Slot{simpleSlot("s1", 2, 0), simpleSlot("s2", 2, 0)}
	plan := QuotaPlan{Quotas: map[string]int{"MA": 3, "PR": 3}}
	m := testModel(t, staff, slots, plan)

	res := solveFixture(t, m)
	require.NotEqual(t, StatusInfeasible, res.Status)
	require.NotNil(t, res.Assigned)

	for j := range m.Slots {
		covered := 0
		for i := range m.Staff {
			if res.Assigned[i][j] {
				covered++
			}
		}
		assert.Equal(t, m.Slots[j].Required, covered)
	}

	counts := make([]int, len(m.Staff))
	for i := range m.Staff {
		for j := range m.Slots {
			if res.Assigned[i][j] {
				counts[i]++
			}
		}
		assert.GreaterOrEqual(t, counts[i], 1, "opted-in staff get at least one duty")
		assert.LessOrEqual(t, counts[i], m.Quota[i])
	}

	for _, grade := range m.Grades {
		members := m.GradeMembers[grade]
		for _, i := range members[1:] {
			assert.Equal(t, counts[members[0]], counts[i],
				"grade %s members must carry identical loads", grade)
		}
	}
}

func TestSolveAvoidsWishedSlotsWhenPossible(t *testing.T) {
	staff := append(staffOf("MA", "m1", "m2"), staffOf("PR", "p1", "p2")...)
	s1 := simpleSlot("s1", 1, 0)
	s2 := simpleSlot("s2", 1, 0)
	s2.DayIndex = 2
	plan := QuotaPlan{Quotas: map[string]int{"MA": 1, "PR": 1}}

	// demand 4 over 4 staff at quota 1: everyone serves exactly one slot.
	wishes := []Wish{{StaffID: "m1", DayIndex: 1, Period: "S1"}}
	m, err := BuildModel(staff, []Slot{s1, s2}, plan, wishes, nil)
	require.NoError(t, err)

	res := solveFixture(t, m)
	require.NotEqual(t, StatusInfeasible, res.Status)

	i := m.StaffIndex["m1"]
	assert.False(t, res.Assigned[i][0], "wish against day 1 should be honoured when a swap exists")
}

func TestSolveInfeasibleWhenNoCountVectorExists(t *testing.T) {
	staff := staffOf("MA", "m1", "m2")
	slots := []Slot{simpleSlot("s1", 2, 1)} // demand 5 cannot split evenly
	plan := QuotaPlan{Quotas: map[string]int{"MA": 5}}
	m := testModel(t, staff, slots, plan)

	res := solveFixture(t, m)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Nil(t, res.Assigned)
}

func TestSolveDeterministicSingleWorker(t *testing.T) {
	staff := append(staffOf("MA", "m1", "m2"), staffOf("PR", "p1", "p2")...)
	slots := []Slot{simpleSlot("s1", 2, 0), simpleSlot("s2", 2, 0)}
	plan := QuotaPlan{Quotas: map[string]int{"MA": 3, "PR": 3}}

	opts := SolveOptions{TimeBudget: 5 * time.Second, Workers: 1}

	first := Solve(context.Background(), testModel(t, staff, slots, plan), opts)
	second := Solve(context.Background(), testModel(t, staff, slots, plan), opts)

	require.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Objective, second.Objective)
	assert.Equal(t, first.Assigned, second.Assigned)
}

func TestSolveOptimalOnlyAtFixedCostLowerBound(t *testing.T) {
	staff := append(staffOf("MA", "m1", "m2"), staffOf("PR", "p1", "p2")...)
	slots := []Slot{simpleSlot("s1", 2, 0)}
	plan := QuotaPlan{Quotas: map[string]int{"MA": 2, "PR": 2}}

	// No wishes and no owners: the variable cost of any full cover is
	// zero, so the incumbent must reach the lower bound exactly.
	res := solveFixture(t, testModel(t, staff, slots, plan))
	require.Equal(t, StatusOptimal, res.Status)

	m := testModel(t, staff, slots, plan)
	vectors := m.CountVectors(0)
	require.Len(t, vectors, 1, "quota 2 over 2 heads per grade leaves one split")
	assert.Equal(t, m.fixedCost(vectors[0]), res.Objective)

	// A wish that cannot be dodged keeps the objective above the bound.
	wished, err := BuildModel(staff, []Slot{simpleSlot("s1", 2, 0)}, plan,
		[]Wish{{StaffID: "m1", DayIndex: 1, Period: "S1"}}, nil)
	require.NoError(t, err)
	res = solveFixture(t, wished)
	assert.Equal(t, StatusFeasible, res.Status)
}

func TestSolveReportsCountsByGrade(t *testing.T) {
	staff := append(staffOf("MA", "m1", "m2"), staffOf("PR", "p1", "p2")...)
	slots := []Slot{simpleSlot("s1", 2, 0)}
	plan := QuotaPlan{Quotas: map[string]int{"MA": 2, "PR": 2}}
	m := testModel(t, staff, slots, plan)

	res := solveFixture(t, m)
	require.NotEqual(t, StatusInfeasible, res.Status)
	assert.Equal(t, 1, res.Counts["MA"])
	assert.Equal(t, 1, res.Counts["PR"])
}
