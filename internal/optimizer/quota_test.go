package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanQuotasTrimsOvercapacityIntoBand(t *testing.T) {
	plan := PlanQuotas(
		map[string]int{"MA": 2, "PR": 2},
		map[string]int{"MA": 5, "PR": 5},
		4,
	)

	// Initial 2/2 gives capacity 8, over the 1.5x trigger; decrements land
	// inside the 1.2x band at exact coverage.
	assert.Equal(t, 1, plan.Quotas["MA"])
	assert.Equal(t, 1, plan.Quotas["PR"])
	assert.Equal(t, 4, plan.Capacity)
	assert.True(t, plan.Feasible)
	assert.Zero(t, plan.Deficit)
}

func TestPlanQuotasKeepsModerateOvercapacity(t *testing.T) {
	plan := PlanQuotas(
		map[string]int{"MA": 4},
		map[string]int{"MA": 10},
		8,
	)

	// Capacity 12 does not exceed 1.5x demand, so no trimming happens.
	assert.Equal(t, 3, plan.Quotas["MA"])
	assert.Equal(t, 12, plan.Capacity)
	assert.True(t, plan.Feasible)
}

func TestPlanQuotasReportsDeficitWhenCeilingsBlock(t *testing.T) {
	plan := PlanQuotas(
		map[string]int{"AC": 3},
		map[string]int{"AC": 2},
		12,
	)

	assert.Equal(t, 2, plan.Quotas["AC"], "quota never exceeds the ceiling")
	assert.Equal(t, 6, plan.Capacity)
	assert.False(t, plan.Feasible)
	assert.Equal(t, 6, plan.Deficit)
}

func TestPlanQuotasRaisesSmallestGradeFirst(t *testing.T) {
	plan := PlanQuotas(
		map[string]int{"MA": 10, "PR": 2},
		map[string]int{"MA": 5, "PR": 5},
		30,
	)

	// avg 2.5 starts both at 3 (capacity 36 >= demand, inside the band).
	require.True(t, plan.Feasible)
	assert.GreaterOrEqual(t, plan.Capacity, 30)

	short := PlanQuotas(
		map[string]int{"MA": 10, "PR": 2},
		map[string]int{"MA": 4, "PR": 8},
		50,
	)
	// avg ~4.17 starts MA at ceiling 4, PR at 5; capacity 50 covers demand.
	require.True(t, short.Feasible)
	assert.LessOrEqual(t, short.Quotas["MA"], 4)
	assert.LessOrEqual(t, short.Quotas["PR"], 8)
}

func TestPlanQuotasMonotoneInDemand(t *testing.T) {
	heads := map[string]int{"MA": 2}
	ceilings := map[string]int{"MA": 10}

	prev := 0
	for _, demand := range []int{2, 4, 6, 8, 10} {
		plan := PlanQuotas(heads, ceilings, demand)
		assert.GreaterOrEqual(t, plan.Quotas["MA"], prev,
			"raising demand must never lower a quota")
		prev = plan.Quotas["MA"]
	}
}

func TestPlanQuotasEmptyRoster(t *testing.T) {
	plan := PlanQuotas(map[string]int{}, map[string]int{}, 10)
	assert.False(t, plan.Feasible)
	assert.Equal(t, 10, plan.Deficit)
}
