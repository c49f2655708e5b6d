package optimizer

import "sort"

// QuotaPlan is the per-grade workload target computed for one session.
type QuotaPlan struct {
	Quotas      map[string]int
	Capacity    int
	Demand      int
	Deficit     int
	Feasible    bool
	Corrections []string
}

// PlanQuotas computes the largest per-grade quota that never exceeds the
// statutory ceiling, is identical for every member of a grade, and meets or
// minimizes the shortfall against total demand.
//
// Each grade starts at min(ceiling, floor(avg demand per head)+1), floored
// at 1. When aggregate capacity overshoots demand by more than 50%, the
// currently-largest quota is decremented until capacity falls within the
// 20% band. When capacity is short, the grade with the fewest heads among
// those below ceiling is raised until capacity covers demand or every grade
// is at its ceiling; the residual deficit is reported.
func PlanQuotas(headcounts map[string]int, ceilings map[string]int, demand int) QuotaPlan {
	plan := QuotaPlan{Quotas: make(map[string]int, len(headcounts)), Demand: demand}

	grades := make([]string, 0, len(headcounts))
	totalHeads := 0
	for grade, heads := range headcounts {
		if heads <= 0 {
			continue
		}
		grades = append(grades, grade)
		totalHeads += heads
	}
	sort.Strings(grades)

	if totalHeads == 0 {
		plan.Deficit = demand
		return plan
	}

	avgPerHead := float64(demand) / float64(totalHeads)

	for _, grade := range grades {
		ceiling := ceilingFor(ceilings, grade)
		initial := int(avgPerHead) + 1
		if initial > ceiling {
			initial = ceiling
		}
		if initial < 1 {
			initial = 1
		}
		plan.Quotas[grade] = initial
	}

	capacity := func() int {
		total := 0
		for _, grade := range grades {
			total += plan.Quotas[grade] * headcounts[grade]
		}
		return total
	}

	if float64(capacity()) > float64(demand)*1.5 {
		for float64(capacity()) > float64(demand)*1.2 {
			largest := ""
			for _, grade := range grades {
				if largest == "" || plan.Quotas[grade] > plan.Quotas[largest] {
					largest = grade
				}
			}
			if plan.Quotas[largest] <= 1 {
				break
			}
			plan.Quotas[largest]--
		}
	} else if capacity() < demand {
		for iter := 0; capacity() < demand && iter < 1000; iter++ {
			raisable := ""
			for _, grade := range grades {
				if plan.Quotas[grade] >= ceilingFor(ceilings, grade) {
					continue
				}
				if raisable == "" || headcounts[grade] < headcounts[raisable] {
					raisable = grade
				}
			}
			if raisable == "" {
				break
			}
			plan.Quotas[raisable]++
		}
	}

	// Ceilings are the hard upper bound: a violation here is a planner bug,
	// corrected and reported rather than passed downstream.
	for _, grade := range grades {
		ceiling := ceilingFor(ceilings, grade)
		if plan.Quotas[grade] > ceiling {
			plan.Corrections = append(plan.Corrections, grade)
			plan.Quotas[grade] = ceiling
		}
	}

	plan.Capacity = capacity()
	if plan.Capacity < demand {
		plan.Deficit = demand - plan.Capacity
	}
	plan.Feasible = plan.Deficit == 0

	return plan
}

func ceilingFor(ceilings map[string]int, grade string) int {
	if ceiling, ok := ceilings[grade]; ok && ceiling > 0 {
		return ceiling
	}
	return 10
}
