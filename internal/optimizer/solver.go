package optimizer

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// SolveOptions bounds the search.
type SolveOptions struct {
	// TimeBudget caps wall clock for the whole solve. Zero means
	// DefaultTimeBudget.
	TimeBudget time.Duration
	// Workers is the number of parallel search workers. Zero means
	// DefaultWorkers.
	Workers int
	// MaxVectors caps count-vector enumeration. Zero means
	// DefaultMaxVectors.
	MaxVectors int
}

const (
	DefaultTimeBudget = 10 * time.Minute
	DefaultWorkers    = 8
	DefaultMaxVectors = 256
)

// SolveResult carries the best incumbent found. Assigned is indexed
// [staff][slot] in model order and is nil when Status is infeasible.
type SolveResult struct {
	Status    string
	Objective int64
	WallTime  time.Duration
	Counts    map[string]int
	Assigned  [][]bool
}

type searchOutcome struct {
	assigned  [][]bool
	objective int64
}

// Solve finds an assignment honoring all hard constraints and minimizing
// the weighted soft objective. Grade equity collapses the count space to
// per-grade vectors; each candidate vector is checked for exact-degree
// feasibility by max-flow, then parallel local-search workers improve the
// soft objective under the wall-clock budget. The incumbent is optimal
// when its objective meets the fixed-cost lower bound of a complete
// vector enumeration, feasible otherwise; only the absence of any
// feasible vector is infeasible.
func Solve(ctx context.Context, m *Model, opts SolveOptions) SolveResult {
	start := time.Now()

	budget := opts.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	maxVectors := opts.MaxVectors
	if maxVectors <= 0 {
		maxVectors = DefaultMaxVectors
	}

	ctx, cancel := context.WithDeadline(ctx, start.Add(budget))
	defer cancel()

	vectors := m.CountVectors(maxVectors)
	if len(vectors) == 0 {
		return SolveResult{Status: StatusInfeasible, WallTime: time.Since(start)}
	}

	// Cheapest fixed cost first: the count-dependent objective terms are
	// decided here, the search only improves the rest.
	sort.SliceStable(vectors, func(a, b int) bool {
		return m.fixedCost(vectors[a]) < m.fixedCost(vectors[b])
	})

	// Every plan costs its vector's fixed cost plus a nonnegative variable
	// cost, so the cheapest vector bounds the optimum from below. The
	// bound only holds when enumeration was not cut off at maxVectors.
	enumerated := len(vectors) < maxVectors
	lowerBound := m.fixedCost(vectors[0])

	type base struct {
		counts   CountVector
		assigned [][]bool
		fixed    int64
	}
	var bases []base
	for _, vec := range vectors {
		if ctx.Err() != nil && len(bases) > 0 {
			break
		}
		assigned := m.feasibleAssignment(vec)
		if assigned == nil {
			continue
		}
		bases = append(bases, base{counts: vec, assigned: assigned, fixed: m.fixedCost(vec)})
		if len(bases) >= workers {
			break
		}
	}
	if len(bases) == 0 {
		return SolveResult{Status: StatusInfeasible, WallTime: time.Since(start)}
	}

	outcomes := make([]searchOutcome, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			b := bases[w%len(bases)]
			seed := int64(1000003*w + 17)
			varCost, assigned := m.localSearch(ctx, copyAssigned(b.assigned), seed)
			outcomes[w] = searchOutcome{
				assigned:  assigned,
				objective: b.fixed + varCost,
			}
		}(w)
	}
	wg.Wait()

	best := outcomes[0]
	for _, out := range outcomes {
		if out.objective < best.objective {
			best = out
		}
	}

	status := StatusFeasible
	if enumerated && best.objective == lowerBound {
		status = StatusOptimal
	}

	// Recover the winning base's counts from the assignment itself.
	counts := make(map[string]int, len(m.Grades))
	for _, grade := range m.Grades {
		i := m.GradeMembers[grade][0]
		n := 0
		for j := range m.Slots {
			if best.assigned[i][j] {
				n++
			}
		}
		counts[grade] = n
	}

	return SolveResult{
		Status:    status,
		Objective: best.objective,
		WallTime:  time.Since(start),
		Counts:    counts,
		Assigned:  best.assigned,
	}
}

// localSearch improves the variable objective by exchanging slot
// memberships between staff pairs. An exchange moves a from slot j1 to j2
// and b from j2 to j1, which preserves per-staff totals and slot coverage,
// so every hard constraint survives by construction. The search stops when
// the stale window elapses without improvement or the deadline hits.
func (m *Model) localSearch(ctx context.Context, assigned [][]bool, seed int64) (int64, [][]bool) {
	rng := rand.New(rand.NewSource(seed))

	nStaff := len(m.Staff)
	nSlots := len(m.Slots)
	cost := m.variableCost(assigned)

	bestCost := cost
	bestAssigned := copyAssigned(assigned)

	staleLimit := 2000 + 20*m.Demand
	stale := 0

	for stale < staleLimit {
		if stale%64 == 0 && ctx.Err() != nil {
			return bestCost, bestAssigned
		}

		a := rng.Intn(nStaff)
		b := rng.Intn(nStaff)
		if a == b {
			stale++
			continue
		}
		j1 := rng.Intn(nSlots)
		j2 := rng.Intn(nSlots)
		if j1 == j2 {
			stale++
			continue
		}
		if !assigned[a][j1] || assigned[a][j2] || !assigned[b][j2] || assigned[b][j1] {
			stale++
			continue
		}
		if !m.Allowed[a][j2] || !m.Allowed[b][j1] {
			stale++
			continue
		}

		delta := m.exchangeDelta(assigned, a, b, j1, j2)
		if delta > 0 || (delta == 0 && rng.Intn(10) != 0) {
			stale++
			continue
		}

		assigned[a][j1], assigned[a][j2] = false, true
		assigned[b][j2], assigned[b][j1] = false, true
		cost += delta

		if cost < bestCost {
			bestCost = cost
			bestAssigned = copyAssigned(assigned)
			stale = 0
		} else {
			stale++
		}
	}

	return bestCost, bestAssigned
}

// exchangeDelta computes the variable-cost change of swapping a:j1->j2
// with b:j2->j1 without applying it. Only wish, day-concentration and
// owner-presence terms can move.
func (m *Model) exchangeDelta(assigned [][]bool, a, b, j1, j2 int) int64 {
	var delta int64

	if m.Wished[a][j1] {
		delta -= penaltyWish * weightWish
	}
	if m.Wished[a][j2] {
		delta += penaltyWish * weightWish
	}
	if m.Wished[b][j2] {
		delta -= penaltyWish * weightWish
	}
	if m.Wished[b][j1] {
		delta += penaltyWish * weightWish
	}

	before := m.dayCost(a, assigned) + m.dayCost(b, assigned) +
		m.slotOwnerCost(j1, assigned) + m.slotOwnerCost(j2, assigned)

	assigned[a][j1], assigned[a][j2] = false, true
	assigned[b][j2], assigned[b][j1] = false, true

	after := m.dayCost(a, assigned) + m.dayCost(b, assigned) +
		m.slotOwnerCost(j1, assigned) + m.slotOwnerCost(j2, assigned)

	assigned[a][j1], assigned[a][j2] = true, false
	assigned[b][j2], assigned[b][j1] = true, false

	return delta + after - before
}

func copyAssigned(assigned [][]bool) [][]bool {
	out := make([][]bool, len(assigned))
	for i := range assigned {
		out[i] = append([]bool(nil), assigned[i]...)
	}
	return out
}
