package optimizer

// CountVector holds one per-grade assignment count, aligned with
// Model.Grades. Absolute grade equity makes every member of grade g carry
// exactly vector[g] assignments, so the slot-level search space collapses
// to these vectors.
type CountVector []int

// CountVectors enumerates every per-grade count vector satisfying exact
// coverage, the quota ceilings and minimum participation:
//
//	sum over grades of count[g] * headcount[g] == total demand
//	1 <= count[g] <= quota[g]
//
// Enumeration is depth-first over grades in sorted order with capacity
// pruning, capped at limit vectors (0 means unbounded). An infeasible
// demand yields no vectors.
func (m *Model) CountVectors(limit int) []CountVector {
	nGrades := len(m.Grades)
	if nGrades == 0 {
		return nil
	}

	heads := make([]int, nGrades)
	quotas := make([]int, nGrades)
	for g, grade := range m.Grades {
		heads[g] = len(m.GradeMembers[grade])
		quotas[g] = m.Quota[m.GradeMembers[grade][0]]
		if quotas[g] < 1 {
			return nil
		}
	}

	// Suffix bounds for pruning: the least and most the remaining grades
	// can still contribute.
	minRest := make([]int, nGrades+1)
	maxRest := make([]int, nGrades+1)
	for g := nGrades - 1; g >= 0; g-- {
		minRest[g] = minRest[g+1] + heads[g]
		maxRest[g] = maxRest[g+1] + heads[g]*quotas[g]
	}

	var vectors []CountVector
	current := make(CountVector, nGrades)

	var walk func(g, remaining int)
	walk = func(g, remaining int) {
		if limit > 0 && len(vectors) >= limit {
			return
		}
		if g == nGrades {
			if remaining == 0 {
				vectors = append(vectors, append(CountVector(nil), current...))
			}
			return
		}
		if remaining < minRest[g] || remaining > maxRest[g] {
			return
		}
		for k := 1; k <= quotas[g]; k++ {
			used := k * heads[g]
			if used > remaining-minRest[g+1] {
				break
			}
			if remaining-used > maxRest[g+1] {
				continue
			}
			current[g] = k
			walk(g+1, remaining-used)
		}
	}

	walk(0, m.Demand)
	return vectors
}
