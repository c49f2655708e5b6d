package optimizer

// Soft objective weights, highest enforced most strongly when trade-offs
// are required. Wish and owner terms carry indicator penalties of 100 and
// 50 respectively before weighting.
const (
	weightWish          = 100
	penaltyWish         = 100
	weightConcentration = 50
	weightDeviation     = 10
	weightCarryOver     = 8
	weightOwner         = 1
	penaltyOwnerAbsent  = 50
)

// fixedCost is the part of the objective determined entirely by the count
// vector: inter-grade balance, individual quota deviation and carried-over
// priority. It is invariant under slot-level search moves.
func (m *Model) fixedCost(counts CountVector) int64 {
	var cost int64

	// Inter-grade balance: penalize |total_g1*n_g2 - total_g2*n_g1| for
	// every grade pair, a ratio-equalization penalty avoiding division.
	for g1 := 0; g1 < len(m.Grades); g1++ {
		n1 := len(m.GradeMembers[m.Grades[g1]])
		t1 := counts[g1] * n1
		for g2 := g1 + 1; g2 < len(m.Grades); g2++ {
			n2 := len(m.GradeMembers[m.Grades[g2]])
			t2 := counts[g2] * n2
			diff := t1*n2 - t2*n1
			if diff < 0 {
				diff = -diff
			}
			cost += int64(diff)
		}
	}

	for g, grade := range m.Grades {
		for _, i := range m.GradeMembers[grade] {
			dev := counts[g] - m.Quota[i]
			if dev < 0 {
				dev = -dev
			}
			cost += int64(dev) * weightDeviation

			if m.HasAdjusted[i] {
				coef := 20 - m.Quota[i]
				if coef < 1 {
					coef = 1
				}
				cost += int64(counts[g]*coef) * weightCarryOver
			}
		}
	}

	return cost
}

// wishCost sums the wish-violation penalty over assigned pairs.
func (m *Model) wishCost(assigned [][]bool) int64 {
	var cost int64
	for i := range m.Staff {
		for j := range m.Slots {
			if assigned[i][j] && m.Wished[i][j] {
				cost += penaltyWish * weightWish
			}
		}
	}
	return cost
}

// dayCost penalizes the number of distinct days a staff member is spread
// across. Staff with quota 2 or less concentrate naturally and are skipped.
func (m *Model) dayCost(i int, assigned [][]bool) int64 {
	if m.Quota[i] <= 2 {
		return 0
	}
	seen := make(map[int]struct{})
	for j := range m.Slots {
		if assigned[i][j] {
			seen[m.Slots[j].DayIndex] = struct{}{}
		}
	}
	return int64(len(seen)) * weightConcentration
}

// slotOwnerCost charges the owner-absence penalty per room of slot j whose
// owner exists in the model and is not assigned to the slot.
func (m *Model) slotOwnerCost(j int, assigned [][]bool) int64 {
	var cost int64
	for _, room := range m.Slots[j].Rooms {
		if room.OwnerID == "" {
			continue
		}
		oi, ok := m.StaffIndex[room.OwnerID]
		if !ok || !m.Allowed[oi][j] {
			continue
		}
		if !assigned[oi][j] {
			cost += penaltyOwnerAbsent * weightOwner
		}
	}
	return cost
}

// variableCost is the search-sensitive part of the objective: wish
// violations, day concentration and owner presence.
func (m *Model) variableCost(assigned [][]bool) int64 {
	cost := m.wishCost(assigned)
	for i := range m.Staff {
		cost += m.dayCost(i, assigned)
	}
	for j := range m.Slots {
		cost += m.slotOwnerCost(j, assigned)
	}
	return cost
}
