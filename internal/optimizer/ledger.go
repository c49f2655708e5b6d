package optimizer

import "sort"

// ComputeLedger derives the workload accounting for a finished session:
// realized counts, the grade's majority (mode) load, deltas against both
// references and the adjusted quotas carried into the next session.
//
// Both adjusted fields derive from the majority delta; the reference
// behavior is preserved pending product-owner confirmation. Assignments
// for staff missing from the roster are skipped with a warning, never
// fatal. Mode ties resolve to the smallest value so results are stable.
func ComputeLedger(staff []StaffMember, gradeQuotas map[string]int, assignments []Assignment) ([]LedgerEntry, []LedgerWarning) {
	roster := make(map[string]StaffMember, len(staff))
	byGrade := make(map[string][]string)
	for _, member := range staff {
		if !member.OptsIn {
			continue
		}
		roster[member.ID] = member
		byGrade[member.Grade] = append(byGrade[member.Grade], member.ID)
	}

	var warnings []LedgerWarning

	realized := make(map[string]int)
	for _, a := range assignments {
		if _, ok := roster[a.StaffID]; !ok {
			warnings = append(warnings, LedgerWarning{
				StaffID: a.StaffID,
				Reason:  "assignment for staff absent from roster",
			})
			continue
		}
		realized[a.StaffID]++
	}

	majorities := make(map[string]int, len(byGrade))
	for grade, members := range byGrade {
		loads := make([]int, 0, len(members))
		for _, id := range members {
			loads = append(loads, realized[id])
		}
		majorities[grade] = mode(loads)
	}

	ids := make([]string, 0, len(roster))
	for id := range roster {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]LedgerEntry, 0, len(ids))
	for _, id := range ids {
		member := roster[id]
		quota := gradeQuotas[member.Grade]
		real := realized[id]
		majority := majorities[member.Grade]

		deltaMajority := real - majority
		adjusted := quota - deltaMajority

		entries = append(entries, LedgerEntry{
			StaffID:          id,
			Grade:            member.Grade,
			Realized:         real,
			GradeQuota:       quota,
			Majority:         majority,
			DeltaGrade:       real - quota,
			DeltaMajority:    deltaMajority,
			AdjustedQuota:    adjusted,
			AdjustedMajority: adjusted,
		})
	}

	return entries, warnings
}

// mode returns the most frequent value, smallest value winning ties.
func mode(values []int) int {
	if len(values) == 0 {
		return 0
	}
	freq := make(map[int]int)
	for _, v := range values {
		freq[v]++
	}
	best, bestCount := 0, -1
	for v, n := range freq {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}
