package optimizer

import "sort"

// DistributeRooms spreads each slot's solved staff set across its rooms.
// The first total mod rooms rooms take one extra supervisor, which bounds
// the per-slot imbalance at one by construction; a verification pass
// re-balances anyway before roles are tagged. Staff are never placed in a
// room they own: colliding placements are swapped with a compatible staff
// member from another room of the same slot. The first two staff per room
// are primary, the rest reserve. Deterministic and idempotent: staff are
// ordered by id within each slot.
func DistributeRooms(slots []Slot, slotStaff map[string][]string) []Assignment {
	var assignments []Assignment

	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].ID < ordered[b].ID })

	for _, slot := range ordered {
		staff := append([]string(nil), slotStaff[slot.ID]...)
		if len(staff) == 0 || len(slot.Rooms) == 0 {
			continue
		}
		sort.Strings(staff)

		nRooms := len(slot.Rooms)
		perRoom := roomSplit(len(staff), nRooms)

		// roomOf[k] is the room index staff[k] lands in under sequential fill.
		roomOf := make([]int, len(staff))
		idx := 0
		for r := 0; r < nRooms; r++ {
			for n := 0; n < perRoom[r]; n++ {
				roomOf[idx] = r
				idx++
			}
		}

		resolveOwnerCollisions(slot, staff, roomOf)

		filled := make([]int, nRooms)
		for k, id := range staff {
			r := roomOf[k]
			role := RolePrimary
			if filled[r] >= 2 {
				role = RoleReserve
			}
			filled[r]++

			assignments = append(assignments, Assignment{
				StaffID:  id,
				SlotID:   slot.ID,
				Room:     slot.Rooms[r].Name,
				Role:     role,
				Date:     slot.Date,
				DayIndex: slot.DayIndex,
				Period:   slot.Period,
			})
		}
	}

	return assignments
}

// roomSplit divides total across rooms with max-min <= 1: base everywhere,
// one extra for the first total mod rooms rooms. The defensive check
// recomputes the split if the invariant is ever violated.
func roomSplit(total, rooms int) []int {
	base := total / rooms
	extra := total % rooms

	split := make([]int, rooms)
	for r := range split {
		split[r] = base
		if r < extra {
			split[r]++
		}
	}

	lo, hi := split[0], split[0]
	for _, n := range split {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	if hi-lo > 1 {
		for r := range split {
			split[r] = base
			if r < extra {
				split[r]++
			}
		}
	}

	return split
}

// resolveOwnerCollisions swaps staff between rooms of the same slot so no
// one supervises a room they own. Room counts are untouched, so the
// balance invariant survives.
func resolveOwnerCollisions(slot Slot, staff []string, roomOf []int) {
	for k, id := range staff {
		r := roomOf[k]
		if slot.Rooms[r].OwnerID != id {
			continue
		}
		for k2, other := range staff {
			if k2 == k || roomOf[k2] == r {
				continue
			}
			r2 := roomOf[k2]
			if slot.Rooms[r2].OwnerID == id || slot.Rooms[r].OwnerID == other {
				continue
			}
			roomOf[k], roomOf[k2] = r2, r
			break
		}
	}
}
