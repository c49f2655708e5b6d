package optimizer

import "sort"

// Model holds the decision space for one session's solve: opted-in staff
// and calendar-mapped slots in deterministic order, the allowed staff/slot
// edges, effective quotas and wish lookups.
type Model struct {
	Staff []StaffMember
	Slots []Slot

	// Allowed[i][j] is false when staff i owns every room of slot j;
	// no decision variable exists for such pairs.
	Allowed [][]bool
	// Wished[i][j] marks pairs that collide with a submitted wish.
	Wished [][]bool

	// Quota is the effective per-staff cap, identical within a grade.
	Quota []int
	// HasAdjusted marks staff carrying an adjusted quota from the prior
	// session, targeted by the carried-over priority term.
	HasAdjusted []bool

	// GradeOf maps staff index to grade code; Grades lists distinct grade
	// codes in sorted order with member indexes.
	GradeOf      []string
	Grades       []string
	GradeMembers map[string][]int
	StaffIndex   map[string]int

	// Demand is the total required supervisor count across slots.
	Demand int
	// OwnerExclusions counts fully excluded staff/slot pairs.
	OwnerExclusions int
}

// BuildModel assembles the decision space. Staff are sorted by id and slots
// by id so results never depend on input order. Returns ErrEmptyRoster or
// ErrNoSlots when the model cannot be constructed at all.
func BuildModel(staff []StaffMember, slots []Slot, plan QuotaPlan, wishes []Wish, prior map[string]int) (*Model, error) {
	roster := make([]StaffMember, 0, len(staff))
	for _, member := range staff {
		if member.OptsIn {
			roster = append(roster, member)
		}
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	sort.Slice(roster, func(a, b int) bool { return roster[a].ID < roster[b].ID })

	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].ID < ordered[b].ID })

	m := &Model{
		Staff:        roster,
		Slots:        ordered,
		Allowed:      make([][]bool, len(roster)),
		Wished:       make([][]bool, len(roster)),
		Quota:        make([]int, len(roster)),
		HasAdjusted:  make([]bool, len(roster)),
		GradeOf:      make([]string, len(roster)),
		GradeMembers: make(map[string][]int),
		StaffIndex:   make(map[string]int, len(roster)),
	}

	wishSet := make(map[Wish]struct{}, len(wishes))
	for _, wish := range wishes {
		wishSet[wish] = struct{}{}
	}

	for j := range ordered {
		m.Demand += ordered[j].Required
	}

	for i, member := range roster {
		m.StaffIndex[member.ID] = i
		m.GradeOf[i] = member.Grade
		m.GradeMembers[member.Grade] = append(m.GradeMembers[member.Grade], i)
		m.Quota[i] = plan.Quotas[member.Grade]
		if _, ok := prior[member.ID]; ok {
			m.HasAdjusted[i] = true
		} else if member.AdjustedQuota != nil {
			m.HasAdjusted[i] = true
		}

		m.Allowed[i] = make([]bool, len(ordered))
		m.Wished[i] = make([]bool, len(ordered))

		for j, slot := range ordered {
			ownsAll := len(slot.Rooms) > 0
			for _, room := range slot.Rooms {
				if room.OwnerID != member.ID {
					ownsAll = false
					break
				}
			}
			if ownsAll {
				m.OwnerExclusions++
				continue
			}
			m.Allowed[i][j] = true

			key := Wish{StaffID: member.ID, DayIndex: slot.DayIndex, Period: slot.Period}
			if _, ok := wishSet[key]; ok {
				m.Wished[i][j] = true
			}
		}
	}

	for grade := range m.GradeMembers {
		m.Grades = append(m.Grades, grade)
	}
	sort.Strings(m.Grades)

	return m, nil
}

// OwnerOf returns the owner of a named room in slot j, or "".
func (m *Model) OwnerOf(j int, room string) string {
	for _, r := range m.Slots[j].Rooms {
		if r.Name == room {
			return r.OwnerID
		}
	}
	return ""
}
