package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributeRoomsBoundedImbalance(t *testing.T) {
	slot := Slot{
		ID: "s1", Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1",
		Rooms:    []Room{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Required: 7,
	}
	staff := map[string][]string{"s1": {"t1", "t2", "t3", "t4", "t5", "t6", "t7"}}

	assignments := DistributeRooms([]Slot{slot}, staff)
	require.Len(t, assignments, 7)

	perRoom := map[string]int{}
	for _, a := range assignments {
		perRoom[a.Room]++
	}
	lo, hi := 7, 0
	for _, n := range perRoom {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	assert.LessOrEqual(t, hi-lo, 1)
	assert.Equal(t, 3, perRoom["A"], "first total mod rooms rooms take the extra")
}

func TestDistributeRoomsRoles(t *testing.T) {
	slot := Slot{
		ID: "s1", Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1",
		Rooms:    []Room{{Name: "A"}},
		Required: 3,
	}
	assignments := DistributeRooms([]Slot{slot}, map[string][]string{"s1": {"t1", "t2", "t3"}})
	require.Len(t, assignments, 3)

	roles := map[string]int{}
	for _, a := range assignments {
		roles[a.Role]++
	}
	assert.Equal(t, 2, roles[RolePrimary])
	assert.Equal(t, 1, roles[RoleReserve])
}

func TestDistributeRoomsAvoidsOwnedRoom(t *testing.T) {
	slot := Slot{
		ID: "s1", Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1",
		Rooms:    []Room{{Name: "A", OwnerID: "t1"}, {Name: "B"}},
		Required: 4,
	}
	assignments := DistributeRooms([]Slot{slot}, map[string][]string{"s1": {"t1", "t2", "t3", "t4"}})
	require.Len(t, assignments, 4)

	for _, a := range assignments {
		if a.StaffID == "t1" {
			assert.Equal(t, "B", a.Room, "owners never supervise their own room")
		}
	}

	perRoom := map[string]int{}
	for _, a := range assignments {
		perRoom[a.Room]++
	}
	assert.Equal(t, 2, perRoom["A"], "the swap keeps room counts intact")
	assert.Equal(t, 2, perRoom["B"])
}

func TestDistributeRoomsIdempotent(t *testing.T) {
	slot := Slot{
		ID: "s1", Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1",
		Rooms:    []Room{{Name: "A", OwnerID: "t2"}, {Name: "B"}},
		Required: 5,
	}
	staff := map[string][]string{"s1": {"t5", "t1", "t4", "t2", "t3"}}

	first := DistributeRooms([]Slot{slot}, staff)
	second := DistributeRooms([]Slot{slot}, staff)
	assert.Equal(t, first, second)
}
