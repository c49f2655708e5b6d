package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSlotsGroupsRoomsByDateAndTime(t *testing.T) {
	records := []RoomTimeRecord{
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A1", OwnerID: "s1"},
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A2"},
		{Date: "2026-06-10", Start: "10:45:00", End: "12:45:00", Room: "A1"},
	}
	calendar := []CalendarDay{
		{Date: "2026-06-10", Start: "08:30:00", DayIndex: 1, Period: "S1"},
		{Date: "2026-06-10", Start: "10:45:00", DayIndex: 1, Period: "S2"},
	}

	slots, rowErrs, excluded := BuildSlots(records, calendar, SlotOptions{})
	require.Empty(t, rowErrs)
	require.Empty(t, excluded)
	require.Len(t, slots, 2)

	first := slots[0]
	assert.Equal(t, "2026-06-10_08:30", first.ID)
	assert.Len(t, first.Rooms, 2)
	assert.Equal(t, 2, first.Reserves, "reserves = min(rooms, cap)")
	assert.Equal(t, 6, first.Required, "2 per room plus reserves")
	assert.Equal(t, 1, first.DayIndex)
	assert.Equal(t, "S1", first.Period)
	assert.Equal(t, "s1", first.Rooms[0].OwnerID)

	second := slots[1]
	assert.Equal(t, 3, second.Required, "one room, one reserve")
	assert.Equal(t, "S2", second.Period)
}

func TestBuildSlotsAcceptsDateTimePrefixedClocks(t *testing.T) {
	records := []RoomTimeRecord{
		{Date: "2026-06-10", Start: "10/06/2026 08:30:00", End: "10/06/2026 10:30:00", Room: "A1"},
	}
	calendar := []CalendarDay{
		{Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1"},
	}

	slots, rowErrs, excluded := BuildSlots(records, calendar, SlotOptions{})
	require.Empty(t, rowErrs)
	require.Empty(t, excluded)
	require.Len(t, slots, 1)
	assert.Equal(t, "08:30", slots[0].Start)
}

func TestBuildSlotsRejectsMalformedRowsIndividually(t *testing.T) {
	records := []RoomTimeRecord{
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A1"},
		{Date: "", Start: "08:30:00", End: "10:30:00", Room: "A2"},
		{Date: "2026-06-10", Start: "not-a-time", End: "10:30:00", Room: "A3"},
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: ""},
	}
	calendar := []CalendarDay{
		{Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1"},
	}

	slots, rowErrs, _ := BuildSlots(records, calendar, SlotOptions{})
	require.Len(t, slots, 1)
	assert.Len(t, slots[0].Rooms, 1, "bad rows never abort the batch")
	require.Len(t, rowErrs, 3)
	assert.Equal(t, 1, rowErrs[0].Index)
	assert.Equal(t, 2, rowErrs[1].Index)
	assert.Equal(t, 3, rowErrs[2].Index)
}

func TestBuildSlotsExcludesSlotsWithoutCalendarMatch(t *testing.T) {
	records := []RoomTimeRecord{
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A1"},
		{Date: "2026-06-11", Start: "08:30:00", End: "10:30:00", Room: "A1"},
	}
	calendar := []CalendarDay{
		{Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1"},
	}

	slots, _, excluded := BuildSlots(records, calendar, SlotOptions{})
	require.Len(t, slots, 1)
	require.Len(t, excluded, 1)
	assert.Equal(t, "2026-06-11_08:30", excluded[0].SlotID)
	assert.Equal(t, "no calendar match", excluded[0].Reason)
}

func TestBuildSlotsFixedReserveOverride(t *testing.T) {
	zero := 0
	records := []RoomTimeRecord{
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A1"},
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A2"},
	}
	calendar := []CalendarDay{
		{Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1"},
	}

	slots, _, _ := BuildSlots(records, calendar, SlotOptions{FixedReserves: &zero})
	require.Len(t, slots, 1)
	assert.Equal(t, 0, slots[0].Reserves)
	assert.Equal(t, 4, slots[0].Required)
}

func TestGenerateCalendarInfersDaysAndPeriods(t *testing.T) {
	records := []RoomTimeRecord{
		{Date: "2026-06-11", Start: "14:00:00", End: "16:00:00", Room: "B1"},
		{Date: "2026-06-10", Start: "08:30:00", End: "10:30:00", Room: "A1"},
		{Date: "2026-06-10", Start: "10:45:00", End: "12:45:00", Room: "A1"},
		{Date: "2026-06-10", Start: "12:30:00", End: "14:00:00", Room: "A2"},
	}

	calendar := GenerateCalendar(records)
	require.Len(t, calendar, 4)

	assert.Equal(t, CalendarDay{Date: "2026-06-10", Start: "08:30", DayIndex: 1, Period: "S1"}, calendar[0])
	assert.Equal(t, "S2", calendar[1].Period)
	assert.Equal(t, "S3", calendar[2].Period)
	assert.Equal(t, CalendarDay{Date: "2026-06-11", Start: "14:00", DayIndex: 2, Period: "S4"}, calendar[3])
}

func TestGenerateCalendarSkipsOutOfWindowTimes(t *testing.T) {
	records := []RoomTimeRecord{
		{Date: "2026-06-10", Start: "19:00:00", End: "21:00:00", Room: "A1"},
	}
	assert.Empty(t, GenerateCalendar(records))
}
