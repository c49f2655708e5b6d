package optimizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultReserveCap bounds the dynamic reserve count per slot. Product
// policy constant, overridable through SlotOptions.
const DefaultReserveCap = 4

// SlotOptions tunes slot construction.
type SlotOptions struct {
	// ReserveCap caps the dynamic reserve count min(rooms, cap).
	// Zero means DefaultReserveCap.
	ReserveCap int
	// FixedReserves overrides the dynamic reserve count when non-nil.
	FixedReserves *int
}

// parseClock normalises a clock string to "HH:MM". Accepts "HH:MM:SS" and
// "DD/MM/YYYY HH:MM:SS" shapes.
func parseClock(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty time")
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[i+1:]
	}
	if len(s) < 5 {
		return "", fmt.Errorf("time %q too short", raw)
	}
	s = s[:5]
	if _, err := time.Parse("15:04", s); err != nil {
		return "", fmt.Errorf("unparseable time %q", raw)
	}
	return s, nil
}

// periodForClock infers the period code from a start time. Returns "" for
// times outside the known exam windows.
func periodForClock(clock string) string {
	hour, err := strconv.Atoi(clock[:2])
	if err != nil {
		return ""
	}
	switch {
	case hour >= 8 && hour < 10:
		return "S1"
	case hour >= 10 && hour < 12:
		return "S2"
	case hour >= 12 && hour < 14:
		return "S3"
	case hour >= 14 && hour < 17:
		return "S4"
	default:
		return ""
	}
}

// BuildSlots groups room/time records into slots, computes the required
// supervisor count (2 per room plus reserves) and maps each slot onto the
// day/period calendar. Malformed records are rejected individually; slots
// without a calendar match are excluded and reported.
func BuildSlots(records []RoomTimeRecord, calendar []CalendarDay, opts SlotOptions) ([]Slot, []RowError, []ExcludedSlot) {
	reserveCap := opts.ReserveCap
	if reserveCap <= 0 {
		reserveCap = DefaultReserveCap
	}

	type groupKey struct {
		date, start, end string
	}

	groups := make(map[groupKey][]Room)
	var rowErrs []RowError

	for i, rec := range records {
		if strings.TrimSpace(rec.Date) == "" {
			rowErrs = append(rowErrs, RowError{Index: i, Room: rec.Room, Reason: "missing date"})
			continue
		}
		if strings.TrimSpace(rec.Room) == "" {
			rowErrs = append(rowErrs, RowError{Index: i, Reason: "missing room code"})
			continue
		}
		start, err := parseClock(rec.Start)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Room: rec.Room, Reason: err.Error()})
			continue
		}
		end, err := parseClock(rec.End)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Room: rec.Room, Reason: err.Error()})
			continue
		}

		key := groupKey{date: rec.Date, start: start, end: end}
		groups[key] = append(groups[key], Room{Name: rec.Room, OwnerID: rec.OwnerID})
	}

	calIndex := make(map[string]CalendarDay, len(calendar))
	for _, day := range calendar {
		start, err := parseClock(day.Start)
		if err != nil {
			continue
		}
		calIndex[day.Date+"_"+start] = day
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].date != keys[b].date {
			return keys[a].date < keys[b].date
		}
		if keys[a].start != keys[b].start {
			return keys[a].start < keys[b].start
		}
		return keys[a].end < keys[b].end
	})

	var slots []Slot
	var excluded []ExcludedSlot

	for _, key := range keys {
		rooms := groups[key]
		sort.Slice(rooms, func(a, b int) bool { return rooms[a].Name < rooms[b].Name })

		reserves := min(len(rooms), reserveCap)
		if opts.FixedReserves != nil {
			reserves = *opts.FixedReserves
		}

		slot := Slot{
			ID:       key.date + "_" + key.start,
			Date:     key.date,
			Start:    key.start,
			End:      key.end,
			Rooms:    rooms,
			Reserves: reserves,
			Required: len(rooms)*2 + reserves,
			DayIndex: -1,
		}

		if slot.Required <= 0 {
			excluded = append(excluded, ExcludedSlot{SlotID: slot.ID, Reason: "zero supervisors required"})
			continue
		}

		day, ok := calIndex[slot.ID]
		if !ok {
			excluded = append(excluded, ExcludedSlot{SlotID: slot.ID, Reason: "no calendar match"})
			continue
		}
		slot.DayIndex = day.DayIndex
		slot.Period = day.Period

		slots = append(slots, slot)
	}

	return slots, rowErrs, excluded
}

// GenerateCalendar derives the day/period calendar from the records
// themselves, for callers that do not supply one: day index by sorted
// unique date, period inferred from the start hour. Records whose start
// time falls outside the known exam windows yield no entry.
func GenerateCalendar(records []RoomTimeRecord) []CalendarDay {
	starts := make(map[string]map[string]struct{})
	for _, rec := range records {
		clock, err := parseClock(rec.Start)
		if err != nil {
			continue
		}
		if starts[rec.Date] == nil {
			starts[rec.Date] = make(map[string]struct{})
		}
		starts[rec.Date][clock] = struct{}{}
	}

	dates := make([]string, 0, len(starts))
	for date := range starts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var calendar []CalendarDay
	for dayIdx, date := range dates {
		clocks := make([]string, 0, len(starts[date]))
		for clock := range starts[date] {
			clocks = append(clocks, clock)
		}
		sort.Strings(clocks)

		for _, clock := range clocks {
			period := periodForClock(clock)
			if period == "" {
				continue
			}
			calendar = append(calendar, CalendarDay{
				Date:     date,
				Start:    clock,
				DayIndex: dayIdx + 1,
				Period:   period,
			})
		}
	}

	return calendar
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
