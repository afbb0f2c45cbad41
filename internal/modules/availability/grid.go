package availability

import (
	"fmt"
	"time"

	"labbooking/internal/domain"
)

const (
	WorkdayStartHour = 10
	WorkdayEndHour   = 18
	SlotLength       = 2 * time.Hour
	SlotsPerDay      = int((WorkdayEndHour - WorkdayStartHour) * time.Hour / SlotLength)
	HorizonDays      = 5

	DateLayout = "Mon, 02 Jan 2006"
)

// Slot is one bookable window of the grid.
type Slot struct {
	Date      string `json:"date"`
	SlotStart string `json:"slot_start"`
	SlotEnd   string `json:"slot_end"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
	Display   string `json:"display"`
	CanBook   bool   `json:"can_book"`
}

// DayStart returns the working-day opening time of the calendar day of t in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), WorkdayStartHour, 0, 0, 0, loc)
}

// SlotIndex places t into the grid of its own day. ok is false for times
// before opening or at/after closing.
func SlotIndex(t time.Time, loc *time.Location) (idx int, start time.Time, ok bool) {
	base := DayStart(t, loc)
	offset := t.Sub(base)
	if offset < 0 {
		return 0, time.Time{}, false
	}
	idx = int(offset / SlotLength)
	if idx >= SlotsPerDay {
		return 0, time.Time{}, false
	}
	return idx, base.Add(time.Duration(idx) * SlotLength), true
}

// BuildGrid renders HorizonDays*SlotsPerDay records starting from the day of
// today. Bookings are normalized onto canonical slot starts; each instrument
// counts at most once per slot and out-of-hours bookings are ignored.
func BuildGrid(today time.Time, loc *time.Location, total int, bookings []domain.Booking) []Slot {
	occupied := make(map[int64]map[int64]struct{})
	for _, b := range bookings {
		_, start, ok := SlotIndex(b.Slot, loc)
		if !ok {
			continue
		}
		key := start.Unix()
		if occupied[key] == nil {
			occupied[key] = make(map[int64]struct{})
		}
		occupied[key][b.InstrumentID] = struct{}{}
	}

	first := DayStart(today, loc)
	out := make([]Slot, 0, HorizonDays*SlotsPerDay)
	for d := 0; d < HorizonDays; d++ {
		base := first.AddDate(0, 0, d)
		for i := 0; i < SlotsPerDay; i++ {
			start := base.Add(time.Duration(i) * SlotLength)
			available := total - len(occupied[start.Unix()])
			if available < 0 {
				available = 0
			}
			out = append(out, Slot{
				Date:      start.Format(DateLayout),
				SlotStart: start.Format(time.RFC3339),
				SlotEnd:   start.Add(SlotLength).Format(time.RFC3339),
				Available: available,
				Total:     total,
				Display:   fmt.Sprintf("%d out of %d", available, total),
				CanBook:   available > 0,
			})
		}
	}
	return out
}
