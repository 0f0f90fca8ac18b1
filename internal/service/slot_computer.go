package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/salon-booking-api/internal/models"
)

var clockLayouts = []string{"15:04", "15:04:05"}

// parseClock returns hours and minutes of a wall-clock string.
func parseClock(value string) (int, int, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid clock value %q", value)
}

// atClock places a wall-clock time on the calendar day of day, in day's location.
func atClock(day time.Time, value string) (time.Time, error) {
	h, m, err := parseClock(value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}

// computeSlots walks every working-hours interval of day in steps of duration and
// keeps the windows that do not overlap a booked appointment. Windows are
// half-open; the last one ends no later than the interval end. Identical windows
// from overlapping intervals are emitted once and the result is ordered by start.
func computeSlots(day time.Time, hours []models.WorkingHours, booked []models.Appointment, duration time.Duration) ([]models.TimeSlot, error) {
	slots := make([]models.TimeSlot, 0)
	if duration <= 0 {
		return slots, nil
	}
	seen := make(map[int64]struct{})

	for _, wh := range hours {
		start, err := atClock(day, wh.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := atClock(day, wh.EndTime)
		if err != nil {
			return nil, err
		}

		for cursor := start; !cursor.Add(duration).After(end); cursor = cursor.Add(duration) {
			slotEnd := cursor.Add(duration)
			if overlapsAny(booked, cursor, slotEnd) {
				continue
			}
			key := cursor.UnixNano()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			slots = append(slots, models.TimeSlot{Start: cursor, End: slotEnd})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

func overlapsAny(booked []models.Appointment, start, end time.Time) bool {
	for _, appt := range booked {
		if appt.Status.ReleasesSlot() {
			continue
		}
		if appt.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// withinWorkingHours reports whether [start, end) fits inside one of the intervals.
func withinWorkingHours(hours []models.WorkingHours, start, end time.Time) bool {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for _, wh := range hours {
		from, err := atClock(day, wh.StartTime)
		if err != nil {
			continue
		}
		to, err := atClock(day, wh.EndTime)
		if err != nil {
			continue
		}
		if !start.Before(from) && !end.After(to) {
			return true
		}
	}
	return false
}
