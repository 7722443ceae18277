// Package scheduling holds the pure time-interval logic the appointment
// subsystem is built on: overlap detection and free-slot derivation.
package scheduling

import (
	"fmt"
	"sort"
	"time"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Back-to-back intervals
// with an equal boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two intervals conflict.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// Slot is a free interval rendered for API consumers.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Working hours of the clinic, applied to every calendar day.
const (
	WorkDayStartHour = 8
	WorkDayEndHour   = 18
)

// WorkDay returns the [08:00, 18:00) working window of the given
// calendar date, timezone-naive in UTC.
func WorkDay(date time.Time) Interval {
	y, m, d := date.Date()
	return Interval{
		Start: time.Date(y, m, d, WorkDayStartHour, 0, 0, 0, time.UTC),
		End:   time.Date(y, m, d, WorkDayEndHour, 0, 0, 0, time.UTC),
	}
}

// FreeSlots sweeps the booked intervals of a working day and returns
// the remaining free ones, ordered and non-overlapping. Booked
// intervals need not be sorted; they are swept in start order with a
// cursor starting at the beginning of the day.
func FreeSlots(day Interval, booked []Interval) []Slot {
	sorted := make([]Interval, len(booked))
	copy(sorted, booked)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	slots := []Slot{}
	cursor := day.Start
	for _, b := range sorted {
		if cursor.Before(b.Start) {
			slots = append(slots, Slot{Start: formatHHMM(cursor), End: formatHHMM(b.Start)})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(day.End) {
		slots = append(slots, Slot{Start: formatHHMM(cursor), End: formatHHMM(day.End)})
	}
	return slots
}

func formatHHMM(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
