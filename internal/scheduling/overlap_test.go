package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 16, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical intervals", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"partial overlap", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"b inside a", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"a inside b", at(10, 0), at(11, 0), at(9, 0), at(12, 0), true},
		{"back to back, a first", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"back to back, b first", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"disjoint", at(9, 0), at(10, 0), at(14, 0), at(15, 0), false},
		{"one minute overlap", at(9, 0), at(10, 1), at(10, 0), at(11, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestWorkDay(t *testing.T) {
	day := WorkDay(time.Date(2026, 3, 16, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, at(8, 0), day.Start)
	assert.Equal(t, at(18, 0), day.End)
}

func TestFreeSlots_EmptyCalendar(t *testing.T) {
	day := WorkDay(at(0, 0))
	slots := FreeSlots(day, nil)

	require.Len(t, slots, 1)
	assert.Equal(t, Slot{Start: "08:00", End: "18:00"}, slots[0])
}

func TestFreeSlots_SingleBooking(t *testing.T) {
	day := WorkDay(at(0, 0))
	slots := FreeSlots(day, []Interval{{Start: at(10, 0), End: at(10, 30)}})

	require.Len(t, slots, 2)
	assert.Equal(t, Slot{Start: "08:00", End: "10:00"}, slots[0])
	assert.Equal(t, Slot{Start: "10:30", End: "18:00"}, slots[1])
}

func TestFreeSlots_UnsortedAndAdjacent(t *testing.T) {
	day := WorkDay(at(0, 0))
	booked := []Interval{
		{Start: at(14, 0), End: at(15, 0)},
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(9, 30), End: at(10, 0)}, // back-to-back with the previous
	}
	slots := FreeSlots(day, booked)

	require.Len(t, slots, 3)
	assert.Equal(t, Slot{Start: "08:00", End: "09:00"}, slots[0])
	assert.Equal(t, Slot{Start: "10:00", End: "14:00"}, slots[1])
	assert.Equal(t, Slot{Start: "15:00", End: "18:00"}, slots[2])
}

func TestFreeSlots_OverlappingBookings(t *testing.T) {
	day := WorkDay(at(0, 0))
	booked := []Interval{
		{Start: at(9, 0), End: at(11, 0)},
		{Start: at(10, 0), End: at(10, 30)}, // swallowed by the previous
	}
	slots := FreeSlots(day, booked)

	require.Len(t, slots, 2)
	assert.Equal(t, Slot{Start: "08:00", End: "09:00"}, slots[0])
	assert.Equal(t, Slot{Start: "11:00", End: "18:00"}, slots[1])
}

func TestFreeSlots_FullyBooked(t *testing.T) {
	day := WorkDay(at(0, 0))
	slots := FreeSlots(day, []Interval{{Start: at(8, 0), End: at(18, 0)}})

	assert.Empty(t, slots)
}

func TestFreeSlots_BookingAtDayEdges(t *testing.T) {
	day := WorkDay(at(0, 0))
	booked := []Interval{
		{Start: at(8, 0), End: at(8, 30)},
		{Start: at(17, 30), End: at(18, 0)},
	}
	slots := FreeSlots(day, booked)

	require.Len(t, slots, 1)
	assert.Equal(t, Slot{Start: "08:30", End: "17:30"}, slots[0])
}
