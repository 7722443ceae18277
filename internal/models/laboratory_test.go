package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayHours() OperatingHours {
	return OperatingHours{
		"monday": DaySchedule{
			IsOpen:    true,
			Morning:   TimeWindow{Open: "08:00", Close: "12:00"},
			Afternoon: TimeWindow{Open: "14:00", Close: "18:00"},
		},
		"sunday": DaySchedule{IsOpen: false},
	}
}

func TestOperatingHoursOpenAt(t *testing.T) {
	hours := mondayHours()

	monday := func(h, m int) time.Time {
		return time.Date(2026, 3, 16, h, m, 0, 0, time.UTC) // a Monday
	}

	assert.True(t, hours.OpenAt(monday(9, 30)))
	assert.True(t, hours.OpenAt(monday(8, 0)))   // inclusive open bound
	assert.True(t, hours.OpenAt(monday(12, 0)))  // inclusive close bound
	assert.False(t, hours.OpenAt(monday(13, 0))) // lunch break
	assert.True(t, hours.OpenAt(monday(15, 0)))
	assert.False(t, hours.OpenAt(monday(19, 0)))

	sunday := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.False(t, hours.OpenAt(sunday))

	// Days absent from the schedule are closed
	tuesday := time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC)
	assert.False(t, hours.OpenAt(tuesday))
}

func partnerLab() *Laboratory {
	return &Laboratory{
		Name:              "BioLab",
		PartnershipStatus: PartnershipActive,
		IsActive:          true,
		AvailableTests: []CatalogTest{
			{TestCode: "CBC", TestName: "Complete Blood Count", IsActive: true},
			{TestCode: "GLU", TestName: "Glucose", IsActive: true},
			{TestCode: "OLD", TestName: "Retired Panel", IsActive: false},
		},
	}
}

func TestAvailableTest(t *testing.T) {
	lab := partnerLab()

	require.NotNil(t, lab.AvailableTest("CBC"))
	assert.Nil(t, lab.AvailableTest("XYZ"))
	// Retired catalog entries do not count
	assert.Nil(t, lab.AvailableTest("OLD"))
}

func TestUnavailableTestCodes(t *testing.T) {
	lab := partnerLab()
	tests := []LabTest{
		{TestCode: "CBC"},
		{TestCode: "XYZ"},
		{TestCode: "OLD"},
	}

	missing := lab.UnavailableTestCodes(tests)
	assert.Equal(t, []string{"XYZ", "OLD"}, missing)

	assert.Empty(t, lab.UnavailableTestCodes([]LabTest{{TestCode: "CBC"}, {TestCode: "GLU"}}))
}

func TestAcceptsOrders(t *testing.T) {
	lab := partnerLab()
	assert.True(t, lab.AcceptsOrders())

	lab.PartnershipStatus = PartnershipSuspended
	assert.False(t, lab.AcceptsOrders())

	lab = partnerLab()
	lab.IsActive = false
	assert.False(t, lab.AcceptsOrders())
}

func TestRecordCompletion(t *testing.T) {
	lab := partnerLab()

	lab.RecordCompletion(10)
	assert.Equal(t, 1, lab.Statistics.CompletedOrders)
	assert.InDelta(t, 10, lab.Statistics.AverageProcessingTime, 0.001)

	lab.RecordCompletion(20)
	assert.Equal(t, 2, lab.Statistics.CompletedOrders)
	assert.InDelta(t, 15, lab.Statistics.AverageProcessingTime, 0.001)
}

func TestNewLabCode(t *testing.T) {
	code := NewLabCode("BioLab", "Casablanca")
	assert.Len(t, code, 8)
	assert.Equal(t, "BIOCA", code[:5])

	// Short names are padded
	code = NewLabCode("A", "B")
	assert.Len(t, code, 8)
	assert.Equal(t, "AXXBX", code[:5])
}

func TestNewLabCodeMultibyteNames(t *testing.T) {
	code := NewLabCode("Résidence", "Orléans")
	assert.True(t, utf8.ValidString(code))
	assert.True(t, strings.HasPrefix(code, "RÉSOR"))
	assert.Equal(t, 8, utf8.RuneCountInString(code))

	// A name shorter than the slot but ending in a multibyte rune
	code = NewLabCode("Aé", "Où")
	assert.True(t, utf8.ValidString(code))
	assert.True(t, strings.HasPrefix(code, "AÉXOÙ"))
}
