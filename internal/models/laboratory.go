package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// PartnershipStatus is the standing of a partner facility with the clinic.
type PartnershipStatus string

const (
	PartnershipActive    PartnershipStatus = "active"
	PartnershipInactive  PartnershipStatus = "inactive"
	PartnershipSuspended PartnershipStatus = "suspended"
	PartnershipPending   PartnershipStatus = "pending"
)

// ContactInfo holds how to reach a partner facility.
type ContactInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Fax     string `json:"fax,omitempty"`
	Website string `json:"website,omitempty"`
}

// Address is a partner facility postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// TimeWindow is an opening window in HH:MM local time.
type TimeWindow struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// covers reports whether hhmm falls inside the window, inclusive on
// both ends. HH:MM strings compare correctly lexicographically.
func (w TimeWindow) covers(hhmm string) bool {
	return w.Open != "" && w.Close != "" && hhmm >= w.Open && hhmm <= w.Close
}

// DaySchedule is the morning/afternoon opening plan for one weekday.
type DaySchedule struct {
	IsOpen    bool       `json:"isOpen"`
	Morning   TimeWindow `json:"morning"`
	Afternoon TimeWindow `json:"afternoon"`
}

// OperatingHours maps lowercase weekday names to their schedule.
type OperatingHours map[string]DaySchedule

// OpenAt evaluates the weekday and time of t against the schedule.
func (h OperatingHours) OpenAt(t time.Time) bool {
	day, ok := h[strings.ToLower(t.Weekday().String())]
	if !ok || !day.IsOpen {
		return false
	}
	hhmm := t.Format("15:04")
	return day.Morning.covers(hhmm) || day.Afternoon.covers(hhmm)
}

// CatalogTest is an entry of a laboratory's test catalog.
type CatalogTest struct {
	TestCode string  `json:"testCode"`
	TestName string  `json:"testName"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration,omitempty"`
	Specimen string  `json:"specimen,omitempty"`
	IsActive bool    `json:"isActive"`
}

// LabStatistics are best-effort order counters kept on the laboratory.
type LabStatistics struct {
	TotalOrders           int     `json:"totalOrders"`
	CompletedOrders       int     `json:"completedOrders"`
	AverageProcessingTime float64 `json:"averageProcessingTime,omitempty"` // hours
	LastMonthOrders       int     `json:"lastMonthOrders"`
}

// Laboratory is a partner lab the clinic routes orders to.
type Laboratory struct {
	BaseModel
	Name              string            `gorm:"size:100;not null" json:"name"`
	LicenseNumber     string            `gorm:"size:50;uniqueIndex" json:"licenseNumber"`
	LabCode           string            `gorm:"size:20;uniqueIndex" json:"labCode"`
	Contact           ContactInfo       `gorm:"serializer:json" json:"contact"`
	Address           Address           `gorm:"serializer:json" json:"address"`
	OperatingHours    OperatingHours    `gorm:"serializer:json" json:"operatingHours"`
	AvailableTests    []CatalogTest     `gorm:"serializer:json" json:"availableTests"`
	PartnershipStatus PartnershipStatus `gorm:"size:20;default:'active';index" json:"partnershipStatus"`
	Statistics        LabStatistics     `gorm:"serializer:json" json:"statistics"`
	Notes             string            `gorm:"size:500" json:"notes,omitempty"`
	IsActive          bool              `gorm:"default:true" json:"isActive"`
}

// NewLabCode derives a short code from the lab name and city plus a
// random suffix, e.g. BIOCA042.
func NewLabCode(name, city string) string {
	namePart := strings.ToUpper(pad(name, 3))
	cityPart := strings.ToUpper(pad(city, 2))
	return fmt.Sprintf("%s%s%03d", namePart, cityPart, rand.Intn(1000))
}

func pad(s string, n int) string {
	// Truncate on runes so multibyte names do not split mid-sequence.
	runes := []rune(strings.ReplaceAll(s, " ", ""))
	for len(runes) < n {
		runes = append(runes, 'X')
	}
	return string(runes[:n])
}

// AvailableTest finds an active catalog entry by code, or nil.
func (l *Laboratory) AvailableTest(testCode string) *CatalogTest {
	for i := range l.AvailableTests {
		t := &l.AvailableTests[i]
		if t.TestCode == testCode && t.IsActive {
			return t
		}
	}
	return nil
}

// UnavailableTestCodes returns the requested codes the laboratory
// cannot perform. An empty result means the whole panel is covered.
func (l *Laboratory) UnavailableTestCodes(tests []LabTest) []string {
	var missing []string
	for _, t := range tests {
		if l.AvailableTest(t.TestCode) == nil {
			missing = append(missing, t.TestCode)
		}
	}
	return missing
}

// IsOpenNow evaluates the current weekday and time against the
// operating hours.
func (l *Laboratory) IsOpenNow() bool {
	return l.OperatingHours.OpenAt(time.Now())
}

// AcceptsOrders reports whether orders may be routed to this lab.
func (l *Laboratory) AcceptsOrders() bool {
	return l.IsActive && l.PartnershipStatus == PartnershipActive
}

// RecordOrder bumps the order counters after an assignment.
func (l *Laboratory) RecordOrder(n int) {
	l.Statistics.TotalOrders += n
	l.Statistics.LastMonthOrders += n
}

// RecordCompletion folds a completed order's processing time (hours)
// into the running average.
func (l *Laboratory) RecordCompletion(hours float64) {
	s := &l.Statistics
	if s.CompletedOrders > 0 {
		s.AverageProcessingTime = (s.AverageProcessingTime*float64(s.CompletedOrders) + hours) / float64(s.CompletedOrders+1)
	} else {
		s.AverageProcessingTime = hours
	}
	s.CompletedOrders++
}
