package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Pharmacy is a partner pharmacy signed prescriptions are routed to.
type Pharmacy struct {
	BaseModel
	Name              string            `gorm:"size:100;not null" json:"name"`
	LicenseNumber     string            `gorm:"size:50;uniqueIndex" json:"licenseNumber"`
	PharmacyCode      string            `gorm:"size:20;uniqueIndex" json:"pharmacyCode"`
	Contact           ContactInfo       `gorm:"serializer:json" json:"contact"`
	Address           Address           `gorm:"serializer:json" json:"address"`
	OperatingHours    OperatingHours    `gorm:"serializer:json" json:"operatingHours"`
	Services          []string          `gorm:"serializer:json" json:"services"`
	PartnershipStatus PartnershipStatus `gorm:"size:20;default:'active';index" json:"partnershipStatus"`
	Notes             string            `gorm:"size:500" json:"notes,omitempty"`
	IsActive          bool              `gorm:"default:true" json:"isActive"`
}

// NewPharmacyCode derives a short code from the pharmacy name and city
// plus a random suffix.
func NewPharmacyCode(name, city string) string {
	namePart := strings.ToUpper(pad(name, 3))
	cityPart := strings.ToUpper(pad(city, 2))
	return fmt.Sprintf("PH%s%s%03d", namePart, cityPart, rand.Intn(1000))
}

// IsOpenNow evaluates the current weekday and time against the
// operating hours.
func (p *Pharmacy) IsOpenNow() bool {
	return p.OperatingHours.OpenAt(time.Now())
}

// AcceptsPrescriptions reports whether prescriptions may be routed to
// this pharmacy.
func (p *Pharmacy) AcceptsPrescriptions() bool {
	return p.IsActive && p.PartnershipStatus == PartnershipActive
}

// PharmacyQueueStatuses is the set of prescription statuses a pharmacy
// work-queue query may filter on.
var PharmacyQueueStatuses = []PrescriptionStatus{
	PrescriptionAssigned, PrescriptionPreparing, PrescriptionReady, PrescriptionDelivered,
}

// ParseQueueStatuses parses a comma separated status filter against the
// pharmacy queue set. Unknown tokens are rejected rather than dropped.
func ParseQueueStatuses(raw string) ([]PrescriptionStatus, error) {
	var out []PrescriptionStatus
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		status := PrescriptionStatus(tok)
		valid := false
		for _, s := range PharmacyQueueStatuses {
			if s == status {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("invalid status %q: must be one of assigned, preparing, ready, delivered", tok)
		}
		out = append(out, status)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one status filter is required")
	}
	return out, nil
}
