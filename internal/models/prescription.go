package models

import (
	"fmt"
	"math/rand"
	"time"
)

// PrescriptionStatus represents the fulfillment state of a prescription
type PrescriptionStatus string

const (
	PrescriptionDraft     PrescriptionStatus = "draft"
	PrescriptionSigned    PrescriptionStatus = "signed"
	PrescriptionAssigned  PrescriptionStatus = "assigned"
	PrescriptionPreparing PrescriptionStatus = "preparing"
	PrescriptionReady     PrescriptionStatus = "ready"
	PrescriptionDelivered PrescriptionStatus = "delivered"
	PrescriptionRejected  PrescriptionStatus = "rejected"
)

// MedicationRoutes is the closed set of administration routes.
var MedicationRoutes = []string{
	"oral", "intravenous", "intramuscular", "subcutaneous", "topical",
	"nasal", "ocular", "auricular", "rectal", "vaginal", "inhalation",
	"sublingual",
}

// ValidMedicationRoute reports whether route belongs to the closed set.
func ValidMedicationRoute(route string) bool {
	for _, r := range MedicationRoutes {
		if r == route {
			return true
		}
	}
	return false
}

// Medication is a single line of a prescription.
type Medication struct {
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Route        string     `json:"route"`
	Frequency    string     `json:"frequency"`
	Duration     string     `json:"duration"`
	Renewals     int        `json:"renewals"`
	Instructions string     `json:"instructions,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

// Validate checks the required fields and bounded values of a medication.
func (m *Medication) Validate() error {
	if m.Name == "" || m.Dosage == "" || m.Frequency == "" || m.Duration == "" {
		return fmt.Errorf("medication name, dosage, frequency and duration are required")
	}
	if !ValidMedicationRoute(m.Route) {
		return fmt.Errorf("invalid medication route %q", m.Route)
	}
	if m.Renewals < 0 || m.Renewals > 12 {
		return fmt.Errorf("renewals must be between 0 and 12")
	}
	return nil
}

// Prescription is tied 1:1 to a consultation and moves through
//
//	draft → signed → assigned → preparing → ready → delivered
//
// with rejected reachable from assigned and preparing.
type Prescription struct {
	BaseModel
	ConsultationID     string             `gorm:"size:36;uniqueIndex" json:"consultationId"`
	PatientID          string             `gorm:"size:36;index" json:"patientId"`
	DoctorID           string             `gorm:"size:36;index" json:"doctorId"`
	PrescriptionNumber string             `gorm:"size:20;uniqueIndex" json:"prescriptionNumber"`
	Medications        []Medication       `gorm:"serializer:json" json:"medications"`
	Status             PrescriptionStatus `gorm:"size:20;default:'draft';index" json:"status"`
	Notes              string             `gorm:"size:1000" json:"notes,omitempty"`
	SignedAt           *time.Time         `json:"signedAt,omitempty"`
	AssignedAt         *time.Time         `json:"assignedAt,omitempty"`
	PreparingStartedAt *time.Time         `json:"preparingStartedAt,omitempty"`
	ReadyAt            *time.Time         `json:"readyAt,omitempty"`
	DeliveredAt        *time.Time         `json:"deliveredAt,omitempty"`
	RejectedAt         *time.Time         `json:"rejectedAt,omitempty"`
	PharmacyID         *string            `gorm:"size:36;index" json:"pharmacyId,omitempty"`
	PharmacyNotes      string             `gorm:"size:500" json:"pharmacyNotes,omitempty"`
	ValidUntil         *time.Time         `json:"validUntil,omitempty"`
	IsActive           bool               `gorm:"default:true" json:"isActive"`

	// Relations
	Consultation *Consultation `gorm:"foreignKey:ConsultationID" json:"consultation,omitempty"`
	Patient      *User         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor       *User         `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// NewPrescriptionNumber builds an RX number from the date plus a random
// four digit suffix, e.g. RX202608290042. Uniqueness is backed by the
// database index; callers retry once on a duplicate key.
func NewPrescriptionNumber(now time.Time) string {
	return fmt.Sprintf("RX%s%04d", now.Format("20060102"), rand.Intn(10000))
}

// CanBeModified reports whether the medication list is still editable.
// Once a prescription leaves draft its content is frozen.
func (p *Prescription) CanBeModified() bool {
	return p.Status == PrescriptionDraft
}

// CanBeSigned reports whether the prescription is signable: still a
// draft and carrying at least one medication.
func (p *Prescription) CanBeSigned() bool {
	return p.Status == PrescriptionDraft && len(p.Medications) > 0
}

// Sign moves the prescription to signed, stamping signedAt and the one
// year validity window. It fails when CanBeSigned is false.
func (p *Prescription) Sign(now time.Time) error {
	if !p.CanBeSigned() {
		if len(p.Medications) == 0 {
			return fmt.Errorf("prescription has no medications")
		}
		return fmt.Errorf("prescription cannot be signed from status %q", p.Status)
	}
	validUntil := now.Add(365 * 24 * time.Hour)
	p.Status = PrescriptionSigned
	p.SignedAt = &now
	p.ValidUntil = &validUntil
	return nil
}

// AssignToPharmacy moves a signed prescription to assigned.
func (p *Prescription) AssignToPharmacy(pharmacyID string, now time.Time) error {
	if p.Status != PrescriptionSigned {
		return fmt.Errorf("only signed prescriptions can be assigned, current status %q", p.Status)
	}
	p.Status = PrescriptionAssigned
	p.PharmacyID = &pharmacyID
	p.AssignedAt = &now
	return nil
}

// pharmacyTransitions are the pharmacy-side moves of the state machine.
var pharmacyTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionAssigned:  {PrescriptionPreparing, PrescriptionRejected},
	PrescriptionPreparing: {PrescriptionReady, PrescriptionRejected},
	PrescriptionReady:     {PrescriptionDelivered},
}

// ApplyPharmacyStatus advances the prescription along the pharmacy-side
// state machine and stamps the matching timestamp. Transitions are
// forward-only; rejected is reachable from assigned and preparing.
func (p *Prescription) ApplyPharmacyStatus(status PrescriptionStatus, now time.Time) error {
	allowed := false
	for _, next := range pharmacyTransitions[p.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("cannot move prescription from %q to %q", p.Status, status)
	}

	p.Status = status
	switch status {
	case PrescriptionPreparing:
		p.PreparingStartedAt = &now
	case PrescriptionReady:
		p.ReadyAt = &now
	case PrescriptionDelivered:
		p.DeliveredAt = &now
	case PrescriptionRejected:
		p.RejectedAt = &now
	}
	return nil
}

// IsExpired reports whether the validity window has passed.
func (p *Prescription) IsExpired() bool {
	return p.ValidUntil != nil && p.ValidUntil.Before(time.Now())
}
