package models

import (
	"strings"
	"time"
)

// Gender enum
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalizes a gender string, case-insensitive.
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	case GenderOther:
		return GenderOther, true
	}
	return "", false
}

// BloodType enum, "unknown" when never typed.
type BloodType string

const (
	BloodAPositive  BloodType = "A+"
	BloodANegative  BloodType = "A-"
	BloodBPositive  BloodType = "B+"
	BloodBNegative  BloodType = "B-"
	BloodABPositive BloodType = "AB+"
	BloodABNegative BloodType = "AB-"
	BloodOPositive  BloodType = "O+"
	BloodONegative  BloodType = "O-"
	BloodUnknown    BloodType = "unknown"
)

var bloodTypes = []BloodType{
	BloodAPositive, BloodANegative, BloodBPositive, BloodBNegative,
	BloodABPositive, BloodABNegative, BloodOPositive, BloodONegative,
	BloodUnknown,
}

// ParseBloodType matches a blood type token; the letter part is
// case-insensitive.
func ParseBloodType(s string) (BloodType, bool) {
	s = strings.TrimSpace(s)
	for _, bt := range bloodTypes {
		if strings.EqualFold(s, string(bt)) {
			return bt, true
		}
	}
	return "", false
}

// AllergySeverity enum
type AllergySeverity string

const (
	AllergyMild     AllergySeverity = "mild"
	AllergyModerate AllergySeverity = "moderate"
	AllergySevere   AllergySeverity = "severe"
	AllergyUnknown  AllergySeverity = "unknown"
)

// Allergy is one entry of a patient's allergy list.
type Allergy struct {
	Name        string          `json:"name"`
	Severity    AllergySeverity `json:"severity"`
	Description string          `json:"description,omitempty"`
}

// ConditionStatus enum for medical history entries.
type ConditionStatus string

const (
	ConditionActive         ConditionStatus = "active"
	ConditionResolved       ConditionStatus = "resolved"
	ConditionChronic        ConditionStatus = "chronic"
	ConditionUnderTreatment ConditionStatus = "under_treatment"
)

// MedicalCondition is one entry of a patient's medical history.
type MedicalCondition struct {
	Condition     string          `json:"condition"`
	DiagnosedDate *time.Time      `json:"diagnosedDate,omitempty"`
	Status        ConditionStatus `json:"status"`
	Notes         string          `json:"notes,omitempty"`
}

// PatientMedication is a medication the patient currently takes,
// whether or not it was prescribed here.
type PatientMedication struct {
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	PrescribedBy string     `json:"prescribedBy,omitempty"`
}

// EmergencyContact is who to call on the patient's behalf.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	PhoneNumber  string `json:"phoneNumber"`
}

// Insurance holds the patient's coverage details.
type Insurance struct {
	Provider     string     `json:"provider,omitempty"`
	PolicyNumber string     `json:"policyNumber,omitempty"`
	GroupNumber  string     `json:"groupNumber,omitempty"`
	ValidUntil   *time.Time `json:"validUntil,omitempty"`
}

// Patient is the clinical record of a person treated at the clinic:
// demographics, emergency contact, and medical background. A patient
// may also hold a login account, linked through UserID; walk-in
// patients without one leave it empty.
type Patient struct {
	BaseModel
	UserID             string              `gorm:"size:36;index" json:"userId,omitempty"`
	FirstName          string              `gorm:"size:50;not null" json:"firstName"`
	LastName           string              `gorm:"size:50;not null" json:"lastName"`
	DateOfBirth        time.Time           `gorm:"not null" json:"dateOfBirth"`
	Gender             Gender              `gorm:"size:10;not null;index" json:"gender"`
	PhoneNumber        string              `gorm:"size:30;not null;index" json:"phoneNumber"`
	Email              string              `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Address            Address             `gorm:"serializer:json" json:"address"`
	EmergencyContact   EmergencyContact    `gorm:"serializer:json" json:"emergencyContact"`
	BloodType          BloodType           `gorm:"size:10;default:'unknown';index" json:"bloodType"`
	Allergies          []Allergy           `gorm:"serializer:json" json:"allergies"`
	MedicalHistory     []MedicalCondition  `gorm:"serializer:json" json:"medicalHistory"`
	CurrentMedications []PatientMedication `gorm:"serializer:json" json:"currentMedications"`
	Insurance          *Insurance          `gorm:"serializer:json" json:"insurance,omitempty"`
	Notes              string              `gorm:"size:1000" json:"notes,omitempty"`
	IsActive           bool                `gorm:"default:true" json:"isActive"`
	CreatedByID        string              `gorm:"size:36" json:"createdById,omitempty"`
	LastUpdatedByID    string              `gorm:"size:36" json:"lastUpdatedById,omitempty"`

	CreatedBy     *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	LastUpdatedBy *User `gorm:"foreignKey:LastUpdatedByID" json:"lastUpdatedBy,omitempty"`
}

// FullName joins first and last name.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// AgeAt computes full years lived at the reference time, counting the
// birthday itself as already reached.
func (p *Patient) AgeAt(now time.Time) int {
	age := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(age, 0, 0)
	if anniversary.After(now) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Age computes the patient's current age in full years.
func (p *Patient) Age() int {
	return p.AgeAt(time.Now())
}

// AgeBracket buckets an age for demographic statistics.
func AgeBracket(age int) string {
	switch {
	case age < 18:
		return "0-17"
	case age < 35:
		return "18-34"
	case age < 55:
		return "35-54"
	case age < 75:
		return "55-74"
	default:
		return "75+"
	}
}

// HasAllergy reports whether the patient has a recorded allergy with
// the given name, ignoring case.
func (p *Patient) HasAllergy(name string) bool {
	for _, a := range p.Allergies {
		if strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}
