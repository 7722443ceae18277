package models

import (
	"fmt"
	"math"
	"time"
)

// VitalSigns holds the measurements taken during a consultation. All
// fields are optional; range checks live in Validate so bad values are
// rejected at write time rather than silently stored.
type VitalSigns struct {
	BloodPressure string   `gorm:"size:20" json:"bloodPressure,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	HeartRate     *int     `json:"heartRate,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

// Validate checks every present measurement against its clinical range.
func (v *VitalSigns) Validate() error {
	if v.Temperature != nil && (*v.Temperature < 30 || *v.Temperature > 50) {
		return fmt.Errorf("temperature must be between 30 and 50 °C")
	}
	if v.HeartRate != nil && (*v.HeartRate < 30 || *v.HeartRate > 250) {
		return fmt.Errorf("heart rate must be between 30 and 250 bpm")
	}
	if v.Weight != nil && (*v.Weight < 0.5 || *v.Weight > 500) {
		return fmt.Errorf("weight must be between 0.5 and 500 kg")
	}
	if v.Height != nil && (*v.Height < 30 || *v.Height > 300) {
		return fmt.Errorf("height must be between 30 and 300 cm")
	}
	return nil
}

// Merge applies the set fields of other on top of v, field by field.
// Unset fields keep their previous value.
func (v *VitalSigns) Merge(other VitalSigns) {
	if other.BloodPressure != "" {
		v.BloodPressure = other.BloodPressure
	}
	if other.Temperature != nil {
		v.Temperature = other.Temperature
	}
	if other.HeartRate != nil {
		v.HeartRate = other.HeartRate
	}
	if other.Weight != nil {
		v.Weight = other.Weight
	}
	if other.Height != nil {
		v.Height = other.Height
	}
}

// Consultation represents the clinical write-up of a completed appointment.
// Exactly one consultation exists per appointment.
type Consultation struct {
	BaseModel
	AppointmentID string     `gorm:"size:36;uniqueIndex" json:"appointmentId"`
	PatientID     string     `gorm:"size:36;index" json:"patientId"`
	DoctorID      string     `gorm:"size:36;index" json:"doctorId"`
	Date          time.Time  `json:"date"`
	Diagnosis     string     `gorm:"size:2000" json:"diagnosis,omitempty"`
	Symptoms      string     `gorm:"size:1000" json:"symptoms,omitempty"`
	Treatment     string     `gorm:"size:1500" json:"treatment,omitempty"`
	MedicalNotes  string     `gorm:"size:2000" json:"medicalNotes,omitempty"`
	VitalSigns    VitalSigns `gorm:"embedded;embeddedPrefix:vs_" json:"vitalSigns"`
	LabTests      []string   `gorm:"serializer:json" json:"labTests"`
	FollowUpDate  *time.Time `json:"followUpDate,omitempty"`

	// Relations
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     *User        `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      *User        `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// BMI returns the body mass index rounded to one decimal, or nil when
// weight or height is missing.
func (c *Consultation) BMI() *float64 {
	w, h := c.VitalSigns.Weight, c.VitalSigns.Height
	if w == nil || h == nil {
		return nil
	}
	meters := *h / 100
	bmi := math.Round(*w/(meters*meters)*10) / 10
	return &bmi
}

// NeedsFollowUp reports whether a follow-up visit is still pending.
func (c *Consultation) NeedsFollowUp() bool {
	return c.FollowUpDate != nil && c.FollowUpDate.After(time.Now())
}

// ConsultationSummary is the derived read-only view attached to API
// responses alongside the consultation itself.
type ConsultationSummary struct {
	Date          time.Time `json:"date"`
	Diagnosis     string    `json:"diagnosis"`
	Treatment     string    `json:"treatment"`
	BMI           *float64  `json:"bmi"`
	NeedsFollowUp bool      `json:"needsFollowUp"`
}

// Summary assembles the derived view of the consultation.
func (c *Consultation) Summary() ConsultationSummary {
	return ConsultationSummary{
		Date:          c.Date,
		Diagnosis:     c.Diagnosis,
		Treatment:     c.Treatment,
		BMI:           c.BMI(),
		NeedsFollowUp: c.NeedsFollowUp(),
	}
}
