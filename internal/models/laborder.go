package models

import (
	"fmt"
	"math/rand"
	"time"
)

// LabOrderStatus is the order-level status, rolled up from per-test statuses.
type LabOrderStatus string

const (
	LabOrderPending            LabOrderStatus = "pending"
	LabOrderOrdered            LabOrderStatus = "ordered"
	LabOrderSampleCollected    LabOrderStatus = "sample_collected"
	LabOrderInProgress         LabOrderStatus = "in_progress"
	LabOrderPartiallyCompleted LabOrderStatus = "partially_completed"
	LabOrderCompleted          LabOrderStatus = "completed"
	LabOrderReported           LabOrderStatus = "reported"
	LabOrderCancelled          LabOrderStatus = "cancelled"
)

// LabTestStatus is the status of a single test within an order.
type LabTestStatus string

const (
	TestOrdered         LabTestStatus = "ordered"
	TestSampleCollected LabTestStatus = "sample_collected"
	TestInProgress      LabTestStatus = "in_progress"
	TestCompleted       LabTestStatus = "completed"
	TestReported        LabTestStatus = "reported"
	TestCancelled       LabTestStatus = "cancelled"
)

// LabPriority drives the turnaround SLA for the whole order.
type LabPriority string

const (
	PriorityLow    LabPriority = "low"
	PriorityNormal LabPriority = "normal"
	PriorityHigh   LabPriority = "high"
	PriorityUrgent LabPriority = "urgent"
	PrioritySTAT   LabPriority = "stat"
)

// ValidLabPriority reports whether p belongs to the closed set.
func ValidLabPriority(p LabPriority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent, PrioritySTAT:
		return true
	}
	return false
}

// TestCategories is the closed vocabulary of test categories.
var TestCategories = []string{
	"hematology", "biochemistry", "immunology", "microbiology",
	"parasitology", "hormonology", "toxicology", "genetics", "pathology",
	"cytology", "serology", "allergy", "coagulation", "urinalysis",
	"cardiac", "hepatic", "renal", "lipid", "diabetes", "thyroid", "other",
}

// SpecimenTypes is the closed vocabulary of specimen types.
var SpecimenTypes = []string{
	"blood", "urine", "stool", "saliva", "sputum", "csf",
	"pleural_fluid", "ascitic_fluid", "biopsy", "smear", "other",
}

// TestUrgencies is the closed vocabulary of per-test urgency levels.
var TestUrgencies = []string{"normal", "urgent", "stat", "scheduled"}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// TestResult is the reported outcome of a single test.
type TestResult struct {
	Value          string     `json:"value,omitempty"`
	Unit           string     `json:"unit,omitempty"`
	ReferenceRange string     `json:"referenceRange,omitempty"`
	Interpretation string     `json:"interpretation,omitempty"`
	Comments       string     `json:"comments,omitempty"`
	ReportedAt     *time.Time `json:"reportedAt,omitempty"`
	ReportedBy     string     `json:"reportedBy,omitempty"`
}

// LabTest is a single test line within an order.
type LabTest struct {
	TestCode            string        `json:"testCode"`
	TestName            string        `json:"testName"`
	Category            string        `json:"category"`
	Specimen            string        `json:"specimen"`
	Urgency             string        `json:"urgency"`
	FastingRequired     bool          `json:"fastingRequired"`
	SpecialInstructions string        `json:"specialInstructions,omitempty"`
	Price               float64       `json:"price"`
	Status              LabTestStatus `json:"status"`
	Result              *TestResult   `json:"result,omitempty"`
	CollectedAt         *time.Time    `json:"collectedAt,omitempty"`
	CompletedAt         *time.Time    `json:"completedAt,omitempty"`
}

// Validate checks the required fields and closed vocabularies of a test.
func (t *LabTest) Validate() error {
	if t.TestCode == "" || t.TestName == "" {
		return fmt.Errorf("test code and name are required")
	}
	if !contains(TestCategories, t.Category) {
		return fmt.Errorf("unknown test category %q", t.Category)
	}
	if !contains(SpecimenTypes, t.Specimen) {
		return fmt.Errorf("unknown specimen type %q", t.Specimen)
	}
	if t.Urgency != "" && !contains(TestUrgencies, t.Urgency) {
		return fmt.Errorf("unknown urgency %q", t.Urgency)
	}
	if t.Price < 0 {
		return fmt.Errorf("test price cannot be negative")
	}
	return nil
}

// ClinicalInfo is the clinical context attached to a lab order.
type ClinicalInfo struct {
	Symptoms        []string `json:"symptoms,omitempty"`
	Diagnosis       string   `json:"diagnosis,omitempty"`
	Medications     []string `json:"medications,omitempty"`
	Allergies       []string `json:"allergies,omitempty"`
	RelevantHistory string   `json:"relevantHistory,omitempty"`
}

// LabOrder is a multi-test aggregate whose order-level status is a
// deterministic roll-up of its per-test statuses.
type LabOrder struct {
	BaseModel
	OrderNumber          string         `gorm:"size:20;uniqueIndex" json:"orderNumber"`
	PatientID            string         `gorm:"size:36;index" json:"patientId"`
	DoctorID             string         `gorm:"size:36;index" json:"doctorId"`
	ConsultationID       *string        `gorm:"size:36;index" json:"consultationId,omitempty"`
	LaboratoryID         *string        `gorm:"size:36;index" json:"laboratoryId,omitempty"`
	Tests                []LabTest      `gorm:"serializer:json" json:"tests"`
	Status               LabOrderStatus `gorm:"size:25;default:'pending';index" json:"status"`
	Priority             LabPriority    `gorm:"size:10;default:'normal'" json:"priority"`
	ClinicalInfo         ClinicalInfo   `gorm:"serializer:json" json:"clinicalInfo"`
	AppointmentDate      *time.Time     `json:"appointmentDate,omitempty"`
	SampleCollectionDate *time.Time     `json:"sampleCollectionDate,omitempty"`
	ExpectedReportDate   *time.Time     `json:"expectedReportDate,omitempty"`
	ActualReportDate     *time.Time     `json:"actualReportDate,omitempty"`
	TotalAmount          float64        `json:"totalAmount"`
	Notes                string         `gorm:"size:1000" json:"notes,omitempty"`
	LabNotes             string         `gorm:"size:1000" json:"labNotes,omitempty"`
	IsActive             bool           `gorm:"default:true" json:"isActive"`

	// Relations
	Patient    *User       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor     *User       `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Laboratory *Laboratory `gorm:"foreignKey:LaboratoryID" json:"laboratory,omitempty"`
}

// NewLabOrderNumber builds an order number from the date plus a random
// four digit suffix, e.g. LAB202608290913. Uniqueness is backed by the
// database index; callers retry once on a duplicate key.
func NewLabOrderNumber(now time.Time) string {
	return fmt.Sprintf("LAB%s%04d", now.Format("20060102"), rand.Intn(10000))
}

// RecomputeTotal sums the test prices. Missing prices count as zero.
// Called on every write of the test list.
func (o *LabOrder) RecomputeTotal() {
	total := 0.0
	for _, t := range o.Tests {
		total += t.Price
	}
	o.TotalAmount = total
}

// slaHours maps priority to the turnaround SLA offset.
func (o *LabOrder) slaHours() time.Duration {
	switch o.Priority {
	case PrioritySTAT:
		return 2 * time.Hour
	case PriorityUrgent:
		return 6 * time.Hour
	default:
		return 48 * time.Hour
	}
}

// ComputeExpectedReportDate derives the turnaround estimate from the
// sample collection date, falling back to the appointment date. Left
// unset when neither is available.
func (o *LabOrder) ComputeExpectedReportDate() {
	base := o.SampleCollectionDate
	if base == nil {
		base = o.AppointmentDate
	}
	if base == nil {
		return
	}
	expected := base.Add(o.slaHours())
	o.ExpectedReportDate = &expected
}

// RollUpStatus recomputes the order-level status from the per-test
// statuses. Rules are evaluated in fixed priority order; the first
// match wins. Cancelled tests are excluded so a partially cancelled
// order still rolls up from its live tests; when every test is
// cancelled the order keeps its current status (cancelling the order
// itself is an explicit operation).
func (o *LabOrder) RollUpStatus() {
	live := make([]LabTestStatus, 0, len(o.Tests))
	for _, t := range o.Tests {
		if t.Status != TestCancelled {
			live = append(live, t.Status)
		}
	}
	if len(live) == 0 {
		return
	}

	completed := 0
	inProgress := 0
	sampleCollected := 0
	for _, s := range live {
		switch s {
		case TestCompleted:
			completed++
		case TestInProgress:
			inProgress++
		case TestSampleCollected:
			sampleCollected++
		}
	}

	switch {
	case completed == len(live):
		o.Status = LabOrderCompleted
	case completed > 0:
		o.Status = LabOrderPartiallyCompleted
	case inProgress > 0:
		o.Status = LabOrderInProgress
	case sampleCollected == len(live):
		o.Status = LabOrderSampleCollected
	}
}

// CanBeModified reports whether the order content is still editable.
func (o *LabOrder) CanBeModified() bool {
	return o.Status == LabOrderPending || o.Status == LabOrderOrdered
}

// CanBeCancelled reports whether the order may still be cancelled.
func (o *LabOrder) CanBeCancelled() bool {
	switch o.Status {
	case LabOrderCompleted, LabOrderReported, LabOrderCancelled:
		return false
	}
	return true
}
