package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMedication() Medication {
	return Medication{
		Name:      "Amoxicillin",
		Dosage:    "500mg",
		Route:     "oral",
		Frequency: "3x daily",
		Duration:  "7 days",
	}
}

func TestMedicationValidate(t *testing.T) {
	m := validMedication()
	assert.NoError(t, m.Validate())

	m = validMedication()
	m.Name = ""
	assert.Error(t, m.Validate())

	m = validMedication()
	m.Route = "osmosis"
	assert.Error(t, m.Validate())

	m = validMedication()
	m.Renewals = 13
	assert.Error(t, m.Validate())

	m = validMedication()
	m.Renewals = 12
	assert.NoError(t, m.Validate())
}

func TestPrescriptionSign(t *testing.T) {
	now := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)

	p := &Prescription{Status: PrescriptionDraft, Medications: []Medication{validMedication()}}
	require.NoError(t, p.Sign(now))

	assert.Equal(t, PrescriptionSigned, p.Status)
	require.NotNil(t, p.SignedAt)
	assert.Equal(t, now, *p.SignedAt)
	require.NotNil(t, p.ValidUntil)
	assert.Equal(t, now.Add(365*24*time.Hour), *p.ValidUntil)
}

func TestPrescriptionSign_NoMedications(t *testing.T) {
	p := &Prescription{Status: PrescriptionDraft}
	err := p.Sign(time.Now())

	require.Error(t, err)
	assert.Equal(t, PrescriptionDraft, p.Status)
	assert.Nil(t, p.ValidUntil)
}

func TestPrescriptionSign_AlreadySigned(t *testing.T) {
	p := &Prescription{Status: PrescriptionSigned, Medications: []Medication{validMedication()}}
	assert.Error(t, p.Sign(time.Now()))
}

func TestPrescriptionAssignToPharmacy(t *testing.T) {
	now := time.Now()

	p := &Prescription{Status: PrescriptionSigned}
	require.NoError(t, p.AssignToPharmacy("ph-1", now))
	assert.Equal(t, PrescriptionAssigned, p.Status)
	require.NotNil(t, p.PharmacyID)
	assert.Equal(t, "ph-1", *p.PharmacyID)
	require.NotNil(t, p.AssignedAt)

	// Drafts cannot be routed
	p = &Prescription{Status: PrescriptionDraft}
	assert.Error(t, p.AssignToPharmacy("ph-1", now))
}

func TestApplyPharmacyStatus_ForwardPath(t *testing.T) {
	now := time.Now()
	p := &Prescription{Status: PrescriptionAssigned}

	require.NoError(t, p.ApplyPharmacyStatus(PrescriptionPreparing, now))
	assert.NotNil(t, p.PreparingStartedAt)

	require.NoError(t, p.ApplyPharmacyStatus(PrescriptionReady, now))
	assert.NotNil(t, p.ReadyAt)

	require.NoError(t, p.ApplyPharmacyStatus(PrescriptionDelivered, now))
	assert.NotNil(t, p.DeliveredAt)
	assert.Equal(t, PrescriptionDelivered, p.Status)
}

func TestApplyPharmacyStatus_Rejection(t *testing.T) {
	now := time.Now()

	p := &Prescription{Status: PrescriptionAssigned}
	require.NoError(t, p.ApplyPharmacyStatus(PrescriptionRejected, now))
	assert.NotNil(t, p.RejectedAt)

	p = &Prescription{Status: PrescriptionPreparing}
	require.NoError(t, p.ApplyPharmacyStatus(PrescriptionRejected, now))

	// Ready prescriptions can only be delivered
	p = &Prescription{Status: PrescriptionReady}
	assert.Error(t, p.ApplyPharmacyStatus(PrescriptionRejected, now))
}

func TestApplyPharmacyStatus_NoBackwardMoves(t *testing.T) {
	now := time.Now()

	p := &Prescription{Status: PrescriptionReady}
	assert.Error(t, p.ApplyPharmacyStatus(PrescriptionPreparing, now))

	p = &Prescription{Status: PrescriptionDelivered}
	assert.Error(t, p.ApplyPharmacyStatus(PrescriptionReady, now))

	p = &Prescription{Status: PrescriptionAssigned}
	assert.Error(t, p.ApplyPharmacyStatus(PrescriptionDelivered, now))
}

func TestPrescriptionIsExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.False(t, (&Prescription{}).IsExpired())
	assert.True(t, (&Prescription{ValidUntil: &past}).IsExpired())
	assert.False(t, (&Prescription{ValidUntil: &future}).IsExpired())
}

func TestNewPrescriptionNumber(t *testing.T) {
	now := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	n := NewPrescriptionNumber(now)

	assert.Len(t, n, 14)
	assert.Equal(t, "RX20260316", n[:10])
}
