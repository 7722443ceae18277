package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinic-manager-server/internal/models"
)

func testMedications() []models.Medication {
	return []models.Medication{{
		Name:      "Amoxicillin",
		Dosage:    "500mg",
		Route:     "oral",
		Frequency: "3x daily",
		Duration:  "7 days",
	}}
}

func prescriptionFixture() (*PrescriptionService, *fakePrescriptions, *fakeConsultations) {
	prescriptions := newFakePrescriptions()
	consultations := newFakeConsultations()
	consultations.add(&models.Consultation{
		BaseModel: models.BaseModel{ID: "cons-1"},
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
	})
	pharmacies := newFakePharmacies(&models.Pharmacy{
		BaseModel:         models.BaseModel{ID: "ph-1"},
		Name:              "Central Pharmacy",
		PartnershipStatus: models.PartnershipActive,
		IsActive:          true,
	}, &models.Pharmacy{
		BaseModel:         models.BaseModel{ID: "ph-suspended"},
		Name:              "Suspended Pharmacy",
		PartnershipStatus: models.PartnershipSuspended,
		IsActive:          true,
	})
	return NewPrescriptionService(prescriptions, consultations, pharmacies, zap.NewNop()), prescriptions, consultations
}

func TestCreatePrescription(t *testing.T) {
	svc, _, _ := prescriptionFixture()

	p, err := svc.Create(context.Background(), "cons-1", "doctor-1", testMedications(), "take with food")
	require.NoError(t, err)

	assert.Equal(t, models.PrescriptionDraft, p.Status)
	assert.Equal(t, "patient-1", p.PatientID)
	assert.Equal(t, "RX", p.PrescriptionNumber[:2])
	assert.False(t, p.Medications[0].StartDate.IsZero())
}

func TestCreatePrescription_RequiresMedications(t *testing.T) {
	svc, _, _ := prescriptionFixture()

	_, err := svc.Create(context.Background(), "cons-1", "doctor-1", nil, "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreatePrescription_ValidatesMedications(t *testing.T) {
	svc, _, _ := prescriptionFixture()

	meds := testMedications()
	meds[0].Route = "osmosis"
	_, err := svc.Create(context.Background(), "cons-1", "doctor-1", meds, "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreatePrescription_ConsultationOwnership(t *testing.T) {
	svc, _, _ := prescriptionFixture()

	_, err := svc.Create(context.Background(), "cons-1", "doctor-2", testMedications(), "")
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreatePrescription_OnePerConsultation(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, first.ID, svcErr.Details.(map[string]any)["prescriptionId"])
}

func TestCreatePrescription_RetriesNumberOnce(t *testing.T) {
	svc, prescriptions, _ := prescriptionFixture()
	prescriptions.failCreatesLeft = 1

	p, err := svc.Create(context.Background(), "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, p.PrescriptionNumber)

	// Two consecutive collisions surface as unexpected
	svc2, prescriptions2, _ := prescriptionFixture()
	prescriptions2.failCreatesLeft = 2
	_, err = svc2.Create(context.Background(), "cons-1", "doctor-1", testMedications(), "")
	assert.Equal(t, KindUnexpected, KindOf(err))
}

func TestUpdatePrescription_FrozenAfterSigning(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)
	_, err = svc.Sign(ctx, p.ID, "doctor-1")
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, "doctor-1", testMedications(), nil)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSignPrescription(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)

	signed, err := svc.Sign(ctx, p.ID, "doctor-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrescriptionSigned, signed.Status)
	require.NotNil(t, signed.SignedAt)
	require.NotNil(t, signed.ValidUntil)
	assert.Equal(t, signed.SignedAt.Add(365*24*time.Hour), *signed.ValidUntil)
}

func TestSignPrescription_Ownership(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)

	_, err = svc.Sign(ctx, p.ID, "doctor-2")
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestAssignToPharmacy(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)
	_, err = svc.Sign(ctx, p.ID, "doctor-1")
	require.NoError(t, err)

	assigned, err := svc.AssignToPharmacy(ctx, p.ID, "ph-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrescriptionAssigned, assigned.Status)
	require.NotNil(t, assigned.PharmacyID)
	assert.Equal(t, "ph-1", *assigned.PharmacyID)
}

func TestAssignToPharmacy_RequiresSigned(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)

	_, err = svc.AssignToPharmacy(ctx, p.ID, "ph-1")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAssignToPharmacy_InactivePartnerHidden(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)
	_, err = svc.Sign(ctx, p.ID, "doctor-1")
	require.NoError(t, err)

	_, err = svc.AssignToPharmacy(ctx, p.ID, "ph-suspended")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.AssignToPharmacy(ctx, p.ID, "ph-missing")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPharmacyUpdateStatus_WalksStateMachine(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)
	_, err = svc.Sign(ctx, p.ID, "doctor-1")
	require.NoError(t, err)
	_, err = svc.AssignToPharmacy(ctx, p.ID, "ph-1")
	require.NoError(t, err)

	for _, status := range []models.PrescriptionStatus{
		models.PrescriptionPreparing, models.PrescriptionReady, models.PrescriptionDelivered,
	} {
		updated, err := svc.PharmacyUpdateStatus(ctx, p.ID, status, "")
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestPharmacyUpdateStatus_RejectsSkips(t *testing.T) {
	svc, _, _ := prescriptionFixture()
	ctx := context.Background()

	p, err := svc.Create(ctx, "cons-1", "doctor-1", testMedications(), "")
	require.NoError(t, err)
	_, err = svc.Sign(ctx, p.ID, "doctor-1")
	require.NoError(t, err)
	_, err = svc.AssignToPharmacy(ctx, p.ID, "ph-1")
	require.NoError(t, err)

	// assigned cannot jump straight to delivered
	_, err = svc.PharmacyUpdateStatus(ctx, p.ID, models.PrescriptionDelivered, "")
	assert.Equal(t, KindValidation, KindOf(err))

	// and the doctor-side statuses are not accepted at all
	_, err = svc.PharmacyUpdateStatus(ctx, p.ID, models.PrescriptionSigned, "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPharmacyQueue(t *testing.T) {
	svc, prescriptions, _ := prescriptionFixture()
	ctx := context.Background()

	phID := "ph-1"
	prescriptions.add(&models.Prescription{Status: models.PrescriptionAssigned, PharmacyID: &phID})
	prescriptions.add(&models.Prescription{Status: models.PrescriptionPreparing, PharmacyID: &phID})
	prescriptions.add(&models.Prescription{Status: models.PrescriptionDelivered, PharmacyID: &phID})

	list, total, err := svc.PharmacyQueue(ctx, "ph-1", "assigned,preparing", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	// No filter means the whole queue
	_, total, err = svc.PharmacyQueue(ctx, "ph-1", "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestPharmacyQueue_InvalidFilter(t *testing.T) {
	svc, _, _ := prescriptionFixture()

	_, _, err := svc.PharmacyQueue(context.Background(), "ph-1", "draft", 1, 20)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPharmacyQueue_UnknownPharmacy(t *testing.T) {
	svc, _, _ := prescriptionFixture()

	_, _, err := svc.PharmacyQueue(context.Background(), "nope", "", 1, 20)
	assert.Equal(t, KindNotFound, KindOf(err))
}
