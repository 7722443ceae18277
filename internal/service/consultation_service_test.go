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

func strPtr(s string) *string       { return &s }
func floatPtr(v float64) *float64   { return &v }
func intPtr(v int) *int             { return &v }

func consultationFixture(appointmentStatus models.AppointmentStatus) (*ConsultationService, *fakeConsultations, *models.Appointment) {
	appointments := newFakeAppointments()
	a := appointments.add(&models.Appointment{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		StartTime: time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 16, 9, 30, 0, 0, time.UTC),
		Status:    appointmentStatus,
	})
	consultations := newFakeConsultations()
	return NewConsultationService(consultations, appointments, zap.NewNop()), consultations, a
}

func TestCreateConsultation(t *testing.T) {
	svc, _, a := consultationFixture(models.StatusCompleted)

	c, err := svc.Create(context.Background(), a.ID, "doctor-1", ConsultationInput{
		Diagnosis: strPtr("Seasonal flu"),
		VitalSigns: &models.VitalSigns{
			Weight: floatPtr(70),
			Height: floatPtr(175),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, a.ID, c.AppointmentID)
	assert.Equal(t, "patient-1", c.PatientID)
	assert.Equal(t, "doctor-1", c.DoctorID)
	assert.Equal(t, "Seasonal flu", c.Diagnosis)
	assert.False(t, c.Date.IsZero())
}

func TestCreateConsultation_RequiresCompletedAppointment(t *testing.T) {
	for _, status := range []models.AppointmentStatus{
		models.StatusScheduled, models.StatusConfirmed, models.StatusCancelled, models.StatusNoShow,
	} {
		svc, _, a := consultationFixture(status)
		_, err := svc.Create(context.Background(), a.ID, "doctor-1", ConsultationInput{})
		require.Error(t, err, "status %s", status)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestCreateConsultation_AppointmentNotFound(t *testing.T) {
	svc, _, _ := consultationFixture(models.StatusCompleted)

	_, err := svc.Create(context.Background(), "missing", "doctor-1", ConsultationInput{})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateConsultation_DoctorOwnership(t *testing.T) {
	svc, _, a := consultationFixture(models.StatusCompleted)

	_, err := svc.Create(context.Background(), a.ID, "doctor-2", ConsultationInput{})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateConsultation_OnePerAppointment(t *testing.T) {
	svc, _, a := consultationFixture(models.StatusCompleted)
	ctx := context.Background()

	first, err := svc.Create(ctx, a.ID, "doctor-1", ConsultationInput{})
	require.NoError(t, err)

	_, err = svc.Create(ctx, a.ID, "doctor-1", ConsultationInput{})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	svcErr, ok := AsError(err)
	require.True(t, ok)
	detail := svcErr.Details.(map[string]any)
	assert.Equal(t, first.ID, detail["consultationId"])
}

func TestCreateConsultation_RejectsOutOfRangeVitals(t *testing.T) {
	svc, _, a := consultationFixture(models.StatusCompleted)

	_, err := svc.Create(context.Background(), a.ID, "doctor-1", ConsultationInput{
		VitalSigns: &models.VitalSigns{Temperature: floatPtr(60)},
	})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateConsultation_MergesVitalSigns(t *testing.T) {
	svc, _, a := consultationFixture(models.StatusCompleted)
	ctx := context.Background()

	c, err := svc.Create(ctx, a.ID, "doctor-1", ConsultationInput{
		VitalSigns: &models.VitalSigns{
			BloodPressure: "120/80",
			Weight:        floatPtr(70),
		},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, "doctor-1", ConsultationInput{
		VitalSigns: &models.VitalSigns{HeartRate: intPtr(88)},
	})
	require.NoError(t, err)

	// Earlier measurements survive a partial update
	assert.Equal(t, "120/80", updated.VitalSigns.BloodPressure)
	assert.Equal(t, 70.0, *updated.VitalSigns.Weight)
	assert.Equal(t, 88, *updated.VitalSigns.HeartRate)
}

func TestUpdateConsultation_Ownership(t *testing.T) {
	svc, _, a := consultationFixture(models.StatusCompleted)
	ctx := context.Background()

	c, err := svc.Create(ctx, a.ID, "doctor-1", ConsultationInput{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, "doctor-2", ConsultationInput{Diagnosis: strPtr("x")})
	assert.Equal(t, KindForbidden, KindOf(err))
}
