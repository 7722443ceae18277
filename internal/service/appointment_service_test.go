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

func testPatient() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "patient-1"},
		FirstName: "Alice", LastName: "Martin",
		Role: models.RolePatient,
	}
}

func testDoctor() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "doctor-1"},
		FirstName: "John", LastName: "Smith",
		Role: models.RoleDoctor,
	}
}

func appointmentFixture() (*AppointmentService, *fakeAppointments) {
	appointments := newFakeAppointments()
	users := newFakeUsers(testPatient(), testDoctor())
	return NewAppointmentService(appointments, users, zap.NewNop()), appointments
}

func scheduleAt(hour, min, durMin int) ScheduleCommand {
	start := time.Date(2026, 3, 16, hour, min, 0, 0, time.UTC)
	return ScheduleCommand{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		StartTime: start,
		EndTime:   start.Add(time.Duration(durMin) * time.Minute),
		Reason:    "checkup",
	}
}

func TestSchedule(t *testing.T) {
	svc, _ := appointmentFixture()

	a, err := svc.Schedule(context.Background(), scheduleAt(9, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, a.Status)
	assert.Equal(t, "doctor-1", a.DoctorID)
	assert.Equal(t, "patient-1", a.PatientID)
}

func TestSchedule_Conflict(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	_, err := svc.Schedule(ctx, scheduleAt(9, 0, 60))
	require.NoError(t, err)

	_, err = svc.Schedule(ctx, scheduleAt(9, 30, 30))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	svcErr, ok := AsError(err)
	require.True(t, ok)
	detail, ok := svcErr.Details.(ConflictDetail)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC), detail.Start)
}

func TestSchedule_BackToBackDoesNotConflict(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	_, err := svc.Schedule(ctx, scheduleAt(9, 0, 60))
	require.NoError(t, err)

	// Starts exactly when the previous one ends
	_, err = svc.Schedule(ctx, scheduleAt(10, 0, 30))
	assert.NoError(t, err)
}

func TestSchedule_CancelledAppointmentFreesSlot(t *testing.T) {
	svc, appointments := appointmentFixture()
	ctx := context.Background()

	a, err := svc.Schedule(ctx, scheduleAt(9, 0, 60))
	require.NoError(t, err)

	a.Status = models.StatusCancelled
	require.NoError(t, appointments.Save(ctx, a))

	_, err = svc.Schedule(ctx, scheduleAt(9, 0, 60))
	assert.NoError(t, err)
}

func TestSchedule_InvalidInterval(t *testing.T) {
	svc, _ := appointmentFixture()

	cmd := scheduleAt(9, 0, 30)
	cmd.EndTime = cmd.StartTime
	_, err := svc.Schedule(context.Background(), cmd)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSchedule_UnknownDoctor(t *testing.T) {
	svc, _ := appointmentFixture()

	cmd := scheduleAt(9, 0, 30)
	cmd.DoctorID = "nobody"
	_, err := svc.Schedule(context.Background(), cmd)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSchedule_DoctorMustCarryDoctorRole(t *testing.T) {
	svc, _ := appointmentFixture()

	cmd := scheduleAt(9, 0, 30)
	cmd.DoctorID = "patient-1"
	_, err := svc.Schedule(context.Background(), cmd)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdate_ReschedulingChecksConflicts(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	first, err := svc.Schedule(ctx, scheduleAt(9, 0, 60))
	require.NoError(t, err)
	second, err := svc.Schedule(ctx, scheduleAt(11, 0, 60))
	require.NoError(t, err)

	// Moving the second onto the first conflicts
	newStart := first.StartTime.Add(30 * time.Minute)
	newEnd := newStart.Add(30 * time.Minute)
	_, err = svc.Update(ctx, second.ID, UpdateCommand{StartTime: &newStart, EndTime: &newEnd})
	assert.Equal(t, KindConflict, KindOf(err))

	// Rescheduling within its own slot does not conflict with itself
	sameStart := second.StartTime.Add(15 * time.Minute)
	sameEnd := sameStart.Add(30 * time.Minute)
	updated, err := svc.Update(ctx, second.ID, UpdateCommand{StartTime: &sameStart, EndTime: &sameEnd})
	require.NoError(t, err)
	assert.Equal(t, sameStart, updated.StartTime)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	a, err := svc.Schedule(ctx, scheduleAt(9, 0, 30))
	require.NoError(t, err)

	bad := models.AppointmentStatus("teleported")
	_, err = svc.Update(ctx, a.ID, UpdateCommand{Status: &bad})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCancel(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	a, err := svc.Schedule(ctx, scheduleAt(9, 0, 30))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, a.ID, "patient-1", models.RolePatient, "cannot make it")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "cannot make it", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestCancel_Idempotent(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	a, err := svc.Schedule(ctx, scheduleAt(9, 0, 30))
	require.NoError(t, err)

	first, err := svc.Cancel(ctx, a.ID, "patient-1", models.RolePatient, "first")
	require.NoError(t, err)

	second, err := svc.Cancel(ctx, a.ID, "patient-1", models.RolePatient, "second")
	require.NoError(t, err)
	assert.Equal(t, *first.CancelledAt, *second.CancelledAt)
	assert.Equal(t, "first", second.CancellationReason)
}

func TestCancel_PatientOwnershipEnforced(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	a, err := svc.Schedule(ctx, scheduleAt(9, 0, 30))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, a.ID, "patient-2", models.RolePatient, "")
	assert.Equal(t, KindForbidden, KindOf(err))

	// Staff may cancel on the patient's behalf
	_, err = svc.Cancel(ctx, a.ID, "secretary-1", models.RoleSecretary, "clinic closure")
	assert.NoError(t, err)
}

func TestGetAvailability(t *testing.T) {
	svc, _ := appointmentFixture()
	ctx := context.Background()

	_, err := svc.Schedule(ctx, scheduleAt(10, 0, 30))
	require.NoError(t, err)

	availability, err := svc.GetAvailability(ctx, "doctor-1", "2026-03-16")
	require.NoError(t, err)

	assert.Equal(t, "John Smith", availability.DoctorName)
	assert.Equal(t, "08:00", availability.WorkingHours.Start)
	assert.Equal(t, "18:00", availability.WorkingHours.End)
	require.Equal(t, 2, availability.TotalSlots)
	assert.Equal(t, "08:00", availability.Slots[0].Start)
	assert.Equal(t, "10:00", availability.Slots[0].End)
	assert.Equal(t, "10:30", availability.Slots[1].Start)
	assert.Equal(t, "18:00", availability.Slots[1].End)
}

func TestGetAvailability_EmptyDay(t *testing.T) {
	svc, _ := appointmentFixture()

	availability, err := svc.GetAvailability(context.Background(), "doctor-1", "2026-03-17")
	require.NoError(t, err)
	require.Equal(t, 1, availability.TotalSlots)
	assert.Equal(t, "08:00", availability.Slots[0].Start)
	assert.Equal(t, "18:00", availability.Slots[0].End)
}

func TestGetAvailability_BadDate(t *testing.T) {
	svc, _ := appointmentFixture()

	_, err := svc.GetAvailability(context.Background(), "doctor-1", "16/03/2026")
	assert.Equal(t, KindValidation, KindOf(err))
}
