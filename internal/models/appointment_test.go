package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentBlocking(t *testing.T) {
	assert.True(t, (&Appointment{Status: StatusScheduled}).Blocking())
	assert.True(t, (&Appointment{Status: StatusConfirmed}).Blocking())
	assert.False(t, (&Appointment{Status: StatusCompleted}).Blocking())
	assert.False(t, (&Appointment{Status: StatusCancelled}).Blocking())
	assert.False(t, (&Appointment{Status: StatusNoShow}).Blocking())
}

func TestAppointmentCancel(t *testing.T) {
	now := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	a := &Appointment{Status: StatusScheduled}

	a.Cancel("patient request", now)
	assert.Equal(t, StatusCancelled, a.Status)
	require.NotNil(t, a.CancelledAt)
	assert.Equal(t, now, *a.CancelledAt)
	assert.Equal(t, "patient request", a.CancellationReason)
}

func TestAppointmentCancel_Idempotent(t *testing.T) {
	first := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	a := &Appointment{Status: StatusScheduled}
	a.Cancel("first reason", first)
	a.Cancel("second reason", later)

	// The original cancellation wins
	require.NotNil(t, a.CancelledAt)
	assert.Equal(t, first, *a.CancelledAt)
	assert.Equal(t, "first reason", a.CancellationReason)
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	a := &Appointment{StartTime: start, EndTime: start.Add(45 * time.Minute)}
	assert.Equal(t, 45, a.DurationMinutes())
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Doctor")
	require.True(t, ok)
	assert.Equal(t, RoleDoctor, role)

	role, ok = ParseRole("  ADMIN ")
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("wizard")
	assert.False(t, ok)
}

func TestRoleIs(t *testing.T) {
	assert.True(t, Role("DOCTOR").Is(RoleDoctor))
	assert.True(t, RolePatient.Is(Role("Patient")))
	assert.False(t, RoleNurse.Is(RoleDoctor))
}
