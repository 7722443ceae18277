package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/scheduling"
)

// AppointmentService owns appointment creation, rescheduling,
// cancellation and availability. Conflict detection runs against the
// doctor's blocking appointments through the overlap engine; writes for
// the same doctor are serialized with a per-doctor lock so two
// concurrent bookings cannot both pass the check.
type AppointmentService struct {
	appointments AppointmentRepository
	users        UserRepository
	locks        *scheduling.DoctorLocks
	log          *zap.Logger
}

func NewAppointmentService(appointments AppointmentRepository, users UserRepository, log *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		users:        users,
		locks:        scheduling.NewDoctorLocks(),
		log:          log,
	}
}

// ScheduleCommand carries the input of Schedule.
type ScheduleCommand struct {
	PatientID string
	DoctorID  string
	StartTime time.Time
	EndTime   time.Time
	Reason    string
}

// ConflictDetail is the payload attached to a scheduling conflict: the
// interval of the appointment already occupying the slot.
type ConflictDetail struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Schedule books a new appointment. The end time must be after the
// start time, both parties must resolve and the doctor must carry the
// doctor role; the slot must be free of the doctor's scheduled and
// confirmed appointments.
func (s *AppointmentService) Schedule(ctx context.Context, cmd ScheduleCommand) (*models.Appointment, error) {
	if !cmd.EndTime.After(cmd.StartTime) {
		return nil, Invalid("end time must be after start time")
	}

	if _, err := s.resolveUser(ctx, cmd.PatientID, "patient"); err != nil {
		return nil, err
	}
	if _, err := s.resolveDoctor(ctx, cmd.DoctorID); err != nil {
		return nil, err
	}

	s.locks.Lock(cmd.DoctorID)
	defer s.locks.Unlock(cmd.DoctorID)

	if err := s.checkConflict(ctx, cmd.DoctorID, "", cmd.StartTime, cmd.EndTime); err != nil {
		return nil, err
	}

	a := &models.Appointment{
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		StartTime: cmd.StartTime,
		EndTime:   cmd.EndTime,
		Reason:    cmd.Reason,
		Status:    models.StatusScheduled,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		s.log.Error("creating appointment", zap.Error(err))
		return nil, Unexpected(err, "failed to create appointment")
	}
	return a, nil
}

// UpdateCommand is a partial appointment patch. Nil fields are left
// untouched; a time change re-runs the conflict check against the
// doctor's other appointments.
type UpdateCommand struct {
	StartTime *time.Time
	EndTime   *time.Time
	Status    *models.AppointmentStatus
	Reason    *string
	Notes     *string
}

// Update applies a partial patch to an appointment.
func (s *AppointmentService) Update(ctx context.Context, id string, cmd UpdateCommand) (*models.Appointment, error) {
	a, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil && !models.ValidAppointmentStatus(*cmd.Status) {
		return nil, Invalid("invalid appointment status %q", *cmd.Status)
	}

	if cmd.StartTime != nil || cmd.EndTime != nil {
		newStart, newEnd := a.StartTime, a.EndTime
		if cmd.StartTime != nil {
			newStart = *cmd.StartTime
		}
		if cmd.EndTime != nil {
			newEnd = *cmd.EndTime
		}
		if !newEnd.After(newStart) {
			return nil, Invalid("end time must be after start time")
		}

		s.locks.Lock(a.DoctorID)
		defer s.locks.Unlock(a.DoctorID)

		if err := s.checkConflict(ctx, a.DoctorID, a.ID, newStart, newEnd); err != nil {
			return nil, err
		}
		a.StartTime = newStart
		a.EndTime = newEnd
	}

	if cmd.Status != nil {
		a.Status = *cmd.Status
	}
	if cmd.Reason != nil {
		a.Reason = *cmd.Reason
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}

	if err := s.appointments.Save(ctx, a); err != nil {
		s.log.Error("updating appointment", zap.String("id", id), zap.Error(err))
		return nil, Unexpected(err, "failed to update appointment")
	}
	return a, nil
}

// Cancel moves an appointment into cancelled. Patients may only cancel
// their own appointments. Cancelling an already cancelled appointment
// is a no-op returning the current state, not an error.
func (s *AppointmentService) Cancel(ctx context.Context, id, actorID string, actorRole models.Role, reason string) (*models.Appointment, error) {
	a, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole.Is(models.RolePatient) && a.PatientID != actorID {
		return nil, Forbidden("you can only cancel your own appointments")
	}

	if a.Status == models.StatusCancelled {
		return a, nil
	}

	a.Cancel(reason, time.Now())
	if err := s.appointments.Save(ctx, a); err != nil {
		s.log.Error("cancelling appointment", zap.String("id", id), zap.Error(err))
		return nil, Unexpected(err, "failed to cancel appointment")
	}
	return a, nil
}

// Availability is the free-slot view of a doctor's working day.
type Availability struct {
	DoctorID     string            `json:"doctorId"`
	DoctorName   string            `json:"doctorName"`
	Date         string            `json:"date"`
	WorkingHours scheduling.Slot   `json:"workingHours"`
	Slots        []scheduling.Slot `json:"availableSlots"`
	TotalSlots   int               `json:"totalSlotsAvailable"`
}

// GetAvailability derives the free slots of a doctor's 08:00-18:00
// working day from the blocking appointments intersecting it.
func (s *AppointmentService) GetAvailability(ctx context.Context, doctorID, date string) (*Availability, error) {
	doctor, err := s.resolveDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, Invalid("invalid date format, expected YYYY-MM-DD")
	}

	day := scheduling.WorkDay(parsed)
	booked, err := s.appointments.FindBlockingBetween(ctx, doctorID, day.Start, day.End)
	if err != nil {
		s.log.Error("loading appointments for availability", zap.String("doctorId", doctorID), zap.Error(err))
		return nil, Unexpected(err, "failed to load appointments")
	}

	intervals := make([]scheduling.Interval, 0, len(booked))
	for _, a := range booked {
		intervals = append(intervals, scheduling.Interval{Start: a.StartTime, End: a.EndTime})
	}
	slots := scheduling.FreeSlots(day, intervals)

	return &Availability{
		DoctorID:     doctorID,
		DoctorName:   doctor.FirstName + " " + doctor.LastName,
		Date:         date,
		WorkingHours: scheduling.Slot{Start: "08:00", End: "18:00"},
		Slots:        slots,
		TotalSlots:   len(slots),
	}, nil
}

// checkConflict runs the overlap engine over the doctor's blocking
// appointments, excluding excludeID. On a hit the conflicting interval
// is attached as detail.
func (s *AppointmentService) checkConflict(ctx context.Context, doctorID, excludeID string, start, end time.Time) error {
	existing, err := s.appointments.FindBlocking(ctx, doctorID, excludeID)
	if err != nil {
		s.log.Error("loading appointments for conflict check", zap.String("doctorId", doctorID), zap.Error(err))
		return Unexpected(err, "failed to check for conflicts")
	}
	for _, other := range existing {
		if scheduling.Overlaps(start, end, other.StartTime, other.EndTime) {
			return Conflict("the doctor is not available at this time").
				WithDetails(ConflictDetail{Start: other.StartTime, End: other.EndTime})
		}
	}
	return nil
}

func (s *AppointmentService) getAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("appointment not found")
		}
		return nil, Unexpected(err, "failed to load appointment")
	}
	return a, nil
}

func (s *AppointmentService) resolveUser(ctx context.Context, id, label string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("%s not found", label)
		}
		return nil, Unexpected(err, "failed to resolve %s", label)
	}
	return u, nil
}

func (s *AppointmentService) resolveDoctor(ctx context.Context, id string) (*models.User, error) {
	u, err := s.resolveUser(ctx, id, "doctor")
	if err != nil {
		return nil, err
	}
	if !u.Role.Is(models.RoleDoctor) {
		return nil, NotFound("doctor not found")
	}
	return u, nil
}
