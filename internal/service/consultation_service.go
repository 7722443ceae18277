package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"clinic-manager-server/internal/models"
)

// ConsultationService gates consultation creation on appointment
// completion and doctor ownership, and enforces the one-consultation-
// per-appointment relation.
type ConsultationService struct {
	consultations ConsultationRepository
	appointments  AppointmentRepository
	log           *zap.Logger
}

func NewConsultationService(consultations ConsultationRepository, appointments AppointmentRepository, log *zap.Logger) *ConsultationService {
	return &ConsultationService{consultations: consultations, appointments: appointments, log: log}
}

// ConsultationInput carries the clinical fields of a create or update.
type ConsultationInput struct {
	Diagnosis    *string
	Symptoms     *string
	Treatment    *string
	MedicalNotes *string
	VitalSigns   *models.VitalSigns
	LabTests     []string
	FollowUpDate *time.Time
}

// Create writes the consultation of a completed appointment. The
// appointment must resolve, be completed and belong to the creating
// doctor; only one consultation may reference it.
func (s *ConsultationService) Create(ctx context.Context, appointmentID, doctorID string, in ConsultationInput) (*models.Consultation, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("appointment not found")
		}
		return nil, Unexpected(err, "failed to load appointment")
	}

	if a.Status != models.StatusCompleted {
		return nil, Invalid("the appointment must be completed before a consultation can be created").
			WithDetails(map[string]any{"currentStatus": a.Status})
	}
	if a.DoctorID != doctorID {
		return nil, Forbidden("you can only create consultations for your own appointments")
	}

	existing, err := s.consultations.FindByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, Unexpected(err, "failed to check for an existing consultation")
	}
	if existing != nil {
		return nil, Conflict("a consultation already exists for this appointment").
			WithDetails(map[string]any{"consultationId": existing.ID})
	}

	c := &models.Consultation{
		AppointmentID: appointmentID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Date:          time.Now(),
	}
	if err := applyConsultationInput(c, in); err != nil {
		return nil, err
	}

	if err := s.consultations.Create(ctx, c); err != nil {
		s.log.Error("creating consultation", zap.String("appointmentId", appointmentID), zap.Error(err))
		return nil, Unexpected(err, "failed to create consultation")
	}
	return c, nil
}

// Update applies a partial patch; only the owning doctor may update.
// Vital signs merge field by field, unset fields keep their value.
func (s *ConsultationService) Update(ctx context.Context, id, doctorID string, in ConsultationInput) (*models.Consultation, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("consultation not found")
		}
		return nil, Unexpected(err, "failed to load consultation")
	}

	if c.DoctorID != doctorID {
		return nil, Forbidden("you can only update your own consultations")
	}

	if err := applyConsultationInput(c, in); err != nil {
		return nil, err
	}

	if err := s.consultations.Save(ctx, c); err != nil {
		s.log.Error("updating consultation", zap.String("id", id), zap.Error(err))
		return nil, Unexpected(err, "failed to update consultation")
	}
	return c, nil
}

func applyConsultationInput(c *models.Consultation, in ConsultationInput) error {
	if in.Diagnosis != nil {
		c.Diagnosis = *in.Diagnosis
	}
	if in.Symptoms != nil {
		c.Symptoms = *in.Symptoms
	}
	if in.Treatment != nil {
		c.Treatment = *in.Treatment
	}
	if in.MedicalNotes != nil {
		c.MedicalNotes = *in.MedicalNotes
	}
	if in.VitalSigns != nil {
		if err := in.VitalSigns.Validate(); err != nil {
			return Invalid("%s", err.Error())
		}
		c.VitalSigns.Merge(*in.VitalSigns)
	}
	if in.LabTests != nil {
		c.LabTests = in.LabTests
	}
	if in.FollowUpDate != nil {
		c.FollowUpDate = in.FollowUpDate
	}
	return nil
}
