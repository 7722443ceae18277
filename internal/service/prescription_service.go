package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"clinic-manager-server/internal/models"
)

// PrescriptionService drives the prescription state machine: doctors
// draft and sign, the pharmacy router assigns and advances fulfillment.
type PrescriptionService struct {
	prescriptions PrescriptionRepository
	consultations ConsultationRepository
	pharmacies    PharmacyRepository
	log           *zap.Logger
}

func NewPrescriptionService(prescriptions PrescriptionRepository, consultations ConsultationRepository, pharmacies PharmacyRepository, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{
		prescriptions: prescriptions,
		consultations: consultations,
		pharmacies:    pharmacies,
		log:           log,
	}
}

// Create drafts a prescription for a consultation owned by the doctor.
// At most one prescription may reference a consultation.
func (s *PrescriptionService) Create(ctx context.Context, consultationID, doctorID string, medications []models.Medication, notes string) (*models.Prescription, error) {
	if len(medications) == 0 {
		return nil, Invalid("at least one medication is required")
	}
	for i := range medications {
		if err := medications[i].Validate(); err != nil {
			return nil, Invalid("medication %d: %s", i+1, err.Error())
		}
		if medications[i].StartDate.IsZero() {
			medications[i].StartDate = time.Now()
		}
	}

	c, err := s.consultations.GetByID(ctx, consultationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("consultation not found")
		}
		return nil, Unexpected(err, "failed to load consultation")
	}
	if c.DoctorID != doctorID {
		return nil, Forbidden("you can only create prescriptions for your own consultations")
	}

	existing, err := s.prescriptions.FindByConsultation(ctx, consultationID)
	if err != nil {
		return nil, Unexpected(err, "failed to check for an existing prescription")
	}
	if existing != nil {
		return nil, Conflict("a prescription already exists for this consultation").
			WithDetails(map[string]any{"prescriptionId": existing.ID})
	}

	p := &models.Prescription{
		ConsultationID:     consultationID,
		PatientID:          c.PatientID,
		DoctorID:           c.DoctorID,
		PrescriptionNumber: models.NewPrescriptionNumber(time.Now()),
		Medications:        medications,
		Status:             models.PrescriptionDraft,
		Notes:              notes,
		IsActive:           true,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		// The number is date+random; regenerate once on a collision.
		if errors.Is(err, ErrDuplicateKey) {
			p.PrescriptionNumber = models.NewPrescriptionNumber(time.Now())
			err = s.prescriptions.Create(ctx, p)
		}
		if err != nil {
			s.log.Error("creating prescription", zap.String("consultationId", consultationID), zap.Error(err))
			return nil, Unexpected(err, "failed to create prescription")
		}
	}
	return p, nil
}

// Update replaces the medication list or notes of a draft. Once signed
// the content is frozen.
func (s *PrescriptionService) Update(ctx context.Context, id, doctorID string, medications []models.Medication, notes *string) (*models.Prescription, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, Forbidden("you can only update your own prescriptions")
	}
	if !p.CanBeModified() {
		return nil, Invalid("this prescription can no longer be modified").
			WithDetails(map[string]any{"currentStatus": p.Status})
	}

	if medications != nil {
		if len(medications) == 0 {
			return nil, Invalid("at least one medication is required")
		}
		for i := range medications {
			if err := medications[i].Validate(); err != nil {
				return nil, Invalid("medication %d: %s", i+1, err.Error())
			}
		}
		p.Medications = medications
	}
	if notes != nil {
		p.Notes = *notes
	}

	if err := s.prescriptions.Save(ctx, p); err != nil {
		return nil, Unexpected(err, "failed to update prescription")
	}
	return p, nil
}

// Sign moves a draft with medications to signed, stamping the one year
// validity window.
func (s *PrescriptionService) Sign(ctx context.Context, id, doctorID string) (*models.Prescription, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != doctorID {
		return nil, Forbidden("you can only sign your own prescriptions")
	}
	if err := p.Sign(time.Now()); err != nil {
		return nil, Invalid("%s", err.Error())
	}
	if err := s.prescriptions.Save(ctx, p); err != nil {
		s.log.Error("signing prescription", zap.String("id", id), zap.Error(err))
		return nil, Unexpected(err, "failed to sign prescription")
	}
	return p, nil
}

// AssignToPharmacy routes a signed prescription to a pharmacy.
func (s *PrescriptionService) AssignToPharmacy(ctx context.Context, id, pharmacyID string) (*models.Prescription, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	pharmacy, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("pharmacy not found")
		}
		return nil, Unexpected(err, "failed to load pharmacy")
	}
	if !pharmacy.AcceptsPrescriptions() {
		return nil, NotFound("pharmacy not found or inactive")
	}

	if err := p.AssignToPharmacy(pharmacyID, time.Now()); err != nil {
		return nil, Invalid("%s", err.Error())
	}
	if err := s.prescriptions.Save(ctx, p); err != nil {
		return nil, Unexpected(err, "failed to assign prescription")
	}
	return p, nil
}

// PharmacyUpdateStatus advances a routed prescription along the
// pharmacy-side state machine (preparing, ready, delivered, rejected).
func (s *PrescriptionService) PharmacyUpdateStatus(ctx context.Context, id string, status models.PrescriptionStatus, pharmacyNotes string) (*models.Prescription, error) {
	switch status {
	case models.PrescriptionPreparing, models.PrescriptionReady, models.PrescriptionDelivered, models.PrescriptionRejected:
	default:
		return nil, Invalid("invalid status %q: must be one of preparing, ready, delivered, rejected", status)
	}

	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyPharmacyStatus(status, time.Now()); err != nil {
		return nil, Invalid("%s", err.Error())
	}
	if pharmacyNotes != "" {
		p.PharmacyNotes = pharmacyNotes
	}
	if err := s.prescriptions.Save(ctx, p); err != nil {
		return nil, Unexpected(err, "failed to update prescription status")
	}
	return p, nil
}

// PharmacyQueue lists the prescriptions currently at a pharmacy,
// filtered to a caller-specified subset of the fulfillment statuses.
func (s *PrescriptionService) PharmacyQueue(ctx context.Context, pharmacyID, statusFilter string, page, limit int) ([]models.Prescription, int64, error) {
	if _, err := s.pharmacies.GetByID(ctx, pharmacyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, 0, NotFound("pharmacy not found")
		}
		return nil, 0, Unexpected(err, "failed to load pharmacy")
	}

	statuses := models.PharmacyQueueStatuses
	if statusFilter != "" {
		parsed, err := models.ParseQueueStatuses(statusFilter)
		if err != nil {
			return nil, 0, Invalid("%s", err.Error())
		}
		statuses = parsed
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	list, total, err := s.prescriptions.FindByPharmacy(ctx, pharmacyID, statuses, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, Unexpected(err, "failed to load pharmacy prescriptions")
	}
	return list, total, nil
}

func (s *PrescriptionService) get(ctx context.Context, id string) (*models.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("prescription not found")
		}
		return nil, Unexpected(err, "failed to load prescription")
	}
	return p, nil
}
