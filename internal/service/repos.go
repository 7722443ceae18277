package service

import (
	"context"
	"time"

	"clinic-manager-server/internal/models"
)

// Repository interfaces consumed by the services. The GORM
// implementations live in internal/repository; tests substitute fakes.
// All lookups exclude soft-deleted rows.

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, a *models.Appointment) error
	Save(ctx context.Context, a *models.Appointment) error

	// FindBlocking returns the doctor's appointments that occupy their
	// slot (status scheduled or confirmed), excluding excludeID when
	// non-empty.
	FindBlocking(ctx context.Context, doctorID, excludeID string) ([]models.Appointment, error)

	// FindBlockingBetween returns the doctor's blocking appointments
	// intersecting [from, to), ordered by start time ascending.
	FindBlockingBetween(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error)
}

type ConsultationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Consultation, error)
	Create(ctx context.Context, c *models.Consultation) error
	Save(ctx context.Context, c *models.Consultation) error

	// FindByAppointment returns the consultation referencing the
	// appointment, or nil when none exists.
	FindByAppointment(ctx context.Context, appointmentID string) (*models.Consultation, error)
}

type PrescriptionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Prescription, error)
	Create(ctx context.Context, p *models.Prescription) error
	Save(ctx context.Context, p *models.Prescription) error

	// FindByConsultation returns the prescription referencing the
	// consultation, or nil when none exists.
	FindByConsultation(ctx context.Context, consultationID string) (*models.Prescription, error)

	// FindByPharmacy returns the prescriptions currently routed to the
	// pharmacy in any of the given statuses, newest assignment first.
	FindByPharmacy(ctx context.Context, pharmacyID string, statuses []models.PrescriptionStatus, offset, limit int) ([]models.Prescription, int64, error)
}

type LabOrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.LabOrder, error)
	Create(ctx context.Context, o *models.LabOrder) error
	Save(ctx context.Context, o *models.LabOrder) error
}

type LaboratoryRepository interface {
	GetByID(ctx context.Context, id string) (*models.Laboratory, error)
	Save(ctx context.Context, l *models.Laboratory) error
}

type PharmacyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Pharmacy, error)
}

// ErrNotFound is returned by repositories when a row does not resolve.
// The GORM implementations translate gorm.ErrRecordNotFound to it.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

// ErrDuplicateKey is returned by repositories on a unique constraint
// violation; services retry generated numbers once on it.
var ErrDuplicateKey = errDuplicateKey{}

type errDuplicateKey struct{}

func (errDuplicateKey) Error() string { return "duplicate key" }
