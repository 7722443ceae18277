package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clinic-manager-server/internal/models"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

var blockingStatuses = []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *AppointmentRepository) Save(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Save(a).Error)
}

func (r *AppointmentRepository) FindBlocking(ctx context.Context, doctorID, excludeID string) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status IN ?", doctorID, blockingStatuses)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var list []models.Appointment
	if err := q.Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *AppointmentRepository) FindBlockingBetween(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	var list []models.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status IN ?", doctorID, blockingStatuses).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time asc").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}
