package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"clinic-manager-server/internal/models"
)

type ConsultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

func (r *ConsultationRepository) GetByID(ctx context.Context, id string) (*models.Consultation, error) {
	var c models.Consultation
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ConsultationRepository) Create(ctx context.Context, c *models.Consultation) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *ConsultationRepository) Save(ctx context.Context, c *models.Consultation) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *ConsultationRepository) FindByAppointment(ctx context.Context, appointmentID string) (*models.Consultation, error) {
	var c models.Consultation
	err := r.db.WithContext(ctx).First(&c, "appointment_id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
