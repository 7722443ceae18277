package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"clinic-manager-server/internal/models"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id string) (*models.Prescription, error) {
	var p models.Prescription
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *models.Prescription) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PrescriptionRepository) Save(ctx context.Context, p *models.Prescription) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *PrescriptionRepository) FindByConsultation(ctx context.Context, consultationID string) (*models.Prescription, error) {
	var p models.Prescription
	err := r.db.WithContext(ctx).
		Where("consultation_id = ? AND is_active = ?", consultationID, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) FindByPharmacy(ctx context.Context, pharmacyID string, statuses []models.PrescriptionStatus, offset, limit int) ([]models.Prescription, int64, error) {
	// Session gives each finisher a fresh statement; reusing the chain
	// after Count would carry its conditions into the Find.
	base := r.db.WithContext(ctx).Model(&models.Prescription{}).
		Where("pharmacy_id = ? AND status IN ? AND is_active = ?", pharmacyID, statuses, true).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var list []models.Prescription
	err := base.
		Order("assigned_at desc, created_at desc").
		Offset(offset).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return list, total, nil
}
