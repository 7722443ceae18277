package repository

import (
	"context"

	"gorm.io/gorm"

	"clinic-manager-server/internal/models"
)

type LaboratoryRepository struct {
	db *gorm.DB
}

func NewLaboratoryRepository(db *gorm.DB) *LaboratoryRepository {
	return &LaboratoryRepository{db: db}
}

func (r *LaboratoryRepository) GetByID(ctx context.Context, id string) (*models.Laboratory, error) {
	var l models.Laboratory
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&l).Error
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *LaboratoryRepository) Save(ctx context.Context, l *models.Laboratory) error {
	return translate(r.db.WithContext(ctx).Save(l).Error)
}

type PharmacyRepository struct {
	db *gorm.DB
}

func NewPharmacyRepository(db *gorm.DB) *PharmacyRepository {
	return &PharmacyRepository{db: db}
}

func (r *PharmacyRepository) GetByID(ctx context.Context, id string) (*models.Pharmacy, error) {
	var p models.Pharmacy
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
