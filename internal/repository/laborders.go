package repository

import (
	"context"

	"gorm.io/gorm"

	"clinic-manager-server/internal/models"
)

type LabOrderRepository struct {
	db *gorm.DB
}

func NewLabOrderRepository(db *gorm.DB) *LabOrderRepository {
	return &LabOrderRepository{db: db}
}

func (r *LabOrderRepository) GetByID(ctx context.Context, id string) (*models.LabOrder, error) {
	var o models.LabOrder
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *LabOrderRepository) Create(ctx context.Context, o *models.LabOrder) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *LabOrderRepository) Save(ctx context.Context, o *models.LabOrder) error {
	return translate(r.db.WithContext(ctx).Save(o).Error)
}
