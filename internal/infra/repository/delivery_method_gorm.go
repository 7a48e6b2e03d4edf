package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"gorm.io/gorm"
)

type deliveryMethodGormRepository struct {
	db *gorm.DB
}

func NewDeliveryMethodGormRepository(db *gorm.DB) repo.DeliveryMethodRepository {
	return &deliveryMethodGormRepository{db: db}
}

func (r *deliveryMethodGormRepository) ListActive(ctx context.Context) ([]model.DeliveryMethod, error) {
	var list []model.DeliveryMethod
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("base_cost asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *deliveryMethodGormRepository) FindByID(ctx context.Context, id string) (model.DeliveryMethod, error) {
	var m model.DeliveryMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return model.DeliveryMethod{}, translate(err)
	}
	return m, nil
}
