package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type savedProductGormRepository struct {
	db *gorm.DB
}

func NewSavedProductGormRepository(db *gorm.DB) repo.SavedProductRepository {
	return &savedProductGormRepository{db: db}
}

func (r *savedProductGormRepository) ListByBuyerID(ctx context.Context, buyerID string) ([]model.SavedProduct, error) {
	var list []model.SavedProduct
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *savedProductGormRepository) Create(ctx context.Context, sp model.SavedProduct) (model.SavedProduct, error) {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&sp).Error; err != nil {
		return model.SavedProduct{}, translate(err)
	}
	return sp, nil
}

func (r *savedProductGormRepository) DeleteByBuyer(ctx context.Context, id, buyerID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND buyer_id = ?", id, buyerID).
		Delete(&model.SavedProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type categoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

func (r *categoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
