package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) repo.ReviewRepository {
	return &reviewGormRepository{db: db}
}

func (r *reviewGormRepository) Create(ctx context.Context, review model.Review) (model.Review, error) {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		return model.Review{}, translate(err)
	}
	return review, nil
}

func (r *reviewGormRepository) ListByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	var list []model.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 平均は小数1桁に丸める
func (r *reviewGormRepository) Summary(ctx context.Context, productID string) (repo.RatingSummary, error) {
	var row struct {
		Sum   int64
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error; err != nil {
		return repo.RatingSummary{}, err
	}
	return repo.NewRatingSummary(row.Sum, row.Count), nil
}
