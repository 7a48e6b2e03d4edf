package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type rfqGormRepository struct {
	db *gorm.DB
}

func NewRFQGormRepository(db *gorm.DB) repo.RFQRepository {
	return &rfqGormRepository{db: db}
}

func (r *rfqGormRepository) Create(ctx context.Context, rfq model.RFQ) (model.RFQ, error) {
	if rfq.ID == "" {
		rfq.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&rfq).Error; err != nil {
		return model.RFQ{}, translate(err)
	}
	return rfq, nil
}

func (r *rfqGormRepository) FindByID(ctx context.Context, id string) (model.RFQ, error) {
	var q model.RFQ
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return model.RFQ{}, translate(err)
	}
	return q, nil
}

func (r *rfqGormRepository) ListByBuyerID(ctx context.Context, buyerID string) ([]model.RFQ, error) {
	var list []model.RFQ
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *rfqGormRepository) ListBySellerID(ctx context.Context, sellerID string) ([]model.RFQ, error) {
	var list []model.RFQ
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 状態が from のままのときだけ書き換える（二重回答を防ぐ）
func (r *rfqGormRepository) Update(ctx context.Context, rfq model.RFQ, from model.RFQStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.RFQ{}).
		Where("id = ? AND status = ?", rfq.ID, from).
		Updates(map[string]interface{}{
			"quoted_price":    rfq.QuotedPrice,
			"seller_response": rfq.SellerResponse,
			"response_date":   rfq.ResponseDate,
			"status":          rfq.Status,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
