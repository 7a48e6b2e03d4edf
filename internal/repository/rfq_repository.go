package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type RFQRepository interface {
	Create(ctx context.Context, rfq model.RFQ) (model.RFQ, error)
	FindByID(ctx context.Context, id string) (model.RFQ, error)
	ListByBuyerID(ctx context.Context, buyerID string) ([]model.RFQ, error)
	ListBySellerID(ctx context.Context, sellerID string) ([]model.RFQ, error)
	// 回答・承認・却下。ステータスが from のときだけ更新し、更新できたかを返す
	Update(ctx context.Context, rfq model.RFQ, from model.RFQStatus) (bool, error)
}
