package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/shopspring/decimal"
)

// 商品ごとの評価集計
type RatingSummary struct {
	Average decimal.Decimal
	Count   int64
}

type ReviewRepository interface {
	// 同じ購入者・商品の2件目は ErrDuplicate
	Create(ctx context.Context, review model.Review) (model.Review, error)
	ListByProductID(ctx context.Context, productID string) ([]model.Review, error)
	Summary(ctx context.Context, productID string) (RatingSummary, error)
}

// 合計と件数から集計を作る。平均は小数1桁（四捨五入）
func NewRatingSummary(sum, count int64) RatingSummary {
	if count == 0 {
		return RatingSummary{Average: decimal.Zero}
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(1)
	return RatingSummary{Average: avg, Count: count}
}
