package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type SavedProductRepository interface {
	// 新しい順
	ListByBuyerID(ctx context.Context, buyerID string) ([]model.SavedProduct, error)
	// 同じ商品の2件目は ErrDuplicate
	Create(ctx context.Context, sp model.SavedProduct) (model.SavedProduct, error)
	// 自分の分だけ消せる。無ければ ErrNotFound
	DeleteByBuyer(ctx context.Context, id, buyerID string) error
}

type CategoryRepository interface {
	// 名前順
	List(ctx context.Context) ([]model.Category, error)
}
