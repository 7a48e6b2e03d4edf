package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type CartItemRepository interface {
	ListByBuyerID(ctx context.Context, buyerID string) ([]model.CartItem, error)
	// 同一商品はプラス
	UpsertByBuyerAndProduct(ctx context.Context, buyerID string, productID string, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error
	DeleteByID(ctx context.Context, cartItemID string) error
	FindByID(ctx context.Context, cartItemID string) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID string, buyerID string) (bool, error)
	// 注文確定後に空にする
	ClearByBuyerID(ctx context.Context, buyerID string) error
}
