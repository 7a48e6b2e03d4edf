package repository

import (
	"context"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	ListByBuyerID(ctx context.Context, buyerID string, page int, limit int) ([]model.Order, int64, error)
	//自分の商品を含む注文（seller用）
	ListBySellerID(ctx context.Context, sellerID string, f OrderListFilter) ([]model.Order, int64, error)
	//全件（admin用）
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (string, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, buyerID string, key string) (model.Order, bool, error)
}
