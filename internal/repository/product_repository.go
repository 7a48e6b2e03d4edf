package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	// カート・注文確定用にまとめて取得（見つからないIDは結果に含まれない）
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// seller の出品（状態を問わない）
	ListBySellerID(ctx context.Context, sellerID string) ([]model.Product, error)
	// 管理画面用。status が空なら全件
	ListByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	// 自分の商品だけ消せる。無ければ ErrNotFound
	DeleteBySeller(ctx context.Context, id, sellerID string) error
	UpdateStatus(ctx context.Context, id string, status model.ProductStatus) error
}
