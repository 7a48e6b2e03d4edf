package model

import "time"

// カートの明細（cart_items）。購入者ごとに持つ。
// 価格は持たない。表示・注文時に商品の現在価格を読む。
type CartItem struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID   string    `gorm:"type:uuid;not null;index;uniqueIndex:ux_cart_buyer_product" json:"buyer_id"`
	ProductID string    `gorm:"type:uuid;not null;index;uniqueIndex:ux_cart_buyer_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
