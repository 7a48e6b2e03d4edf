package model

import "time"

// 購入者の「あとで見る」。1人1商品1件
type SavedProduct struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID   string    `gorm:"type:uuid;not null;index;uniqueIndex:ux_saved_buyer_product" json:"buyer_id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:ux_saved_buyer_product" json:"product_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
