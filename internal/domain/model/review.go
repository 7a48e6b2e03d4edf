package model

import "time"

// 商品レビュー。購入者1人につき1商品1件。
type Review struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID    string    `gorm:"type:uuid;not null;uniqueIndex:ux_review_buyer_product" json:"buyer_id"`
	ProductID  string    `gorm:"type:uuid;not null;index;uniqueIndex:ux_review_buyer_product" json:"product_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	ReviewText string    `gorm:"type:text" json:"review_text"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
