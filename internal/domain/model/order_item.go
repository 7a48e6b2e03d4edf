package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。単価は注文確定時の商品価格を焼き付ける。
type OrderItem struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  string          `gorm:"type:uuid;not null;index" json:"product_id"`
	SellerID   string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	TitleSnap  string          `gorm:"column:product_title_snapshot;type:varchar(255);not null" json:"product_title"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
