package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	//承認待ち（sellerが出品した直後）
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusRejected ProductStatus = "rejected"
	ProductStatusInactive ProductStatus = "inactive"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusPending, ProductStatusActive, ProductStatusRejected, ProductStatusInactive:
		return true
	}
	return false
}

type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    string          `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Unit        string          `gorm:"type:varchar(50);not null;default:'piece'" json:"unit"`

	//最小発注数量（MOQ）
	MinOrder int64 `gorm:"not null;default:1" json:"min_order"`

	//在庫は表示のみ。注文時に引き当てはしない
	Stock    int64         `gorm:"not null;default:0" json:"stock"`
	Status   ProductStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ImageURL string        `gorm:"type:text" json:"image_url"`
	Location string        `gorm:"type:varchar(255)" json:"location"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
