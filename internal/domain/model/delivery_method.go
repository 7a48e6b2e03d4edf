package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 配送方法（参照データ。チェックアウトでは更新しない）
type DeliveryMethod struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	BaseCost      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_cost"`
	EstimatedDays int             `gorm:"not null" json:"estimated_days"`
	IsActive      bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
