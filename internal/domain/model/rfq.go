package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RFQStatus string

const (
	RFQStatusPending   RFQStatus = "pending"
	RFQStatusResponded RFQStatus = "responded"
	RFQStatusAccepted  RFQStatus = "accepted"
	RFQStatusRejected  RFQStatus = "rejected"
)

// 見積依頼（Request for Quotation）
type RFQ struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID   string `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID  string `gorm:"type:uuid;not null;index" json:"seller_id"`
	ProductID string `gorm:"type:uuid;not null;index" json:"product_id"`

	Quantity int64 `gorm:"not null" json:"quantity"`

	CompanyName   string `gorm:"type:varchar(255);not null" json:"company_name"`
	ContactPerson string `gorm:"type:varchar(255);not null" json:"contact_person"`
	Email         string `gorm:"type:varchar(255);not null" json:"email"`
	Phone         string `gorm:"type:varchar(30)" json:"phone"`
	Message       string `gorm:"type:text" json:"message"`

	//sellerの回答（単価）
	QuotedPrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"quoted_price"`
	SellerResponse string           `gorm:"type:text" json:"seller_response"`
	ResponseDate   *time.Time       `json:"response_date"`

	Status    RFQStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (RFQ) TableName() string { return "rfqs" }

// 見積総額 = 回答単価 × 数量。未回答なら false。
func (r RFQ) QuoteTotal() (decimal.Decimal, bool) {
	if r.QuotedPrice == nil {
		return decimal.Zero, false
	}
	return r.QuotedPrice.Mul(decimal.NewFromInt(r.Quantity)), true
}
