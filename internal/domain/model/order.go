package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 終端（これ以上変更しない）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

type Order struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber string `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	BuyerID     string `gorm:"type:uuid;not null;index" json:"buyer_id"`

	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_cost"`
	TaxAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	ShippingAddress     AddressSnapshot `gorm:"type:jsonb;serializer:json;not null" json:"shipping_address"`
	BillingAddress      AddressSnapshot `gorm:"type:jsonb;serializer:json;not null" json:"billing_address"`
	DeliveryMethodID    string          `gorm:"type:uuid;not null" json:"delivery_method_id"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	PaymentMethod       PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//決済ゲートウェイの確認情報
	RazorpayOrderID   string `gorm:"type:varchar(64)" json:"razorpay_order_id"`
	RazorpayPaymentID string `gorm:"type:varchar(64);index" json:"razorpay_payment_id"`
	RazorpaySignature string `gorm:"type:varchar(128)" json:"-"`

	//ゲートウェイで実際に請求した金額。確定時の合計と違えば AmountMismatch
	PaidAmount     decimal.Decimal `gorm:"type:numeric(12,2)" json:"paid_amount"`
	AmountMismatch bool            `gorm:"not null;default:false;index" json:"amount_mismatch"`

	//チェックアウト1回につき注文は1件（同じキーなら同じ結果）
	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
