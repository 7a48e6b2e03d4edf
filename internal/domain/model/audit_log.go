package model

import "time"

// 注文ステータス更新など。
type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//決済確認で注文を作成した操作。
	AuditActionPaymentVerified AuditAction = "PAYMENT_VERIFIED"
	//RFQに見積もりを返した操作。
	AuditActionRespondRFQ AuditAction = "RESPOND_RFQ"
	//管理者が商品の公開状態を変えた操作。
	AuditActionUpdateProductStatus AuditAction = "UPDATE_PRODUCT_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceRFQ     AuditResourceType = "rfq"
	AuditResourceProduct AuditResourceType = "product"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザー（seller / admin / 決済時は購入者）
	ActorUserID string `gorm:"type:uuid;not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
