package model

import "time"

type AddressType string

const (
	AddressTypeShipping AddressType = "shipping"
	AddressTypeBilling  AddressType = "billing"
)

// 保存済み住所（user_addresses）
type UserAddress struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	Type AddressType `gorm:"type:varchar(20);not null;default:'shipping'" json:"type"`

	//宛名
	FullName string `gorm:"type:varchar(255);not null" json:"full_name"`

	//電話番号（10桁以上）
	Phone string `gorm:"type:varchar(30);not null" json:"phone"`

	AddressLine1 string `gorm:"column:address_line_1;type:varchar(255);not null" json:"address_line_1"`
	AddressLine2 string `gorm:"column:address_line_2;type:varchar(255)" json:"address_line_2"`
	City         string `gorm:"type:varchar(255);not null" json:"city"`
	State        string `gorm:"type:varchar(255);not null" json:"state"`

	//郵便番号（6文字以上）
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(100);not null;default:'India'" json:"country"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserAddress) TableName() string { return "user_addresses" }

// 注文に焼き付ける住所のコピー。
// 保存済み住所が後で変わっても注文側は変わらない。
type AddressSnapshot struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

func (a UserAddress) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}
