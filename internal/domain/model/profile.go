package model

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// 認証基盤のユーザーに紐づくプロフィール。IDは認証基盤のユーザーID。
type Profile struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email"`
	FullName    string    `gorm:"type:varchar(255)" json:"full_name"`
	CompanyName string    `gorm:"type:varchar(255)" json:"company_name"`
	Phone       string    `gorm:"type:varchar(30)" json:"phone"`
	Role        Role      `gorm:"type:varchar(20);not null;default:'buyer'" json:"role"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
