package model

import (
	"time"
)

// User is a dashboard login tied to one merchant node. Permission flags are
// read at login and carried on the session; the rule engine treats them as
// opaque booleans.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID   string     `gorm:"type:varchar(64);index;not null" json:"merchant_id"`
	MerchantCode string     `gorm:"type:varchar(64);not null" json:"merchant_code"`
	Email        string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(128);not null" json:"-"`
	Phone        string     `gorm:"type:varchar(32)" json:"phone"`
	CanRefund    bool       `gorm:"not null;default:false" json:"can_refund"`
	HasPreAuth   bool       `gorm:"not null;default:false" json:"has_pre_auth"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "dashboard_user"
}
