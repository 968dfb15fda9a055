package model

import (
	"time"
)

// ============================================================================
// Transaction source constants
// ============================================================================

const (
	TransactionSourceUPI = "upi"
	TransactionSourcePOS = "pos"
	TransactionSourceWeb = "web"
)

// ============================================================================
// Transaction entity
// ============================================================================

// Transaction is one payment record as shown in transaction search.
// Monetary fields are minor units; the nullable amounts mirror the upstream
// contract where they may be absent entirely, which the action-visibility
// rules treat differently from zero.
type Transaction struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	MerchantID          string    `gorm:"type:varchar(64);index;not null" json:"merchant_id"`
	Source              string    `gorm:"type:varchar(16);index;not null" json:"source"`
	Type                string    `gorm:"type:varchar(32);not null" json:"type"`
	Status              string    `gorm:"type:varchar(20);index;not null" json:"status"`
	Gateway             string    `gorm:"type:varchar(64);not null" json:"payment_gateway"`
	Method              string    `gorm:"type:varchar(64);not null" json:"payment_method"`
	Currency            string    `gorm:"type:varchar(3);not null" json:"currency"`
	Amount              int64     `gorm:"not null" json:"amount"`
	AuthorizedRemaining *int64    `json:"amount_authorized_remaining"`
	RemainingBalance    *int64    `json:"remaining_balance"`
	AmountCaptured      *int64    `json:"amount_captured"`
	AmountRefunded      *int64    `json:"amount_refunded"`
	PreAuth             int       `gorm:"not null;default:0" json:"pre_auth"`
	FeeAmount           int64     `gorm:"not null;default:0" json:"fee_amount"`
	TransactedAt        time.Time `gorm:"index;not null" json:"transacted_at"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "dashboard_transaction"
}
