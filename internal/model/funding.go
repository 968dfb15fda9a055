package model

import (
	"time"
)

const (
	FundingStatusScheduled = "SCHEDULED"
	FundingStatusPaid      = "PAID"
	FundingStatusFailed    = "FAILED"
)

const (
	FundingSourceCard   = "card"
	FundingSourceWallet = "wallet"
	FundingSourceBank   = "bank_transfer"
)

// FundingBatch is one payout line in the multi-funding table: a merchant can
// receive separate payouts per funding source and currency for the same
// settlement cycle. Amounts are minor units.
type FundingBatch struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FundingNo    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"funding_no"`
	MerchantID   string    `gorm:"type:varchar(64);index;not null" json:"merchant_id"`
	Source       string    `gorm:"type:varchar(20);not null" json:"source"`
	Currency     string    `gorm:"type:varchar(3);not null" json:"currency"`
	SalesAmount  int64     `gorm:"not null;default:0" json:"sales_amount"`
	RefundAmount int64     `gorm:"not null;default:0" json:"refund_amount"`
	FeeAmount    int64     `gorm:"not null;default:0" json:"fee_amount"`
	NetAmount    int64     `gorm:"not null;default:0" json:"net_amount"`
	Status       string    `gorm:"type:varchar(20);index;not null" json:"status"`
	PayoutDate   time.Time `gorm:"index;not null" json:"payout_date"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FundingBatch) TableName() string {
	return "funding_batch"
}
