package model

import (
	"time"
)

// ============================================================================
// Dispute constants
// ============================================================================

const (
	DisputeStatusOpen             = "OPEN"
	DisputeStatusEvidenceRequired = "EVIDENCE_REQUIRED"
	DisputeStatusUnderReview      = "UNDER_REVIEW"
	DisputeStatusWon              = "WON"
	DisputeStatusLost             = "LOST"
	DisputeStatusExpired          = "EXPIRED"
)

const (
	DisputeReasonGoodsNotReceived = "goods_not_received"
	DisputeReasonNotAsDescribed   = "not_as_described"
	DisputeReasonUnauthorized     = "unauthorized"
	DisputeReasonIncorrectAmount  = "incorrect_amount"
	DisputeReasonAlreadyRefunded  = "already_refunded"
)

// ============================================================================
// Dispute entity
// ============================================================================

// Dispute is a chargeback/fraud case raised against a transaction. The
// order-state fields (shipped, digital goods) drive which evidence fields the
// dispute form asks for.
type Dispute struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	DisputeNo     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"dispute_no"`
	MerchantID    string     `gorm:"type:varchar(64);index;not null" json:"merchant_id"`
	TransactionNo string     `gorm:"type:varchar(64);index;not null" json:"transaction_no"`
	Gateway       string     `gorm:"type:varchar(64);not null" json:"payment_gateway"`
	Method        string     `gorm:"type:varchar(64);not null" json:"payment_method"`
	Reason        string     `gorm:"type:varchar(32);not null" json:"reason"`
	Status        string     `gorm:"type:varchar(20);index;not null" json:"status"`
	Amount        int64      `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);not null" json:"currency"`
	DigitalGoods  bool       `gorm:"not null;default:false" json:"digital_goods"`
	Shipped       bool       `gorm:"not null;default:false" json:"shipped"`
	ShippedAt     *time.Time `json:"shipped_at"`
	EvidenceDueAt time.Time  `gorm:"not null" json:"evidence_due_at"`
	OpenedAt      time.Time  `gorm:"index;not null" json:"opened_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Dispute) TableName() string {
	return "dispute"
}
