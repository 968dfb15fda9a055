package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SummaryPeriodDaily   = "DAILY"
	SummaryPeriodMonthly = "MONTHLY"
)

// SettlementSummary is the query-friendly aggregate behind the daily and
// monthly settlement screens. Grain: (merchant_id, currency, period,
// summary_date). Derived data; can always be rebuilt from transactions.
type SettlementSummary struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID   string          `gorm:"type:varchar(64);uniqueIndex:idx_summary_grain,priority:1;not null" json:"merchant_id"`
	Currency     string          `gorm:"type:varchar(3);uniqueIndex:idx_summary_grain,priority:2;not null" json:"currency"`
	Period       string          `gorm:"type:varchar(10);uniqueIndex:idx_summary_grain,priority:3;not null" json:"period"`
	SummaryDate  time.Time       `gorm:"uniqueIndex:idx_summary_grain,priority:4;not null" json:"summary_date"`
	SalesCount   int64           `gorm:"not null;default:0" json:"sales_count"`
	SalesAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_amount"`
	RefundCount  int64           `gorm:"not null;default:0" json:"refund_count"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"refund_amount"`
	FeeAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fee_amount"`
	NetAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SettlementSummary) TableName() string {
	return "settlement_summary"
}
