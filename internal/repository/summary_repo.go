package repository

import (
	"context"
	"time"

	"merchantdash/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SummaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert replaces the summary row for its grain. The builder job recomputes
// whole days, so a clean overwrite is correct.
func (r *SummaryRepository) Upsert(ctx context.Context, tx *gorm.DB, summary *model.SettlementSummary) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "merchant_id"}, {Name: "currency"}, {Name: "period"}, {Name: "summary_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"sales_count", "sales_amount", "refund_count", "refund_amount",
				"fee_amount", "net_amount",
			}),
		}).
		Create(summary).Error
}

func (r *SummaryRepository) ListDaily(ctx context.Context, merchantID, currency string, from, to time.Time) ([]*model.SettlementSummary, error) {
	return r.list(ctx, merchantID, currency, model.SummaryPeriodDaily, from, to)
}

func (r *SummaryRepository) ListMonthly(ctx context.Context, merchantID, currency string, from, to time.Time) ([]*model.SettlementSummary, error) {
	return r.list(ctx, merchantID, currency, model.SummaryPeriodMonthly, from, to)
}

func (r *SummaryRepository) list(ctx context.Context, merchantID, currency, period string, from, to time.Time) ([]*model.SettlementSummary, error) {
	var summaries []*model.SettlementSummary

	query := r.db.WithContext(ctx).
		Where("period = ?", period)
	if merchantID != "" {
		query = query.Where("merchant_id = ?", merchantID)
	}
	if currency != "" {
		query = query.Where("currency = ?", currency)
	}
	if !from.IsZero() {
		query = query.Where("summary_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("summary_date < ?", to)
	}

	err := query.Order("summary_date DESC").Find(&summaries).Error
	return summaries, err
}
