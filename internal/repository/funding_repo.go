package repository

import (
	"context"
	"time"

	"merchantdash/internal/model"

	"gorm.io/gorm"
)

type FundingRepository struct {
	db *gorm.DB
}

func NewFundingRepository(db *gorm.DB) *FundingRepository {
	return &FundingRepository{db: db}
}

func (r *FundingRepository) Create(ctx context.Context, tx *gorm.DB, batch *model.FundingBatch) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(batch).Error
}

func (r *FundingRepository) ListByMerchant(ctx context.Context, merchantID string, from, to time.Time, page, pageSize int) ([]*model.FundingBatch, int64, error) {
	var batches []*model.FundingBatch
	var total int64

	query := r.db.WithContext(ctx).Model(&model.FundingBatch{}).Where("merchant_id = ?", merchantID)
	if !from.IsZero() {
		query = query.Where("payout_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("payout_date < ?", to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("payout_date DESC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&batches).Error

	return batches, total, err
}

// TotalsByCurrency sums net payouts per currency for the multi-funding
// table footer.
func (r *FundingRepository) TotalsByCurrency(ctx context.Context, merchantID string, from, to time.Time) (map[string]int64, error) {
	type row struct {
		Currency string
		Net      int64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Model(&model.FundingBatch{}).
		Select("currency, SUM(net_amount) AS net").
		Where("merchant_id = ?", merchantID)
	if !from.IsZero() {
		query = query.Where("payout_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("payout_date < ?", to)
	}

	if err := query.Group("currency").Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]int64, len(rows))
	for _, r := range rows {
		totals[r.Currency] = r.Net
	}
	return totals, nil
}
