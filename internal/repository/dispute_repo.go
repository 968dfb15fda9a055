package repository

import (
	"context"
	"errors"

	"merchantdash/internal/model"

	"gorm.io/gorm"
)

var (
	ErrDisputeNotFound = errors.New("dispute not found")
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(ctx context.Context, tx *gorm.DB, dispute *model.Dispute) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(dispute).Error
}

func (r *DisputeRepository) GetByDisputeNo(ctx context.Context, disputeNo string) (*model.Dispute, error) {
	var dispute model.Dispute
	err := r.db.WithContext(ctx).Where("dispute_no = ?", disputeNo).First(&dispute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDisputeNotFound
		}
		return nil, err
	}
	return &dispute, nil
}

func (r *DisputeRepository) ListByMerchant(ctx context.Context, merchantID, status string, page, pageSize int) ([]*model.Dispute, int64, error) {
	var disputes []*model.Dispute
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Dispute{}).Where("merchant_id = ?", merchantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("opened_at DESC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&disputes).Error

	return disputes, total, err
}

func (r *DisputeRepository) UpdateStatus(ctx context.Context, disputeNo, fromStatus, toStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Dispute{}).
		Where("dispute_no = ? AND status = ?", disputeNo, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDisputeNotFound
	}
	return nil
}
