package repository

import (
	"context"
	"errors"
	"time"

	"merchantdash/internal/model"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionFilter narrows a transaction search. Zero values mean "any".
type TransactionFilter struct {
	MerchantID string
	Status     string
	Type       string
	Gateway    string
	Currency   string
	From       time.Time
	To         time.Time
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.Transaction, error) {
	var trans model.Transaction
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trans, nil
}

// Search lists transactions matching the filter, newest first. Page is
// zero-based to match the dashboard's pagination state.
func (r *TransactionRepository) Search(ctx context.Context, filter TransactionFilter, page, pageSize int) ([]*model.Transaction, int64, error) {
	var transactions []*model.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.MerchantID != "" {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Gateway != "" {
		query = query.Where("payment_gateway = ?", filter.Gateway)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", filter.Currency)
	}
	if !filter.From.IsZero() {
		query = query.Where("transacted_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("transacted_at < ?", filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("transacted_at DESC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}

// ListForWindow returns all transactions a merchant settled inside the
// half-open window [from, to), used by the summary builder.
func (r *TransactionRepository) ListForWindow(ctx context.Context, from, to time.Time) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("transacted_at >= ? AND transacted_at < ?", from, to).
		Order("merchant_id, currency").
		Find(&transactions).Error
	return transactions, err
}
