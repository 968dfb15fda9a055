package service

import (
	"context"
	"fmt"
	"strconv"

	"merchantdash/internal/model"
	"merchantdash/internal/repository"
	"merchantdash/internal/rules"
	"merchantdash/pkg/money"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransactionService struct {
	txRepo *repository.TransactionRepository
	logger *zap.Logger
}

func NewTransactionService(db *gorm.DB, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo: repository.NewTransactionRepository(db),
		logger: logger,
	}
}

// TransactionRow is one search result row: the record plus the action
// buttons this caller may see and a ready-to-render amount.
type TransactionRow struct {
	*model.Transaction
	Actions       rules.ActionVisibility `json:"actions"`
	DisplayAmount string                 `json:"display_amount"`
}

type TransactionSearchResult struct {
	Rows     []TransactionRow `json:"rows"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Search runs a filtered transaction search and evaluates action visibility
// per row with the session's permission flags.
func (s *TransactionService) Search(ctx context.Context, filter repository.TransactionFilter, page, pageSize int, sess *Session) (*TransactionSearchResult, error) {
	transactions, total, err := s.txRepo.Search(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}

	rows := make([]TransactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, TransactionRow{
			Transaction:   t,
			Actions:       rules.Evaluate(toRuleRecord(t), sess.CanRefund, sess.HasPreAuth),
			DisplayAmount: money.FormatCurrency(t.Amount, t.Currency),
		})
	}

	return &TransactionSearchResult{
		Rows:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *TransactionService) Get(ctx context.Context, transactionNo string, sess *Session) (*TransactionRow, error) {
	t, err := s.txRepo.GetByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, err
	}
	return &TransactionRow{
		Transaction:   t,
		Actions:       rules.Evaluate(toRuleRecord(t), sess.CanRefund, sess.HasPreAuth),
		DisplayAmount: money.FormatCurrency(t.Amount, t.Currency),
	}, nil
}

// toRuleRecord flattens a stored transaction into the rule engine's input
// contract. Nil amounts become empty strings: the engine's parse defaults
// depend on absent and zero staying distinguishable.
func toRuleRecord(t *model.Transaction) rules.TransactionRecord {
	return rules.TransactionRecord{
		Source:              t.Source,
		Type:                t.Type,
		Status:              t.Status,
		AuthorizedRemaining: formatAmount(t.AuthorizedRemaining),
		RemainingBalance:    formatAmount(t.RemainingBalance),
		AmountCaptured:      formatAmount(t.AmountCaptured),
		AmountRefunded:      formatAmount(t.AmountRefunded),
		Gateway:             t.Gateway,
		Method:              t.Method,
		PreAuth:             t.PreAuth,
	}
}

func formatAmount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
