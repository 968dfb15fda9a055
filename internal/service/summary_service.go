package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/model"
	"merchantdash/internal/repository"
	"merchantdash/internal/rules"
	"merchantdash/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SummaryService struct {
	db          *gorm.DB
	cfg         *config.Config
	summaryRepo *repository.SummaryRepository
	txRepo      *repository.TransactionRepository
	outboxRepo  *repository.OutboxRepository
	logger      *zap.Logger
}

func NewSummaryService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		db:          db,
		cfg:         cfg,
		summaryRepo: repository.NewSummaryRepository(db),
		txRepo:      repository.NewTransactionRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
		logger:      logger,
	}
}

type SummaryResult struct {
	Period string                     `json:"period"`
	Items  []*model.SettlementSummary `json:"items"`
}

func (s *SummaryService) Daily(ctx context.Context, merchantID, currency string, from, to time.Time) (*SummaryResult, error) {
	items, err := s.summaryRepo.ListDaily(ctx, merchantID, currency, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily summaries: %w", err)
	}
	return &SummaryResult{Period: model.SummaryPeriodDaily, Items: items}, nil
}

func (s *SummaryService) Monthly(ctx context.Context, merchantID, currency string, from, to time.Time) (*SummaryResult, error) {
	items, err := s.summaryRepo.ListMonthly(ctx, merchantID, currency, from, to)
	if err != nil {
		return nil, fmt.Errorf("list monthly summaries: %w", err)
	}
	return &SummaryResult{Period: model.SummaryPeriodMonthly, Items: items}, nil
}

// summaryKey groups the builder's accumulation.
type summaryKey struct {
	MerchantID string
	Currency   string
}

type summaryAccumulator struct {
	SalesCount   int64
	SalesAmount  decimal.Decimal
	RefundCount  int64
	RefundAmount decimal.Decimal
	FeeAmount    decimal.Decimal
}

// BuildDaily recomputes every merchant's daily settlement rows for the given
// day and records a settlement event. Day boundaries are UTC.
func (s *SummaryService) BuildDaily(ctx context.Context, day time.Time) error {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	transactions, err := s.txRepo.ListForWindow(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load transactions for %s: %w", money.CurrentDateString(from), err)
	}

	grains := Aggregate(transactions)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for key, acc := range grains {
			summary := &model.SettlementSummary{
				MerchantID:   key.MerchantID,
				Currency:     key.Currency,
				Period:       model.SummaryPeriodDaily,
				SummaryDate:  from,
				SalesCount:   acc.SalesCount,
				SalesAmount:  acc.SalesAmount,
				RefundCount:  acc.RefundCount,
				RefundAmount: acc.RefundAmount,
				FeeAmount:    acc.FeeAmount,
				NetAmount:    acc.SalesAmount.Sub(acc.RefundAmount).Sub(acc.FeeAmount),
			}
			if err := s.summaryRepo.Upsert(ctx, tx, summary); err != nil {
				return fmt.Errorf("upsert summary %s/%s: %w", key.MerchantID, key.Currency, err)
			}
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"summary_date": money.CurrentDateString(from),
			"grains":       len(grains),
			"built_at":     time.Now().Format(time.RFC3339),
		})
		return s.outboxRepo.CreateEvent(ctx, tx,
			model.EventDailySettlement,
			money.CurrentDateString(from),
			s.cfg.Kafka.Topic.Settlement,
			string(payload))
	})
	if err != nil {
		return err
	}

	s.logger.Info("daily settlement summaries built",
		zap.String("summary_date", money.CurrentDateString(from)),
		zap.Int("grains", len(grains)))
	return nil
}

// BuildMonthly rolls the month's daily rows up into one monthly row per
// merchant and currency.
func (s *SummaryService) BuildMonthly(ctx context.Context, month time.Time) error {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	dailies, err := s.summaryRepo.ListDaily(ctx, "", "", from, to)
	if err != nil {
		return fmt.Errorf("load daily rows for %s: %w", from.Format("2006-01"), err)
	}

	rollup := make(map[summaryKey]*model.SettlementSummary)
	for _, d := range dailies {
		key := summaryKey{MerchantID: d.MerchantID, Currency: d.Currency}
		m, ok := rollup[key]
		if !ok {
			m = &model.SettlementSummary{
				MerchantID:  d.MerchantID,
				Currency:    d.Currency,
				Period:      model.SummaryPeriodMonthly,
				SummaryDate: from,
			}
			rollup[key] = m
		}
		m.SalesCount += d.SalesCount
		m.SalesAmount = m.SalesAmount.Add(d.SalesAmount)
		m.RefundCount += d.RefundCount
		m.RefundAmount = m.RefundAmount.Add(d.RefundAmount)
		m.FeeAmount = m.FeeAmount.Add(d.FeeAmount)
		m.NetAmount = m.NetAmount.Add(d.NetAmount)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, summary := range rollup {
			if err := s.summaryRepo.Upsert(ctx, tx, summary); err != nil {
				return fmt.Errorf("upsert monthly summary %s/%s: %w", summary.MerchantID, summary.Currency, err)
			}
		}
		return nil
	})
}

// Aggregate folds transactions into per-(merchant, currency) settlement
// grains. Amounts convert from minor units to the currency's major unit so
// the summary table reads like a statement.
func Aggregate(transactions []*model.Transaction) map[summaryKey]*summaryAccumulator {
	grains := make(map[summaryKey]*summaryAccumulator)

	for _, t := range transactions {
		key := summaryKey{MerchantID: t.MerchantID, Currency: t.Currency}
		acc, ok := grains[key]
		if !ok {
			acc = &summaryAccumulator{}
			grains[key] = acc
		}

		amount := toMajor(t.Amount, t.Currency)
		switch t.Type {
		case rules.TypeRefund, rules.TypePOSRefund:
			acc.RefundCount++
			acc.RefundAmount = acc.RefundAmount.Add(amount)
		default:
			if t.Status == rules.StatusSuccess || t.Status == rules.StatusAuthorized {
				acc.SalesCount++
				acc.SalesAmount = acc.SalesAmount.Add(amount)
			}
		}
		acc.FeeAmount = acc.FeeAmount.Add(toMajor(t.FeeAmount, t.Currency))
	}

	return grains
}

func toMajor(minor int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-money.DecimalPlaces(currency))
}
