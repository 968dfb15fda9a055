package service

import (
	"context"
	"fmt"
	"time"

	"merchantdash/internal/model"
	"merchantdash/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FundingService struct {
	fundingRepo *repository.FundingRepository
	logger      *zap.Logger
}

func NewFundingService(db *gorm.DB, logger *zap.Logger) *FundingService {
	return &FundingService{
		fundingRepo: repository.NewFundingRepository(db),
		logger:      logger,
	}
}

type FundingListResult struct {
	Items            []*model.FundingBatch `json:"items"`
	Total            int64                 `json:"total"`
	TotalsByCurrency map[string]int64      `json:"totals_by_currency"`
	Page             int                   `json:"page"`
	PageSize         int                   `json:"page_size"`
}

// List returns a page of funding batches plus the per-currency net totals
// for the selected window, which the multi-funding table footer shows.
func (s *FundingService) List(ctx context.Context, merchantID string, from, to time.Time, page, pageSize int) (*FundingListResult, error) {
	items, total, err := s.fundingRepo.ListByMerchant(ctx, merchantID, from, to, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list funding batches: %w", err)
	}

	totals, err := s.fundingRepo.TotalsByCurrency(ctx, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum funding totals: %w", err)
	}

	return &FundingListResult{
		Items:            items,
		Total:            total,
		TotalsByCurrency: totals,
		Page:             page,
		PageSize:         pageSize,
	}, nil
}
