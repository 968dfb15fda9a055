package job

import (
	"context"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SummaryBuilder periodically rebuilds yesterday's daily settlement rows and
// the current month's rollup. Rebuilding is idempotent (summaries upsert on
// their grain), so a short interval only costs database work.
type SummaryBuilder struct {
	summaryService *service.SummaryService
	cfg            *config.Config
	logger         *zap.Logger
	stopCh         chan struct{}
	interval       time.Duration
}

func NewSummaryBuilder(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *SummaryBuilder {
	interval := time.Duration(cfg.Business.SummaryIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &SummaryBuilder{
		summaryService: service.NewSummaryService(db, cfg, logger),
		cfg:            cfg,
		logger:         logger,
		stopCh:         make(chan struct{}),
		interval:       interval,
	}
}

func (j *SummaryBuilder) Start(ctx context.Context) {
	j.logger.Info("summary builder started", zap.Duration("interval", j.interval))

	// build once at startup so a fresh deploy has data immediately
	j.build(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("summary builder stopping, context done")
			return
		case <-j.stopCh:
			j.logger.Info("summary builder stopped")
			return
		case <-ticker.C:
			j.build(ctx)
		}
	}
}

func (j *SummaryBuilder) Stop() {
	close(j.stopCh)
}

func (j *SummaryBuilder) build(ctx context.Context) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	if err := j.summaryService.BuildDaily(ctx, yesterday); err != nil {
		j.logger.Error("daily summary build failed", zap.Error(err))
		return
	}

	if err := j.summaryService.BuildMonthly(ctx, yesterday); err != nil {
		j.logger.Error("monthly summary build failed", zap.Error(err))
	}
}
