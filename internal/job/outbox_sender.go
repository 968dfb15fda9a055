package job

import (
	"context"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/infrastructure/mq"
	"merchantdash/internal/model"
	"merchantdash/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OutboxSender drains pending outbox rows to Kafka. Events are written in the
// same transaction as the change they describe, so the sender only has to be
// at-least-once.
type OutboxSender struct {
	db         *gorm.DB
	outboxRepo *repository.OutboxRepository
	cfg        *config.Config
	logger     *zap.Logger
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *OutboxSender {
	return &OutboxSender{
		db:         db,
		outboxRepo: repository.NewOutboxRepository(db),
		cfg:        cfg,
		logger:     logger,
		stopCh:     make(chan struct{}),
		interval:   100 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	s.logger.Info("outbox sender started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("outbox sender stopping, context done")
			return
		case <-s.stopCh:
			s.logger.Info("outbox sender stopped")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) processPendingMessages(ctx context.Context) {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("failed to load pending outbox messages", zap.Error(err))
		return
	}

	for _, msg := range messages {
		s.sendMessage(ctx, msg)
	}
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) {
	err := mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)

	if err == nil {
		if updateErr := s.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); updateErr != nil {
			s.logger.Error("failed to mark outbox message sent",
				zap.Int64("id", msg.ID), zap.Error(updateErr))
			return
		}
		s.logger.Info("outbox message sent",
			zap.Int64("id", msg.ID),
			zap.String("event_type", msg.EventType),
			zap.String("topic", msg.Topic),
			zap.String("key", msg.MessageKey))
		return
	}

	s.logger.Warn("outbox message send failed",
		zap.Int64("id", msg.ID),
		zap.String("event_type", msg.EventType),
		zap.Error(err))

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		s.logger.Error("failed to bump retry count", zap.Int64("id", msg.ID), zap.Error(err))
	}

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			s.logger.Error("failed to mark outbox message failed", zap.Int64("id", msg.ID), zap.Error(err))
		} else {
			s.logger.Warn("outbox message exceeded retry limit", zap.Int64("id", msg.ID))
		}
	}
}
