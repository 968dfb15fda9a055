package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchantdash/internal/config"
	"merchantdash/internal/handler"
	"merchantdash/internal/hierarchy"
	"merchantdash/internal/infrastructure/cache"
	"merchantdash/internal/infrastructure/database"
	"merchantdash/internal/infrastructure/mq"
	"merchantdash/internal/job"
	"merchantdash/internal/service"
	"merchantdash/pkg/idgen"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig("config/config.yaml")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	idgen.Init(1)

	db := database.InitMySQL(&cfg.MySQL)
	redisClient := cache.InitRedis(&cfg.Redis)

	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// merchant hierarchy cache, warmed from redis so restarts stay fast
	hierClient := hierarchy.NewClient(cfg.Hierarchy.BaseURL,
		time.Duration(cfg.Hierarchy.TimeoutSeconds)*time.Second)
	hierStore := hierarchy.NewStore(hierClient, hierarchy.NewRedisPersister(redisClient), logger)
	hierStore.WarmUp(ctx)

	workspaces := service.NewWorkspaceRegistry()

	outboxSender := job.NewOutboxSender(db, cfg, logger)
	go outboxSender.Start(ctx)

	summaryBuilder := job.NewSummaryBuilder(db, cfg, logger)
	go summaryBuilder.Start(ctx)

	router := handler.SetupRouter(db, redisClient, cfg, hierStore, workspaces, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
