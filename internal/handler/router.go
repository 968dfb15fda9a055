package handler

import (
	"merchantdash/internal/config"
	"merchantdash/internal/hierarchy"
	"merchantdash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires middlewares and routes.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, hier *hierarchy.Store, workspaces *service.WorkspaceRegistry, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggerMiddleware(logger))
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg, hier, workspaces, logger)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/logout", AuthMiddleware(h.authService), h.Logout)
		}

		// everything below requires a session
		authed := api.Group("")
		authed.Use(AuthMiddleware(h.authService))
		{
			authed.GET("/hierarchy/children", h.HierarchyChildren)

			transactions := authed.Group("/transactions")
			{
				transactions.POST("/search", h.SearchTransactions)
				transactions.GET("/:transaction_no", h.GetTransaction)
			}

			summary := authed.Group("/summary")
			{
				summary.GET("/daily", h.DailySummary)
				summary.GET("/monthly", h.MonthlySummary)
			}

			disputes := authed.Group("/disputes")
			{
				disputes.GET("", h.ListDisputes)
				disputes.GET("/:dispute_no", h.GetDispute)
				disputes.GET("/:dispute_no/form", h.GetDisputeForm)
			}

			authed.GET("/fundings", h.ListFundings)

			account := authed.Group("/account")
			{
				account.POST("/mfa", h.RequestMFACode)
				account.POST("/password", h.ChangePassword)
				account.POST("/phone", h.ChangePhone)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
