// Package routes wires the HTTP surface of the wallet service.
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/vaultex/vaultex_service/internal/api/handlers"
	"github.com/vaultex/vaultex_service/internal/api/middleware"
	"github.com/vaultex/vaultex_service/internal/infrastructure/cache"
	"github.com/vaultex/vaultex_service/internal/infrastructure/config"
	"github.com/vaultex/vaultex_service/internal/infrastructure/database"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

// SetupRoutes builds the gin engine with the middleware chain and all
// wallet and admin endpoints.
func SetupRoutes(cfg *config.Config, wallet *handlers.WalletHandlers, log *logger.Logger, db *sqlx.DB, redis cache.RedisClient) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/health", healthHandler(db, redis))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "vaultex-wallet", "status": "running"})
	})

	v1 := router.Group("/v1")
	{
		walletGroup := v1.Group("/wallet")
		{
			walletGroup.GET("/balance", wallet.GetBalance)
			walletGroup.POST("/withdrawal/request", wallet.RequestWithdrawal)
			walletGroup.POST("/withdrawal/confirm", wallet.ConfirmWithdrawal)
			walletGroup.POST("/withdrawal", wallet.DirectWithdrawal)
			walletGroup.DELETE("/withdrawal/:id", wallet.CancelWithdrawal)
		}

		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/transfer", wallet.Transfer)
			adminGroup.POST("/mint", wallet.Mint)
			adminGroup.POST("/burn", wallet.Burn)
		}
	}

	return router
}

func healthHandler(db *sqlx.DB, redis cache.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}

		if err := database.HealthCheck(db); err != nil {
			checks["database"] = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}

		if err := redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "healthy"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "degraded"
		}

		c.JSON(status, gin.H{
			"status":    overall,
			"checks":    checks,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
