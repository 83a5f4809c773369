package payment

import (
	"gigpay/internal/middleware"
	"gigpay/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer, redisClient *redis.Client) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("/process",
			rbac.Authorize(enforcer, "payment", "process"),
			middleware.Idempotency(redisClient),
			handler.Process,
		)
		payments.POST("/batch",
			rbac.Authorize(enforcer, "payment", "process"),
			middleware.Idempotency(redisClient),
			handler.ProcessBatch,
		)
	}
}
