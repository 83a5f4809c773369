package exemption

import (
	"gigpay/internal/middleware"
	"gigpay/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	ex := r.Group("/exemptions")
	ex.Use(middleware.AuthMiddleware())
	{
		ex.POST("", handler.RequestOptOut)
		ex.GET("/workers/:workerId", handler.GetAllByWorker)
		ex.POST("/:id/acknowledge", handler.Acknowledge)
		ex.POST("/:id/approve", rbac.Authorize(enforcer, "exemption", "decide"), handler.Approve)
		ex.POST("/:id/reject", rbac.Authorize(enforcer, "exemption", "decide"), handler.Reject)
		ex.POST("/:id/revoke", rbac.Authorize(enforcer, "exemption", "decide"), handler.Revoke)
	}
}
