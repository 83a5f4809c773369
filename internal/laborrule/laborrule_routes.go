package laborrule

import (
	"gigpay/internal/middleware"
	"gigpay/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	rules := r.Group("/labor-rules")
	rules.Use(middleware.AuthMiddleware())
	{
		rules.GET("", handler.GetAllByJurisdiction)
		rules.GET("/:id", handler.GetById)
		rules.POST("", rbac.Authorize(enforcer, "laborrule", "write"), handler.Create)
		rules.PUT("/:id", rbac.Authorize(enforcer, "laborrule", "write"), handler.Update)
	}
}
