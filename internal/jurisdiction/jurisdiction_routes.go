package jurisdiction

import (
	"gigpay/internal/middleware"
	"gigpay/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	jurisdictions := r.Group("/jurisdictions")
	jurisdictions.Use(middleware.AuthMiddleware())
	{
		jurisdictions.GET("/resolve", handler.Resolve)
		jurisdictions.GET("", handler.GetAll)
		jurisdictions.GET("/:id", handler.GetById)
		jurisdictions.POST("", rbac.Authorize(enforcer, "jurisdiction", "write"), handler.Create)
		jurisdictions.PUT("/:id", rbac.Authorize(enforcer, "jurisdiction", "write"), handler.Update)
		jurisdictions.DELETE("/:id", rbac.Authorize(enforcer, "jurisdiction", "write"), handler.Deactivate)
	}
}
