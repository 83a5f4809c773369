package violation

import (
	"gigpay/internal/middleware"
	"gigpay/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	v := r.Group("/violations")
	v.Use(middleware.AuthMiddleware())
	{
		v.GET("", handler.GetAll)
		v.GET("/:id", handler.GetById)
		v.POST("/:id/review", rbac.Authorize(enforcer, "violation", "review"), handler.Review)
	}
}
