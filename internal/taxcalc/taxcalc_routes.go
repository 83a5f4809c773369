package taxcalc

import (
	"gigpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	calcs := r.Group("/tax-calculations")
	calcs.Use(middleware.AuthMiddleware())
	{
		calcs.POST("/estimate", handler.Estimate)
		calcs.GET("/workers/:workerId", handler.GetAllByWorker)
	}
}
