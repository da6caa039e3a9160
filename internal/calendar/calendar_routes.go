package calendar

import (
	"go-timeoff/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	cal := r.Group("/calendar")
	cal.Use(middleware.AuthMiddleware())
	{
		cal.GET("/:year/:month", handler.GetMonth)
	}
}
