package timesheet

import (
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	timesheets := r.Group("/timesheets")
	timesheets.Use(middleware.AuthMiddleware())
	{
		timesheets.GET("", middleware.RBACAuthorize(rbacService, "timesheet", "read"), handler.List)
		timesheets.POST("",
			middleware.RBACAuthorize(rbacService, "timesheet", "create"),
			middleware.RateLimitByEmployee(2, 10),
			handler.Record,
		)
	}
}
