package leavetype

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
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", middleware.RBACAuthorize(rbacService, "leave_type", "read"), handler.GetAll)
		types.POST("", middleware.RBACAuthorize(rbacService, "leave_type", "create"), handler.Create)
		types.POST("/:id/policies", middleware.RBACAuthorize(rbacService, "leave_type", "create"), handler.CreatePolicy)
	}
}
