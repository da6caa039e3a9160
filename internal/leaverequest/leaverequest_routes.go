package leaverequest

import (
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	redisClient *redis.Client,
) {
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("",
			middleware.RBACAuthorize(rbacService, "leave_request", "create"),
			middleware.RateLimitByEmployee(1, 5),
			middleware.Idempotency(redisClient),
			handler.Create,
		)
		requests.GET("", middleware.RBACAuthorize(rbacService, "leave_request", "read"), handler.List)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "leave_request", "read"), handler.GetByID)
		requests.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, "leave_request", "review"),
			middleware.RateLimitByEmployee(2, 5),
			handler.Approve,
		)
		requests.POST("/:id/reject",
			middleware.RBACAuthorize(rbacService, "leave_request", "review"),
			middleware.RateLimitByEmployee(2, 5),
			handler.Reject,
		)
		requests.POST("/bulk-review",
			middleware.RBACAuthorize(rbacService, "leave_request", "review"),
			middleware.RateLimitByEmployee(0.5, 2),
			handler.BulkReview,
		)
	}
}
