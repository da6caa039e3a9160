package compoff

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
	credits := r.Group("/comp-off")
	credits.Use(middleware.AuthMiddleware())
	{
		credits.POST("",
			middleware.RBACAuthorize(rbacService, "comp_off", "grant"),
			middleware.RateLimitByEmployee(1, 5),
			middleware.Idempotency(redisClient),
			handler.Grant,
		)
		credits.POST("/:id/revoke",
			middleware.RBACAuthorize(rbacService, "comp_off", "grant"),
			middleware.RateLimitByEmployee(1, 5),
			handler.Revoke,
		)
		credits.GET("", middleware.RBACAuthorize(rbacService, "comp_off", "read"), handler.List)
	}
}
