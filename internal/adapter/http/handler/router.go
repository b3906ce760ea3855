package handler

import (
	"refund-service/internal/adapter/http/middleware"
	redisStore "refund-service/internal/adapter/storage/redis"
	"refund-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Workflow       ports.RefundWorkflow
	Authorizer     ports.Authorizer
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	OpenAPISpec    []byte             // served at /swagger/spec
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec(deps.OpenAPISpec))
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	refundHandler := NewRefundHandler(deps.Workflow)
	refunds := v1.Group("/refunds", jwtAuth)
	{
		refunds.POST("", rl("refunds_create"), refundHandler.Create)
		refunds.GET("", rl("refunds_read"), refundHandler.ListOwn)
	}

	// Role checks happen in the workflow; the handler only resolves the caller.
	adminHandler := NewAdminHandler(deps.Workflow, deps.Authorizer)
	admin := v1.Group("/admin/refunds", jwtAuth)
	{
		admin.GET("", rl("admin_read"), adminHandler.List)
		admin.POST("/:id/resolve", rl("admin_resolve"), adminHandler.Resolve)
	}

	return r
}
