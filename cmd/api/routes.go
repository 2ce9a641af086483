package main

import (
	"careportal-platform/internal/guard"
	"careportal-platform/internal/httpapi"
	"careportal-platform/internal/obs"
	"careportal-platform/internal/ownership"
	"careportal-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, g *guard.Guard, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(obs.Handler()))

	v1 := r.Group("/v1")
	{
		// Session surface. These run the verify-then-evaluate chain inside
		// the handler because their denial responses carry session context
		// (countdown, redirect hint) the generic middleware does not shape.
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/session", h.EstablishSession)
			authGroup.POST("/logout", h.Logout)
		}
		v1.GET("/session", h.SessionStatus)
		v1.GET("/me", h.Me)

		// PHI surface. The guard middleware enforces token, session ceiling,
		// permission and (where a route names a resource) ownership before
		// a handler runs.
		v1.GET("/checkins/:checkin_id",
			guard.RequireOwned(g, rbac.PermReadCheckins, ownership.ResourceCheckIn, "checkin_id"),
			h.GetCheckin)

		v1.GET("/care-plans/:plan_id",
			guard.RequireOwned(g, rbac.PermReadCarePlans, ownership.ResourceCarePlan, "plan_id"),
			h.GetCarePlan)
		v1.POST("/care-plans",
			guard.Require(g, rbac.PermWriteCarePlans),
			h.CreateCarePlan)

		v1.GET("/billing/:account_id",
			guard.RequireOwned(g, rbac.PermReadBilling, ownership.ResourceBillingAccount, "account_id"),
			h.GetBillingAccount)
	}
}
