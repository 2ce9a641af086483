package guard

import (
	"net/http"
	"strings"

	"careportal-platform/internal/auth"
	"careportal-platform/internal/ownership"
	"careportal-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// Require guards a route with a permission check. On success the verified
// identity is injected into the request context; handlers never see a
// request that did not pass the full chain.
func Require(g *Guard, perm rbac.Permission) gin.HandlerFunc {
	return handle(g, perm, "", "")
}

// RequireOwned additionally enforces record ownership for the resource id
// found in the named route parameter. Admin bypasses ownership only.
func RequireOwned(g *Guard, perm rbac.Permission, resource ownership.ResourceType, param string) gin.HandlerFunc {
	return handle(g, perm, resource, param)
}

func handle(g *Guard, perm rbac.Permission, resource ownership.ResourceType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ref *ResourceRef
		if resource != "" {
			id := c.Param(param)
			if id == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "resource id required"})
				return
			}
			ref = &ResourceRef{Type: resource, ID: id}
		}

		dec := g.Check(
			c.Request.Context(),
			BearerToken(c),
			perm,
			ref,
			RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()},
		)
		if !dec.Allowed {
			AbortDenied(c, dec.Reason)
			return
		}

		ctx := auth.WithIdentity(c.Request.Context(), dec.Claims)
		c.Request = c.Request.WithContext(ctx)

		// Convenience keys for handlers.
		c.Set("user_id", dec.Claims.Subject)
		c.Set("role", dec.Claims.Role)
		c.Set("session_remaining", dec.Remaining)

		c.Next()
	}
}

// BearerToken extracts the bearer token from the Authorization header. An
// absent or malformed header yields the empty string, which the guard
// treats as no token.
func BearerToken(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
}

// AbortDenied maps denial reasons to status codes: authentication problems
// are 401, authorization problems 403. Session expiry carries a redirect
// hint so the UI can re-authenticate with context instead of showing a
// generic login error.
func AbortDenied(c *gin.Context, reason Reason) {
	body := gin.H{"error": string(reason)}
	status := http.StatusUnauthorized

	switch reason {
	case ReasonInsufficientPermissions, ReasonAccessDenied:
		status = http.StatusForbidden
	case ReasonSessionExpired:
		body["redirect"] = "/login?reason=session_expired"
	}

	c.AbortWithStatusJSON(status, body)
}
