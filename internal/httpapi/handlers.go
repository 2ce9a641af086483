package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"careportal-platform/internal/audit"
	"careportal-platform/internal/auth"
	"careportal-platform/internal/config"
	"careportal-platform/internal/guard"
	"careportal-platform/internal/notify"
	"careportal-platform/pkg/logger"
	"careportal-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal modules, return JSON.
type Handlers struct {
	Guard     *guard.Guard
	Recorder  *audit.Recorder
	Broadcast notify.Broadcaster
	Session   config.SessionConfig

	// Redis is optional; when nil, session-establish throttling is skipped
	// (tests, local runs without redis).
	Redis *redis.Client

	Log *slog.Logger
}

// Session-establish throttle: bounds issuer round-trips per subject.
const (
	establishLimit  = 10
	establishWindow = time.Minute
)

// --- Session surface ---

type sessionResponse struct {
	UserID           string `json:"user_id"`
	Role             string `json:"role"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	WarnAfterSeconds int64  `json:"warn_after_seconds"`
	Warning          bool   `json:"warning"`
}

func (h Handlers) sessionBody(claims auth.Claims, remaining time.Duration) sessionResponse {
	warnAfter := remaining - h.Session.WarningWindow
	if warnAfter < 0 {
		warnAfter = 0
	}
	return sessionResponse{
		UserID:           claims.Subject,
		Role:             claims.Role,
		RemainingSeconds: int64(remaining / time.Second),
		WarnAfterSeconds: int64(warnAfter / time.Second),
		Warning:          remaining < h.Session.WarningWindow,
	}
}

// EstablishSession validates a freshly issued token and returns the
// countdown the holder's monitor should run against. This is the LOGIN
// audit point; token issuance itself belongs to the identity provider.
func (h Handlers) EstablishSession(c *gin.Context) {
	dec := h.Guard.Authenticate(c.Request.Context(), guard.BearerToken(c), requestMeta(c))
	if !dec.Allowed {
		h.notifyExpired(c, dec)
		guard.AbortDenied(c, dec.Reason)
		return
	}

	if h.Redis != nil {
		ok, err := utils.AllowSessionRefresh(c.Request.Context(), h.Redis, dec.Claims.Subject, establishLimit, establishWindow)
		if err != nil {
			// Throttle trouble must not lock legitimate users out.
			logger.FromGin(c).Warn("session throttle unavailable", "err", err)
		} else if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "session_refresh_throttled"})
			return
		}
	}

	c.JSON(http.StatusOK, h.sessionBody(dec.Claims, dec.Remaining))
}

// SessionStatus reports the countdown for an active session without
// recording a login event.
func (h Handlers) SessionStatus(c *gin.Context) {
	dec := h.Guard.Validate(c.Request.Context(), guard.BearerToken(c), requestMeta(c))
	if !dec.Allowed {
		h.notifyExpired(c, dec)
		guard.AbortDenied(c, dec.Reason)
		return
	}
	c.JSON(http.StatusOK, h.sessionBody(dec.Claims, dec.Remaining))
}

// Logout ends the session explicitly: one LOGOUT audit record and a
// broadcast so the subject's other session holders drop out in step.
func (h Handlers) Logout(c *gin.Context) {
	dec := h.Guard.Validate(c.Request.Context(), guard.BearerToken(c), requestMeta(c))
	if !dec.Allowed {
		h.notifyExpired(c, dec)
		guard.AbortDenied(c, dec.Reason)
		return
	}

	meta := requestMeta(c)
	h.Recorder.Record(c.Request.Context(), audit.Event{
		TenantID:  dec.Claims.TenantID,
		Action:    audit.ActionLogout,
		ActorID:   dec.Claims.Subject,
		ActorRole: dec.Claims.Role,
		Outcome:   audit.OutcomeAllowed,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	})
	h.broadcast(c, notify.SessionEvent{
		Kind:     notify.KindSessionEnded,
		UserID:   dec.Claims.Subject,
		TenantID: dec.Claims.TenantID,
		Reason:   "logout",
	})

	c.Status(http.StatusNoContent)
}

// Me echoes the verified identity.
func (h Handlers) Me(c *gin.Context) {
	dec := h.Guard.Validate(c.Request.Context(), guard.BearerToken(c), requestMeta(c))
	if !dec.Allowed {
		guard.AbortDenied(c, dec.Reason)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":   dec.Claims.Subject,
		"email":     dec.Claims.Email,
		"role":      dec.Claims.Role,
		"tenant_id": dec.Claims.TenantID,
	})
}

// --- PHI resource surface ---
//
// The business-entity query layer is an external collaborator; these
// handlers demonstrate the authorized path and keep the response shape
// stable for the UI. The guard middleware has already enforced token,
// session, permission and ownership before any of them run.

func (h Handlers) GetCheckin(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"checkin_id":   c.Param("checkin_id"),
		"requested_by": uid,
	})
}

func (h Handlers) GetCarePlan(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"plan_id":      c.Param("plan_id"),
		"requested_by": uid,
	})
}

type createCarePlanRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
}

func (h Handlers) CreateCarePlan(c *gin.Context) {
	var req createCarePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "patient_id and title required"})
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{
		"patient_id": req.PatientID,
		"title":      req.Title,
		"created_by": uid,
	})
}

func (h Handlers) GetBillingAccount(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"account_id":   c.Param("account_id"),
		"requested_by": uid,
	})
}

// --- helpers ---

func requestMeta(c *gin.Context) guard.RequestMeta {
	return guard.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// notifyExpired broadcasts a forced logout when a session hit its ceiling.
// Best effort: broadcast failure never changes the response.
func (h Handlers) notifyExpired(c *gin.Context, dec guard.Decision) {
	if dec.Reason != guard.ReasonSessionExpired || dec.Claims.Subject == "" || h.Broadcast == nil {
		return
	}
	h.broadcast(c, notify.SessionEvent{
		Kind:     notify.KindSessionExpired,
		UserID:   dec.Claims.Subject,
		TenantID: dec.Claims.TenantID,
		Reason:   "session_timeout",
	})
}

func (h Handlers) broadcast(c *gin.Context, e notify.SessionEvent) {
	if h.Broadcast == nil {
		return
	}
	if err := h.Broadcast.Broadcast(c.Request.Context(), e); err != nil {
		logger.FromGin(c).Warn("session broadcast failed", "err", err, "kind", string(e.Kind))
	}
}
