package guard

import (
	"context"
	"errors"
	"time"

	"careportal-platform/internal/audit"
	"careportal-platform/internal/auth"
	"careportal-platform/internal/obs"
	"careportal-platform/internal/ownership"
	"careportal-platform/internal/rbac"
	"careportal-platform/internal/session"
)

// Reason is the machine-readable code attached to every denial.
type Reason string

const (
	ReasonNone                    Reason = ""
	ReasonNoToken                 Reason = "no_token"
	ReasonInvalidToken            Reason = "invalid_token"
	ReasonExpiredToken            Reason = "expired_token"
	ReasonSessionExpired          Reason = "session_expired"
	ReasonInsufficientPermissions Reason = "insufficient_permissions"
	ReasonAccessDenied            Reason = "access_denied"
)

// Decision is the single uniform shape every route branches on. Verifier
// and policy failures never escape the guard as raw errors.
type Decision struct {
	Allowed bool
	Reason  Reason
	Claims  auth.Claims

	// Remaining is the session countdown at decision time (allowed only).
	Remaining time.Duration
}

// ResourceRef identifies a record that requires a per-record ownership
// check on top of the role-level permission.
type ResourceRef struct {
	Type ownership.ResourceType
	ID   string
}

// RequestMeta carries contextual request attributes into audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Guard composes token verification, the session ceiling, the permission
// table and ownership lookups into one per-request decision.
//
// Per request the stage order is strict: token, then session, then
// permission, then ownership. Every terminal state records exactly one
// audit event, written before the decision is returned.
//
// The guard holds no mutable state; one instance serves all requests
// concurrently.
type Guard struct {
	verifier auth.TokenVerifier
	policy   session.Policy
	owners   ownership.Store
	recorder *audit.Recorder
	// Now is injectable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

func New(verifier auth.TokenVerifier, policy session.Policy, owners ownership.Store, recorder *audit.Recorder) *Guard {
	return &Guard{
		verifier: verifier,
		policy:   policy,
		owners:   owners,
		recorder: recorder,
		Now:      time.Now,
	}
}

// Check runs the full decision chain for one request.
func (g *Guard) Check(ctx context.Context, token string, required rbac.Permission, resource *ResourceRef, meta RequestMeta) Decision {
	claims, status, denied := g.validateSession(ctx, token, resource, meta)
	if denied != nil {
		return *denied
	}

	// Stage 3: role-level permission. Unknown roles fail closed.
	role, known := rbac.ParseRole(claims.Role)
	if !known || !rbac.HasPermission(role, required) {
		g.record(ctx, claims, audit.ActionUnauthorizedAccess, audit.OutcomeDenied, resource, meta, map[string]string{
			"reason":              string(ReasonInsufficientPermissions),
			"required_permission": string(required),
			"user_role":           claims.Role,
		})
		return g.deny(ReasonInsufficientPermissions)
	}

	// Stage 4: record ownership. Admin bypasses ownership only; it went
	// through the session and permission stages like everyone else.
	if resource != nil && !rbac.IsAdmin(role) {
		owner, err := g.owners.Owner(ctx, resource.Type, resource.ID)
		if err != nil {
			outcome := audit.OutcomeDenied
			if !errors.Is(err, ownership.ErrNotFound) {
				// Inconclusive lookup: still fail closed, but flag the
				// record as an error for operational follow-up.
				outcome = audit.OutcomeError
			}
			g.record(ctx, claims, audit.ActionUnauthorizedAccess, outcome, resource, meta, map[string]string{
				"reason":              string(ReasonAccessDenied),
				"required_permission": string(required),
				"user_role":           claims.Role,
			})
			return g.deny(ReasonAccessDenied)
		}
		if owner != claims.Subject {
			g.record(ctx, claims, audit.ActionUnauthorizedAccess, audit.OutcomeDenied, resource, meta, map[string]string{
				"reason":              string(ReasonAccessDenied),
				"required_permission": string(required),
				"user_role":           claims.Role,
			})
			return g.deny(ReasonAccessDenied)
		}
	}

	g.record(ctx, claims, audit.ActionPHIAccess, audit.OutcomeAllowed, resource, meta, map[string]string{
		"required_permission": string(required),
	})
	obs.ObserveDecision("allowed", "")
	return Decision{Allowed: true, Claims: claims, Remaining: status.Remaining}
}

// Authenticate verifies the token and the session ceiling only, recording
// LOGIN_SUCCESS on success. The session-establishment endpoint uses it;
// resource access always goes through Check.
func (g *Guard) Authenticate(ctx context.Context, token string, meta RequestMeta) Decision {
	claims, status, denied := g.validateSession(ctx, token, nil, meta)
	if denied != nil {
		return *denied
	}
	g.record(ctx, claims, audit.ActionLoginSuccess, audit.OutcomeAllowed, nil, meta, nil)
	obs.ObserveDecision("allowed", "")
	return Decision{Allowed: true, Claims: claims, Remaining: status.Remaining}
}

// Validate is Authenticate without the success-side audit record, for
// idempotent session-status checks. Denials are still audited: a rejected
// token or an expired session never goes unrecorded.
func (g *Guard) Validate(ctx context.Context, token string, meta RequestMeta) Decision {
	claims, status, denied := g.validateSession(ctx, token, nil, meta)
	if denied != nil {
		return *denied
	}
	return Decision{Allowed: true, Claims: claims, Remaining: status.Remaining}
}

// validateSession runs stages 1 and 2: token verification, then the
// session ceiling. On denial the audit record has already been written.
func (g *Guard) validateSession(ctx context.Context, token string, resource *ResourceRef, meta RequestMeta) (auth.Claims, session.Status, *Decision) {
	now := g.Now()

	// Stage 1: token.
	if token == "" {
		d := g.denyToken(ctx, ReasonNoToken, meta)
		return auth.Claims{}, session.Status{}, &d
	}
	claims, err := g.verifier.Verify(ctx, token, now)
	if err != nil {
		d := g.denyToken(ctx, tokenReason(err), meta)
		return auth.Claims{}, session.Status{}, &d
	}

	// Stage 2: session ceiling. A distinct audit action marks timeouts so
	// compliance queries can separate them from other denials.
	status := g.policy.Evaluate(claims, now)
	if status.Expired() {
		g.record(ctx, claims, audit.ActionSessionTimeout, audit.OutcomeDenied, resource, meta, map[string]string{
			"reason": string(ReasonSessionExpired),
		})
		d := g.deny(ReasonSessionExpired)
		// Identity was verified; only the session aged out. Callers use
		// the claims to notify the holder's other sessions.
		d.Claims = claims
		return auth.Claims{}, session.Status{}, &d
	}

	return claims, status, nil
}

func (g *Guard) denyToken(ctx context.Context, reason Reason, meta RequestMeta) Decision {
	g.recorder.Record(ctx, audit.Event{
		Action:    audit.ActionTokenRejected,
		Outcome:   audit.OutcomeDenied,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  map[string]string{"reason": string(reason)},
	})
	return g.deny(reason)
}

func (g *Guard) deny(reason Reason) Decision {
	obs.ObserveDecision("denied", string(reason))
	return Decision{Allowed: false, Reason: reason}
}

func (g *Guard) record(ctx context.Context, claims auth.Claims, action audit.Action, outcome audit.Outcome, resource *ResourceRef, meta RequestMeta, md map[string]string) {
	e := audit.Event{
		TenantID:  claims.TenantID,
		Action:    action,
		ActorID:   claims.Subject,
		ActorRole: claims.Role,
		Outcome:   outcome,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  md,
	}
	if resource != nil {
		e.ResourceType = string(resource.Type)
		e.ResourceID = resource.ID
	}
	g.recorder.Record(ctx, e)
}

// tokenReason maps verifier errors to denial reasons. Expired tokens keep
// their own code so the holder can attempt a silent refresh instead of a
// full re-login.
func tokenReason(err error) Reason {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ReasonExpiredToken
	default:
		return ReasonInvalidToken
	}
}
