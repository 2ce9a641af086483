package rbac

// Role is the closed set of portal roles. Keep these stable; they are part
// of the token contract with the identity provider. Every session carries
// exactly one role, immutable for the session's lifetime.
type Role string

const (
	RolePatient   Role = "patient"
	RoleProvider  Role = "provider"
	RoleSupporter Role = "supporter"
	RoleAdmin     Role = "admin"
)

// Roles lists every known role. Adding a role here without extending the
// permission table leaves it with an empty permission set.
func Roles() []Role {
	return []Role{RolePatient, RoleProvider, RoleSupporter, RoleAdmin}
}

// ParseRole maps a raw role claim onto the closed set. Anything else is
// not a role (fail-closed); callers get ok=false and must deny.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RolePatient, RoleProvider, RoleSupporter, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// IsAdmin reports whether the role bypasses per-record ownership checks.
// Admin never bypasses permission or session checks.
func IsAdmin(role Role) bool { return role == RoleAdmin }
