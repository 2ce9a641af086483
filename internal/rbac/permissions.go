package rbac

// Permission names an allowed action/resource-class pair.
type Permission string

const (
	PermReadPHI        Permission = "read:phi-data"
	PermReadCheckins   Permission = "read:checkins"
	PermWriteCheckins  Permission = "write:checkins"
	PermReadCarePlans  Permission = "read:care-plans"
	PermWriteCarePlans Permission = "write:care-plans"
	PermReadBilling    Permission = "read:billing"
	PermManageUsers    Permission = "manage:users"
)

// rolePermissions is the fixed Role -> permission-set table. It is built
// once at process start and never mutated at runtime; a new role cannot be
// added without updating this table.
var rolePermissions = func() map[Role]map[Permission]struct{} {
	grants := map[Role][]Permission{
		RolePatient: {
			PermReadPHI,
			PermReadCheckins,
			PermWriteCheckins,
			PermReadCarePlans,
			PermReadBilling,
		},
		RoleProvider: {
			PermReadPHI,
			PermReadCheckins,
			PermWriteCheckins,
			PermReadCarePlans,
			PermWriteCarePlans,
		},
		RoleSupporter: {
			PermReadCheckins,
			PermReadCarePlans,
		},
		RoleAdmin: {
			PermReadPHI,
			PermReadCheckins,
			PermWriteCheckins,
			PermReadCarePlans,
			PermWriteCarePlans,
			PermReadBilling,
			PermManageUsers,
		},
	}

	table := make(map[Role]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		table[role] = set
	}
	return table
}()

// PermissionsFor returns the permission set for a role. Unknown roles get
// an empty set. The returned slice is a copy; mutating it cannot drift the
// table.
func PermissionsFor(role Role) []Permission {
	set, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// HasPermission answers a capability query. Unknown roles and unknown
// permissions are always false.
func HasPermission(role Role, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}
