package rbac

import (
	"sort"
	"testing"
)

func TestParseRole_FailClosed(t *testing.T) {
	for _, raw := range []string{"", "root", "ADMIN", "patient ", "superuser"} {
		if _, ok := ParseRole(raw); ok {
			t.Fatalf("ParseRole(%q) accepted an unknown role", raw)
		}
	}
	for _, r := range Roles() {
		got, ok := ParseRole(string(r))
		if !ok || got != r {
			t.Fatalf("ParseRole(%q) = %q, %v", r, got, ok)
		}
	}
}

func TestHasPermission_UnknownRoleAlwaysFalse(t *testing.T) {
	perms := []Permission{
		PermReadPHI, PermReadCheckins, PermWriteCheckins,
		PermReadCarePlans, PermWriteCarePlans, PermReadBilling, PermManageUsers,
	}
	for _, p := range perms {
		if HasPermission(Role("intruder"), p) {
			t.Fatalf("unknown role granted %q", p)
		}
	}
	if got := PermissionsFor(Role("intruder")); len(got) != 0 {
		t.Fatalf("unknown role has permissions: %v", got)
	}
}

func TestHasPermission_Table(t *testing.T) {
	cases := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleProvider, PermReadPHI, true},
		{RoleProvider, PermWriteCarePlans, true},
		{RoleProvider, PermManageUsers, false},
		{RoleSupporter, PermReadCheckins, true},
		{RoleSupporter, PermWriteCarePlans, false},
		{RoleSupporter, PermReadPHI, false},
		{RolePatient, PermReadPHI, true},
		{RolePatient, PermWriteCarePlans, false},
		{RoleAdmin, PermManageUsers, true},
		{RoleAdmin, PermWriteCarePlans, true},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.perm); got != tc.want {
			t.Fatalf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestPermissionsFor_IdempotentAndIsolated(t *testing.T) {
	first := PermissionsFor(RoleSupporter)
	// Mutating the returned slice must not leak into the table.
	for i := range first {
		first[i] = Permission("tampered")
	}
	second := PermissionsFor(RoleSupporter)
	third := PermissionsFor(RoleSupporter)

	normalize := func(ps []Permission) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = string(p)
		}
		sort.Strings(out)
		return out
	}
	a, b := normalize(second), normalize(third)
	if len(a) != len(b) {
		t.Fatalf("permission set drifted: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("permission set drifted: %v vs %v", a, b)
		}
	}
	if a[0] == "tampered" {
		t.Fatalf("table mutated through returned slice")
	}
}
