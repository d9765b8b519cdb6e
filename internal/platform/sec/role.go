// Copyright (c) 2026 VeriClass. All rights reserved.

package sec

// UserRole is the authorization level granted to an account.
type UserRole string

const (
	// RoleAdmin has unrestricted system access.
	RoleAdmin UserRole = "admin"

	// RoleFaculty manages courses, sessions, and attendance for
	// assigned classes.
	RoleFaculty UserRole = "faculty"

	// RoleStudent is the default role for enrolled students.
	RoleStudent UserRole = "student"
)

// AtLeast reports whether r meets or exceeds the target role in the
// student < faculty < admin hierarchy.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// DashboardPath is the landing path a user of this role is redirected to
// after authenticating.
func (r UserRole) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleFaculty:
		return "/faculty"
	case RoleStudent:
		return "/student"
	default:
		return "/"
	}
}

// level spaces the hierarchy in tens so intermediate roles (teaching
// assistants, department admins) can slot in without renumbering.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleFaculty:
		return 20
	case RoleStudent:
		return 10
	default:
		return 0
	}
}
