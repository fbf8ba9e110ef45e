// Package routes maps profile roles onto their landing routes. Pure
// functions, no side effects.
package routes

import (
	"educonnect/internal/profile"
	dErrors "educonnect/pkg/domain-errors"
)

const (
	Home                = "/"
	Login               = "/login"
	StudentDashboard    = "/dashboard/student"
	UniversityDashboard = "/dashboard/university"
	AgentDashboard      = "/dashboard/agent"
	AdminDashboard      = "/admin/dashboard"
)

// LandingRouteFor returns the post-authentication route for a role. The
// neutral home route is returned only for the explicit unauthenticated
// marker; an unknown role is an error so a data-contract violation is never
// masked by a silent fallback.
func LandingRouteFor(role profile.Role) (string, error) {
	switch role {
	case profile.RoleStudent:
		return StudentDashboard, nil
	case profile.RoleUniversity:
		return UniversityDashboard, nil
	case profile.RoleAgent:
		return AgentDashboard, nil
	case profile.RoleAdmin:
		return AdminDashboard, nil
	case profile.RoleUnauthenticated:
		return Home, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidRole, "no landing route for role %q", role)
	}
}
