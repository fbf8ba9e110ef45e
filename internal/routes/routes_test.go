package routes

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"educonnect/internal/profile"
	dErrors "educonnect/pkg/domain-errors"
)

type RoutesSuite struct {
	suite.Suite
}

func TestRoutesSuite(t *testing.T) {
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) TestLandingRouteFor() {
	s.Run("each role maps to a distinct dashboard", func() {
		want := map[profile.Role]string{
			profile.RoleStudent:    "/dashboard/student",
			profile.RoleUniversity: "/dashboard/university",
			profile.RoleAgent:      "/dashboard/agent",
			profile.RoleAdmin:      "/admin/dashboard",
		}
		seen := map[string]bool{}
		for role, route := range want {
			got, err := LandingRouteFor(role)
			s.NoError(err)
			s.Equal(route, got)
			s.False(seen[got], "route %s mapped twice", got)
			seen[got] = true
		}
	})

	s.Run("explicit unauthenticated maps to home", func() {
		got, err := LandingRouteFor(profile.RoleUnauthenticated)
		s.NoError(err)
		s.Equal(Home, got)
	})

	s.Run("unknown role is an error, never a fallback", func() {
		got, err := LandingRouteFor(profile.Role("superuser"))
		s.Error(err)
		s.Empty(got)
		s.True(dErrors.Is(err, dErrors.CodeInvalidRole))
	})
}
