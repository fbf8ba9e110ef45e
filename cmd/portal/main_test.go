package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"educonnect/internal/credential"
	"educonnect/internal/platform/config"
	"educonnect/internal/profile"
	"educonnect/internal/routes"
	"educonnect/internal/session"
)

// stubBackend satisfies the session backend for router tests that never
// authenticate.
type stubBackend struct{}

func (stubBackend) Login(context.Context, string, string) (*session.AuthResult, error) {
	return nil, errors.New("not used")
}

func (stubBackend) Register(context.Context, profile.Role, map[string]string) (*session.AuthResult, error) {
	return nil, errors.New("not used")
}

func (stubBackend) ExchangeGoogleCode(context.Context, string) (*session.AuthResult, error) {
	return nil, errors.New("not used")
}

func (stubBackend) CurrentProfile(context.Context) (*profile.Profile, error) {
	return nil, errors.New("not used")
}

func (stubBackend) SignOut(context.Context, string) error { return nil }

type PortalRouterSuite struct {
	suite.Suite
	handler http.Handler
}

func TestPortalRouterSuite(t *testing.T) {
	suite.Run(t, new(PortalRouterSuite))
}

func (s *PortalRouterSuite) SetupTest() {
	log := slog.New(slog.DiscardHandler)
	sessions := session.New(stubBackend{}, credential.NewMemory(), log)
	s.handler = router(sessions, config.Portal{
		APIOrigin:        "https://api.test",
		OAuthClientID:    "client-123",
		OAuthRedirectURI: "https://portal.test/auth/google/callback",
	}, log)
}

func (s *PortalRouterSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *PortalRouterSuite) TestLoginPageCarriesOAuthIdentity() {
	rec := s.get(routes.Login)

	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "https://api.test/auth/google/start?")
	s.Contains(body, "client_id=client-123")
	s.Contains(body, "redirect_uri=")
}

func (s *PortalRouterSuite) TestHomeRedirectsLoggedOutToLogin() {
	rec := s.get(routes.Home)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal(routes.Login, rec.Header().Get("Location"))
}

func (s *PortalRouterSuite) TestDashboardsRequireMatchingRole() {
	rec := s.get(routes.StudentDashboard)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal(routes.Login, rec.Header().Get("Location"))
}
