package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"educonnect/internal/credential"
	dErrors "educonnect/pkg/domain-errors"
)

type GatewaySuite struct {
	suite.Suite
	creds *credential.MemoryStore
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.creds = credential.NewMemory()
}

func (s *GatewaySuite) client(srv *httptest.Server, opts ...Option) *Client {
	return New(srv.URL, s.creds, slog.New(slog.DiscardHandler), opts...)
}

func (s *GatewaySuite) TestBearerAttachment() {
	s.Run("stored credential is attached", func() {
		s.Require().NoError(s.creds.Set("tok-123"))
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"profile":{"id":"u-1","email":"a@b.c","role":"student"}}`))
		}))
		defer srv.Close()

		_, err := s.client(srv).CurrentProfile(context.Background())
		s.Require().NoError(err)
		s.Equal("Bearer tok-123", gotAuth)
	})

	s.Run("no credential means no header", func() {
		s.SetupTest()
		var hadHeader bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hadHeader = r.Header.Get("Authorization") != ""
			_, _ = w.Write([]byte(`{"token":"t","profile":{"id":"u","email":"a@b.c","role":"student"}}`))
		}))
		defer srv.Close()

		_, err := s.client(srv).Login(context.Background(), "a@b.c", "pw")
		s.Require().NoError(err)
		s.False(hadHeader)
	})
}

func (s *GatewaySuite) TestAutoClearOn401() {
	s.Require().NoError(s.creds.Set("stale-token"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid or expired token"}`))
	}))
	defer srv.Close()

	_, err := s.client(srv).CurrentProfile(context.Background())
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))

	_, ok := s.creds.Current()
	s.False(ok, "401 must clear the stored credential")
}

func (s *GatewaySuite) TestErrorClassification() {
	s.Run("login 401 maps to invalid credentials with the server message", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
		}))
		defer srv.Close()

		_, err := s.client(srv).Login(context.Background(), "a@b.com", "wrongpw")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvalidCredentials))
		s.Equal("Invalid credentials", dErrors.MessageOf(err))
	})

	s.Run("structured 4xx maps to server rejected", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"email already registered","code":"conflict"}`))
		}))
		defer srv.Close()

		_, err := s.client(srv).Register(context.Background(), "student", map[string]string{"email": "a@b.c"})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeServerRejected))
		s.Equal("email already registered", dErrors.MessageOf(err))

		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(http.StatusConflict, de.Status)
	})

	s.Run("undecodable success body is malformed response", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		}))
		defer srv.Close()

		_, err := s.client(srv).Login(context.Background(), "a@b.c", "pw")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeMalformedResponse))
	})

	s.Run("unreachable server is a network error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // refuse connections

		_, err := s.client(srv).Login(context.Background(), "a@b.c", "pw")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNetwork))
	})

	s.Run("timeout is a network error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer srv.Close()

		cli := s.client(srv, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
		_, err := cli.Login(context.Background(), "a@b.c", "pw")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNetwork))
	})
}

func (s *GatewaySuite) TestSignOutUsesExplicitToken() {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	// The local store has already been cleared by logout; the revoked token
	// travels explicitly.
	err := s.client(srv).SignOut(context.Background(), "revoked-token")
	s.Require().NoError(err)
	s.Equal("Bearer revoked-token", gotAuth)
}
