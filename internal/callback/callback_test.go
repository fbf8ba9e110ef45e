package callback

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"educonnect/internal/profile"
	dErrors "educonnect/pkg/domain-errors"
)

type fakeExchanger struct {
	fn    func(ctx context.Context, code string) (*profile.Profile, error)
	calls atomic.Int64
}

func (f *fakeExchanger) ExchangeOAuthCode(ctx context.Context, code string) (*profile.Profile, error) {
	f.calls.Add(1)
	return f.fn(ctx, code)
}

type CallbackSuite struct {
	suite.Suite
	exchanger *fakeExchanger
	handler   *Handler
}

func TestCallbackSuite(t *testing.T) {
	suite.Run(t, new(CallbackSuite))
}

func (s *CallbackSuite) SetupTest() {
	s.exchanger = &fakeExchanger{}
	s.handler = New(s.exchanger, slog.New(slog.DiscardHandler))
}

func (s *CallbackSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *CallbackSuite) TestMissingCode() {
	s.exchanger.fn = func(context.Context, string) (*profile.Profile, error) {
		s.FailNow("session manager must not be called without a code")
		return nil, nil
	}

	rec := s.get("/auth/google/callback")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "authorization code")
	s.Contains(rec.Body.String(), `href="/login"`)
	s.Zero(s.exchanger.calls.Load())
}

func (s *CallbackSuite) TestSuccessRedirectsByRole() {
	cases := map[profile.Role]string{
		profile.RoleStudent:    "/dashboard/student",
		profile.RoleUniversity: "/dashboard/university",
		profile.RoleAgent:      "/dashboard/agent",
		profile.RoleAdmin:      "/admin/dashboard",
	}
	for role, want := range cases {
		s.Run(string(role), func() {
			s.SetupTest()
			s.exchanger.fn = func(_ context.Context, code string) (*profile.Profile, error) {
				s.Equal("code-1", code)
				p := &profile.Profile{ID: "u-1", Email: "a@b.c", Role: role}
				if role == profile.RoleUniversity {
					p.University = &profile.UniversityDetails{InstitutionName: "TU"}
				}
				if role == profile.RoleAgent {
					p.Agency = &profile.AgencyDetails{AgencyName: "GS"}
				}
				return p, nil
			}

			rec := s.get("/auth/google/callback?code=code-1")

			s.Equal(http.StatusFound, rec.Code)
			s.Equal(want, rec.Header().Get("Location"))
		})
	}
}

func (s *CallbackSuite) TestFailureRendersErrorState() {
	s.exchanger.fn = func(context.Context, string) (*profile.Profile, error) {
		return nil, dErrors.New(dErrors.CodeServerRejected, "code already consumed").WithStatus(400)
	}

	rec := s.get("/auth/google/callback?code=used-code")

	s.NotEqual(http.StatusFound, rec.Code)
	s.Contains(rec.Body.String(), "code already consumed")
	s.Contains(rec.Body.String(), `href="/login"`)
}

func (s *CallbackSuite) TestReinvocationDoesNotResubmit() {
	s.exchanger.fn = func(context.Context, string) (*profile.Profile, error) {
		return &profile.Profile{ID: "u-1", Email: "a@b.c", Role: profile.RoleStudent}, nil
	}

	first := s.get("/auth/google/callback?code=one-shot")
	s.Equal(http.StatusFound, first.Code)

	second := s.get("/auth/google/callback?code=one-shot")
	s.Equal(http.StatusFound, second.Code)
	s.Equal(first.Header().Get("Location"), second.Header().Get("Location"))

	s.Equal(int64(1), s.exchanger.calls.Load(), "the same code must only be exchanged once")
}

func (s *CallbackSuite) TestSettledOutcomesAreBounded() {
	s.exchanger.fn = func(context.Context, string) (*profile.Profile, error) {
		return &profile.Profile{ID: "u-1", Email: "a@b.c", Role: profile.RoleStudent}, nil
	}
	s.handler.maxCodes = 4

	for i := 0; i < 20; i++ {
		rec := s.get(fmt.Sprintf("/auth/google/callback?code=code-%d", i))
		s.Equal(http.StatusFound, rec.Code)
	}

	s.handler.mu.Lock()
	tracked := len(s.handler.outcomes)
	s.handler.mu.Unlock()
	s.LessOrEqual(tracked, 4, "settled entries past the cap must be evicted")

	s.Run("the newest code still replays without a resubmit", func() {
		before := s.exchanger.calls.Load()
		rec := s.get("/auth/google/callback?code=code-19")
		s.Equal(http.StatusFound, rec.Code)
		s.Equal(before, s.exchanger.calls.Load())
	})
}

func (s *CallbackSuite) TestConcurrentReinvocationWaits() {
	release := make(chan struct{})
	s.exchanger.fn = func(context.Context, string) (*profile.Profile, error) {
		<-release
		return &profile.Profile{ID: "u-1", Email: "a@b.c", Role: profile.RoleStudent}, nil
	}

	var wg sync.WaitGroup
	recs := make([]*httptest.ResponseRecorder, 2)
	for i := range recs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i] = s.get("/auth/google/callback?code=racy")
		}(i)
	}
	close(release)
	wg.Wait()

	for _, rec := range recs {
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/dashboard/student", rec.Header().Get("Location"))
	}
	s.Equal(int64(1), s.exchanger.calls.Load())
}
