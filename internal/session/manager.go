// Package session owns the current-user state and the authentication
// operations that mutate it. The manager is the only writer of the profile
// and, together with the gateway's auto-clear, the only writer of the
// credential store.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"educonnect/internal/credential"
	"educonnect/internal/profile"
	dErrors "educonnect/pkg/domain-errors"
)

// Status describes the manager's authentication state.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
)

// signOutTimeout bounds the best-effort server-side sign-out fired by Logout.
const signOutTimeout = 5 * time.Second

// Manager holds the profile/status pair and serializes authentication
// operations: at most one credential-issuing call is in flight at a time, and
// a concurrent second call is rejected immediately rather than queued.
type Manager struct {
	backend Backend
	creds   credential.Store
	logger  *slog.Logger

	mu       sync.Mutex
	profile  *profile.Profile
	status   Status
	inFlight bool
}

// New constructs a manager in the unauthenticated state.
func New(backend Backend, creds credential.Store, logger *slog.Logger) *Manager {
	return &Manager{
		backend: backend,
		creds:   creds,
		logger:  logger,
		status:  StatusUnauthenticated,
	}
}

// Profile returns a copy of the current profile, or nil.
func (m *Manager) Profile() *profile.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	clone := *m.profile
	return &clone
}

// Status returns the current authentication status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// begin claims the single in-flight slot. It never blocks: a second
// concurrent operation fails with already_in_progress so two successes can
// never race on the credential store.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return dErrors.New(dErrors.CodeAlreadyInProgress, "another authentication operation is in progress")
	}
	m.inFlight = true
	m.status = StatusAuthenticating
	return nil
}

// finish releases the slot and settles state. On success the profile is
// installed; on failure the previous credential and profile are untouched
// beyond resetting status.
func (m *Manager) finish(p *profile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if p != nil {
		m.profile = p
		m.status = StatusAuthenticated
		return
	}
	if m.profile != nil {
		m.status = StatusAuthenticated
	} else {
		m.status = StatusUnauthenticated
	}
}

// Login authenticates with email and password.
func (m *Manager) Login(ctx context.Context, email, password string) (*profile.Profile, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	p, err := m.settle(m.backend.Login(ctx, email, password))
	if err != nil {
		m.logger.WarnContext(ctx, "login failed", "error", err)
		return nil, err
	}
	m.logger.InfoContext(ctx, "login succeeded", "user_id", p.ID, "role", p.Role)
	return p, nil
}

// Signup registers a new account. Field-level validation is the wizard's
// responsibility; the manager trusts that its input passed that gate.
func (m *Manager) Signup(ctx context.Context, role profile.Role, fields map[string]string) (*profile.Profile, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	p, err := m.settle(m.backend.Register(ctx, role, fields))
	if err != nil {
		m.logger.WarnContext(ctx, "signup failed", "role", role, "error", err)
		return nil, err
	}
	m.logger.InfoContext(ctx, "signup succeeded", "user_id", p.ID, "role", p.Role)
	return p, nil
}

// ExchangeOAuthCode exchanges a Google authorization code for a session. An
// empty code means the redirect URL itself was malformed, so it fails locally
// without touching the network.
func (m *Manager) ExchangeOAuthCode(ctx context.Context, code string) (*profile.Profile, error) {
	if strings.TrimSpace(code) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidCode, "authorization code is missing")
	}
	if err := m.begin(); err != nil {
		return nil, err
	}
	p, err := m.settle(m.backend.ExchangeGoogleCode(ctx, code))
	if err != nil {
		m.logger.WarnContext(ctx, "oauth code exchange failed", "error", err)
		return nil, err
	}
	m.logger.InfoContext(ctx, "oauth code exchange succeeded", "user_id", p.ID, "role", p.Role)
	return p, nil
}

// settle validates the backend result, stores the credential, and installs
// the profile. Order matters: nothing is written until the whole result has
// been accepted, so a failed operation leaves the credential store exactly as
// it was.
func (m *Manager) settle(res *AuthResult, err error) (*profile.Profile, error) {
	if err != nil {
		m.finish(nil)
		return nil, err
	}
	if res == nil || res.Token == "" {
		m.finish(nil)
		return nil, dErrors.New(dErrors.CodeMalformedResponse, "backend returned no credential")
	}
	if vErr := res.Profile.Validate(); vErr != nil {
		m.finish(nil)
		return nil, vErr
	}
	if sErr := m.creds.Set(res.Token); sErr != nil {
		m.finish(nil)
		return nil, dErrors.Wrap(sErr, dErrors.CodeInternal, "failed to store credential")
	}
	p := res.Profile
	m.finish(&p)
	return &p, nil
}

// RestoreSession is invoked once at process start. No stored credential
// resolves to (nil, nil) with no network call: absence of a prior session is
// a normal terminal state, not an error.
func (m *Manager) RestoreSession(ctx context.Context) (*profile.Profile, error) {
	tok, ok := m.creds.Current()
	if !ok {
		return nil, nil
	}
	if err := m.begin(); err != nil {
		return nil, err
	}

	p, err := m.backend.CurrentProfile(ctx)
	if err != nil {
		m.finish(nil)
		switch dErrors.CodeOf(err) {
		case dErrors.CodeInvalidCredentials, dErrors.CodeUnauthorized:
			// Idempotent with the gateway's own auto-clear on 401.
			_ = m.creds.Clear()
			m.logger.InfoContext(ctx, "stored credential rejected, treating as logged out")
			return nil, nil
		case dErrors.CodeMalformedResponse, dErrors.CodeInvalidRole:
			// The one fatal-ish case: the profile endpoint broke its
			// contract. User-visible behavior is "logged out", not a crash.
			_ = m.creds.Clear()
			m.logger.ErrorContext(ctx, "session restore got malformed profile, treating as logged out", "error", err)
			return nil, nil
		default:
			// Network or server trouble: keep the credential so a later
			// restore can succeed, and surface the error.
			return nil, err
		}
	}
	if vErr := p.Validate(); vErr != nil {
		m.finish(nil)
		_ = m.creds.Clear()
		m.logger.ErrorContext(ctx, "session restore got invalid role, treating as logged out", "error", vErr)
		return nil, nil
	}

	m.finish(p)
	m.logger.InfoContext(ctx, "session restored", "user_id", p.ID, "role", p.Role, "token_present", tok != "")
	return p, nil
}

// Logout clears local state. It cannot fail: the server-side sign-out is
// best effort and never blocks the local reset.
func (m *Manager) Logout(ctx context.Context) {
	tok, ok := m.creds.Current()

	m.mu.Lock()
	m.profile = nil
	m.status = StatusUnauthenticated
	m.mu.Unlock()
	_ = m.creds.Clear()

	if ok {
		go func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signOutTimeout)
			defer cancel()
			if err := m.backend.SignOut(sctx, tok); err != nil {
				m.logger.DebugContext(sctx, "best-effort sign-out failed", "error", err)
			}
		}()
	}
	m.logger.InfoContext(ctx, "logged out")
}
