package session

import (
	"context"

	"educonnect/internal/profile"
)

// AuthResult is what every credential-issuing backend operation returns.
type AuthResult struct {
	Token   string
	Profile profile.Profile
}

// Backend is the backend-service contract the manager depends on. Two
// implementations exist: the HTTP gateway client (production) and the dev
// backend's local adapter (offline development and tests). Which one is used
// is decided at construction time, never via runtime flags.
type Backend interface {
	// Login exchanges email/password for a credential and profile.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Register posts a full registration payload for the given role.
	Register(ctx context.Context, role profile.Role, fields map[string]string) (*AuthResult, error)
	// ExchangeGoogleCode exchanges an OAuth authorization code.
	ExchangeGoogleCode(ctx context.Context, code string) (*AuthResult, error)
	// CurrentProfile resolves the profile for the stored credential.
	CurrentProfile(ctx context.Context) (*profile.Profile, error)
	// SignOut revokes the given credential server-side. Best effort.
	SignOut(ctx context.Context, token string) error
}
