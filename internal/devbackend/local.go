package devbackend

import (
	"context"

	"educonnect/internal/credential"
	"educonnect/internal/profile"
	"educonnect/internal/session"
	dErrors "educonnect/pkg/domain-errors"
)

// LocalBackend adapts the service to the session manager's backend contract
// so the portal can run fully offline, with no HTTP hop. It reads the
// credential store the same way the gateway client does.
type LocalBackend struct {
	svc   *Service
	creds credential.Store
}

func NewLocalBackend(svc *Service, creds credential.Store) *LocalBackend {
	return &LocalBackend{svc: svc, creds: creds}
}

var _ session.Backend = (*LocalBackend)(nil)

func (b *LocalBackend) Login(ctx context.Context, email, password string) (*session.AuthResult, error) {
	return asAuthResult(b.svc.Login(ctx, email, password, ""))
}

func (b *LocalBackend) Register(ctx context.Context, role profile.Role, fields map[string]string) (*session.AuthResult, error) {
	return asAuthResult(b.svc.Register(ctx, string(role), fields))
}

func (b *LocalBackend) ExchangeGoogleCode(ctx context.Context, code string) (*session.AuthResult, error) {
	return asAuthResult(b.svc.ExchangeGoogleCode(ctx, code))
}

func (b *LocalBackend) CurrentProfile(ctx context.Context) (*profile.Profile, error) {
	tok, ok := b.creds.Current()
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no stored credential")
	}
	claims, err := b.svc.ValidateToken(ctx, tok)
	if err != nil {
		// The session manager owns the credential store; it clears the
		// token when it sees the unauthorized code.
		return nil, err
	}
	return b.svc.CurrentProfile(ctx, claims.UserID)
}

func (b *LocalBackend) SignOut(ctx context.Context, token string) error {
	return b.svc.SignOut(ctx, token)
}

func asAuthResult(creds *Credentials, err error) (*session.AuthResult, error) {
	if err != nil {
		return nil, err
	}
	return &session.AuthResult{Token: creds.Token, Profile: creds.Profile}, nil
}
