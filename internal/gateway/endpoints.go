package gateway

import (
	"context"
	"net/http"

	"educonnect/internal/profile"
	"educonnect/internal/session"
	dErrors "educonnect/pkg/domain-errors"
)

// Wire contract consumed by this client:
//
//	POST /auth/login    {email, password}      -> {token, profile}
//	POST /auth/register {role, ...fields}      -> {token, profile}
//	POST /auth/google   {code}                 -> {token, profile}
//	GET  /auth/me       (bearer)               -> {profile}
//	POST /auth/logout   (bearer)               -> 204

type authResponse struct {
	Token   string          `json:"token"`
	Profile profile.Profile `json:"profile"`
}

type meResponse struct {
	Profile profile.Profile `json:"profile"`
}

// Login exchanges email/password for a credential.
func (c *Client) Login(ctx context.Context, email, password string) (*session.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		// A 401 on the login endpoint means the credentials themselves were
		// rejected, not a stale bearer token.
		if dErrors.Is(err, dErrors.CodeUnauthorized) {
			return nil, dErrors.New(dErrors.CodeInvalidCredentials, dErrors.MessageOf(err)).WithStatus(http.StatusUnauthorized)
		}
		return nil, err
	}
	return &session.AuthResult{Token: resp.Token, Profile: resp.Profile}, nil
}

// Register posts the full registration payload for a role.
func (c *Client) Register(ctx context.Context, role profile.Role, fields map[string]string) (*session.AuthResult, error) {
	body := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["role"] = string(role)

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &session.AuthResult{Token: resp.Token, Profile: resp.Profile}, nil
}

// ExchangeGoogleCode exchanges an OAuth authorization code.
func (c *Client) ExchangeGoogleCode(ctx context.Context, code string) (*session.AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", map[string]string{"code": code}, &resp); err != nil {
		return nil, err
	}
	return &session.AuthResult{Token: resp.Token, Profile: resp.Profile}, nil
}

// CurrentProfile resolves the profile for the stored credential.
func (c *Client) CurrentProfile(ctx context.Context) (*profile.Profile, error) {
	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// SignOut revokes the given credential server-side.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.doWithToken(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

var _ session.Backend = (*Client)(nil)
