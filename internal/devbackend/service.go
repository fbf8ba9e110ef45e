package devbackend

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"educonnect/internal/devbackend/audit"
	"educonnect/internal/devbackend/device"
	"educonnect/internal/devbackend/token"
	"educonnect/internal/platform/metrics"
	"educonnect/internal/platform/middleware"
	"educonnect/internal/profile"
	dErrors "educonnect/pkg/domain-errors"
	"educonnect/pkg/platform/sentinel"
)

const authCodeTTL = 5 * time.Minute

// UserStore, CodeStore and RevocationStore are the storage dependencies,
// declared here so the service does not import its own store packages.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

type CodeStore interface {
	Create(ctx context.Context, code *AuthCode) error
	Consume(ctx context.Context, code string, now time.Time) (*AuthCode, error)
}

type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service implements the auth operations behind the dev server's HTTP
// surface. It issues HS256 access tokens and honors revocation on sign-out.
type Service struct {
	users       UserStore
	codes       CodeStore
	revocations RevocationStore
	tokens      *token.Service
	auditor     *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	accessTTL   time.Duration
	now         func() time.Time
}

func NewService(
	users UserStore,
	codes CodeStore,
	revocations RevocationStore,
	tokens *token.Service,
	auditor *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	accessTTL time.Duration,
) *Service {
	return &Service{
		users:       users,
		codes:       codes,
		revocations: revocations,
		tokens:      tokens,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
		accessTTL:   accessTTL,
		now:         time.Now,
	}
}

// Login verifies email/password and issues a credential. Unknown accounts
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (*Credentials, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ObserveLogin("rejected")
			return nil, dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials")
		}
		s.metrics.ObserveLogin("error")
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		s.metrics.ObserveLogin("rejected")
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials")
	}

	creds, err := s.issue(ctx, u)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, err
	}
	s.metrics.ObserveLogin("success")
	s.record(ctx, audit.Event{
		UserID: u.ID,
		Email:  u.Email,
		Action: audit.ActionLogin,
		Device: device.ParseUserAgent(userAgent),
	})
	return creds, nil
}

// Register creates an account from a flattened registration payload and
// signs it in immediately.
func (s *Service) Register(ctx context.Context, roleRaw string, fields map[string]string) (*Credentials, error) {
	role, err := profile.ParseRole(roleRaw)
	if err != nil {
		return nil, err
	}
	if role == profile.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeBadRequest, "admin accounts cannot self-register")
	}

	email := fields["email"]
	password := fields["password"]
	if !govalidator.IsEmail(email) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a valid email address is required")
	}
	if !govalidator.StringLength(password, "8", "128") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password must be between 8 and 128 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := userFromFields(role, email, fields)
	u.PasswordHash = hash
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "An account with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	creds, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRegistration(string(role))
	s.record(ctx, audit.Event{UserID: u.ID, Email: u.Email, Action: audit.ActionRegister})
	return creds, nil
}

// ExchangeGoogleCode consumes a one-time authorization code. Accounts are
// auto-provisioned as students on first exchange, mirroring social sign-in.
func (s *Service) ExchangeGoogleCode(ctx context.Context, code string) (*Credentials, error) {
	record, err := s.codes.Consume(ctx, code, s.now())
	if err != nil {
		s.metrics.ObserveGoogleExchange("rejected")
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeBadRequest, "Unknown authorization code")
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeBadRequest, "Authorization code already used")
		case errors.Is(err, sentinel.ErrExpired):
			return nil, dErrors.New(dErrors.CodeBadRequest, "Authorization code expired")
		default:
			return nil, fmt.Errorf("consume code: %w", err)
		}
	}

	u, err := s.users.FindByEmail(ctx, record.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		u = &User{
			ID:        uuid.NewString(),
			Email:     record.Email,
			Role:      profile.RoleStudent,
			CreatedAt: s.now(),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("provision user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	creds, err := s.issue(ctx, u)
	if err != nil {
		s.metrics.ObserveGoogleExchange("error")
		return nil, err
	}
	s.metrics.ObserveGoogleExchange("success")
	s.record(ctx, audit.Event{UserID: u.ID, Email: u.Email, Action: audit.ActionGoogleExchange})
	return creds, nil
}

// MintGoogleCode creates a short-lived one-time code for the dev OAuth loop.
func (s *Service) MintGoogleCode(ctx context.Context, email string) (string, error) {
	if !govalidator.IsEmail(email) {
		return "", dErrors.New(dErrors.CodeBadRequest, "a valid email address is required")
	}
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := hex.EncodeToString(buf)
	if err := s.codes.Create(ctx, &AuthCode{
		Code:      code,
		Email:     email,
		ExpiresAt: s.now().Add(authCodeTTL),
	}); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// CurrentProfile resolves the account behind an already-validated user ID.
func (s *Service) CurrentProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	p := u.Profile()
	return &p, nil
}

// ValidateToken checks signature, expiry, and the revocation list. It
// satisfies the auth middleware's validator contract.
func (s *Service) ValidateToken(ctx context.Context, raw string) (*middleware.TokenClaims, error) {
	claims, err := s.tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	return &middleware.TokenClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    claims.ID,
	}, nil
}

// SignOut revokes the presented token for its remaining lifetime. Revoking
// an already-invalid token is not an error.
func (s *Service) SignOut(ctx context.Context, raw string) error {
	claims, err := s.tokens.ValidateToken(raw)
	if err != nil {
		return nil
	}
	ttl := claims.RemainingLifetime(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.record(ctx, audit.Event{UserID: claims.UserID, Action: audit.ActionSignOut})
	return nil
}

func (s *Service) issue(ctx context.Context, u *User) (*Credentials, error) {
	signed, err := s.tokens.GenerateAccessToken(u.ID, u.Role, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Credentials{Token: signed, Profile: u.Profile()}, nil
}

// record is best effort: a failed audit write never fails the operation.
func (s *Service) record(ctx context.Context, event audit.Event) {
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit write failed", "error", err, "action", event.Action)
	}
}

func userFromFields(role profile.Role, email string, fields map[string]string) *User {
	u := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		FirstName: fields["firstName"],
		LastName:  fields["lastName"],
		CreatedAt: time.Now(),
	}
	switch role {
	case profile.RoleStudent:
		u.Nationality = fields["nationality"]
		u.StudyLevel = fields["studyLevel"]
	case profile.RoleUniversity:
		u.Institution = fields["institution"]
		u.Country = fields["country"]
		u.Website = fields["website"]
	case profile.RoleAgent:
		u.AgencyName = fields["agencyName"]
		u.Country = fields["country"]
	}
	return u
}
