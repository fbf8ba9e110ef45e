// Package config resolves environment configuration so main stays lean.
package config

import (
	"os"
	"time"
)

// Portal captures configuration for the portal front process.
type Portal struct {
	Addr             string
	APIOrigin        string
	OAuthClientID    string
	OAuthRedirectURI string
	CredentialPath   string
}

// DevServer captures configuration for the development backend.
type DevServer struct {
	Addr          string
	JWTSigningKey string
	AccessTTL     time.Duration
	DatabaseURL   string
	RedisConfig   Redis
	RedirectURI   string
}

// Redis holds connection settings for the optional revocation store.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// PortalFromEnv builds the portal configuration from environment variables.
func PortalFromEnv() Portal {
	return Portal{
		Addr:             envOr("EDUCONNECT_ADDR", ":3000"),
		APIOrigin:        envOr("EDUCONNECT_API_ORIGIN", "http://localhost:8080"),
		OAuthClientID:    envOr("EDUCONNECT_OAUTH_CLIENT_ID", "educonnect-dev"),
		OAuthRedirectURI: envOr("EDUCONNECT_OAUTH_REDIRECT_URI", "http://localhost:3000/auth/google/callback"),
		CredentialPath:   os.Getenv("EDUCONNECT_CREDENTIAL_PATH"),
	}
}

// DevServerFromEnv builds the dev backend configuration from environment
// variables. The JWT key default is for development only.
func DevServerFromEnv() DevServer {
	ttl := 24 * time.Hour
	if raw := os.Getenv("EDUCONNECT_ACCESS_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}
	return DevServer{
		Addr:          envOr("EDUCONNECT_BACKEND_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AccessTTL:     ttl,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisConfig: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		RedirectURI: envOr("EDUCONNECT_OAUTH_REDIRECT_URI", "http://localhost:3000/auth/google/callback"),
	}
}
