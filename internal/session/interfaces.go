package session

import (
	"context"

	"instancectl/internal/config"
)

// TokenValidator checks a bearer token against the cluster.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) error
}

// TokenStore persists the session token and knows which identity mode is active.
type TokenStore interface {
	SetToken(token string, oidc bool) error
	ClearToken() error
	Token() string
	IsUsingOIDC() bool
	DefaultNamespace(token string) string
}

// SessionClearer ends an externally issued session at the auth proxy.
type SessionClearer interface {
	ClearSession(ctx context.Context, cfg config.AuthConfig) error
}

// CookieProbe reports whether a valid session cookie is present.
type CookieProbe interface {
	IsAuthenticatedWithCookie(ctx context.Context) (bool, error)
}

// ConfigSource exposes the configuration held by the application store.
type ConfigSource interface {
	Config() config.InstancectlConfig
}
