package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"instancectl/internal/config"
	"instancectl/pkg/logging"

	"github.com/coreos/go-oidc/v3/oidc"
)

const probeSubsystem = "CookieProbe"

const defaultHTTPTimeout = 15 * time.Second

// CookieJar is where the auth proxy cookie lives between runs.
type CookieJar interface {
	SessionCookie() string
	SetSessionCookie(value string) error
	ClearSessionCookie() error
}

// HTTPCookieProbe asks the auth proxy whether the stored cookie still opens a
// session.
type HTTPCookieProbe struct {
	client     *http.Client
	sessionURL string
	cookieName string
	cookies    CookieJar
}

// NewHTTPCookieProbe creates a probe against cfg.SessionURL. A nil client uses
// a client with a default timeout.
func NewHTTPCookieProbe(cfg config.OIDCConfig, cookies CookieJar, client *http.Client) *HTTPCookieProbe {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPCookieProbe{
		client:     client,
		sessionURL: cfg.SessionURL,
		cookieName: cookieName(cfg),
		cookies:    cookies,
	}
}

func cookieName(cfg config.OIDCConfig) string {
	if cfg.CookieName != "" {
		return cfg.CookieName
	}
	return config.DefaultCookieName
}

// IsAuthenticatedWithCookie reports whether the proxy accepts the cookie.
// A 403 means the identity is known but lacks permissions, which still counts
// as authenticated. Transport failures are returned as errors.
func (p *HTTPCookieProbe) IsAuthenticatedWithCookie(ctx context.Context) (bool, error) {
	value := p.cookies.SessionCookie()
	if value == "" {
		return false, nil
	}
	if p.sessionURL == "" {
		return false, fmt.Errorf("no session URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.sessionURL, nil)
	if err != nil {
		return false, fmt.Errorf("build session request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: p.cookieName, Value: value})

	resp, err := p.client.Do(req)
	if err != nil {
		logging.Warn(probeSubsystem, "Session probe against %s failed: %v", p.sessionURL, err)
		return false, fmt.Errorf("probe session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300, resp.StatusCode == http.StatusForbidden:
		return true, nil
	default:
		logging.Debug(probeSubsystem, "Session probe returned %d", resp.StatusCode)
		return false, nil
	}
}

// IDTokenProbe treats the stored cookie as an OIDC ID token and verifies it
// against the issuer.
type IDTokenProbe struct {
	issuerURL string
	clientID  string
	cookies   CookieJar

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

// NewIDTokenProbe creates a probe for cfg.IssuerURL and cfg.ClientID.
// Discovery happens on first use.
func NewIDTokenProbe(cfg config.OIDCConfig, cookies CookieJar) *IDTokenProbe {
	return &IDTokenProbe{issuerURL: cfg.IssuerURL, clientID: cfg.ClientID, cookies: cookies}
}

func (p *IDTokenProbe) getVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifier != nil {
		return p.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, p.issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover issuer %s: %w", p.issuerURL, err)
	}
	p.verifier = provider.Verifier(&oidc.Config{ClientID: p.clientID})
	return p.verifier, nil
}

// IsAuthenticatedWithCookie reports whether the cookie is a valid, unexpired
// ID token for the configured client.
func (p *IDTokenProbe) IsAuthenticatedWithCookie(ctx context.Context) (bool, error) {
	raw := p.cookies.SessionCookie()
	if raw == "" {
		return false, nil
	}
	verifier, err := p.getVerifier(ctx)
	if err != nil {
		return false, err
	}
	if _, err := verifier.Verify(ctx, raw); err != nil {
		logging.Debug(probeSubsystem, "ID token rejected: %v", err)
		return false, nil
	}
	return true, nil
}
