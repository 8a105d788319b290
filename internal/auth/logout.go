package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"

	"instancectl/internal/config"
	"instancectl/pkg/logging"

	"github.com/atotto/clipboard"
)

const logoutSubsystem = "Logout"

// For mocking in tests
var (
	openURL         = openInBrowser
	copyToClipboard = clipboard.WriteAll
)

// LogoutRedirector ends an auth proxy session by sending the user to the
// proxy's sign-out endpoint, then forgets the cookie.
type LogoutRedirector struct {
	client  *http.Client
	cookies CookieJar
}

// NewLogoutRedirector creates a LogoutRedirector. A nil client uses a client
// with a default timeout.
func NewLogoutRedirector(cookies CookieJar, client *http.Client) *LogoutRedirector {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &LogoutRedirector{client: client, cookies: cookies}
}

// LogoutURL resolves the configured logout URL against the session URL.
func LogoutURL(cfg config.OIDCConfig) (string, error) {
	logout := cfg.LogoutURL
	if logout == "" {
		logout = config.DefaultLogoutURL
	}
	ref, err := url.Parse(logout)
	if err != nil {
		return "", fmt.Errorf("invalid logout URL %q: %w", logout, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if cfg.SessionURL == "" {
		return "", fmt.Errorf("relative logout URL %q needs a session URL", logout)
	}
	base, err := url.Parse(cfg.SessionURL)
	if err != nil {
		return "", fmt.Errorf("invalid session URL %q: %w", cfg.SessionURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// ClearSession signs out at the auth proxy. With OpenBrowser set the logout
// page is opened for the user, falling back to copying the URL to the
// clipboard; otherwise the endpoint is called directly with the cookie.
func (r *LogoutRedirector) ClearSession(ctx context.Context, cfg config.AuthConfig) error {
	target, err := LogoutURL(cfg.OIDC)
	if err != nil {
		return err
	}

	if cfg.OIDC.OpenBrowser {
		if err := openURL(target); err != nil {
			logging.Warn(logoutSubsystem, "Could not open browser: %v", err)
			if cerr := copyToClipboard(target); cerr != nil {
				return fmt.Errorf("open %s: %w", target, err)
			}
			logging.Info(logoutSubsystem, "Logout URL copied to clipboard: %s", target)
		}
	} else if err := r.callLogout(ctx, target, cookieName(cfg.OIDC)); err != nil {
		return err
	}

	if err := r.cookies.ClearSessionCookie(); err != nil {
		return fmt.Errorf("forget session cookie: %w", err)
	}
	logging.Info(logoutSubsystem, "Signed out at %s", target)
	return nil
}

func (r *LogoutRedirector) callLogout(ctx context.Context, target, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	if value := r.cookies.SessionCookie(); value != "" {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("call logout endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("logout endpoint returned %s", resp.Status)
	}
	return nil
}

func openInBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
