package kube

import (
	"fmt"
	"net/http"
	"time"

	"instancectl/internal/config"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const defaultTimeout = 30 * time.Second

func clientConfig(cfg config.AuthConfig) clientcmd.ClientConfig {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.Kubeconfig != "" {
		loadingRules.ExplicitPath = cfg.Kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Context}
	if cfg.Server != "" {
		overrides.ClusterInfo.Server = cfg.Server
	}
	if cfg.InsecureSkipTLSVerify {
		overrides.ClusterInfo.InsecureSkipTLSVerify = true
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)
}

// NewRESTConfig builds a REST config from kubeconfig and cfg's overrides.
// A non-empty bearerToken replaces whatever credentials the kubeconfig carries.
func NewRESTConfig(cfg config.AuthConfig, bearerToken string) (*rest.Config, error) {
	rc, err := clientConfig(cfg).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get REST config for context %q: %w", cfg.Context, err)
	}
	if bearerToken != "" {
		rc = rest.AnonymousClientConfig(rc)
		rc.BearerToken = bearerToken
	}
	if rc.Timeout == 0 {
		rc.Timeout = defaultTimeout
	}
	return rc, nil
}

// CurrentContext returns the kube context instancectl talks to.
var CurrentContext = func(cfg config.AuthConfig) (string, error) {
	if cfg.Context != "" {
		return cfg.Context, nil
	}
	raw, err := clientConfig(cfg).RawConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if raw.CurrentContext == "" {
		return "", fmt.Errorf("current kubeconfig context is not set")
	}
	return raw.CurrentContext, nil
}

// WithSessionCookie makes every request made with rc carry the auth proxy
// session cookie. An empty value leaves rc untouched.
func WithSessionCookie(rc *rest.Config, name, value string) {
	if value == "" {
		return
	}
	cookie := &http.Cookie{Name: name, Value: value}
	rc.Wrap(func(rt http.RoundTripper) http.RoundTripper {
		return &cookieRoundTripper{next: rt, cookie: cookie}
	})
}

type cookieRoundTripper struct {
	next   http.RoundTripper
	cookie *http.Cookie
}

func (c *cookieRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.AddCookie(c.cookie)
	return c.next.RoundTrip(req)
}
