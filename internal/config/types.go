package config

import (
	"time"
)

// InstancectlConfig is the top-level configuration structure for instancectl.
type InstancectlConfig struct {
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Form    FormConfig    `yaml:"form"`
	Serve   ServeConfig   `yaml:"serve"`
}

// AuthConfig describes how instancectl reaches the cluster and who issues identities.
type AuthConfig struct {
	Kubeconfig            string     `yaml:"kubeconfig,omitempty"`            // Explicit kubeconfig path; empty uses the default loading rules
	Context               string     `yaml:"context,omitempty"`               // Kube context override
	Server                string     `yaml:"server,omitempty"`                // API server URL override
	InsecureSkipTLSVerify bool       `yaml:"insecureSkipTLSVerify,omitempty"` // Disable TLS verification (development clusters only)
	OIDC                  OIDCConfig `yaml:"oidc"`
}

// OIDCConfig configures the externally issued identity mode, where an auth proxy
// in front of the API server owns the session and hands out a cookie.
type OIDCConfig struct {
	Enabled     bool   `yaml:"enabled,omitempty"`
	IssuerURL   string `yaml:"issuerURL,omitempty"`   // When set, the cookie is verified as an ID token
	ClientID    string `yaml:"clientID,omitempty"`    // Expected audience of the ID token
	SessionURL  string `yaml:"sessionURL,omitempty"`  // Endpoint probed to check the cookie, e.g. https://proxy/api/clusters
	LogoutURL   string `yaml:"logoutURL,omitempty"`   // Relative or absolute; relative URLs resolve against SessionURL
	CookieName  string `yaml:"cookieName,omitempty"`  // Name of the auth proxy cookie
	OpenBrowser bool   `yaml:"openBrowser,omitempty"` // Open the logout URL in a browser instead of calling it
}

// SessionConfig controls local session persistence and expiry detection.
type SessionConfig struct {
	StateFile     string        `yaml:"stateFile,omitempty"`     // Where the token and cookie are persisted
	CheckInterval time.Duration `yaml:"checkInterval,omitempty"` // How often the watcher re-validates; 0 disables it
}

// FormConfig controls deployment of edited resources.
type FormConfig struct {
	FieldManager   string `yaml:"fieldManager,omitempty"`
	DiffContext    int    `yaml:"diffContext,omitempty"`
	ForceConflicts bool   `yaml:"forceConflicts,omitempty"`
}

const (
	// ServeTransportStdio serves MCP over standard I/O.
	ServeTransportStdio = "stdio"
	// ServeTransportStreamableHTTP serves MCP over streamable HTTP.
	ServeTransportStreamableHTTP = "streamable-http"
	// ServeTransportSSE serves MCP over server-sent events.
	ServeTransportSSE = "sse"
)

// ServeConfig configures the MCP server started by `instancectl serve`.
type ServeConfig struct {
	Transport   string `yaml:"transport,omitempty"`
	Host        string `yaml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	MetricsAddr string `yaml:"metricsAddr,omitempty"` // Empty disables the /metrics endpoint
}
