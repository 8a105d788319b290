package config

import (
	"path/filepath"
)

const (
	DefaultLogoutURL    = "/oauth2/sign_out"
	DefaultCookieName   = "_oauth2_proxy"
	DefaultFieldManager = "instancectl"
	DefaultDiffContext  = 3
	DefaultServePort    = 8091
	sessionFileName     = "session.yaml"
)

// GetDefaultConfig returns the built-in configuration. Token mode, no session
// watcher, MCP over stdio.
func GetDefaultConfig() InstancectlConfig {
	stateFile := ""
	if dir, err := GetUserConfigDir(); err == nil {
		stateFile = filepath.Join(dir, sessionFileName)
	}

	return InstancectlConfig{
		Auth: AuthConfig{
			OIDC: OIDCConfig{
				LogoutURL:  DefaultLogoutURL,
				CookieName: DefaultCookieName,
			},
		},
		Session: SessionConfig{
			StateFile: stateFile,
		},
		Form: FormConfig{
			FieldManager: DefaultFieldManager,
			DiffContext:  DefaultDiffContext,
		},
		Serve: ServeConfig{
			Transport: ServeTransportStdio,
			Host:      "localhost",
			Port:      DefaultServePort,
		},
	}
}
