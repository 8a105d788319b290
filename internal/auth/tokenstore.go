package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// sessionFile is the on-disk layout of the session state file.
type sessionFile struct {
	Token  string `yaml:"token,omitempty"`
	OIDC   bool   `yaml:"oidc,omitempty"`
	Cookie string `yaml:"cookie,omitempty"`
}

// FileTokenStore persists the bearer token, the OIDC flag and the auth proxy
// cookie in a YAML file readable only by the owner. An empty path keeps
// everything in memory.
type FileTokenStore struct {
	path string

	mu    sync.RWMutex
	state sessionFile
}

// NewFileTokenStore loads the session file at path. A missing file is an
// empty session.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	s := &FileTokenStore{path: path}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}
	return s, nil
}

// Path returns the session file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// SetToken stores token and whether the session is OIDC based.
func (s *FileTokenStore) SetToken(token string, oidc bool) error {
	return s.update(func(f *sessionFile) {
		f.Token = token
		f.OIDC = oidc
	})
}

// ClearToken removes the token and the OIDC flag. The cookie is kept; it is
// owned by the auth proxy and cleared through logout.
func (s *FileTokenStore) ClearToken() error {
	return s.update(func(f *sessionFile) {
		f.Token = ""
		f.OIDC = false
	})
}

// Token returns the stored bearer token.
func (s *FileTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsUsingOIDC reports whether the session was established through the auth proxy.
func (s *FileTokenStore) IsUsingOIDC() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.OIDC
}

// DefaultNamespace decodes the namespace a token is bound to.
func (s *FileTokenStore) DefaultNamespace(token string) string {
	return DefaultNamespaceFromToken(token)
}

// SetSessionCookie stores the auth proxy cookie value.
func (s *FileTokenStore) SetSessionCookie(value string) error {
	return s.update(func(f *sessionFile) {
		f.Cookie = value
	})
}

// SessionCookie returns the stored auth proxy cookie value.
func (s *FileTokenStore) SessionCookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Cookie
}

// ClearSessionCookie drops the auth proxy cookie.
func (s *FileTokenStore) ClearSessionCookie() error {
	return s.update(func(f *sessionFile) {
		f.Cookie = ""
	})
}

func (s *FileTokenStore) update(mutate func(*sessionFile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	mutate(&next)
	if err := s.write(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *FileTokenStore) write(f sessionFile) error {
	if s.path == "" {
		return nil
	}
	if f == (sessionFile{}) {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file %s: %w", s.path, err)
		}
		return nil
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file %s: %w", s.path, err)
	}
	return nil
}
