package session

import (
	"context"
	"errors"
	"sync"

	"instancectl/internal/action"
	"instancectl/internal/config"
)

type fakeValidator struct {
	valid map[string]bool
	err   error
	calls []string
}

func (f *fakeValidator) ValidateToken(_ context.Context, token string) error {
	f.calls = append(f.calls, token)
	if f.err != nil {
		return f.err
	}
	if !f.valid[token] {
		return errors.New("invalid token")
	}
	return nil
}

type fakeTokens struct {
	token      string
	oidc       bool
	setErr     error
	clearErr   error
	namespaces map[string]string
	setCalls   int
	clearCalls int
}

func (f *fakeTokens) SetToken(token string, oidc bool) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.token, f.oidc = token, oidc
	return nil
}

func (f *fakeTokens) ClearToken() error {
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token, f.oidc = "", false
	return nil
}

func (f *fakeTokens) Token() string     { return f.token }
func (f *fakeTokens) IsUsingOIDC() bool { return f.oidc }

func (f *fakeTokens) DefaultNamespace(token string) string {
	if ns, ok := f.namespaces[token]; ok {
		return ns
	}
	return "default"
}

type fakeClearer struct {
	calls []config.AuthConfig
	err   error
	// seen records how many actions the store had received when ClearSession ran.
	seen     []int
	recorder *action.Recorder
}

func (f *fakeClearer) ClearSession(_ context.Context, cfg config.AuthConfig) error {
	f.calls = append(f.calls, cfg)
	if f.recorder != nil {
		f.seen = append(f.seen, len(f.recorder.Actions()))
	}
	return f.err
}

type fakeProbe struct {
	mu    sync.Mutex
	ok    bool
	err   error
	calls int
}

func (f *fakeProbe) IsAuthenticatedWithCookie(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ok, f.err
}

type staticConfig struct {
	cfg config.InstancectlConfig
}

func (s staticConfig) Config() config.InstancectlConfig { return s.cfg }

type harness struct {
	recorder  *action.Recorder
	validator *fakeValidator
	tokens    *fakeTokens
	clearer   *fakeClearer
	probe     *fakeProbe
	cfg       config.InstancectlConfig
	ctrl      *Controller
}

func newHarness() *harness {
	rec := &action.Recorder{}
	h := &harness{
		recorder:  rec,
		validator: &fakeValidator{valid: map[string]bool{}},
		tokens:    &fakeTokens{namespaces: map[string]string{}},
		clearer:   &fakeClearer{recorder: rec},
		probe:     &fakeProbe{},
		cfg:       config.GetDefaultConfig(),
	}
	h.cfg.Auth.OIDC.LogoutURL = "https://proxy.example.com/oauth2/sign_out"
	ctrl, err := NewController(Dependencies{
		Dispatcher: rec,
		Validator:  h.validator,
		Tokens:     h.tokens,
		Clearer:    h.clearer,
		Probe:      h.probe,
		Config:     staticConfig{cfg: h.cfg},
	})
	if err != nil {
		panic(err)
	}
	h.ctrl = ctrl
	return h
}

// state folds everything the harness recorded over the initial state.
func (h *harness) state(initial State) State {
	return Apply(initial, h.recorder.Actions()...)
}
