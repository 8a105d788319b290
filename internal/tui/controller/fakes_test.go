package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"instancectl/internal/action"
	"instancectl/internal/kube"
	"instancectl/internal/session"
	"instancectl/internal/store"
	"instancectl/internal/tui/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const (
	testDefaults = "apiVersion: example.com/v1\nkind: Widget\nmetadata:\n  name: w\nspec:\n  size: 1\n"
	testDeployed = "apiVersion: example.com/v1\nkind: Widget\nmetadata:\n  name: w\nspec:\n  size: 3\n"
)

// fakeSession drives the store the way the real session controller would.
type fakeSession struct {
	mu      sync.Mutex
	st      *store.Store
	calls   []string
	tokens  []string
	authErr error
	cookie  bool
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSession) Authenticate(_ context.Context, token string, oidc bool) ([]action.Action, error) {
	f.record("authenticate")
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()

	f.st.Dispatch(session.AuthenticatingAction{})
	if f.authErr != nil {
		f.st.Dispatch(session.AuthenticationErrorAction{Message: f.authErr.Error()})
		return nil, f.authErr
	}
	f.st.Dispatch(session.SetAuthenticatedAction{Authenticated: true, OIDC: oidc, DefaultNamespace: "team-a"})
	if oidc {
		f.st.Dispatch(session.SetSessionExpiredAction{Expired: false})
	}
	return nil, nil
}

func (f *fakeSession) Logout(context.Context) ([]action.Action, error) {
	f.record("logout")
	if f.st.Auth().OIDC {
		return nil, nil
	}
	f.st.Dispatch(session.SetAuthenticatedAction{})
	return nil, nil
}

func (f *fakeSession) ExpireSession(ctx context.Context) ([]action.Action, error) {
	f.record("expire")
	if f.st.Auth().OIDC {
		f.st.Dispatch(session.SetSessionExpiredAction{Expired: true})
	}
	return f.Logout(ctx)
}

func (f *fakeSession) CheckCookieAuthentication(ctx context.Context) ([]action.Action, error) {
	f.record("check-cookie")
	if f.cookie {
		return f.Authenticate(ctx, "", true)
	}
	f.st.Dispatch(session.SetAuthenticatedAction{})
	return nil, nil
}

type fakeInstance struct {
	mu        sync.Mutex
	defaults  string
	deployed  string
	loadErr   error
	deployErr error
	applied   []*unstructured.Unstructured
}

func (f *fakeInstance) LoadInstance(context.Context) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defaults, f.deployed, f.loadErr
}

func (f *fakeInstance) Deploy(_ context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deployErr != nil {
		return nil, f.deployErr
	}
	f.applied = append(f.applied, u)
	return u, nil
}

type harness struct {
	m        *model.Model
	st       *store.Store
	session  *fakeSession
	instance *fakeInstance
}

func newHarness(t *testing.T, auth session.State) *harness {
	t.Helper()

	oldTimeout := statusTimeout
	statusTimeout = time.Millisecond
	t.Cleanup(func() { statusTimeout = oldTimeout })

	st := store.New(store.AppState{Auth: auth})
	fs := &fakeSession{st: st}
	fi := &fakeInstance{defaults: testDefaults, deployed: testDeployed}

	m, err := model.InitialModel(model.TUIConfig{
		Target:      kube.Target{APIVersion: "example.com/v1", Kind: "Widget", Name: "w"},
		DiffContext: 3,
		Session:     fs,
		Instance:    fi,
		Store:       st,
	})
	require.NoError(t, err)

	m, _ = Update(tea.WindowSizeMsg{Width: 120, Height: 40}, m)
	return &harness{m: m, st: st, session: fs, instance: fi}
}

// pump feeds pending store notifications into the model and returns the
// commands the screen transitions asked for.
func (h *harness) pump() []tea.Cmd {
	var cmds []tea.Cmd
	for {
		select {
		case change := <-h.m.Subscription.Channel:
			if cmd := handleStateChange(h.m, model.StateChangeMsg{Change: change}); cmd != nil {
				cmds = append(cmds, cmd)
			}
		default:
			return cmds
		}
	}
}

// load delivers the fake instance to the editor.
func (h *harness) load(t *testing.T) {
	t.Helper()
	msg := model.LoadInstanceCmd(h.instance, time.Second)()
	h.m, _ = Update(msg, h.m)
	require.NotNil(t, h.m.Form)
}

func (h *harness) key(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	h.m, cmd = Update(msg, h.m)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and any batched commands it produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
