package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"instancectl/internal/action"
	"instancectl/internal/form"
	"instancectl/internal/kube"
	"instancectl/internal/namespace"
	"instancectl/internal/session"
	"instancectl/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type fakeSessions struct {
	store       *store.Store
	validToken  string
	cookieOK    bool
	logoutCalls int
}

func (f *fakeSessions) Authenticate(_ context.Context, token string, oidc bool) ([]action.Action, error) {
	if !oidc && token != f.validToken {
		f.store.Dispatch(session.AuthenticationErrorAction{Message: "invalid token"})
		return nil, &session.AuthenticationError{Err: errors.New("invalid token")}
	}
	f.store.Dispatch(session.SetAuthenticatedAction{Authenticated: true, OIDC: oidc, DefaultNamespace: "team-a"})
	return nil, nil
}

func (f *fakeSessions) Logout(context.Context) ([]action.Action, error) {
	f.logoutCalls++
	if f.store.Auth().OIDC {
		return nil, nil
	}
	f.store.Dispatch(session.SetAuthenticatedAction{})
	f.store.Dispatch(namespace.ClearNamespacesAction{})
	return nil, nil
}

func (f *fakeSessions) CheckCookieAuthentication(ctx context.Context) ([]action.Action, error) {
	if f.cookieOK {
		return f.Authenticate(ctx, "", true)
	}
	f.store.Dispatch(session.SetAuthenticatedAction{})
	return nil, nil
}

type fakeInstances struct {
	diff       form.DiffView
	diffTarget kube.Target
	deployErr  error
	deployed   []*unstructured.Unstructured
}

func (f *fakeInstances) Validate(text string) (*unstructured.Unstructured, error) {
	return form.Parse(text)
}

func (f *fakeInstances) Diff(_ context.Context, _ string, target kube.Target) (form.DiffView, error) {
	f.diffTarget = target
	return f.diff, nil
}

func (f *fakeInstances) Deploy(_ context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if f.deployErr != nil {
		return nil, f.deployErr
	}
	if u.GetNamespace() == "" {
		u.SetNamespace("team-a")
	}
	f.deployed = append(f.deployed, u)
	return u, nil
}

const widgetYAML = "apiVersion: example.com/v1\nkind: Widget\nmetadata:\n  name: w1\nspec:\n  size: 3\n"

func newTools(auth session.State) (*Tools, *fakeSessions, *fakeInstances, *store.Store) {
	st := store.New(store.AppState{Auth: auth})
	sessions := &fakeSessions{store: st, validToken: "good"}
	instances := &fakeInstances{}
	return NewTools(sessions, instances, st), sessions, instances, st
}

func request(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected TextContent")
	return text.Text
}

func TestHandleAuthStatus(t *testing.T) {
	tools, _, _, st := newTools(session.State{Authenticated: true, DefaultNamespace: "team-a"})
	st.Dispatch(namespace.ReceiveNamespacesAction{Namespaces: []string{"team-b", "team-a"}})

	res, err := tools.HandleAuthStatus(context.Background(), request("auth_status", nil))
	require.NoError(t, err)

	var status authStatus
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &status))
	assert.Equal(t, "authenticated", status.Phase)
	assert.True(t, status.Authenticated)
	assert.Equal(t, []string{"team-a", "team-b"}, status.Namespaces)
}

func TestHandleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		tools, _, _, _ := newTools(session.State{})
		res, err := tools.HandleLogin(ctx, request("login", map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("invalid token", func(t *testing.T) {
		tools, _, _, st := newTools(session.State{})
		res, err := tools.HandleLogin(ctx, request("login", map[string]interface{}{"token": "bad"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid token")
		assert.Equal(t, "invalid token", st.Auth().ErrorMsg)
	})

	t.Run("valid token", func(t *testing.T) {
		tools, _, _, st := newTools(session.State{})
		res, err := tools.HandleLogin(ctx, request("login", map[string]interface{}{"token": "good"}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(t, res), `"phase": "authenticated"`)
		assert.True(t, st.Auth().Authenticated)
	})

	t.Run("oidc without cookie", func(t *testing.T) {
		tools, _, _, _ := newTools(session.State{})
		res, err := tools.HandleLogin(ctx, request("login", map[string]interface{}{"oidc": true}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "No valid auth proxy session", resultText(t, res))
	})

	t.Run("oidc with cookie", func(t *testing.T) {
		tools, sessions, _, st := newTools(session.State{})
		sessions.cookieOK = true
		res, err := tools.HandleLogin(ctx, request("login", map[string]interface{}{"oidc": true}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.True(t, st.Auth().OIDC)
	})
}

func TestHandleLogout(t *testing.T) {
	tools, _, _, st := newTools(session.State{Authenticated: true})

	res, err := tools.HandleLogout(context.Background(), request("logout", nil))
	require.NoError(t, err)
	assert.Equal(t, "Logged out", resultText(t, res))
	assert.False(t, st.Auth().Authenticated)
}

func TestHandleLogout_OIDC(t *testing.T) {
	t.Run("local state follows the proxy", func(t *testing.T) {
		tools, sessions, _, st := newTools(session.State{Authenticated: true, OIDC: true})

		res, err := tools.HandleLogout(context.Background(), request("logout", nil))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "Signed out at the auth proxy", resultText(t, res))
		assert.Equal(t, 1, sessions.logoutCalls)
		assert.False(t, st.Auth().Authenticated)
		assert.False(t, st.Auth().OIDC)
	})

	t.Run("cookie still valid", func(t *testing.T) {
		tools, sessions, _, st := newTools(session.State{Authenticated: true, OIDC: true})
		sessions.cookieOK = true

		res, err := tools.HandleLogout(context.Background(), request("logout", nil))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "still valid")
		assert.True(t, st.Auth().Authenticated)
	})
}

func TestHandleValidateInstance(t *testing.T) {
	tools, _, _, _ := newTools(session.State{})
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]interface{}
		isError bool
		text    string
	}{
		{name: "missing yaml", args: map[string]interface{}{}, isError: true, text: "yaml is required"},
		{name: "valid", args: map[string]interface{}{"yaml": widgetYAML}, text: "Valid Widget w1 (apiVersion example.com/v1)"},
		{name: "no apiVersion", args: map[string]interface{}{"yaml": "kind: Widget\n"}, isError: true, text: "Unable parse the resource. Make sure it contains a valid apiVersion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tools.HandleValidateInstance(ctx, request("validate_instance", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, res.IsError)
			assert.Equal(t, tt.text, resultText(t, res))
		})
	}

	res, err := tools.HandleValidateInstance(ctx, request("validate_instance", map[string]interface{}{"yaml": "a: [1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Unable to parse the given YAML. Got:")
}

func TestHandleDiffInstance(t *testing.T) {
	ctx := context.Background()
	args := map[string]interface{}{
		"yaml":       widgetYAML,
		"apiVersion": "example.com/v1",
		"kind":       "Widget",
		"name":       "w1",
	}

	t.Run("requires session", func(t *testing.T) {
		tools, _, _, _ := newTools(session.State{})
		res, err := tools.HandleDiffInstance(ctx, request("diff_instance", args))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("requires target", func(t *testing.T) {
		tools, _, _, _ := newTools(session.State{Authenticated: true})
		res, err := tools.HandleDiffInstance(ctx, request("diff_instance", map[string]interface{}{"yaml": widgetYAML}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "apiVersion, kind and name are required")
	})

	t.Run("no changes", func(t *testing.T) {
		tools, _, instances, _ := newTools(session.State{Authenticated: true})
		instances.diff = form.DiffView{Empty: true, EmptyText: "No changes detected from deployed values"}
		res, err := tools.HandleDiffInstance(ctx, request("diff_instance", args))
		require.NoError(t, err)
		assert.Equal(t, "No changes detected from deployed values", resultText(t, res))
		assert.Equal(t, kube.Target{APIVersion: "example.com/v1", Kind: "Widget", Name: "w1"}, instances.diffTarget)
	})

	t.Run("changes", func(t *testing.T) {
		tools, _, instances, _ := newTools(session.State{Authenticated: true})
		instances.diff = form.DiffView{Title: "Difference from deployed values", Event: form.EventUpgrade, Text: "-a\n+b\n"}
		res, err := tools.HandleDiffInstance(ctx, request("diff_instance", args))
		require.NoError(t, err)
		assert.Equal(t, "Difference from deployed values (on submit: upgrade)\n-a\n+b\n", resultText(t, res))
	})
}

func TestHandleDeployInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("validation runs before the session check", func(t *testing.T) {
		tools, _, instances, _ := newTools(session.State{})
		res, err := tools.HandleDeployInstance(ctx, request("deploy_instance", map[string]interface{}{"yaml": "kind: Widget\n"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "apiVersion")
		assert.Empty(t, instances.deployed)
	})

	t.Run("requires session", func(t *testing.T) {
		tools, _, instances, _ := newTools(session.State{Authenticated: true, OIDC: true, SessionExpired: true})
		res, err := tools.HandleDeployInstance(ctx, request("deploy_instance", map[string]interface{}{"yaml": widgetYAML}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Empty(t, instances.deployed)
	})

	t.Run("deploys", func(t *testing.T) {
		tools, _, instances, _ := newTools(session.State{Authenticated: true})
		res, err := tools.HandleDeployInstance(ctx, request("deploy_instance", map[string]interface{}{"yaml": widgetYAML}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "Deployed Widget team-a/w1", resultText(t, res))
		require.Len(t, instances.deployed, 1)
	})

	t.Run("unauthorized", func(t *testing.T) {
		tools, _, instances, _ := newTools(session.State{Authenticated: true})
		instances.deployErr = apierrors.NewUnauthorized("expired")
		res, err := tools.HandleDeployInstance(ctx, request("deploy_instance", map[string]interface{}{"yaml": widgetYAML}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Session expired. Call the login tool again", resultText(t, res))
	})
}
