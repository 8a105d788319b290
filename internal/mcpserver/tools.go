package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"instancectl/internal/action"
	"instancectl/internal/form"
	"instancectl/internal/kube"
	"instancectl/internal/session"
	"instancectl/internal/store"
	"instancectl/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const toolsSubsystem = "MCPTools"

// Sessions is the session controller as seen by the tools.
type Sessions interface {
	Authenticate(ctx context.Context, token string, oidc bool) ([]action.Action, error)
	Logout(ctx context.Context) ([]action.Action, error)
	CheckCookieAuthentication(ctx context.Context) ([]action.Action, error)
}

// Instances validates, diffs and deploys instance drafts.
type Instances interface {
	Validate(text string) (*unstructured.Unstructured, error)
	Diff(ctx context.Context, text string, target kube.Target) (form.DiffView, error)
	Deploy(ctx context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error)
}

// StateSource returns the current application state.
type StateSource interface {
	GetState() store.AppState
}

// Tools implements the instancectl MCP tools.
type Tools struct {
	sessions  Sessions
	instances Instances
	state     StateSource
}

// NewTools creates the tool set.
func NewTools(sessions Sessions, instances Instances, state StateSource) *Tools {
	return &Tools{sessions: sessions, instances: instances, state: state}
}

type toolEntry struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

func (t *Tools) entries() []toolEntry {
	return []toolEntry{
		{
			tool: mcp.NewTool("auth_status",
				mcp.WithDescription("Show the session phase, identity mode and current namespace"),
			),
			handler: t.HandleAuthStatus,
		},
		{
			tool: mcp.NewTool("login",
				mcp.WithDescription("Log in with a bearer token, or check the auth proxy cookie when oidc is set"),
				mcp.WithString("token",
					mcp.Description("Bearer token for the cluster"),
				),
				mcp.WithBoolean("oidc",
					mcp.Description("Use the auth proxy session instead of a token"),
				),
			),
			handler: t.HandleLogin,
		},
		{
			tool: mcp.NewTool("logout",
				mcp.WithDescription("End the current session"),
			),
			handler: t.HandleLogout,
		},
		{
			tool: mcp.NewTool("validate_instance",
				mcp.WithDescription("Check that an instance YAML parses and has an apiVersion, without deploying it"),
				mcp.WithString("yaml",
					mcp.Required(),
					mcp.Description("Instance manifest"),
				),
			),
			handler: t.HandleValidateInstance,
		},
		{
			tool: mcp.NewTool("diff_instance",
				mcp.WithDescription("Diff an instance YAML against the deployed object, or the example defaults when nothing is deployed"),
				mcp.WithString("yaml",
					mcp.Required(),
					mcp.Description("Instance manifest"),
				),
				mcp.WithString("apiVersion",
					mcp.Required(),
					mcp.Description("API version of the instance kind"),
				),
				mcp.WithString("kind",
					mcp.Required(),
					mcp.Description("Instance kind"),
				),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Instance name"),
				),
				mcp.WithString("namespace",
					mcp.Description("Namespace; defaults to the session namespace"),
				),
				mcp.WithString("csv",
					mcp.Description("ClusterServiceVersion that ships example defaults"),
				),
			),
			handler: t.HandleDiffInstance,
		},
		{
			tool: mcp.NewTool("deploy_instance",
				mcp.WithDescription("Install or upgrade an instance from YAML"),
				mcp.WithString("yaml",
					mcp.Required(),
					mcp.Description("Instance manifest"),
				),
			),
			handler: t.HandleDeployInstance,
		},
	}
}

// Register adds every tool to s.
func (t *Tools) Register(s *server.MCPServer) {
	for _, e := range t.entries() {
		s.AddTool(e.tool, e.handler)
	}
}

// authStatus is the auth_status payload.
type authStatus struct {
	Phase          string   `json:"phase"`
	Authenticated  bool     `json:"authenticated"`
	OIDC           bool     `json:"oidc"`
	SessionExpired bool     `json:"sessionExpired"`
	Error          string   `json:"error,omitempty"`
	Namespace      string   `json:"namespace,omitempty"`
	Namespaces     []string `json:"namespaces,omitempty"`
}

func (t *Tools) status() authStatus {
	st := t.state.GetState()
	return authStatus{
		Phase:          st.Auth.Phase().String(),
		Authenticated:  st.Auth.Authenticated,
		OIDC:           st.Auth.OIDC,
		SessionExpired: st.Auth.SessionExpired,
		Error:          st.Auth.ErrorMsg,
		Namespace:      st.Namespace.Current,
		Namespaces:     st.Namespace.Namespaces,
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArg(req mcp.CallToolRequest, name string) string {
	v, _ := req.GetArguments()[name].(string)
	return v
}

func boolArg(req mcp.CallToolRequest, name string) bool {
	v, _ := req.GetArguments()[name].(bool)
	return v
}

// requireSession returns an error result unless the session is usable.
func (t *Tools) requireSession() *mcp.CallToolResult {
	if t.state.GetState().Auth.Phase() == session.PhaseAuthenticated {
		return nil
	}
	return mcp.NewToolResultError("Not logged in. Call the login tool first")
}

// validationMessage returns the text the editor would show for err.
func validationMessage(err error) string {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return verr.Message()
	}
	return err.Error()
}

// HandleAuthStatus handles the auth_status tool call
func (t *Tools) HandleAuthStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.status())
}

// HandleLogin handles the login tool call
func (t *Tools) HandleLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "oidc") {
		if _, err := t.sessions.CheckCookieAuthentication(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Cookie check failed: %v", err)), nil
		}
		if !t.state.GetState().Auth.Authenticated {
			return mcp.NewToolResultError("No valid auth proxy session"), nil
		}
		return jsonResult(t.status())
	}

	token := stringArg(req, "token")
	if token == "" {
		return mcp.NewToolResultError("token is required unless oidc is set"), nil
	}
	if _, err := t.sessions.Authenticate(ctx, token, false); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Login failed: %v", err)), nil
	}
	logging.Info(toolsSubsystem, "Logged in via MCP")
	return jsonResult(t.status())
}

// HandleLogout handles the logout tool call
func (t *Tools) HandleLogout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oidc := t.state.GetState().Auth.OIDC
	if _, err := t.sessions.Logout(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Logout failed: %v", err)), nil
	}
	if !oidc {
		return mcp.NewToolResultText("Logged out"), nil
	}

	// The proxy owns the session; local state follows the cookie check.
	if _, err := t.sessions.CheckCookieAuthentication(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Logout failed: %v", err)), nil
	}
	if t.state.GetState().Auth.Authenticated {
		return mcp.NewToolResultError("Auth proxy session is still valid after sign-out"), nil
	}
	logging.Info(toolsSubsystem, "Signed out at the auth proxy via MCP")
	return mcp.NewToolResultText("Signed out at the auth proxy"), nil
}

// HandleValidateInstance handles the validate_instance tool call
func (t *Tools) HandleValidateInstance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("yaml")
	if err != nil {
		return mcp.NewToolResultError("yaml is required"), nil
	}
	u, err := t.instances.Validate(text)
	if err != nil {
		return mcp.NewToolResultError(validationMessage(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Valid %s %s (apiVersion %s)", u.GetKind(), u.GetName(), u.GetAPIVersion())), nil
}

// HandleDiffInstance handles the diff_instance tool call
func (t *Tools) HandleDiffInstance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("yaml")
	if err != nil {
		return mcp.NewToolResultError("yaml is required"), nil
	}
	target := kube.Target{
		APIVersion: stringArg(req, "apiVersion"),
		Kind:       stringArg(req, "kind"),
		Name:       stringArg(req, "name"),
		Namespace:  stringArg(req, "namespace"),
		CSV:        stringArg(req, "csv"),
	}
	if target.APIVersion == "" || target.Kind == "" || target.Name == "" {
		return mcp.NewToolResultError("apiVersion, kind and name are required"), nil
	}
	if res := t.requireSession(); res != nil {
		return res, nil
	}

	diff, err := t.instances.Diff(ctx, text, target)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to diff %s/%s: %v", target.Kind, target.Name, err)), nil
	}
	if diff.Empty {
		return mcp.NewToolResultText(diff.EmptyText), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s (on submit: %s)\n%s", diff.Title, diff.Event, diff.Text)), nil
}

// HandleDeployInstance handles the deploy_instance tool call
func (t *Tools) HandleDeployInstance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("yaml")
	if err != nil {
		return mcp.NewToolResultError("yaml is required"), nil
	}
	u, err := t.instances.Validate(text)
	if err != nil {
		return mcp.NewToolResultError(validationMessage(err)), nil
	}
	if res := t.requireSession(); res != nil {
		return res, nil
	}

	applied, err := t.instances.Deploy(ctx, u)
	if err != nil {
		if kube.IsUnauthorized(err) {
			return mcp.NewToolResultError("Session expired. Call the login tool again"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Deploy failed: %v", err)), nil
	}
	logging.Info(toolsSubsystem, "Deployed %s %s/%s via MCP", applied.GetKind(), applied.GetNamespace(), applied.GetName())
	return mcp.NewToolResultText(fmt.Sprintf("Deployed %s %s/%s", applied.GetKind(), applied.GetNamespace(), applied.GetName())), nil
}
