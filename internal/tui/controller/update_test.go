package controller

import (
	"errors"
	"strings"
	"testing"
	"time"

	"instancectl/internal/session"
	"instancectl/internal/tui/model"
	"instancectl/internal/tui/view"
	"instancectl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

func TestLogin_EnterAuthenticatesAndOpensEditor(t *testing.T) {
	h := newHarness(t, session.State{})
	require.Equal(t, model.ModeLogin, h.m.CurrentAppMode)

	h.key(runes("secret-token"))
	cmd := h.key(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, h.m.Busy)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	require.IsType(t, model.AuthResultMsg{}, msgs[0])
	h.m, _ = Update(msgs[0], h.m)
	assert.False(t, h.m.Busy)
	assert.Equal(t, []string{"secret-token"}, h.session.tokens)

	transitions := h.pump()
	assert.Equal(t, model.ModeEditor, h.m.CurrentAppMode)
	assert.Equal(t, "team-a", h.m.Namespace)
	require.Len(t, transitions, 1)

	loaded := collect(transitions[0])
	require.Len(t, loaded, 1)
	h.m, _ = Update(loaded[0], h.m)
	require.NotNil(t, h.m.Form)
	assert.Equal(t, testDeployed, h.m.Editor.Value())
	assert.Equal(t, testDeployed, h.m.Form.Values())
}

func TestLogin_EmptyTokenWarns(t *testing.T) {
	h := newHarness(t, session.State{})

	h.key(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, h.session.Calls())
	assert.Equal(t, "Enter a token first", h.m.StatusBarMessage)
	assert.Equal(t, model.StatusBarWarning, h.m.StatusBarMessageType)
}

func TestLogin_RejectedTokenShowsError(t *testing.T) {
	h := newHarness(t, session.State{})
	h.session.authErr = errors.New("invalid token")

	h.key(runes("bad"))
	msgs := collect(h.key(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Len(t, msgs, 1)
	h.m, _ = Update(msgs[0], h.m)
	h.pump()

	assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
	assert.Equal(t, "invalid token", h.m.Auth.ErrorMsg)
	assert.Contains(t, view.Render(h.m), "invalid token")
}

func TestLogin_CookieCheck(t *testing.T) {
	t.Run("valid cookie opens the editor", func(t *testing.T) {
		h := newHarness(t, session.State{})
		h.session.cookie = true

		msgs := collect(h.key(tea.KeyMsg{Type: tea.KeyCtrlO}))
		require.Len(t, msgs, 1)
		h.m, _ = Update(msgs[0], h.m)
		h.pump()

		assert.Equal(t, []string{"check-cookie", "authenticate"}, h.session.Calls())
		assert.Equal(t, model.ModeEditor, h.m.CurrentAppMode)
		assert.True(t, h.m.Auth.OIDC)
	})

	t.Run("no cookie stays on login", func(t *testing.T) {
		h := newHarness(t, session.State{})

		msgs := collect(h.key(tea.KeyMsg{Type: tea.KeyCtrlO}))
		require.Len(t, msgs, 1)
		h.m, _ = Update(msgs[0], h.m)
		h.pump()

		assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
		assert.Equal(t, "No valid auth proxy session", h.m.StatusBarMessage)
	})
}

func TestEditor_SubmitRejectsDraftWithoutAPIVersion(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.m.Editor.SetValue("kind: Widget\n")
	h.m.Form.OnDraftChange("kind: Widget\n")
	cmd := h.key(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.False(t, h.m.Busy)
	assert.Equal(t, "Unable parse the resource. Make sure it contains a valid apiVersion", h.m.Form.ParseError())
	assert.Empty(t, h.instance.applied)
	for _, msg := range collect(cmd) {
		assert.NotEqual(t, model.DeployResultMsg{}, msg)
	}
	assert.Contains(t, view.Render(h.m), "Make sure it contains a valid apiVersion")
}

func TestEditor_SubmitDeploysAndReloads(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	cmd := h.key(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, h.m.Busy)
	assert.Nil(t, h.m.PendingDeploy)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	result, ok := msgs[0].(model.DeployResultMsg)
	require.True(t, ok)
	require.NoError(t, result.Err)
	require.Len(t, h.instance.applied, 1)
	assert.Equal(t, "Widget", h.instance.applied[0].GetKind())

	h.instance.deployed = testDeployed + "  replicas: 2\n"
	var next tea.Cmd
	h.m, next = Update(result, h.m)
	assert.Equal(t, "Deployed Widget/w", h.m.StatusBarMessage)

	for _, msg := range collect(next) {
		h.m, _ = Update(msg, h.m)
	}
	assert.Equal(t, h.instance.deployed, h.m.Editor.Value())
	assert.False(t, h.m.Busy)
}

func TestEditor_UnauthorizedDeployExpiresSession(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	msgs := collect(handleDeployResult(h.m, model.DeployResultMsg{
		Err: apierrors.NewUnauthorized("token expired"),
	}))

	assert.Contains(t, msgs, model.ExpireSessionResultMsg{})
	assert.Equal(t, []string{"expire", "logout"}, h.session.Calls())

	h.pump()
	assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
	assert.Nil(t, h.m.Form)
}

func TestEditor_RestoreDefaultsAsksFirst(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.key(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, model.ModeRestoreConfirm, h.m.CurrentAppMode)
	assert.True(t, h.m.Form.RestoreModalOpen())
	assert.Contains(t, view.Render(h.m), model.RestoreConfirmText)

	h.key(runes("n"))
	assert.Equal(t, model.ModeEditor, h.m.CurrentAppMode)
	assert.False(t, h.m.Form.RestoreModalOpen())
	assert.Equal(t, testDeployed, h.m.Editor.Value())

	h.key(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.key(runes("y"))
	assert.Equal(t, model.ModeEditor, h.m.CurrentAppMode)
	assert.False(t, h.m.Form.RestoreModalOpen())
	assert.Equal(t, testDefaults, h.m.Editor.Value())
	assert.Equal(t, testDefaults, h.m.Form.Values())
}

func TestEditor_TypingUpdatesDraft(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.key(runes("#"))

	assert.Equal(t, h.m.Editor.Value(), h.m.Form.Values())
	assert.NotEqual(t, testDeployed, h.m.Form.Values())
}

func TestEditor_DiffTab(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.key(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.TabDiff, h.m.ActiveTab)
	out := view.Render(h.m)
	assert.Contains(t, out, "Difference from deployed values")
	assert.Contains(t, out, "No changes detected from deployed values")

	h.key(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.TabYAML, h.m.ActiveTab)
	assert.True(t, h.m.Editor.Focused())
}

func TestEditor_QuitOnlyFromDiffTab(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.key(runes("q"))
	assert.False(t, h.m.QuitApp)

	h.key(tea.KeyMsg{Type: tea.KeyTab})
	cmd := h.key(runes("q"))
	assert.True(t, h.m.QuitApp)
	require.NotNil(t, cmd)
	assert.True(t, h.m.Subscription.IsClosed())
}

func TestEditor_CopyDiff(t *testing.T) {
	var copied string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = old })

	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.key(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Empty(t, copied)
	assert.Equal(t, "No changes detected from deployed values", h.m.StatusBarMessage)

	changed := strings.Replace(testDeployed, "size: 3", "size: 5", 1)
	h.m.Editor.SetValue(changed)
	h.m.Form.OnDraftChange(changed)
	h.key(tea.KeyMsg{Type: tea.KeyCtrlY})

	assert.Contains(t, copied, "+++ draft")
	assert.Contains(t, copied, "+  size: 5")
	assert.Equal(t, "Diff copied to clipboard", h.m.StatusBarMessage)
}

func TestEditor_LogoutToken(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	msgs := collect(h.key(tea.KeyMsg{Type: tea.KeyCtrlL}))
	require.Len(t, msgs, 1)
	h.m, _ = Update(msgs[0], h.m)
	h.pump()

	assert.Equal(t, []string{"logout"}, h.session.Calls())
	assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
	assert.Equal(t, "Logged out", h.m.StatusBarMessage)
}

func TestEditor_LogoutOIDCRechecksCookie(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true, OIDC: true})
	h.load(t)

	cmd := handleLogoutResult(h.m, model.LogoutResultMsg{})
	require.NotNil(t, cmd)
	assert.True(t, h.m.Busy)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	assert.IsType(t, model.CookieCheckResultMsg{}, msgs[0])
	h.pump()

	assert.Equal(t, []string{"check-cookie"}, h.session.Calls())
	assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
}

func TestStateChange_OIDCExpiryShowsBanner(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true, OIDC: true})
	h.load(t)

	h.st.Dispatch(session.SetSessionExpiredAction{Expired: true})
	h.pump()

	assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
	assert.Equal(t, "Session expired", h.m.StatusBarMessage)
	assert.Contains(t, view.Render(h.m), view.SessionExpiredText)
}

func TestInstanceLoaded_UnauthorizedExpires(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})

	var cmd tea.Cmd
	h.m, cmd = Update(model.InstanceLoadedMsg{Err: apierrors.NewUnauthorized("nope")}, h.m)

	assert.NotEmpty(t, h.m.LoadError)
	msgs := collect(cmd)
	assert.Contains(t, msgs, model.ExpireSessionResultMsg{})
}

func TestInstanceLoaded_SameInputsKeepDraft(t *testing.T) {
	h := newHarness(t, session.State{Authenticated: true})
	h.load(t)

	h.m.Editor.SetValue("edited")
	h.m.Form.OnDraftChange("edited")
	h.load(t)

	assert.Equal(t, "edited", h.m.Editor.Value())
}

func TestLogOverlay(t *testing.T) {
	var copied string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = old })

	h := newHarness(t, session.State{})
	h.m, _ = Update(model.NewLogEntryMsg{Entry: logging.LogEntry{
		Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Level:     logging.LevelInfo,
		Subsystem: "Session",
		Message:   "Logged out",
	}}, h.m)
	h.m, _ = Update(model.NewLogEntryMsg{Entry: logging.LogEntry{Level: logging.LevelDebug, Message: "hidden"}}, h.m)
	require.Len(t, h.m.ActivityLog, 1)

	h.key(tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Equal(t, model.ModeLogOverlay, h.m.CurrentAppMode)
	assert.Contains(t, view.Render(h.m), "Activity Log")

	h.key(runes("y"))
	assert.Contains(t, copied, "[INFO] [Session] Logged out")

	h.key(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.ModeLogin, h.m.CurrentAppMode)
}

func TestWindowSize(t *testing.T) {
	h := newHarness(t, session.State{})

	h.m, _ = Update(tea.WindowSizeMsg{Width: 80, Height: 24}, h.m)

	assert.Equal(t, 80, h.m.Width)
	assert.Equal(t, 24, h.m.Height)
	assert.Positive(t, h.m.DiffViewport.Height)
	assert.Positive(t, h.m.LogViewport.Width)
}
