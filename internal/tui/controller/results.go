package controller

import (
	"fmt"

	"instancectl/internal/form"
	"instancectl/internal/kube"
	"instancectl/internal/session"
	"instancectl/internal/tui/model"
	"instancectl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// handleStateChange mirrors the store into the model and switches screens
// when the session enters or leaves the authenticated phase.
func handleStateChange(m *model.Model, msg model.StateChangeMsg) tea.Cmd {
	oldPhase := msg.Change.Old.Auth.Phase()
	m.Auth = msg.Change.New.Auth
	m.Namespace = msg.Change.New.Namespace.Current
	newPhase := m.Auth.Phase()

	switch {
	case oldPhase != session.PhaseAuthenticated && newPhase == session.PhaseAuthenticated:
		logging.Info(controllerSubsystem, "Session started, opening editor")
		m.EnterEditor()
		m.SetBusy("Loading instance")
		return model.LoadInstanceCmd(m.Instance, m.CommandTimeout)

	case oldPhase == session.PhaseAuthenticated && newPhase != session.PhaseAuthenticated && newPhase != session.PhaseAuthenticating:
		m.EnterLogin()
		if m.Auth.SessionExpired {
			return m.SetStatusMessage("Session expired", model.StatusBarWarning, statusTimeout)
		}
		return m.SetStatusMessage("Logged out", model.StatusBarInfo, statusTimeout)
	}
	return nil
}

func handleAuthResult(m *model.Model, msg model.AuthResultMsg) tea.Cmd {
	m.ClearBusy()
	if msg.Err != nil {
		return m.SetStatusMessage("Login failed", model.StatusBarError, statusTimeout)
	}
	m.TokenInput.Reset()
	return m.SetStatusMessage("Logged in", model.StatusBarSuccess, statusTimeout)
}

func handleCookieCheckResult(m *model.Model, msg model.CookieCheckResultMsg) tea.Cmd {
	m.ClearBusy()
	if msg.Err != nil {
		return m.SetStatusMessage("Auth proxy login failed", model.StatusBarError, statusTimeout)
	}
	if !m.Store.GetState().Auth.Authenticated {
		return m.SetStatusMessage("No valid auth proxy session", model.StatusBarInfo, statusTimeout)
	}
	return nil
}

// handleLogoutResult finishes a logout. An OIDC logout only clears the
// proxy session, so the cookie is checked again to bring the local state along.
func handleLogoutResult(m *model.Model, msg model.LogoutResultMsg) tea.Cmd {
	m.ClearBusy()
	if msg.Err != nil {
		return m.SetStatusMessage(fmt.Sprintf("Logout failed: %v", msg.Err), model.StatusBarError, statusTimeout)
	}
	if m.Store.GetState().Auth.OIDC {
		m.SetBusy("Checking auth proxy session")
		return model.CheckCookieCmd(m.Session, m.CommandTimeout)
	}
	return nil
}

func handleInstanceLoaded(m *model.Model, msg model.InstanceLoadedMsg) tea.Cmd {
	m.ClearBusy()
	if m.CurrentAppMode == model.ModeLogin {
		// The session ended while loading.
		return nil
	}
	if msg.Err != nil {
		m.LoadError = msg.Err.Error()
		logging.Error(controllerSubsystem, msg.Err, "Failed to load instance")
		if kube.IsUnauthorized(msg.Err) {
			return model.ExpireSessionCmd(m.Session, m.CommandTimeout)
		}
		return m.SetStatusMessage("Failed to load instance", model.StatusBarError, statusTimeout)
	}

	m.LoadError = ""
	if m.Form == nil {
		m.Form = form.NewController(msg.DefaultValues, msg.DeployedValues, queueDeploy(m), form.WithDiffContext(m.DiffContext))
	} else {
		m.Form.OnExternalValuesChange(msg.DefaultValues, msg.DeployedValues)
	}
	m.FormLoaded = true
	if m.Editor.Value() != m.Form.Values() {
		m.Editor.SetValue(m.Form.Values())
	}
	refreshDiff(m)
	return nil
}

// queueDeploy hands a validated draft to the next DeployCmd.
func queueDeploy(m *model.Model) form.DeployFunc {
	return func(u *unstructured.Unstructured) {
		m.PendingDeploy = u
	}
}

func handleDeployResult(m *model.Model, msg model.DeployResultMsg) tea.Cmd {
	m.ClearBusy()
	if msg.Err != nil {
		logging.Error(controllerSubsystem, msg.Err, "Deploy failed")
		if kube.IsUnauthorized(msg.Err) {
			return tea.Batch(
				m.SetStatusMessage("The cluster rejected the session", model.StatusBarError, statusTimeout),
				model.ExpireSessionCmd(m.Session, m.CommandTimeout),
			)
		}
		return m.SetStatusMessage(fmt.Sprintf("Deploy failed: %v", msg.Err), model.StatusBarError, statusTimeout)
	}

	label := "instance"
	if msg.Object != nil {
		label = msg.Object.GetKind() + "/" + msg.Object.GetName()
	}
	m.SetBusy("Loading instance")
	return tea.Batch(
		m.SetStatusMessage("Deployed "+label, model.StatusBarSuccess, statusTimeout),
		model.LoadInstanceCmd(m.Instance, m.CommandTimeout),
	)
}
